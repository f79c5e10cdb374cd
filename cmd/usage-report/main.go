// Command usage-report prints the number of completed chat exchanges and
// tokens spent on one UTC day, read from the usage ledger table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"portfolio-relay/internal/config"
	"portfolio-relay/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	day := flag.String("day", time.Now().UTC().Format(time.DateOnly), "UTC day to report (YYYY-MM-DD)")
	table := flag.String("table", cfg.UsageTable, "DynamoDB usage table (defaults to USAGE_TABLE)")
	flag.Parse()

	when, err := parseDay(*day)
	if err != nil {
		slog.Error("invalid -day", "err", err)
		os.Exit(2)
	}
	if *table == "" {
		slog.Error("no usage table configured; set USAGE_TABLE or pass -table")
		os.Exit(2)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	client, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), *table)
	if err != nil {
		slog.Error("failed to create usage client", "err", err)
		os.Exit(1)
	}

	exchanges, tokens, err := client.DailyUsage(ctx, when)
	if err != nil {
		slog.Error("failed to read usage", "err", err)
		os.Exit(1)
	}
	fmt.Println(formatReport(when, exchanges, tokens))
}

func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

func formatReport(day time.Time, exchanges, tokens int) string {
	avg := 0
	if exchanges > 0 {
		avg = tokens / exchanges
	}
	return fmt.Sprintf("%s  exchanges=%d  tokens=%d  avg_tokens=%d", day.Format(time.DateOnly), exchanges, tokens, avg)
}
