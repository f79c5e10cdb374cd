package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"portfolio-relay/handler"
	"portfolio-relay/internal/api"
	"portfolio-relay/internal/config"
	"portfolio-relay/internal/integrations/groq"
	"portfolio-relay/internal/integrations/paramstore"
	"portfolio-relay/internal/repository"
	"portfolio-relay/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	// ---- AWS SDK config, only when an AWS-backed component is enabled ----
	var awsCfg aws.Config
	if (cfg.GroqAPIKey == "" && cfg.ParamPrefix != "") || cfg.UsageTable != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
	}

	// ---- Clients ----
	keys, err := keySource(cfg, awsCfg)
	if err != nil {
		slog.Error("failed to create credential source", "err", err)
		os.Exit(1)
	}

	groqClient, err := groq.NewClient(keys,
		groq.WithBaseURL(cfg.GroqBaseURL),
		groq.WithTimeout(cfg.UpstreamTimeout),
	)
	if err != nil {
		slog.Error("failed to create Groq client", "err", err)
		os.Exit(1)
	}

	var usage usecase.UsageRecorder
	if cfg.UsageTable != "" {
		usageClient, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.UsageTable)
		if err != nil {
			slog.Error("failed to create usage client", "err", err)
			os.Exit(1)
		}
		usage = usageClient
	}

	chatService, err := usecase.NewChatService(groqClient, usecase.Options{
		Model:            cfg.GroqModel,
		MaxMessageLength: cfg.MaxMessageLength,
		MaxOutputTokens:  cfg.MaxOutputTokens,
		Usage:            usage,
	})
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	// ---- Router ----
	router := api.NewRouter(&api.Deps{
		Relay:              chatService,
		ExposeErrorDetails: cfg.IsDevelopment(),
	})

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		h, err := handler.NewHandler(router)
		if err != nil {
			slog.Error("failed to create handler", "err", err)
			os.Exit(1)
		}
		lambda.Start(h.Handle)
		return
	}

	if err := serve(cfg, router); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func keySource(cfg *config.Config, awsCfg aws.Config) (groq.KeySource, error) {
	if cfg.GroqAPIKey != "" || cfg.ParamPrefix == "" {
		return groq.StaticKey(cfg.GroqAPIKey), nil
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}
	keys, err := groq.NewParamStoreKey(ssmClient, cfg.ParamPrefix)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func serve(cfg *config.Config, router http.Handler) error {
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		slog.Info("chat endpoint ready", "url", "http://localhost:"+cfg.Port+"/api/chat")
		slog.Info("features enabled", "features", api.Features)
		slog.Info("environment", "env", cfg.Environment)
		slog.Info("credential source", "configured", cfg.CredentialConfigured())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-sigCh:
		slog.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
