package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"portfolio-relay/internal/domain"
)

const (
	pkPrefixDay = "DAY#"
	skPrefixReq = "REQ#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client writes usage ledger records to a DynamoDB table keyed by day.
type Client struct {
	api       dynamodbAPI
	tableName string
}

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// dayPK returns the partition key holding all exchanges of one UTC day.
func dayPK(day time.Time) string {
	return pkPrefixDay + day.UTC().Format(time.DateOnly)
}

// RecordExchange persists one exchange. Records are append-only; an existing
// key is never overwritten.
func (c *Client) RecordExchange(ctx context.Context, ex domain.Exchange) error {
	if !strings.HasPrefix(ex.PK, pkPrefixDay) || !strings.HasPrefix(ex.SK, skPrefixReq) {
		return fmt.Errorf("repository: RecordExchange: invalid keys %q/%q", ex.PK, ex.SK)
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                exchangeItem(ex),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordExchange: %w", err)
	}
	return nil
}

// DailyUsage sums the tokens and counts the exchanges recorded for day.
func (c *Client) DailyUsage(ctx context.Context, day time.Time) (exchanges, tokens int, err error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: dayPK(day)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixReq},
		},
		ProjectionExpression: aws.String("tokensUsed"),
	}

	for {
		out, qErr := c.api.Query(ctx, in)
		if qErr != nil {
			return 0, 0, fmt.Errorf("repository: DailyUsage query: %w", qErr)
		}
		for _, item := range out.Items {
			n, nErr := intAttr(item, "tokensUsed")
			if nErr != nil {
				return 0, 0, fmt.Errorf("repository: DailyUsage decode: %w", nErr)
			}
			exchanges++
			tokens += n
		}
		if len(out.LastEvaluatedKey) == 0 {
			return exchanges, tokens, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func exchangeItem(ex domain.Exchange) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":              &types.AttributeValueMemberS{Value: ex.PK},
		"SK":              &types.AttributeValueMemberS{Value: ex.SK},
		"requestId":       &types.AttributeValueMemberS{Value: ex.RequestID},
		"model":           &types.AttributeValueMemberS{Value: ex.Model},
		"tokensUsed":      &types.AttributeValueMemberN{Value: strconv.Itoa(ex.TokensUsed)},
		"historyMessages": &types.AttributeValueMemberN{Value: strconv.Itoa(ex.HistoryMessages)},
		"messageLength":   &types.AttributeValueMemberN{Value: strconv.Itoa(ex.MessageLength)},
		"createdAt":       &types.AttributeValueMemberS{Value: ex.CreatedAt},
		"ttl":             &types.AttributeValueMemberN{Value: strconv.FormatInt(ex.TTL, 10)},
	}
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
