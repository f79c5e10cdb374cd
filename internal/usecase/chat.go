package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-relay/internal/contextutil"
	"portfolio-relay/internal/domain"
)

const (
	// MaxMessageLength is the default per-message character limit.
	MaxMessageLength = 700
	// LegacyMaxMessageLength is the limit used by the first API revision.
	LegacyMaxMessageLength = 500
	// MaxOutputTokens is the default completion budget.
	MaxOutputTokens = 1024
	// LegacyMaxOutputTokens is the completion budget of the first API revision.
	LegacyMaxOutputTokens = 500
	// MaxHistoryMessages is the history window: the last five user/assistant exchanges.
	MaxHistoryMessages = 10

	Temperature = 0.8
	TopP        = 0.9

	DefaultModel = "openai/gpt-oss-120b"

	usageTTL = 30 * 24 * time.Hour
)

type LLMClient interface {
	Complete(ctx context.Context, model string, messages []domain.ChatMessage, params domain.SamplingParams) (domain.Completion, error)
}

type UsageRecorder interface {
	RecordExchange(ctx context.Context, exchange domain.Exchange) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type credentialError interface {
	MissingCredential() bool
}

type ChatService struct {
	llm             LLMClient
	usage           UsageRecorder
	profile         string
	model           string
	maxMessageLen   int
	maxOutputTokens int

	now func() time.Time
}

type Options struct {
	Profile          string
	Model            string
	MaxMessageLength int
	MaxOutputTokens  int
	// Usage is optional; when nil completed exchanges are not recorded.
	Usage UsageRecorder
}

type ChatOutput struct {
	Reply      string
	TokensUsed int
	Model      string
	Timestamp  time.Time
}

func NewChatService(llm LLMClient, opts Options) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	profile := opts.Profile
	if strings.TrimSpace(profile) == "" {
		profile = domain.AssistantProfile
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = MaxMessageLength
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = MaxOutputTokens
	}
	usage := opts.Usage
	if usage == nil {
		usage = noopRecorder{}
	}
	return &ChatService{
		llm:             llm,
		usage:           usage,
		profile:         profile,
		model:           model,
		maxMessageLen:   opts.MaxMessageLength,
		maxOutputTokens: opts.MaxOutputTokens,
		now:             time.Now,
	}, nil
}

// MaxMessageLength reports the configured message limit.
func (s *ChatService) MaxMessageLength() int {
	return s.maxMessageLen
}

// Chat runs one relay pass: trim history, build the outbound messages, call
// the provider and shape its reply.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.checkMessage(in.Message); err != nil {
		return ChatOutput{}, err
	}

	history := trimHistory(in.History, MaxHistoryMessages)
	messages := buildMessages(s.profile, history, in.Message)
	logger.InfoContext(ctx, "processing chat message", "history_messages", len(history))

	completion, err := s.llm.Complete(ctx, s.model, messages, domain.SamplingParams{
		Temperature: Temperature,
		TopP:        TopP,
		MaxTokens:   s.maxOutputTokens,
	})
	if err != nil {
		return ChatOutput{}, classifyUpstream(err)
	}

	if completion.Content == "" {
		return ChatOutput{}, newError(ErrorEmptyReply, "empty_reply", errors.New("no response from AI"))
	}

	out := ChatOutput{
		Reply:      strings.TrimSpace(completion.Content),
		TokensUsed: max(completion.TotalTokens, 0),
		Model:      completion.Model,
		Timestamp:  s.now().UTC(),
	}

	s.recordUsage(ctx, in.Message, len(history), out)
	return out, nil
}

func (s *ChatService) recordUsage(ctx context.Context, message string, historyLen int, out ChatOutput) {
	requestID := newUUID()
	exchange := domain.Exchange{
		PK:              "DAY#" + out.Timestamp.Format(time.DateOnly),
		SK:              "REQ#" + out.Timestamp.Format(time.RFC3339Nano) + "#" + requestID,
		RequestID:       requestID,
		Model:           out.Model,
		TokensUsed:      out.TokensUsed,
		HistoryMessages: historyLen,
		MessageLength:   messageLength(message),
		CreatedAt:       out.Timestamp.Format(time.RFC3339),
		TTL:             out.Timestamp.Add(usageTTL).Unix(),
	}
	if err := s.usage.RecordExchange(ctx, exchange); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to record usage", "error", err)
	}
}

func classifyUpstream(err error) *Error {
	if missingCredential(err) {
		return newError(ErrorConfiguration, "missing_api_key", err)
	}
	status, ok := upstreamStatusCode(err)
	if !ok {
		return newError(ErrorUpstream, "provider_error", err)
	}
	switch status {
	case 401:
		return newError(ErrorUpstreamAuth, "provider_unauthorized", err)
	case 429:
		return newError(ErrorRateLimited, "provider_rate_limited", err)
	case 400:
		return newError(ErrorUpstreamBadRequest, "provider_bad_request", err)
	default:
		return newError(ErrorUpstream, "provider_error", err)
	}
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

func missingCredential(err error) bool {
	var credErr credentialError
	return errors.As(err, &credErr) && credErr.MissingCredential()
}

type noopRecorder struct{}

func (noopRecorder) RecordExchange(context.Context, domain.Exchange) error { return nil }

var newUUID = func() string {
	return uuid.NewString()
}
