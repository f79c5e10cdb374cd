package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-relay/internal/domain"
	"portfolio-relay/internal/integrations/groq"
)

type mockLLM struct {
	completion domain.Completion
	err        error
	callCount  int
	model      string
	messages   []domain.ChatMessage
	params     domain.SamplingParams
}

func (m *mockLLM) Complete(_ context.Context, model string, messages []domain.ChatMessage, params domain.SamplingParams) (domain.Completion, error) {
	m.callCount++
	m.model = model
	m.messages = messages
	m.params = params
	return m.completion, m.err
}

type mockUsage struct {
	recorded []domain.Exchange
	err      error
}

func (m *mockUsage) RecordExchange(_ context.Context, ex domain.Exchange) error {
	m.recorded = append(m.recorded, ex)
	return m.err
}

var fixedNow = time.Date(2026, 10, 19, 9, 15, 0, 0, time.UTC)

func newTestService(t *testing.T, llm LLMClient, opts Options) *ChatService {
	t.Helper()
	svc, err := NewChatService(llm, opts)
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func reply(content string) *mockLLM {
	return &mockLLM{completion: domain.Completion{Content: content, TotalTokens: 42, Model: "openai/gpt-oss-120b"}}
}

func expectChatError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, code, usecaseErr.Code)
	require.Equal(t, reason, usecaseErr.Reason)
}

func rawHistory(t *testing.T, entries ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		require.True(t, json.Valid([]byte(e)), e)
		out = append(out, json.RawMessage(e))
	}
	return out
}

func TestNewChatService_Defaults(t *testing.T) {
	_, err := NewChatService(nil, Options{})
	require.Error(t, err)

	svc, err := NewChatService(reply("ok"), Options{})
	require.NoError(t, err)
	require.Equal(t, MaxMessageLength, svc.MaxMessageLength())
	require.Equal(t, MaxOutputTokens, svc.maxOutputTokens)
	require.Equal(t, DefaultModel, svc.model)
	require.Equal(t, domain.AssistantProfile, svc.profile)
}

func TestChat_HappyPath(t *testing.T) {
	llm := reply("  Hello!  ")
	usage := &mockUsage{}
	svc := newTestService(t, llm, Options{Usage: usage})
	newUUID = func() string { return "req-1" }
	t.Cleanup(func() { newUUID = defaultUUID })

	out, err := svc.Chat(context.Background(), ChatInput{Message: "Who are you?"})
	require.NoError(t, err)
	require.Equal(t, "Hello!", out.Reply)
	require.Equal(t, 42, out.TokensUsed)
	require.Equal(t, "openai/gpt-oss-120b", out.Model)
	require.Equal(t, fixedNow, out.Timestamp)

	require.Equal(t, DefaultModel, llm.model)
	require.Equal(t, domain.SamplingParams{Temperature: 0.8, TopP: 0.9, MaxTokens: 1024}, llm.params)
	require.Len(t, llm.messages, 2)

	require.Len(t, usage.recorded, 1)
	ex := usage.recorded[0]
	require.Equal(t, "DAY#2026-10-19", ex.PK)
	require.Equal(t, "REQ#2026-10-19T09:15:00Z#req-1", ex.SK)
	require.Equal(t, 42, ex.TokensUsed)
	require.Equal(t, 0, ex.HistoryMessages)
	require.Equal(t, len("Who are you?"), ex.MessageLength)
	require.Equal(t, fixedNow.Add(30*24*time.Hour).Unix(), ex.TTL)
}

func TestChat_LegacyLimits(t *testing.T) {
	llm := reply("ok")
	svc := newTestService(t, llm, Options{MaxMessageLength: LegacyMaxMessageLength, MaxOutputTokens: LegacyMaxOutputTokens})

	_, err := svc.Chat(context.Background(), ChatInput{Message: strings.Repeat("a", 501)})
	expectChatError(t, err, ErrorInvalidInput, "message_too_long")

	_, err = svc.Chat(context.Background(), ChatInput{Message: "hi"})
	require.NoError(t, err)
	require.Equal(t, 500, llm.params.MaxTokens)
}

func TestChat_UsageFailureDoesNotFailChat(t *testing.T) {
	svc := newTestService(t, reply("ok"), Options{Usage: &mockUsage{err: errors.New("dynamodb down")}})

	out, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
	require.NoError(t, err)
	require.Equal(t, "ok", out.Reply)
}

func TestChat_RevalidatesMessage(t *testing.T) {
	llm := reply("ok")
	svc := newTestService(t, llm, Options{})

	_, err := svc.Chat(context.Background(), ChatInput{Message: "  "})
	expectChatError(t, err, ErrorInvalidInput, "empty_message")
	require.Zero(t, llm.callCount)
}

func TestChat_EmptyReply(t *testing.T) {
	svc := newTestService(t, reply(""), Options{})
	_, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
	expectChatError(t, err, ErrorEmptyReply, "empty_reply")
}

func TestChat_WhitespaceReplyIsNotEmpty(t *testing.T) {
	for _, content := range []string{"   ", " \n "} {
		svc := newTestService(t, reply(content), Options{})
		out, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
		require.NoError(t, err)
		require.Equal(t, "", out.Reply)
		require.Equal(t, 42, out.TokensUsed)
	}
}

func TestChat_NegativeTokensClamped(t *testing.T) {
	llm := &mockLLM{completion: domain.Completion{Content: "ok", TotalTokens: -3}}
	svc := newTestService(t, llm, Options{})

	out, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
	require.NoError(t, err)
	require.Zero(t, out.TokensUsed)
}

func TestChat_UpstreamErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   ErrorCode
		reason string
	}{
		{name: "unauthorized", err: &groq.HTTPStatusError{StatusCode: http.StatusUnauthorized}, code: ErrorUpstreamAuth, reason: "provider_unauthorized"},
		{name: "rate limited", err: &groq.HTTPStatusError{StatusCode: http.StatusTooManyRequests}, code: ErrorRateLimited, reason: "provider_rate_limited"},
		{name: "bad request", err: &groq.HTTPStatusError{StatusCode: http.StatusBadRequest}, code: ErrorUpstreamBadRequest, reason: "provider_bad_request"},
		{name: "server error", err: &groq.HTTPStatusError{StatusCode: http.StatusBadGateway}, code: ErrorUpstream, reason: "provider_error"},
		{name: "wrapped status", err: fmt.Errorf("groq: request failed: %w", &groq.HTTPStatusError{StatusCode: http.StatusTooManyRequests}), code: ErrorRateLimited, reason: "provider_rate_limited"},
		{name: "network", err: errors.New("dial tcp: refused"), code: ErrorUpstream, reason: "provider_error"},
		{name: "missing key", err: &groq.CredentialError{Source: "environment"}, code: ErrorConfiguration, reason: "missing_api_key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, &mockLLM{err: tc.err}, Options{})
			_, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
			expectChatError(t, err, tc.code, tc.reason)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestChat_BuildMessages_OrderAndWindow(t *testing.T) {
	var entries []string
	for i := 0; i < 12; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		entries = append(entries, fmt.Sprintf(`{"role":%q,"content":"m%d","extra":true}`, role, i))
	}
	llm := reply("ok")
	svc := newTestService(t, llm, Options{})

	_, err := svc.Chat(context.Background(), ChatInput{Message: " new question ", History: rawHistory(t, entries...)})
	require.NoError(t, err)

	msgs := llm.messages
	require.Len(t, msgs, 12)
	require.Equal(t, domain.ChatMessage{Role: domain.RoleSystem, Content: domain.AssistantProfile}, msgs[0])
	require.Equal(t, domain.ChatMessage{Role: domain.RoleUser, Content: "m2"}, msgs[1])
	require.Equal(t, domain.ChatMessage{Role: domain.RoleAssistant, Content: "m11"}, msgs[10])
	require.Equal(t, domain.ChatMessage{Role: domain.RoleUser, Content: " new question "}, msgs[11])
}

var defaultUUID = newUUID
