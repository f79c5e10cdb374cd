package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// KeySource yields the API key used to authenticate completion requests.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// Getter is the parameter store lookup consumed by ParamStoreKey.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// CredentialError reports that no usable API key could be obtained.
type CredentialError struct {
	Source string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("groq: API key unavailable from %s", e.Source)
	}
	return fmt.Sprintf("groq: API key unavailable from %s: %v", e.Source, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

func (e *CredentialError) MissingCredential() bool {
	return true
}

// StaticKey is an API key read once from the environment.
type StaticKey string

func (k StaticKey) APIKey(_ context.Context) (string, error) {
	key := strings.TrimSpace(string(k))
	if key == "" {
		return "", &CredentialError{Source: "environment"}
	}
	return key, nil
}

// tokenPayload is the expected JSON shape stored in SSM for the API key.
type tokenPayload struct {
	Token string `json:"token"`
}

// ParamStoreKey loads the API key from a SecureString parameter holding
// {"token": "..."}. A successful load is cached for the process lifetime; a
// failed load is retried on the next call.
type ParamStoreKey struct {
	getter Getter
	name   string

	mu     sync.RWMutex
	loaded bool
	apiKey string
}

// NewParamStoreKey returns a KeySource reading <paramPrefix>/groq-api-key.
func NewParamStoreKey(getter Getter, paramPrefix string) (*ParamStoreKey, error) {
	if getter == nil {
		return nil, errors.New("groq: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("groq: parameter prefix must not be empty")
	}
	return &ParamStoreKey{getter: getter, name: paramPrefix + "/groq-api-key"}, nil
}

func (p *ParamStoreKey) APIKey(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.loaded {
		key := p.apiKey
		p.mu.RUnlock()
		return key, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return p.apiKey, nil
	}

	key, err := fetchAPIKeyFromParamStore(ctx, p.getter, p.name)
	if err != nil {
		return "", &CredentialError{Source: "parameter store", Err: err}
	}
	p.apiKey = key
	p.loaded = true
	return key, nil
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("groq: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("groq: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("groq: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("groq: unmarshal paramstore token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", errors.New("groq: API token is empty")
	}
	return strings.TrimSpace(tp.Token), nil
}
