package api

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_chat_relay.go -package=mocks portfolio-relay/internal/api ChatRelay

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"portfolio-relay/internal/usecase"
)

// ChatRelay is the chat pipeline consumed by the HTTP layer.
type ChatRelay interface {
	Validate(body []byte) (usecase.ChatInput, error)
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Relay ChatRelay
	// ExposeErrorDetails adds a details field to 500 responses.
	ExposeErrorDetails bool
}

// Endpoints lists the routes advertised by the 404 handler.
var Endpoints = []string{
	"GET /",
	"POST /api/chat",
	"POST /api/chat/clear",
}

// Features is advertised by the health endpoint.
var Features = []string{"Conversation Memory", "Extended Context", "Better Limits"}

// NewRouter creates the relay router. Unmatched routes and unsupported
// methods both fall through to the 404 handler.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Recoverer(deps.ExposeErrorDetails))
	r.Use(CORS)

	h := &handlers{relay: deps.Relay, exposeDetails: deps.ExposeErrorDetails}

	r.Get("/", h.health)
	r.Post("/api/chat", h.chat)
	r.Post("/api/chat/clear", h.clear)

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.notFound)

	return r
}
