package domain

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the relay
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SamplingParams are the generation settings sent with every completion call.
type SamplingParams struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Completion is the part of a provider response the relay cares about.
type Completion struct {
	Content     string
	TotalTokens int
	Model       string
}
