package usecase

import (
	"encoding/json"

	"portfolio-relay/internal/domain"
)

// trimHistory keeps the last window entries and then drops anything that is
// not an object with a user/assistant role and non-empty string content.
// Kept entries are projected onto role and content only.
func trimHistory(history []json.RawMessage, window int) []domain.ChatMessage {
	if window < 0 {
		window = 0
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	out := make([]domain.ChatMessage, 0, len(history))
	for _, raw := range history {
		msg, ok := historyEntry(raw)
		if !ok {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func historyEntry(raw json.RawMessage) (domain.ChatMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.ChatMessage{}, false
	}

	var role, content string
	if err := json.Unmarshal(fields["role"], &role); err != nil {
		return domain.ChatMessage{}, false
	}
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return domain.ChatMessage{}, false
	}
	if err := json.Unmarshal(fields["content"], &content); err != nil || content == "" {
		return domain.ChatMessage{}, false
	}
	return domain.ChatMessage{Role: role, Content: content}, true
}

func buildMessages(profile string, history []domain.ChatMessage, message string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: profile})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})
	return messages
}
