package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
)

const (
	msgInvalidBody    = "Invalid request body"
	msgMessageMissing = "Valid message is required"
	msgHistoryType    = "Conversation history must be an array"
)

var jsonNull = []byte("null")

// ChatInput is a validated chat request. History entries stay raw so that
// malformed ones can be dropped during trimming instead of failing the call.
type ChatInput struct {
	Message string
	History []json.RawMessage
}

// Validate decodes a raw JSON request body into a ChatInput.
func (s *ChatService) Validate(body []byte) (ChatInput, error) {
	if !json.Valid(body) {
		return ChatInput{}, invalidInput("malformed_body", msgInvalidBody)
	}

	// Keys are matched exactly, without case folding.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Valid JSON that is not an object carries no message.
		return ChatInput{}, invalidInput("empty_message", msgMessageMissing)
	}
	rawMessage := fields["message"]
	rawHistory := fields["conversationHistory"]

	var message string
	if len(rawMessage) == 0 || bytes.Equal(rawMessage, jsonNull) {
		return ChatInput{}, invalidInput("empty_message", msgMessageMissing)
	}
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		return ChatInput{}, invalidInput("message_not_text", msgMessageMissing)
	}
	if err := s.checkMessage(message); err != nil {
		return ChatInput{}, err
	}

	var history []json.RawMessage
	if len(rawHistory) > 0 {
		if bytes.Equal(rawHistory, jsonNull) {
			return ChatInput{}, invalidInput("history_not_array", msgHistoryType)
		}
		if err := json.Unmarshal(rawHistory, &history); err != nil {
			return ChatInput{}, invalidInput("history_not_array", msgHistoryType)
		}
	}

	return ChatInput{Message: message, History: history}, nil
}

func (s *ChatService) checkMessage(message string) *Error {
	if strings.TrimSpace(message) == "" {
		return invalidInput("empty_message", msgMessageMissing)
	}
	if messageLength(message) > s.maxMessageLen {
		return invalidInput("message_too_long",
			fmt.Sprintf("Message is too long. Please keep it under %d characters.", s.maxMessageLen))
	}
	return nil
}

// messageLength counts UTF-16 code units, so characters outside the Basic
// Multilingual Plane count twice.
func messageLength(message string) int {
	return len(utf16.Encode([]rune(message)))
}
