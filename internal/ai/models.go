package ai

import "errors"

// Roles accepted in a conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty model response")

// Message is one turn of a conversation as sent to a language model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidRole reports whether role can appear in a conversation history.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
