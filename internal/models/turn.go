// ABOUTME: Turn represents a single message in a user's conversation history
// ABOUTME: Histories are ordered user/assistant sequences with a retention window
package models

import (
	"errors"
	"strings"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation history.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a Turn with validation.
func NewTurn(role Role, content string) (Turn, error) {
	if role != RoleUser && role != RoleAssistant {
		return Turn{}, errors.New("role must be user or assistant")
	}
	if strings.TrimSpace(content) == "" {
		return Turn{}, errors.New("turn content cannot be empty")
	}
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}, nil
}
