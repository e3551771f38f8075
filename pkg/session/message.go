package session

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// TurnID links the user and assistant halves of one Submit call.
	TurnID string `json:"turn_id,omitempty"`
}

// NewMessage creates a Message with a generated UUID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ForTurn tags the message with a turn ID.
func (m *Message) ForTurn(turnID string) *Message {
	m.TurnID = turnID
	return m
}
