package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	ChatMessageTypeText     = "text"
	ChatMessageTypeImage    = "image"
	ChatMessageTypeProducts = "products"
)

// ChatMessage is one turn of a conversation. Messages are append-only;
// ExtraData carries per-message payloads such as recommended products
// or error details.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	MessageType   string
	ExtraData     map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
