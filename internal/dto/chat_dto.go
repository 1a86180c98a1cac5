package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	// ChatSessionId is optional; omitting it starts a new session.
	ChatSessionId *uuid.UUID        `json:"chat_session_id"`
	Message       string            `json:"message" validate:"required"`
	MessageType   string            `json:"message_type" validate:"omitempty,oneof=text image"`
	Metadata      *SendChatMetadata `json:"metadata"`
}

type SendChatMetadata struct {
	// ImageData carries the base64 payload of an image message.
	ImageData string `json:"image_data"`
}

type SendChatResponseChat struct {
	Id          uuid.UUID              `json:"id"`
	Role        string                 `json:"role"`
	Content     string                 `json:"content"`
	MessageType string                 `json:"message_type"`
	ExtraData   map[string]interface{} `json:"extra_data,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID             `json:"chat_session_id"`
	ChatSessionTitle string                `json:"title"`
	Sent             *SendChatResponseChat `json:"sent"`
	Reply            *SendChatResponseChat `json:"reply"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id          uuid.UUID              `json:"id"`
	Role        string                 `json:"role"`
	Content     string                 `json:"content"`
	MessageType string                 `json:"message_type"`
	ExtraData   map[string]interface{} `json:"extra_data,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	// Hard purges the session and its messages instead of closing it.
	Hard bool `json:"hard"`
}

type DeleteSessionResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Hard          bool      `json:"hard"`
}
