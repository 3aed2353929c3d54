package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSessionRequest struct {
	ChatSessionId *uuid.UUID             `json:"chat_session_id"`
	Title         string                 `json:"title"`
	Context       map[string]interface{} `json:"context"`
}

type SessionResponse struct {
	Id           uuid.UUID  `json:"id"`
	Status       string     `json:"status"`
	Title        string     `json:"title"`
	MessageCount int        `json:"message_count"`
	LastActivity time.Time  `json:"last_activity"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type AppendMessageRequest struct {
	ChatSessionId uuid.UUID              `json:"chat_session_id" validate:"required"`
	Type          string                 `json:"type" validate:"required,oneof=user assistant system document"`
	Content       string                 `json:"content" validate:"required"`
	Metadata      map[string]interface{} `json:"metadata"`
}

type ChatMessageResponse struct {
	Id          uuid.UUID              `json:"id"`
	Sequence    int64                  `json:"sequence"`
	Type        string                 `json:"type"`
	Content     string                 `json:"content"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	IsProcessed bool                   `json:"is_processed"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ListMessagesRequest pages by the last sequence the caller has already
// seen, not by offset; new appends never shift the window.
type ListMessagesRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	AfterSequence int64     `json:"after_sequence"`
	Limit         int       `json:"limit"`
}

type ListMessagesResponse struct {
	Messages   []*ChatMessageResponse `json:"messages"`
	NextCursor int64                  `json:"next_cursor"`
	HasMore    bool                   `json:"has_more"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Message       string    `json:"message" validate:"required"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID            `json:"chat_session_id"`
	UserMessage      *ChatMessageResponse `json:"user_message"`
	AssistantMessage *ChatMessageResponse `json:"assistant_message,omitempty"`
	SystemMessage    *ChatMessageResponse `json:"system_message,omitempty"`
}
