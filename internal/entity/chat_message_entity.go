package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeSystem    MessageType = "system"
	MessageTypeDocument  MessageType = "document"
)

// ChatMessage is an append-only log entry. Sequence is unique per session and
// defines the total order observed by every reader; wall-clock timestamps are
// informational only.
type ChatMessage struct {
	Id            uuid.UUID
	TenantId      uuid.UUID
	ChatSessionId uuid.UUID
	Sequence      int64
	Type          MessageType
	Content       string
	Metadata      map[string]interface{}
	IsProcessed   bool
	CreatedAt     time.Time
}
