package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusArchived  SessionStatus = "archived"
)

// ChatSession is a bounded conversation thread owned by one tenant user.
// NextSequence is the per-session message counter; it is only advanced inside
// the append transaction while the session's append lock is held.
type ChatSession struct {
	Id           uuid.UUID
	TenantId     uuid.UUID
	OwnerUserId  uuid.UUID
	Status       SessionStatus
	Title        string
	Context      map[string]interface{}
	LastActivity time.Time
	MessageCount int
	NextSequence int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (s *ChatSession) IsArchived() bool {
	return s.Status == SessionStatusArchived
}
