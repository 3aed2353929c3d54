package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// AfterSequence selects messages strictly after a per-session sequence
// number. Used for restartable cursors, which stay stable under concurrent
// appends where offsets would not.
type AfterSequence struct {
	Sequence int64
}

func (s AfterSequence) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sequence > ?", s.Sequence)
}
