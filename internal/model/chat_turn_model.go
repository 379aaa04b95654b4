package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn rows are hard-deleted when a document is replaced or a session is
// reset; the unique (session_id, position) index backs the optimistic append
// and would not survive soft-deleted tombstones.
type ChatTurn struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId     string    `gorm:"type:varchar(255);not null;index;uniqueIndex:idx_chat_turns_session_position"`
	Position      int       `gorm:"not null;uniqueIndex:idx_chat_turns_session_position"`
	Question      string    `gorm:"type:text;not null"`
	Answer        string    `gorm:"type:text;not null"`
	Justification string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
