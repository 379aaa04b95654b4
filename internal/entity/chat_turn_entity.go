package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one completed question/answer exchange. Position is the
// zero-based index inside the session history; replay order is ascending
// Position.
type ChatTurn struct {
	Id            uuid.UUID
	SessionId     string
	Position      int
	Question      string
	Answer        string
	Justification string
	CreatedAt     time.Time
}
