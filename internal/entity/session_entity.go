package entity

import (
	"strings"
	"time"

	"documind-be/internal/constant"
)

// Session is the aggregate a host interacts with: one document, its cached
// summary, and the ordered chat history. The Id is an opaque string chosen
// by the host, not a UUID.
type Session struct {
	Id            string
	DocumentName  string
	DocumentText  string
	Summary       string
	Title         string
	DocGeneration int64
	Turns         []ChatTurn
	// TurnCount stays valid on list projections, where Turns is not loaded.
	TurnCount int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (s *Session) HasDocument() bool {
	return s != nil && strings.TrimSpace(s.DocumentText) != ""
}

func (s *Session) State() string {
	if !s.HasDocument() {
		return constant.SessionStateIdle
	}
	return constant.SessionStateReady
}
