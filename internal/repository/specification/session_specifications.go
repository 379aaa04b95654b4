package specification

import "gorm.io/gorm"

// BySessionID filters chat turns belonging to one session.
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}
