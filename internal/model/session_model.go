package model

import (
	"time"
)

type Session struct {
	Id            string    `gorm:"type:varchar(255);primaryKey"` // Host-chosen opaque ID
	DocumentName  string    `gorm:"type:text"`
	DocumentText  string    `gorm:"type:text"`
	Summary       string    `gorm:"type:text"`
	Title         string    `gorm:"type:text"`
	DocGeneration int64     `gorm:"not null;default:0"`
	TurnCount     int       `gorm:"not null;default:0"` // Guarded by the append CAS
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
