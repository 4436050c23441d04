package model

import (
	"time"

	"gorm.io/datatypes"
)

type SessionDocument struct {
	SessionId   string         `gorm:"type:varchar(128);primaryKey"`
	StartTime   string         `gorm:"type:varchar(32)"`
	LastUpdated string         `gorm:"type:varchar(32)"`
	Submissions datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	Extra       datatypes.JSON `gorm:"type:jsonb"` // unmodelled top-level fields, e.g. from imported files
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (SessionDocument) TableName() string {
	return "session_documents"
}
