package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the primary key and timestamps shared by every table.
// IDs are UUID strings so they stay portable across postgres and sqlite.
type Base struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
