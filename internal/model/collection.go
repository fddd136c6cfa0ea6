package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Collection struct {
	ID         uuid.UUID `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:128;not null;uniqueIndex" json:"name"`
	DatabaseID uuid.UUID `gorm:"size:36;not null;index" json:"database_id"`
	CreatedAt  time.Time `json:"created_at"`
	Files      []File    `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
}

func (c *Collection) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
