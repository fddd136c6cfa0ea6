package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Database struct {
	ID          uuid.UUID    `gorm:"primaryKey;size:36" json:"id"`
	Email       string       `gorm:"size:128;not null;index" json:"email"`
	Name        string       `gorm:"size:128;not null;uniqueIndex" json:"name"`
	CreatedAt   time.Time    `json:"created_at"`
	Collections []Collection `gorm:"foreignKey:DatabaseID;constraint:OnDelete:CASCADE" json:"collections,omitempty"`
}

func (d *Database) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DatabaseCollection is one row of the databases-and-collections listing.
type DatabaseCollection struct {
	Database   Database   `json:"database"`
	Collection Collection `json:"collection"`
}
