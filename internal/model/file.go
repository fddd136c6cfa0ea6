package model

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is the relational record of one uploaded audio file. The transcript
// itself lives in the vector store, tagged with ID.
type File struct {
	ID           uuid.UUID `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:256;not null" json:"name"`
	Size         int64     `gorm:"not null" json:"size"`
	Type         string    `gorm:"size:128" json:"type"`
	Format       string    `gorm:"size:16" json:"format"`
	CollectionID uuid.UUID `gorm:"size:36;not null;index" json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FileInfo is the upload metadata persisted for a file.
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

// Format returns the lower-cased extension of the file name without the dot.
func (i FileInfo) Format() string {
	return FormatOf(i.Name)
}

func FormatOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
