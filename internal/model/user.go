package model

import "time"

// User owns databases and is identified only by email.
type User struct {
	Email     string     `gorm:"primaryKey;size:128" json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	Databases []Database `gorm:"foreignKey:Email;references:Email;constraint:OnDelete:CASCADE" json:"databases,omitempty"`
}
