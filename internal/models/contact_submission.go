package models

import "time"

// ContactSubmission is a row written for every contact form post.
type ContactSubmission struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Email   string `gorm:"type:varchar(255);not null" json:"email"`
	Message string `gorm:"type:text;not null" json:"message"`
}
