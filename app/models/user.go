package models

import "gorm.io/gorm"

// User is an account holder. Rows are created at registration and flipped
// inactive by administrative action; they are never deleted.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // bcrypt, never serialised
	FullName     string `gorm:"size:255" json:"full_name"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"is_admin"`
}
