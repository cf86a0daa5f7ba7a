package model

import "time"

// User represents a registered user of the platform.
type User struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"` // Not exposed in API responses
	DisplayName    string    `json:"displayName" gorm:"size:255;not null"`
	Bio            string    `json:"bio,omitempty" gorm:"type:text"`
	ProfilePicture string    `json:"profilePicture,omitempty" gorm:"size:767"`
	IsAdmin        bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Sanitized returns a copy of the user with the password hash cleared.
// Every user record that leaves the auth service goes through this.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	s := *u
	s.PasswordHash = ""
	return &s
}

// InsertUser is the payload for creating a user.
type InsertUser struct {
	Username       string `json:"username" validate:"required,min=3,max=100"`
	Password       string `json:"password" validate:"required,min=6"`
	Email          string `json:"email" validate:"required,email"`
	DisplayName    string `json:"displayName" validate:"required,max=255"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}
