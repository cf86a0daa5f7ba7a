package model

import "time"

// CurrentSessionKey is the fixed key of the single signed-in session record.
const CurrentSessionKey = "current"

// Session points at the currently signed-in user. The record is a plain
// reference with no expiry or signature; acceptable for a local deployment
// only.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	UserID    int64     `json:"userId" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}
