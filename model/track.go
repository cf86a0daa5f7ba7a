package model

import "time"

// Track represents an uploaded audio track.
type Track struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64     `json:"userId" gorm:"index;not null"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Description  string    `json:"description,omitempty" gorm:"type:text"`
	AudioURL     string    `json:"audioUrl" gorm:"type:longtext;not null"` // Opaque encoded payload or URI
	CoverArt     string    `json:"coverArt,omitempty" gorm:"size:767"`
	Duration     int64     `json:"duration" gorm:"not null"` // Duration in milliseconds
	WaveformData string    `json:"waveformData" gorm:"type:text;not null"`
	Plays        int64     `json:"plays" gorm:"not null;default:0;index"`
	Genre        string    `json:"genre,omitempty" gorm:"size:100;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}

// InsertTrack is the payload for creating a track.
type InsertTrack struct {
	UserID       int64  `json:"userId" validate:"required,gt=0"`
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description"`
	AudioURL     string `json:"audioUrl" validate:"required"`
	CoverArt     string `json:"coverArt"`
	Duration     int64  `json:"duration" validate:"gte=0"`
	WaveformData string `json:"waveformData" validate:"required"`
	Genre        string `json:"genre"`
}
