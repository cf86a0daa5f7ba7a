package model

import "time"

// Playlist is a user-owned, ordered collection of tracks.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"userId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CoverArt    string    `json:"coverArt,omitempty" gorm:"size:767"`
	IsPublic    bool      `json:"isPublic" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InsertPlaylist is the payload for creating a playlist.
type InsertPlaylist struct {
	UserID      int64  `json:"userId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	CoverArt    string `json:"coverArt"`
	IsPublic    *bool  `json:"isPublic"` // Defaults to true when omitted
}

// PlaylistTrack is a track's membership in a playlist. Position defines
// ordering within the playlist; at most one entry exists per
// (playlistId, trackId) pair.
type PlaylistTrack struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"playlistId" gorm:"index;uniqueIndex:uq_playlist_track;not null"`
	TrackID    int64     `json:"trackId" gorm:"index;uniqueIndex:uq_playlist_track;not null"`
	Position   int       `json:"position" gorm:"index;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// InsertPlaylistTrack is the payload for adding a track to a playlist.
type InsertPlaylistTrack struct {
	PlaylistID int64 `json:"playlistId" validate:"required,gt=0"`
	TrackID    int64 `json:"trackId" validate:"required,gt=0"`
	Position   int   `json:"position" validate:"gte=0"`
}
