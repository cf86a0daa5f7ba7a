package model

import "time"

// Like marks a track as liked by a user. At most one like exists per
// (userId, trackId) pair.
type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"index;uniqueIndex:uq_user_track;not null"`
	TrackID   int64     `json:"trackId" gorm:"index;uniqueIndex:uq_user_track;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// InsertLike is the payload for creating a like.
type InsertLike struct {
	UserID  int64 `json:"userId" validate:"required,gt=0"`
	TrackID int64 `json:"trackId" validate:"required,gt=0"`
}

// Comment is a user comment on a track.
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	TrackID   int64     `json:"trackId" gorm:"index;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// InsertComment is the payload for creating a comment.
type InsertComment struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	TrackID int64  `json:"trackId" validate:"required,gt=0"`
	Content string `json:"content" validate:"required"`
}

// Follow records that one user follows another. At most one follow exists
// per (followerId, followedId) pair.
type Follow struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FollowerID int64     `json:"followerId" gorm:"index;uniqueIndex:uq_follower_followed;not null"`
	FollowedID int64     `json:"followedId" gorm:"index;uniqueIndex:uq_follower_followed;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// InsertFollow is the payload for creating a follow.
type InsertFollow struct {
	FollowerID int64 `json:"followerId" validate:"required,gt=0"`
	FollowedID int64 `json:"followedId" validate:"required,gt=0"`
}
