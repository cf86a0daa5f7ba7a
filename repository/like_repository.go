package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlLikeRepository implements LikeRepository for MySQL.
type mysqlLikeRepository struct {
	db *sql.DB
}

// NewMySQLLikeRepository creates a new mysqlLikeRepository.
func NewMySQLLikeRepository(db *sql.DB) LikeRepository {
	return &mysqlLikeRepository{db: db}
}

func (r *mysqlLikeRepository) getLike(userID, trackID int64) (*model.Like, error) {
	like := &model.Like{}
	err := r.db.QueryRow("SELECT id, user_id, track_id, created_at FROM likes WHERE user_id = ? AND track_id = ?",
		userID, trackID).Scan(&like.ID, &like.UserID, &like.TrackID, &like.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan like row: %w", err)
	}
	return like, nil
}

// CreateLike persists a like; adding an existing (userId, trackId) pair
// returns the stored record unmodified.
func (r *mysqlLikeRepository) CreateLike(like *model.Like) (*model.Like, error) {
	if existing, err := r.getLike(like.UserID, like.TrackID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	now := time.Now()
	res, err := r.db.Exec("INSERT INTO likes (user_id, track_id, created_at) VALUES (?, ?, ?)",
		like.UserID, like.TrackID, now)
	if err != nil {
		// Lost a race against a concurrent identical insert; the unique
		// composite index guarantees the existing row is the one we want.
		if isDuplicateEntry(err) {
			return r.getLike(like.UserID, like.TrackID)
		}
		return nil, fmt.Errorf("failed to execute CreateLike: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for CreateLike: %w", err)
	}
	return &model.Like{ID: id, UserID: like.UserID, TrackID: like.TrackID, CreatedAt: now}, nil
}

// DeleteLike removes a like; deleting an absent like is a no-op.
func (r *mysqlLikeRepository) DeleteLike(userID, trackID int64) error {
	if _, err := r.db.Exec("DELETE FROM likes WHERE user_id = ? AND track_id = ?", userID, trackID); err != nil {
		return fmt.Errorf("failed to execute DeleteLike: %w", err)
	}
	return nil
}

// GetLikesByTrackID retrieves all likes on a track.
func (r *mysqlLikeRepository) GetLikesByTrackID(trackID int64) ([]*model.Like, error) {
	return r.queryLikes("SELECT id, user_id, track_id, created_at FROM likes WHERE track_id = ? ORDER BY id", trackID)
}

// GetLikesByUserID retrieves all likes placed by a user.
func (r *mysqlLikeRepository) GetLikesByUserID(userID int64) ([]*model.Like, error) {
	return r.queryLikes("SELECT id, user_id, track_id, created_at FROM likes WHERE user_id = ? ORDER BY id", userID)
}

func (r *mysqlLikeRepository) queryLikes(query string, args ...interface{}) ([]*model.Like, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	likes := make([]*model.Like, 0)
	for rows.Next() {
		like := &model.Like{}
		if err := rows.Scan(&like.ID, &like.UserID, &like.TrackID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like row: %w", err)
		}
		likes = append(likes, like)
	}
	return likes, rows.Err()
}

// IsTrackLiked reports whether a like exists for the pair.
func (r *mysqlLikeRepository) IsTrackLiked(userID, trackID int64) (bool, error) {
	like, err := r.getLike(userID, trackID)
	if err != nil {
		return false, err
	}
	return like != nil, nil
}
