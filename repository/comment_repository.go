package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlCommentRepository implements CommentRepository for MySQL.
type mysqlCommentRepository struct {
	db *sql.DB
}

// NewMySQLCommentRepository creates a new mysqlCommentRepository.
func NewMySQLCommentRepository(db *sql.DB) CommentRepository {
	return &mysqlCommentRepository{db: db}
}

// CreateComment adds a comment to a track.
func (r *mysqlCommentRepository) CreateComment(comment *model.Comment) (int64, error) {
	now := time.Now()
	res, err := r.db.Exec("INSERT INTO comments (user_id, track_id, content, created_at) VALUES (?, ?, ?, ?)",
		comment.UserID, comment.TrackID, comment.Content, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateComment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateComment: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now
	return id, nil
}

// GetCommentsByTrackID retrieves a track's comments, newest first.
func (r *mysqlCommentRepository) GetCommentsByTrackID(trackID int64) ([]*model.Comment, error) {
	rows, err := r.db.Query("SELECT id, user_id, track_id, content, created_at FROM comments WHERE track_id = ? ORDER BY created_at DESC, id DESC", trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for track %d: %w", trackID, err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		comment := &model.Comment{}
		if err := rows.Scan(&comment.ID, &comment.UserID, &comment.TrackID, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment; deleting an absent comment is a no-op.
func (r *mysqlCommentRepository) DeleteComment(id int64) error {
	if _, err := r.db.Exec("DELETE FROM comments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to execute DeleteComment: %w", err)
	}
	return nil
}
