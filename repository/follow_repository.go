package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlFollowRepository implements FollowRepository for MySQL.
type mysqlFollowRepository struct {
	db *sql.DB
}

// NewMySQLFollowRepository creates a new mysqlFollowRepository.
func NewMySQLFollowRepository(db *sql.DB) FollowRepository {
	return &mysqlFollowRepository{db: db}
}

func (r *mysqlFollowRepository) getFollow(followerID, followedID int64) (*model.Follow, error) {
	follow := &model.Follow{}
	err := r.db.QueryRow("SELECT id, follower_id, followed_id, created_at FROM follows WHERE follower_id = ? AND followed_id = ?",
		followerID, followedID).Scan(&follow.ID, &follow.FollowerID, &follow.FollowedID, &follow.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan follow row: %w", err)
	}
	return follow, nil
}

// CreateFollow persists a follow; adding an existing pair returns the stored
// record unmodified.
func (r *mysqlFollowRepository) CreateFollow(follow *model.Follow) (*model.Follow, error) {
	if existing, err := r.getFollow(follow.FollowerID, follow.FollowedID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	now := time.Now()
	res, err := r.db.Exec("INSERT INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, ?)",
		follow.FollowerID, follow.FollowedID, now)
	if err != nil {
		if isDuplicateEntry(err) {
			return r.getFollow(follow.FollowerID, follow.FollowedID)
		}
		return nil, fmt.Errorf("failed to execute CreateFollow: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for CreateFollow: %w", err)
	}
	return &model.Follow{ID: id, FollowerID: follow.FollowerID, FollowedID: follow.FollowedID, CreatedAt: now}, nil
}

// DeleteFollow removes a follow; deleting an absent follow is a no-op.
func (r *mysqlFollowRepository) DeleteFollow(followerID, followedID int64) error {
	if _, err := r.db.Exec("DELETE FROM follows WHERE follower_id = ? AND followed_id = ?", followerID, followedID); err != nil {
		return fmt.Errorf("failed to execute DeleteFollow: %w", err)
	}
	return nil
}

// GetFollowsByFollowerID retrieves everyone a user follows.
func (r *mysqlFollowRepository) GetFollowsByFollowerID(followerID int64) ([]*model.Follow, error) {
	return r.queryFollows("SELECT id, follower_id, followed_id, created_at FROM follows WHERE follower_id = ? ORDER BY id", followerID)
}

// GetFollowsByFollowedID retrieves a user's followers.
func (r *mysqlFollowRepository) GetFollowsByFollowedID(followedID int64) ([]*model.Follow, error) {
	return r.queryFollows("SELECT id, follower_id, followed_id, created_at FROM follows WHERE followed_id = ? ORDER BY id", followedID)
}

func (r *mysqlFollowRepository) queryFollows(query string, args ...interface{}) ([]*model.Follow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query follows: %w", err)
	}
	defer rows.Close()

	follows := make([]*model.Follow, 0)
	for rows.Next() {
		follow := &model.Follow{}
		if err := rows.Scan(&follow.ID, &follow.FollowerID, &follow.FollowedID, &follow.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow row: %w", err)
		}
		follows = append(follows, follow)
	}
	return follows, rows.Err()
}

// IsFollowing reports whether a follow exists for the pair.
func (r *mysqlFollowRepository) IsFollowing(followerID, followedID int64) (bool, error) {
	follow, err := r.getFollow(followerID, followedID)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}
