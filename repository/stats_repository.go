package repository

import (
	"database/sql"
	"fmt"

	"EchoWave/model"
)

// mysqlStatsRepository implements StatsRepository for MySQL.
type mysqlStatsRepository struct {
	db *sql.DB
}

// NewMySQLStatsRepository creates a new mysqlStatsRepository.
func NewMySQLStatsRepository(db *sql.DB) StatsRepository {
	return &mysqlStatsRepository{db: db}
}

// GetPopularUsers returns users ranked by descending follower count.
func (r *mysqlStatsRepository) GetPopularUsers(limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}

	query := `SELECT u.id, u.username, u.email, u.password_hash, u.display_name, u.bio, u.profile_picture, u.is_admin, u.created_at
	           FROM users u
	           LEFT JOIN follows f ON f.followed_id = u.id
	           GROUP BY u.id
	           ORDER BY COUNT(f.id) DESC, u.id ASC
	           LIMIT ?`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan popular user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
