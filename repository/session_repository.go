package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlSessionRepository implements SessionRepository for MySQL. A single row
// keyed by model.CurrentSessionKey holds the signed-in session.
type mysqlSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new mysqlSessionRepository.
func NewMySQLSessionRepository(db *sql.DB) SessionRepository {
	return &mysqlSessionRepository{db: db}
}

// SaveSession upserts the session record for the given user.
func (r *mysqlSessionRepository) SaveSession(userID int64) error {
	query := `INSERT INTO sessions (id, user_id, updated_at) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE user_id = VALUES(user_id), updated_at = VALUES(updated_at)`
	if _, err := r.db.Exec(query, model.CurrentSessionKey, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// CurrentSession returns the signed-in user id, or (0, false, nil) when no
// session is persisted.
func (r *mysqlSessionRepository) CurrentSession() (int64, bool, error) {
	var userID int64
	err := r.db.QueryRow("SELECT user_id FROM sessions WHERE id = ?", model.CurrentSessionKey).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read session: %w", err)
	}
	return userID, true, nil
}

// ClearSession removes the session record; clearing an absent session is a
// no-op.
func (r *mysqlSessionRepository) ClearSession() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", model.CurrentSessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
