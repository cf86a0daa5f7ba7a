package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the MySQL error number for unique-key violations.
const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// NewMySQLAuthStore wires the MySQL-backed identity repositories.
func NewMySQLAuthStore(db *sql.DB) *AuthStore {
	return &AuthStore{
		Users:    NewMySQLUserRepository(db),
		Sessions: NewMySQLSessionRepository(db),
	}
}

// NewMySQLContentStore wires the MySQL-backed content repositories.
func NewMySQLContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{
		Tracks:         NewMySQLTrackRepository(db),
		Likes:          NewMySQLLikeRepository(db),
		Comments:       NewMySQLCommentRepository(db),
		Follows:        NewMySQLFollowRepository(db),
		Playlists:      NewMySQLPlaylistRepository(db),
		PlaylistTracks: NewMySQLPlaylistTrackRepository(db),
		Stats:          NewMySQLStatsRepository(db),
	}
}
