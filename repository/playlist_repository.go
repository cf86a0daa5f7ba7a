package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

const playlistColumns = "id, user_id, title, description, cover_art, is_public, created_at"

func scanPlaylist(row interface{ Scan(...interface{}) error }) (*model.Playlist, error) {
	playlist := &model.Playlist{}
	var description, coverArt sql.NullString
	err := row.Scan(&playlist.ID, &playlist.UserID, &playlist.Title, &description, &coverArt, &playlist.IsPublic, &playlist.CreatedAt)
	if err != nil {
		return nil, err
	}
	playlist.Description = description.String
	playlist.CoverArt = coverArt.String
	return playlist, nil
}

// CreatePlaylist adds a new playlist.
func (r *mysqlPlaylistRepository) CreatePlaylist(playlist *model.Playlist) (int64, error) {
	now := time.Now()
	res, err := r.db.Exec("INSERT INTO playlists (user_id, title, description, cover_art, is_public, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		playlist.UserID, playlist.Title, nullString(playlist.Description), nullString(playlist.CoverArt), playlist.IsPublic, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreatePlaylist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreatePlaylist: %w", err)
	}
	playlist.ID = id
	playlist.CreatedAt = now
	return id, nil
}

// GetPlaylistByID retrieves a playlist by its ID.
func (r *mysqlPlaylistRepository) GetPlaylistByID(id int64) (*model.Playlist, error) {
	row := r.db.QueryRow("SELECT "+playlistColumns+" FROM playlists WHERE id = ?", id)
	playlist, err := scanPlaylist(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Playlist not found
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}
	return playlist, nil
}

// GetPlaylistsByUserID retrieves all playlists owned by a user.
func (r *mysqlPlaylistRepository) GetPlaylistsByUserID(userID int64) ([]*model.Playlist, error) {
	rows, err := r.db.Query("SELECT "+playlistColumns+" FROM playlists WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

// UpdatePlaylist replaces the stored record at the playlist's id.
func (r *mysqlPlaylistRepository) UpdatePlaylist(playlist *model.Playlist) error {
	res, err := r.db.Exec("UPDATE playlists SET title = ?, description = ?, cover_art = ?, is_public = ? WHERE id = ?",
		playlist.Title, nullString(playlist.Description), nullString(playlist.CoverArt), playlist.IsPublic, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdatePlaylist: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		if existing, err := r.GetPlaylistByID(playlist.ID); err != nil {
			return err
		} else if existing == nil {
			return ErrNotFound
		}
	}
	return nil
}

// DeletePlaylist removes the playlist and cascades to its track entries.
func (r *mysqlPlaylistRepository) DeletePlaylist(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for DeletePlaylist: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete playlist tracks for playlist %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM playlists WHERE id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}
	return tx.Commit()
}
