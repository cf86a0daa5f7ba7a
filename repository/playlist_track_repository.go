package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlPlaylistTrackRepository implements PlaylistTrackRepository for MySQL.
type mysqlPlaylistTrackRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistTrackRepository creates a new mysqlPlaylistTrackRepository.
func NewMySQLPlaylistTrackRepository(db *sql.DB) PlaylistTrackRepository {
	return &mysqlPlaylistTrackRepository{db: db}
}

func (r *mysqlPlaylistTrackRepository) getEntry(playlistID, trackID int64) (*model.PlaylistTrack, error) {
	pt := &model.PlaylistTrack{}
	err := r.db.QueryRow("SELECT id, playlist_id, track_id, position, created_at FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?",
		playlistID, trackID).Scan(&pt.ID, &pt.PlaylistID, &pt.TrackID, &pt.Position, &pt.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist track row: %w", err)
	}
	return pt, nil
}

// AddTrackToPlaylist persists a membership entry; adding an existing
// (playlistId, trackId) pair returns the stored record unmodified.
func (r *mysqlPlaylistTrackRepository) AddTrackToPlaylist(pt *model.PlaylistTrack) (*model.PlaylistTrack, error) {
	if existing, err := r.getEntry(pt.PlaylistID, pt.TrackID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	now := time.Now()
	res, err := r.db.Exec("INSERT INTO playlist_tracks (playlist_id, track_id, position, created_at) VALUES (?, ?, ?, ?)",
		pt.PlaylistID, pt.TrackID, pt.Position, now)
	if err != nil {
		if isDuplicateEntry(err) {
			return r.getEntry(pt.PlaylistID, pt.TrackID)
		}
		return nil, fmt.Errorf("failed to execute AddTrackToPlaylist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for AddTrackToPlaylist: %w", err)
	}
	return &model.PlaylistTrack{ID: id, PlaylistID: pt.PlaylistID, TrackID: pt.TrackID, Position: pt.Position, CreatedAt: now}, nil
}

// RemoveTrackFromPlaylist removes a membership entry; removing an absent
// entry is a no-op.
func (r *mysqlPlaylistTrackRepository) RemoveTrackFromPlaylist(playlistID, trackID int64) error {
	if _, err := r.db.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID); err != nil {
		return fmt.Errorf("failed to execute RemoveTrackFromPlaylist: %w", err)
	}
	return nil
}

// GetPlaylistTracks retrieves a playlist's entries ordered by position
// ascending.
func (r *mysqlPlaylistTrackRepository) GetPlaylistTracks(playlistID int64) ([]*model.PlaylistTrack, error) {
	rows, err := r.db.Query("SELECT id, playlist_id, track_id, position, created_at FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC, id ASC", playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	entries := make([]*model.PlaylistTrack, 0)
	for rows.Next() {
		pt := &model.PlaylistTrack{}
		if err := rows.Scan(&pt.ID, &pt.PlaylistID, &pt.TrackID, &pt.Position, &pt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track row: %w", err)
		}
		entries = append(entries, pt)
	}
	return entries, rows.Err()
}

// UpdatePlaylistTrackPosition moves an entry to a new position within its
// playlist.
func (r *mysqlPlaylistTrackRepository) UpdatePlaylistTrackPosition(playlistID, trackID int64, position int) error {
	res, err := r.db.Exec("UPDATE playlist_tracks SET position = ? WHERE playlist_id = ? AND track_id = ?",
		position, playlistID, trackID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdatePlaylistTrackPosition: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		if existing, err := r.getEntry(playlistID, trackID); err != nil {
			return err
		} else if existing == nil {
			return ErrNotFound
		}
	}
	return nil
}
