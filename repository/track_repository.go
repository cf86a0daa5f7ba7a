package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

const trackColumns = "id, user_id, title, description, audio_url, cover_art, duration, waveform_data, plays, genre, created_at"

func scanTrack(row interface{ Scan(...interface{}) error }) (*model.Track, error) {
	track := &model.Track{}
	var description, coverArt, genre sql.NullString
	err := row.Scan(&track.ID, &track.UserID, &track.Title, &description, &track.AudioURL,
		&coverArt, &track.Duration, &track.WaveformData, &track.Plays, &genre, &track.CreatedAt)
	if err != nil {
		return nil, err
	}
	track.Description = description.String
	track.CoverArt = coverArt.String
	track.Genre = genre.String
	return track, nil
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (user_id, title, description, audio_url, cover_art, duration, waveform_data, plays, genre, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(track.UserID, track.Title, nullString(track.Description), track.AudioURL,
		nullString(track.CoverArt), track.Duration, track.WaveformData, nullString(track.Genre), now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	track.ID = id
	track.Plays = 0
	track.CreatedAt = now
	return id, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	row := r.db.QueryRow("SELECT "+trackColumns+" FROM tracks WHERE id = ?", id)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetTracksByUserID retrieves all tracks uploaded by a user.
func (r *mysqlTrackRepository) GetTracksByUserID(userID int64) ([]*model.Track, error) {
	return r.queryTracks("SELECT "+trackColumns+" FROM tracks WHERE user_id = ? ORDER BY id", userID)
}

// GetTracksByGenre retrieves all tracks tagged with a genre.
func (r *mysqlTrackRepository) GetTracksByGenre(genre string) ([]*model.Track, error) {
	return r.queryTracks("SELECT "+trackColumns+" FROM tracks WHERE genre = ? ORDER BY id", genre)
}

// GetAllTracks retrieves all tracks.
func (r *mysqlTrackRepository) GetAllTracks() ([]*model.Track, error) {
	return r.queryTracks("SELECT " + trackColumns + " FROM tracks ORDER BY id")
}

func (r *mysqlTrackRepository) queryTracks(query string, args ...interface{}) ([]*model.Track, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// UpdateTrack replaces the stored record at the track's id.
func (r *mysqlTrackRepository) UpdateTrack(track *model.Track) error {
	query := `UPDATE tracks SET title = ?, description = ?, audio_url = ?, cover_art = ?, duration = ?, waveform_data = ?, plays = ?, genre = ? WHERE id = ?`
	res, err := r.db.Exec(query, track.Title, nullString(track.Description), track.AudioURL,
		nullString(track.CoverArt), track.Duration, track.WaveformData, track.Plays, nullString(track.Genre), track.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateTrack: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		if existing, err := r.GetTrackByID(track.ID); err != nil {
			return err
		} else if existing == nil {
			return ErrNotFound
		}
	}
	return nil
}

// DeleteTrack removes a track; deleting an absent track is a no-op.
func (r *mysqlTrackRepository) DeleteTrack(id int64) error {
	if _, err := r.db.Exec("DELETE FROM tracks WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to execute DeleteTrack: %w", err)
	}
	return nil
}

// IncrementPlays bumps the play counter atomically. This strengthens the
// original read-then-write counter: concurrent increments no longer lose
// updates when backed by MySQL.
func (r *mysqlTrackRepository) IncrementPlays(id int64) (*model.Track, error) {
	res, err := r.db.Exec("UPDATE tracks SET plays = plays + 1 WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to increment plays for track %d: %w", id, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, nil // Track not found
	}
	return r.GetTrackByID(id)
}

// GetTrendingTracks returns tracks by descending play count.
func (r *mysqlTrackRepository) GetTrendingTracks(limit int) ([]*model.Track, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	return r.queryTracks("SELECT "+trackColumns+" FROM tracks ORDER BY plays DESC, id ASC LIMIT ?", limit)
}

// GetLatestTracks returns tracks by descending creation time.
func (r *mysqlTrackRepository) GetLatestTracks(limit int) ([]*model.Track, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	return r.queryTracks("SELECT "+trackColumns+" FROM tracks ORDER BY created_at DESC, id DESC LIMIT ?", limit)
}
