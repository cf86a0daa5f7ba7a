// Package importer pulls audio files from a drop folder into the platform:
// uploads the payload to object storage and creates a track for the
// configured user.
package importer

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"EchoWave/logger"
	"EchoWave/model"
	"EchoWave/repository"
	"EchoWave/storage"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
}

// Importer scans and watches a directory for audio files.
type Importer struct {
	dir    string
	userID int64
	tracks repository.TrackRepository

	mu        sync.Mutex
	processed map[string]bool
}

// New creates an Importer over the given directory, importing for the given
// user.
func New(dir string, userID int64, tracks repository.TrackRepository) *Importer {
	return &Importer{
		dir:       dir,
		userID:    userID,
		tracks:    tracks,
		processed: make(map[string]bool),
	}
}

// Scan imports every audio file already present in the directory. It returns
// the number of tracks created; individual file failures are logged and
// skipped.
func (im *Importer) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read import directory: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(im.dir, entry.Name())
		if err := im.importFile(ctx, path); err != nil {
			logger.Warn("Failed to import file", logger.String("path", path), logger.ErrorField(err))
			continue
		}
		imported++
	}
	return imported, nil
}

// Watch imports files as they appear in the directory, until the context is
// canceled.
func (im *Importer) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(im.dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	logger.Info("Watching import directory", logger.String("dir", im.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := im.importFile(ctx, event.Name); err != nil {
				logger.Warn("Failed to import file", logger.String("path", event.Name), logger.ErrorField(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", logger.ErrorField(err))
		}
	}
}

// importFile uploads one audio file and creates its track. Files already
// imported in this process and non-audio files are skipped silently.
func (im *Importer) importFile(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !audioExtensions[ext] {
		return nil
	}

	im.mu.Lock()
	if im.processed[path] {
		im.mu.Unlock()
		return nil
	}
	im.processed[path] = true
	im.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	audioURL, err := storage.UploadAudio(ctx, file, info.Size(), filepath.Base(path), contentType)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(path), ext)
	track := &model.Track{
		UserID:   im.userID,
		Title:    title,
		AudioURL: audioURL,
	}
	if _, err := im.tracks.CreateTrack(track); err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}

	logger.Info("Imported track", logger.String("title", title), logger.Int64("trackId", track.ID))
	return nil
}
