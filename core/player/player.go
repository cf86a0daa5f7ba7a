package player

import (
	"math/rand"
	"sync"

	"EchoWave/core/media"
	"EchoWave/logger"
	"EchoWave/model"
	"EchoWave/repository"
)

// DefaultVolume is the initial output volume of a new Player.
const DefaultVolume = 0.7

// Player is the playback engine. It drives a single media element, keeps the
// play queue and history, and records plays through the track repository.
// All methods are safe for concurrent use.
type Player struct {
	mu sync.Mutex

	element media.Element
	tracks  repository.TrackRepository

	current   *model.Track
	isPlaying bool
	volume    float64
	shuffle   bool
	repeat    bool

	queue   []*model.Track
	history []*model.Track

	// onQueueChange, when set, receives a snapshot after every queue
	// mutation. Used to persist the queue to the cache.
	onQueueChange func(queue []*model.Track)

	randIntn func(n int) int
}

// New creates a Player driving the given element. The element's ended and
// error callbacks are taken over by the engine.
func New(element media.Element, tracks repository.TrackRepository) *Player {
	p := &Player{
		element:  element,
		tracks:   tracks,
		volume:   DefaultVolume,
		randIntn: rand.Intn,
	}
	element.OnEnded(p.handleEnded)
	element.OnError(p.handleError)
	element.SetVolume(p.volume)
	return p
}

// SetQueueListener registers a callback invoked with a queue snapshot after
// every queue mutation.
func (p *Player) SetQueueListener(fn func(queue []*model.Track)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onQueueChange = fn
}

// PlayTrack loads and starts the given track, replacing whatever was
// playing. The track is pushed to the front of the history (dropping any
// older entry for the same track) and seeds the queue when it is empty. The
// play count is incremented in the background; a failure there is logged,
// never surfaced.
func (p *Player) PlayTrack(track *model.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playLocked(track)
}

func (p *Player) playLocked(track *model.Track) error {
	if err := p.element.Load(track.AudioURL); err != nil {
		p.isPlaying = false
		logger.Error("Failed to load track", logger.Int64("trackId", track.ID), logger.ErrorField(err))
		return err
	}
	if err := p.element.Play(); err != nil {
		p.isPlaying = false
		logger.Error("Failed to start playback", logger.Int64("trackId", track.ID), logger.ErrorField(err))
		return err
	}

	p.current = track
	p.isPlaying = true
	p.pushHistory(track)
	if len(p.queue) == 0 {
		p.queue = append(p.queue, track)
		p.notifyQueueLocked()
	}

	go func(id int64) {
		if _, err := p.tracks.IncrementPlays(id); err != nil {
			logger.Warn("Failed to increment play count", logger.Int64("trackId", id), logger.ErrorField(err))
		}
	}(track.ID)

	return nil
}

// pushHistory puts the track at the front of the history, removing any older
// entry with the same ID.
func (p *Player) pushHistory(track *model.Track) {
	history := make([]*model.Track, 0, len(p.history)+1)
	history = append(history, track)
	for _, t := range p.history {
		if t.ID != track.ID {
			history = append(history, t)
		}
	}
	p.history = history
}

// TogglePlay pauses a playing track or resumes a paused one. It is a no-op
// without a current track.
func (p *Player) TogglePlay() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	if p.isPlaying {
		p.element.Pause()
		p.isPlaying = false
		return nil
	}
	if err := p.element.Play(); err != nil {
		p.isPlaying = false
		logger.Error("Failed to resume playback", logger.ErrorField(err))
		return err
	}
	p.isPlaying = true
	return nil
}

// Pause suspends playback if a track is playing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isPlaying {
		p.element.Pause()
		p.isPlaying = false
	}
}

// NextTrack advances playback. With shuffle on it picks a uniformly random
// queue entry (possibly the current one). Otherwise it advances linearly and
// wraps to the start only when repeat is on; at the end of the queue with
// repeat off the state is left unchanged.
func (p *Player) NextTrack() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextLocked()
}

func (p *Player) nextLocked() error {
	if p.current == nil || len(p.queue) == 0 {
		return nil
	}

	var nextIndex int
	if p.shuffle {
		nextIndex = p.randIntn(len(p.queue))
	} else {
		currentIndex := -1
		for i, t := range p.queue {
			if t.ID == p.current.ID {
				currentIndex = i
				break
			}
		}
		if currentIndex == -1 || currentIndex == len(p.queue)-1 {
			if !p.repeat {
				return nil
			}
			nextIndex = 0
		} else {
			nextIndex = currentIndex + 1
		}
	}

	return p.playLocked(p.queue[nextIndex])
}

// PreviousTrack replays the previously played track. With fewer than two
// history entries the state is left unchanged.
func (p *Player) PreviousTrack() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || len(p.history) < 2 {
		return nil
	}
	return p.playLocked(p.history[1])
}

// SeekTo moves the playback position, in seconds.
func (p *Player) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.element.Seek(seconds)
}

// SetVolume sets the output volume, clamped to [0,1].
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	p.volume = volume
	p.element.SetVolume(volume)
}

// ToggleShuffle flips shuffle mode. It takes effect on the next track change.
func (p *Player) ToggleShuffle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shuffle = !p.shuffle
	return p.shuffle
}

// ToggleRepeat flips repeat mode. It takes effect on the next track change
// or natural end.
func (p *Player) ToggleRepeat() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = !p.repeat
	return p.repeat
}

// AddToQueue appends the track to the queue. Duplicates are allowed.
func (p *Player) AddToQueue(track *model.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, track)
	p.notifyQueueLocked()
}

// RemoveFromQueue drops every queue entry with the given track ID.
func (p *Player) RemoveFromQueue(trackID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	queue := p.queue[:0]
	for _, t := range p.queue {
		if t.ID != trackID {
			queue = append(queue, t)
		}
	}
	p.queue = queue
	p.notifyQueueLocked()
}

// ClearQueue empties the queue. The current track keeps playing.
func (p *Player) ClearQueue() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
	p.notifyQueueLocked()
}

// CurrentTrack returns the track loaded in the element, or nil.
func (p *Player) CurrentTrack() *model.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// IsPlaying reports whether playback is running.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isPlaying
}

// Volume returns the engine's volume setting.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Shuffle reports whether shuffle mode is on.
func (p *Player) Shuffle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shuffle
}

// Repeat reports whether repeat mode is on.
func (p *Player) Repeat() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repeat
}

// Queue returns a snapshot of the queue in order.
func (p *Player) Queue() []*model.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queueSnapshotLocked()
}

// CurrentTime reports the playback position in seconds.
func (p *Player) CurrentTime() float64 {
	return p.element.CurrentTime()
}

// Duration reports the loaded source duration in seconds.
func (p *Player) Duration() float64 {
	return p.element.Duration()
}

// handleEnded runs when the element finishes a source: repeat restarts the
// same track from zero, otherwise the queue advances.
func (p *Player) handleEnded() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.repeat && p.current != nil {
		p.element.Seek(0)
		if err := p.element.Play(); err != nil {
			p.isPlaying = false
			logger.Error("Failed to restart track", logger.ErrorField(err))
		}
		return
	}
	if err := p.nextLocked(); err != nil {
		logger.Error("Failed to advance to next track", logger.ErrorField(err))
	}
}

// handleError runs on an asynchronous element failure. Playback stops; no
// retry.
func (p *Player) handleError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.isPlaying = false
	logger.Error("Playback error", logger.ErrorField(err))
}

func (p *Player) queueSnapshotLocked() []*model.Track {
	snapshot := make([]*model.Track, len(p.queue))
	copy(snapshot, p.queue)
	return snapshot
}

func (p *Player) notifyQueueLocked() {
	if p.onQueueChange != nil {
		p.onQueueChange(p.queueSnapshotLocked())
	}
}
