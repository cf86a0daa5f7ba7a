package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoWave/model"
	"EchoWave/repository"
)

// fakeElement records calls and lets tests fire the ended/error callbacks.
type fakeElement struct {
	mu       sync.Mutex
	loaded   string
	playing  bool
	position float64
	volume   float64
	loadErr  error
	playErr  error
	onEnded  func()
	onError  func(err error)
}

func (e *fakeElement) Load(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadErr != nil {
		return e.loadErr
	}
	e.loaded = url
	e.position = 0
	return nil
}

func (e *fakeElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playErr != nil {
		return e.playErr
	}
	e.playing = true
	return nil
}

func (e *fakeElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

func (e *fakeElement) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = seconds
}

func (e *fakeElement) SetVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = volume
}

func (e *fakeElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *fakeElement) Duration() float64 { return 0 }

func (e *fakeElement) OnEnded(fn func()) { e.onEnded = fn }

func (e *fakeElement) OnError(fn func(err error)) { e.onError = fn }

func (e *fakeElement) Close() error { return nil }

func (e *fakeElement) loadedURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func newTestPlayer(t *testing.T) (*Player, *fakeElement, *repository.ContentStore) {
	t.Helper()
	authStore := repository.NewMemoryAuthStore()
	content := repository.NewMemoryContentStore(authStore.Users)
	element := &fakeElement{}
	return New(element, content.Tracks), element, content
}

func createTrack(t *testing.T, content *repository.ContentStore, title string) *model.Track {
	t.Helper()
	track := &model.Track{UserID: 1, Title: title, AudioURL: "url://" + title}
	_, err := content.Tracks.CreateTrack(track)
	require.NoError(t, err)
	return track
}

func TestPlayTrackSeedsQueueAndHistory(t *testing.T) {
	p, element, content := newTestPlayer(t)
	track := createTrack(t, content, "one")

	require.NoError(t, p.PlayTrack(track))

	assert.Equal(t, track.AudioURL, element.loadedURL())
	assert.True(t, p.IsPlaying())
	require.NotNil(t, p.CurrentTrack())
	assert.Equal(t, track.ID, p.CurrentTrack().ID)

	queue := p.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, track.ID, queue[0].ID)
}

func TestPlayTrackIncrementsPlays(t *testing.T) {
	p, _, content := newTestPlayer(t)
	track := createTrack(t, content, "one")

	require.NoError(t, p.PlayTrack(track))

	// The increment is fire-and-forget.
	require.Eventually(t, func() bool {
		got, err := content.Tracks.GetTrackByID(track.ID)
		return err == nil && got.Plays == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPlayTrackHistoryDedup(t *testing.T) {
	p, _, content := newTestPlayer(t)
	a := createTrack(t, content, "a")
	b := createTrack(t, content, "b")

	require.NoError(t, p.PlayTrack(a))
	require.NoError(t, p.PlayTrack(b))
	require.NoError(t, p.PlayTrack(a))

	// History is [a, b]; a was moved to the front, not duplicated.
	require.NoError(t, p.PreviousTrack())
	assert.Equal(t, b.ID, p.CurrentTrack().ID)
}

func TestTogglePlay(t *testing.T) {
	p, _, content := newTestPlayer(t)

	// Without a current track, toggling is a no-op.
	require.NoError(t, p.TogglePlay())
	assert.False(t, p.IsPlaying())

	track := createTrack(t, content, "one")
	require.NoError(t, p.PlayTrack(track))

	require.NoError(t, p.TogglePlay())
	assert.False(t, p.IsPlaying())
	require.NoError(t, p.TogglePlay())
	assert.True(t, p.IsPlaying())

	p.Pause()
	assert.False(t, p.IsPlaying())
}

func TestNextTrackLinear(t *testing.T) {
	p, _, content := newTestPlayer(t)
	a := createTrack(t, content, "a")
	b := createTrack(t, content, "b")
	c := createTrack(t, content, "c")

	require.NoError(t, p.PlayTrack(a))
	p.AddToQueue(b)
	p.AddToQueue(c)

	require.NoError(t, p.NextTrack())
	assert.Equal(t, b.ID, p.CurrentTrack().ID)
	require.NoError(t, p.NextTrack())
	assert.Equal(t, c.ID, p.CurrentTrack().ID)

	// End of queue, repeat off: state unchanged.
	require.NoError(t, p.NextTrack())
	assert.Equal(t, c.ID, p.CurrentTrack().ID)
}

func TestNextTrackWrapsWithRepeat(t *testing.T) {
	p, _, content := newTestPlayer(t)
	a := createTrack(t, content, "a")
	b := createTrack(t, content, "b")

	require.NoError(t, p.PlayTrack(a))
	p.AddToQueue(b)
	require.NoError(t, p.NextTrack())
	require.Equal(t, b.ID, p.CurrentTrack().ID)

	assert.True(t, p.ToggleRepeat())
	require.NoError(t, p.NextTrack())
	assert.Equal(t, a.ID, p.CurrentTrack().ID)
}

func TestNextTrackShuffle(t *testing.T) {
	p, _, content := newTestPlayer(t)
	a := createTrack(t, content, "a")
	b := createTrack(t, content, "b")
	c := createTrack(t, content, "c")

	require.NoError(t, p.PlayTrack(a))
	p.AddToQueue(b)
	p.AddToQueue(c)

	assert.True(t, p.ToggleShuffle())
	p.randIntn = func(n int) int { return 2 }

	require.NoError(t, p.NextTrack())
	assert.Equal(t, c.ID, p.CurrentTrack().ID)
}

func TestPreviousTrackNeedsHistory(t *testing.T) {
	p, _, content := newTestPlayer(t)
	a := createTrack(t, content, "a")

	// Fewer than two history entries: no-op.
	require.NoError(t, p.PreviousTrack())
	assert.Nil(t, p.CurrentTrack())

	require.NoError(t, p.PlayTrack(a))
	require.NoError(t, p.PreviousTrack())
	assert.Equal(t, a.ID, p.CurrentTrack().ID)
}

func TestPreviousTrackReplaysHistory(t *testing.T) {
	p, _, content := newTestPlayer(t)
	a := createTrack(t, content, "a")
	b := createTrack(t, content, "b")

	require.NoError(t, p.PlayTrack(a))
	require.NoError(t, p.PlayTrack(b))

	require.NoError(t, p.PreviousTrack())
	assert.Equal(t, a.ID, p.CurrentTrack().ID)
}

func TestSetVolumeClamps(t *testing.T) {
	p, element, _ := newTestPlayer(t)

	p.SetVolume(1.7)
	assert.Equal(t, 1.0, p.Volume())
	assert.Equal(t, 1.0, element.volume)

	p.SetVolume(-0.3)
	assert.Equal(t, 0.0, p.Volume())

	p.SetVolume(0.4)
	assert.Equal(t, 0.4, p.Volume())
}

func TestQueueMutation(t *testing.T) {
	p, _, content := newTestPlayer(t)
	a := createTrack(t, content, "a")
	b := createTrack(t, content, "b")

	var snapshots [][]*model.Track
	p.SetQueueListener(func(queue []*model.Track) {
		snapshots = append(snapshots, queue)
	})

	p.AddToQueue(a)
	p.AddToQueue(b)
	p.AddToQueue(a) // no dedup on add
	assert.Len(t, p.Queue(), 3)

	p.RemoveFromQueue(a.ID)
	queue := p.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, b.ID, queue[0].ID)

	p.ClearQueue()
	assert.Empty(t, p.Queue())
	assert.Len(t, snapshots, 5)
}

func TestNaturalEndAdvances(t *testing.T) {
	p, element, content := newTestPlayer(t)
	a := createTrack(t, content, "a")
	b := createTrack(t, content, "b")

	require.NoError(t, p.PlayTrack(a))
	p.AddToQueue(b)

	element.onEnded()
	assert.Equal(t, b.ID, p.CurrentTrack().ID)
}

func TestNaturalEndWithRepeatRestarts(t *testing.T) {
	p, element, content := newTestPlayer(t)
	a := createTrack(t, content, "a")

	require.NoError(t, p.PlayTrack(a))
	p.SeekTo(42)
	p.ToggleRepeat()

	element.onEnded()
	assert.Equal(t, a.ID, p.CurrentTrack().ID)
	assert.Equal(t, 0.0, element.CurrentTime())
	assert.True(t, p.IsPlaying())
}

func TestElementErrorStopsPlayback(t *testing.T) {
	p, element, content := newTestPlayer(t)
	a := createTrack(t, content, "a")

	require.NoError(t, p.PlayTrack(a))
	element.onError(errors.New("decode failed"))

	assert.False(t, p.IsPlaying())
	assert.Equal(t, a.ID, p.CurrentTrack().ID)
}

func TestPlayTrackLoadFailure(t *testing.T) {
	p, element, content := newTestPlayer(t)
	a := createTrack(t, content, "a")

	element.loadErr = errors.New("no source")
	assert.Error(t, p.PlayTrack(a))
	assert.False(t, p.IsPlaying())
	assert.Nil(t, p.CurrentTrack())
}
