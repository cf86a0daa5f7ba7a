// Package media abstracts the audio output device the playback engine
// drives. Implementations wrap whatever actually makes sound (a browser
// bridge, a native decoder, a test fake); the engine only ever talks to the
// Element interface.
package media

// Element is a single audio output. At most one source is loaded at a time;
// Load replaces the previous source. The ended and error handlers must be
// invoked from the element's own goroutine, never from inside a call to Load
// or Play.
type Element interface {
	// Load prepares the element to play the given source URL.
	Load(url string) error
	// Play starts or resumes playback of the loaded source.
	Play() error
	// Pause suspends playback, keeping the position.
	Pause()
	// Seek moves the playback position, in seconds. Out-of-range values are
	// clamped by the element.
	Seek(seconds float64)
	// SetVolume sets the output volume. Callers pass values in [0,1].
	SetVolume(volume float64)
	// CurrentTime reports the playback position in seconds.
	CurrentTime() float64
	// Duration reports the loaded source's duration in seconds, or 0 when
	// unknown.
	Duration() float64
	// OnEnded registers the handler invoked when the source plays to its end.
	OnEnded(fn func())
	// OnError registers the handler invoked on a playback failure.
	OnError(fn func(err error))
	// Close releases the element's resources.
	Close() error
}
