package media

import "sync"

// NullElement is a headless Element for server-side use: it tracks the
// loaded source, position and volume but produces no sound and never reaches
// a natural end on its own.
type NullElement struct {
	mu       sync.Mutex
	url      string
	position float64
	volume   float64
	onEnded  func()
	onError  func(err error)
}

// NewNullElement creates a NullElement.
func NewNullElement() *NullElement {
	return &NullElement{}
}

func (e *NullElement) Load(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.url = url
	e.position = 0
	return nil
}

func (e *NullElement) Play() error { return nil }

func (e *NullElement) Pause() {}

func (e *NullElement) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	e.position = seconds
}

func (e *NullElement) SetVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = volume
}

func (e *NullElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *NullElement) Duration() float64 { return 0 }

func (e *NullElement) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

func (e *NullElement) OnError(fn func(err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onError = fn
}

func (e *NullElement) Close() error { return nil }

// TriggerEnded invokes the ended handler, letting an external clock or
// bridge signal a natural end.
func (e *NullElement) TriggerEnded() {
	e.mu.Lock()
	fn := e.onEnded
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// TriggerError invokes the error handler.
func (e *NullElement) TriggerError(err error) {
	e.mu.Lock()
	fn := e.onError
	e.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
