package source

import (
	"errors"
	"sync"
)

var ErrEmptyRef = errors.New("empty source reference")

// AudioElement tracks the state of one audio output: source, position,
// volume and pause. Actual sample output belongs to the host.
type AudioElement struct {
	mu     sync.Mutex
	clock  mediaClock
	ref    string
	volume float64
}

func (a *AudioElement) Source() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ref
}

func (a *AudioElement) SetSource(ref string) error {
	if ref == "" {
		return ErrEmptyRef
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if ref != a.ref {
		a.ref = ref
		a.clock.pause()
		a.clock.seek(0)
	}
	return nil
}

func (a *AudioElement) Time() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clock.time()
}

func (a *AudioElement) Seek(t float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ref == "" {
		return ErrNoSource
	}
	a.clock.seek(t)
	return nil
}

func (a *AudioElement) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

func (a *AudioElement) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.mu.Lock()
	a.volume = v
	a.mu.Unlock()
}

func (a *AudioElement) Play() {
	a.mu.Lock()
	a.clock.play()
	a.mu.Unlock()
}

func (a *AudioElement) Pause() {
	a.mu.Lock()
	a.clock.pause()
	a.mu.Unlock()
}

func (a *AudioElement) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.clock.playing
}
