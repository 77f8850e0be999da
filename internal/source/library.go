package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Library opens media references for decoders. Every source reference is
// a file path: a still image, a directory of frames or a PDF document.
type Library struct {
	// Root resolves relative references; empty means the working directory.
	Root string
	// FPS is the playback rate of frame directories.
	FPS float64
	// PageDuration is how long each document page stays on screen.
	PageDuration float64
	DPI          int
	// Now drives element clocks; nil means time.Now.
	Now func() time.Time
}

func (l *Library) resolve(ref string) string {
	if l.Root == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(l.Root, ref)
}

// Open returns the backend for ref and the rate at which its pages advance.
func (l *Library) Open(ref string) (Source, float64, error) {
	if ref == "" {
		return nil, 0, ErrEmptyRef
	}
	path := l.resolve(ref)

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		src, err := NewFitzPDFSource(path, l.DPI)
		if err != nil {
			return nil, 0, fmt.Errorf("open document %s: %w", ref, err)
		}
		rate := 0.0
		if l.PageDuration > 0 {
			rate = 1 / l.PageDuration
		}
		return src, rate, nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	src, err := NewImageSource(path)
	if err != nil {
		return nil, 0, err
	}
	if fi.IsDir() {
		return src, l.FPS, nil
	}
	return src, 0, nil
}

func (l *Library) NewDecoder() *Decoder {
	return &Decoder{lib: l, clock: newMediaClock(l.Now)}
}

func (l *Library) NewAudio() *AudioElement {
	return &AudioElement{clock: newMediaClock(l.Now), volume: 1}
}

// PageCount reports how many pages or frames ref holds.
func (l *Library) PageCount(ref string) (int, error) {
	src, _, err := l.Open(ref)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return src.PageCount(), nil
}
