package renderer

import "image"

// VideoDecoder is a seekable video element owned by one track.
type VideoDecoder interface {
	Source() string
	SetSource(ref string) error
	Time() float64
	Seek(t float64) error
	Play()
	Pause()
	Frame() (image.Image, error)
}

// AudioElement is one audio output owned by one track.
type AudioElement interface {
	Source() string
	SetSource(ref string) error
	Time() float64
	Seek(t float64) error
	SetVolume(v float64)
	Volume() float64
	Play()
	Pause()
	Paused() bool
}

type DecoderFactory func() VideoDecoder

type AudioFactory func() AudioElement
