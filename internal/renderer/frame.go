package renderer

import (
	"image"

	"github.com/ivlev/cutline/internal/timeline"
)

// Layer is one clip painted into a frame, in paint order.
type Layer struct {
	TrackID string
	ClipID  string
	Kind    timeline.Kind
}

// AudioState is what a track's audio element was told to do.
type AudioState struct {
	TrackID string
	ClipID  string
	Source  string
	Volume  float64
	Playing bool
}

// Frame is the result of one composite. Image is owned by the compositor
// and is overwritten by the next call.
type Frame struct {
	Time   float64
	Image  *image.RGBA
	Layers []Layer
	Audio  []AudioState
}

// Top returns the last painted layer.
func (f *Frame) Top() (Layer, bool) {
	if len(f.Layers) == 0 {
		return Layer{}, false
	}
	return f.Layers[len(f.Layers)-1], true
}

// AudioFor returns the reported audio state of a track.
func (f *Frame) AudioFor(trackID string) (AudioState, bool) {
	for _, a := range f.Audio {
		if a.TrackID == trackID {
			return a, true
		}
	}
	return AudioState{}, false
}
