package source

import (
	"errors"
	"image"
	"math"
)

var ErrNoSource = errors.New("decoder has no source")

// Decoder is a seekable video element backed by a paged Source. One
// decoder serves one track; switching the source closes the previous one.
type Decoder struct {
	lib   *Library
	clock mediaClock

	ref  string
	src  Source
	rate float64 // pages per second, 0 for a single still

	cachedIndex int
	cached      image.Image
}

func (d *Decoder) Source() string {
	return d.ref
}

func (d *Decoder) SetSource(ref string) error {
	if ref == d.ref && d.src != nil {
		return nil
	}
	src, rate, err := d.lib.Open(ref)
	if err != nil {
		return err
	}
	d.closeSource()
	d.ref, d.src, d.rate = ref, src, rate
	d.clock.seek(0)
	return nil
}

func (d *Decoder) Time() float64 {
	return d.clock.time()
}

func (d *Decoder) Seek(t float64) error {
	if d.src == nil {
		return ErrNoSource
	}
	d.clock.seek(t)
	return nil
}

func (d *Decoder) Play() {
	d.clock.play()
}

func (d *Decoder) Pause() {
	d.clock.pause()
}

func (d *Decoder) Playing() bool {
	return d.clock.playing
}

// Frame returns the picture at the current media time. Pages are held until
// the index changes.
func (d *Decoder) Frame() (image.Image, error) {
	if d.src == nil {
		return nil, ErrNoSource
	}
	idx := d.pageIndex(d.clock.time())
	if d.cached != nil && idx == d.cachedIndex {
		return d.cached, nil
	}
	img, err := d.src.RenderPage(idx)
	if err != nil {
		return nil, err
	}
	d.cached, d.cachedIndex = img, idx
	return img, nil
}

func (d *Decoder) pageIndex(t float64) int {
	n := d.src.PageCount()
	if n <= 1 || d.rate <= 0 {
		return 0
	}
	idx := int(math.Floor(t * d.rate))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

func (d *Decoder) closeSource() {
	if d.src != nil {
		d.src.Close()
	}
	d.src, d.cached, d.ref = nil, nil, ""
}

func (d *Decoder) Close() error {
	d.closeSource()
	return nil
}
