package renderer

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/cutline/internal/effects"
	"github.com/ivlev/cutline/internal/system"
	"github.com/ivlev/cutline/internal/timeline"
)

const (
	DefaultSeekTolerance = 0.3
	DefaultDuckVolume    = 0.2
)

type Options struct {
	Width, Height int

	NewDecoder DecoderFactory
	NewAudio   AudioFactory

	// Filter is applied to video layers only. Nil means none.
	Filter *effects.Filter

	DuckUnderVideo bool
	// DuckVolume is the audio level while any video clip is active.
	DuckVolume float64

	// SeekTolerance is the drift in seconds accepted before an element is
	// re-seeked. Zero selects the default; ExactSeek forces a seek on
	// every frame, which offline export needs.
	SeekTolerance float64
	ExactSeek     bool

	// FontSize in pixels; zero derives it from the canvas height.
	FontSize float64

	// BurnIn stamps a QR code with the frame time and active clip ids.
	BurnIn bool

	Background color.Color
	Logger     zerolog.Logger
}

// Compositor turns a timeline snapshot and a time into one frame. It keeps
// one decoder and one audio element per track and is not safe for
// concurrent use.
type Compositor struct {
	opts    Options
	canvas  *image.RGBA
	scratch *image.RGBA
	text    *textPainter
	log     zerolog.Logger

	decoders map[string]VideoDecoder
	audio    map[string]AudioElement
}

func New(opts Options) (*Compositor, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	if opts.SeekTolerance <= 0 {
		opts.SeekTolerance = DefaultSeekTolerance
	}
	if opts.DuckVolume <= 0 || opts.DuckVolume > 1 {
		opts.DuckVolume = DefaultDuckVolume
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	if opts.FontSize <= 0 {
		opts.FontSize = math.Max(12, float64(opts.Height)/18)
	}

	text, err := newTextPainter(opts.FontSize)
	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, opts.Width, opts.Height)
	return &Compositor{
		opts:     opts,
		canvas:   system.GetImage(rect),
		scratch:  system.GetImage(rect),
		text:     text,
		log:      opts.Logger,
		decoders: make(map[string]VideoDecoder),
		audio:    make(map[string]AudioElement),
	}, nil
}

// SetFilter replaces the global colour filter for subsequent frames.
func (c *Compositor) SetFilter(f *effects.Filter) {
	c.opts.Filter = f
}

// Composite paints the frame at time t. Tracks are visited in reverse
// declaration order so the first declared track ends up on top.
func (c *Compositor) Composite(t float64, snap timeline.Snapshot, playing bool) *Frame {
	fill(c.canvas, c.opts.Background)
	frame := &Frame{Time: t, Image: c.canvas}

	duck := c.opts.DuckUnderVideo && snap.AnyActive(timeline.KindVideo, t)
	present := make(map[string]bool, len(snap.Tracks))

	for i := len(snap.Tracks) - 1; i >= 0; i-- {
		tr := snap.Tracks[i]
		present[tr.ID] = true

		switch tr.Kind {
		case timeline.KindVideo:
			c.compositeVideo(frame, tr, t, playing)
		case timeline.KindText:
			c.compositeText(frame, tr, t)
		case timeline.KindAudio:
			c.syncAudio(frame, tr, t, playing, duck)
		}
	}

	c.releaseOrphans(present)
	if !snap.AnyActive(timeline.KindAudio, t) {
		for _, el := range c.audio {
			el.Pause()
		}
	}

	if c.opts.BurnIn {
		c.burnIn(frame)
	}
	return frame
}

func (c *Compositor) compositeVideo(frame *Frame, tr timeline.TrackSnapshot, t float64, playing bool) {
	clip, ok := tr.ActiveAt(t)
	if tr.Hidden || !ok {
		if dec, exists := c.decoders[tr.ID]; exists {
			dec.Pause()
		}
		return
	}

	drawn := c.guard(tr.ID, clip.ID, func() error {
		dec, err := c.decoder(tr.ID)
		if err != nil {
			return err
		}
		if dec.Source() != clip.SourceRef {
			if err := dec.SetSource(clip.SourceRef); err != nil {
				return err
			}
		}
		rel := t - clip.Start
		if c.drifted(dec.Time(), rel) {
			if err := dec.Seek(rel); err != nil {
				return err
			}
		}
		if playing {
			dec.Play()
		} else {
			dec.Pause()
		}

		img, err := dec.Frame()
		if err != nil {
			return err
		}
		if img == nil {
			return fmt.Errorf("decoder returned no picture")
		}
		c.drawPicture(img)
		return nil
	})
	if drawn {
		frame.Layers = append(frame.Layers, Layer{TrackID: tr.ID, ClipID: clip.ID, Kind: timeline.KindVideo})
	}
}

// drawPicture scales img aspect-fit into the scratch layer, grades it and
// blends it over the canvas.
func (c *Compositor) drawPicture(img image.Image) {
	dst := fitRect(img.Bounds(), c.canvas.Rect)
	if dst.Empty() {
		return
	}
	clear(c.scratch.Pix)
	xdraw.ApproxBiLinear.Scale(c.scratch, dst, img, img.Bounds(), xdraw.Src, nil)
	c.opts.Filter.DrawOver(c.canvas, c.scratch, dst)
}

func (c *Compositor) compositeText(frame *Frame, tr timeline.TrackSnapshot, t float64) {
	clip, ok := tr.ActiveAt(t)
	if tr.Hidden || !ok || clip.Content == "" {
		return
	}
	drawn := c.guard(tr.ID, clip.ID, func() error {
		c.text.draw(c.canvas, clip.Content)
		return nil
	})
	if drawn {
		frame.Layers = append(frame.Layers, Layer{TrackID: tr.ID, ClipID: clip.ID, Kind: timeline.KindText})
	}
}

func (c *Compositor) syncAudio(frame *Frame, tr timeline.TrackSnapshot, t float64, playing, duck bool) {
	clip, ok := tr.ActiveAt(t)
	state := AudioState{TrackID: tr.ID}

	if tr.Muted || tr.Hidden || !ok {
		if el, exists := c.audio[tr.ID]; exists {
			el.Pause()
			state.Source = el.Source()
			state.Volume = el.Volume()
		}
		frame.Audio = append(frame.Audio, state)
		return
	}

	c.guard(tr.ID, clip.ID, func() error {
		el, err := c.element(tr.ID)
		if err != nil {
			return err
		}
		if el.Source() != clip.SourceRef {
			if err := el.SetSource(clip.SourceRef); err != nil {
				el.Pause()
				return err
			}
		}
		rel := t - clip.Start
		if c.drifted(el.Time(), rel) {
			if err := el.Seek(rel); err != nil {
				return err
			}
		}

		volume := 1.0
		if duck {
			volume = c.opts.DuckVolume
		}
		el.SetVolume(volume)
		if playing {
			el.Play()
		} else {
			el.Pause()
		}

		state.ClipID = clip.ID
		state.Source = el.Source()
		state.Volume = el.Volume()
		state.Playing = !el.Paused()
		return nil
	})
	frame.Audio = append(frame.Audio, state)
}

func (c *Compositor) drifted(elementTime, want float64) bool {
	if c.opts.ExactSeek {
		return true
	}
	return math.Abs(elementTime-want) > c.opts.SeekTolerance
}

// guard runs one layer and absorbs its failure. The layer is simply left
// out of the frame.
func (c *Compositor) guard(trackID, clipID string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Debug().Str("track", trackID).Str("clip", clipID).Interface("panic", r).Msg("layer skipped")
			ok = false
		}
	}()
	if err := fn(); err != nil {
		c.log.Debug().Str("track", trackID).Str("clip", clipID).Err(err).Msg("layer skipped")
		return false
	}
	return true
}

func (c *Compositor) decoder(trackID string) (VideoDecoder, error) {
	if dec, ok := c.decoders[trackID]; ok {
		return dec, nil
	}
	if c.opts.NewDecoder == nil {
		return nil, fmt.Errorf("no video decoder factory")
	}
	dec := c.opts.NewDecoder()
	c.decoders[trackID] = dec
	return dec, nil
}

func (c *Compositor) element(trackID string) (AudioElement, error) {
	if el, ok := c.audio[trackID]; ok {
		return el, nil
	}
	if c.opts.NewAudio == nil {
		return nil, fmt.Errorf("no audio factory")
	}
	el := c.opts.NewAudio()
	c.audio[trackID] = el
	return el, nil
}

// releaseOrphans stops the elements of tracks that no longer exist.
func (c *Compositor) releaseOrphans(present map[string]bool) {
	for id, dec := range c.decoders {
		if present[id] {
			continue
		}
		dec.Pause()
		closeQuietly(dec)
		delete(c.decoders, id)
	}
	for id, el := range c.audio {
		if !present[id] {
			el.Pause()
			delete(c.audio, id)
		}
	}
}

// Close releases decoders and returns the canvas buffers to the pool. The
// last frame's image must not be used afterwards.
func (c *Compositor) Close() error {
	for id, dec := range c.decoders {
		closeQuietly(dec)
		delete(c.decoders, id)
	}
	for _, el := range c.audio {
		el.Pause()
	}
	system.PutImage(c.canvas)
	system.PutImage(c.scratch)
	c.canvas, c.scratch = nil, nil
	return nil
}

func closeQuietly(v any) {
	if cl, ok := v.(io.Closer); ok {
		cl.Close()
	}
}

// fitRect scales src to fit inside dst keeping the aspect ratio, centred.
func fitRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 {
		return image.Rectangle{}
	}
	dw, dh := dst.Dx(), dst.Dy()
	scale := math.Min(float64(dw)/float64(sw), float64(dh)/float64(sh))
	w := int(math.Round(float64(sw) * scale))
	h := int(math.Round(float64(sh) * scale))
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

func fill(img *image.RGBA, c color.Color) {
	r, g, b, a := c.RGBA()
	px := [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], px[:])
	}
}
