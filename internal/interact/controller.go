package interact

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ivlev/cutline/internal/scale"
	"github.com/ivlev/cutline/internal/timeline"
)

var ErrNoSelection = errors.New("no clip selected")

// DragKind is the gesture started by a pointer-down on a clip body or on
// one of its edges.
type DragKind int

const (
	DragMove DragKind = iota
	DragTrimStart
	DragTrimEnd
)

func (k DragKind) String() string {
	switch k {
	case DragMove:
		return "move"
	case DragTrimStart:
		return "trim-start"
	case DragTrimEnd:
		return "trim-end"
	}
	return fmt.Sprintf("drag(%d)", int(k))
}

func ParseDragKind(s string) (DragKind, error) {
	for _, k := range []DragKind{DragMove, DragTrimStart, DragTrimEnd} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown drag kind %q", s)
}

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Session is the anchor of an in-progress gesture. Every pointer move is
// applied relative to it, never to the previous move.
type Session struct {
	Kind    DragKind
	ClipID  string
	TrackID string
	StartX  float64
	Anchor  timeline.Anchor
}

// Notice is a transient message for the user, e.g. a toast.
type Notice struct {
	Message string
	Err     error
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller turns pointer gestures into store mutations. It owns the
// selection, which the compositor never needs. It is meant to be driven
// from a single UI goroutine.
type Controller struct {
	store    *timeline.Store
	mapper   *scale.Mapper
	notifier Notifier
	log      zerolog.Logger

	session  *Session
	selected string
}

func NewController(store *timeline.Store, mapper *scale.Mapper, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		mapper: mapper,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	if c.session != nil {
		return Dragging
	}
	return Idle
}

// Session returns a copy of the active drag session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// PointerDown starts a gesture on a clip. It is ignored while another
// gesture is active and refused on a locked track.
func (c *Controller) PointerDown(clipID, trackID string, kind DragKind, pointerX float64) bool {
	if c.session != nil {
		c.log.Debug().Str("clip", clipID).Msg("pointer down ignored, drag in progress")
		return false
	}

	clip, owner, ok := c.store.Clip(clipID)
	if !ok || owner != trackID {
		c.log.Debug().Str("clip", clipID).Str("track", trackID).Msg("pointer down on unknown clip")
		return false
	}
	if c.store.TrackLocked(trackID) {
		c.notify("Track is locked", timeline.ErrLocked)
		return false
	}

	anchor, ok := c.store.Anchor(clipID)
	if !ok {
		return false
	}
	c.session = &Session{
		Kind:    kind,
		ClipID:  clipID,
		TrackID: trackID,
		StartX:  pointerX,
		Anchor:  anchor,
	}
	c.selected = clipID
	c.log.Debug().
		Str("clip", clip.ID).
		Str("kind", kind.String()).
		Float64("start", anchor.Start).
		Float64("duration", anchor.Duration).
		Msg("drag started")
	return true
}

// PointerMove applies the pointer delta since PointerDown to the clip.
func (c *Controller) PointerMove(pointerX float64) bool {
	if c.session == nil {
		return false
	}
	delta := c.mapper.ToSeconds(pointerX - c.session.StartX)
	return c.apply(delta)
}

func (c *Controller) apply(delta float64) bool {
	s := c.session
	switch s.Kind {
	case DragMove:
		return c.store.MoveClip(s.ClipID, s.Anchor, delta)
	case DragTrimStart:
		return c.store.TrimStart(s.ClipID, s.Anchor, delta)
	case DragTrimEnd:
		return c.store.TrimEnd(s.ClipID, s.Anchor, delta)
	}
	return false
}

// PointerUp ends the gesture, keeping whatever the last move applied.
func (c *Controller) PointerUp() {
	if c.session != nil {
		c.log.Debug().Str("clip", c.session.ClipID).Msg("drag finished")
	}
	c.session = nil
}

// Cancel restores the clip to its anchor and ends the gesture.
func (c *Controller) Cancel() {
	if c.session == nil {
		return
	}
	c.apply(0)
	c.log.Debug().Str("clip", c.session.ClipID).Msg("drag cancelled")
	c.session = nil
}

func (c *Controller) Select(clipID string) bool {
	if _, _, ok := c.store.Clip(clipID); !ok {
		return false
	}
	c.selected = clipID
	return true
}

// Selected returns the selected clip id, dropping a selection whose clip
// no longer exists.
func (c *Controller) Selected() string {
	if c.selected == "" {
		return ""
	}
	if _, _, ok := c.store.Clip(c.selected); !ok {
		c.selected = ""
	}
	return c.selected
}

func (c *Controller) ClearSelection() {
	c.selected = ""
}

// RequestSplit splits the selected clip at the playhead. Failures are
// reported to the notifier and returned.
func (c *Controller) RequestSplit(playhead float64) (string, error) {
	id := c.Selected()
	if id == "" {
		c.notify("Select a clip to split", ErrNoSelection)
		return "", ErrNoSelection
	}

	second, err := c.store.SplitClip(id, playhead)
	if err != nil {
		switch {
		case errors.Is(err, timeline.ErrOutOfRange):
			c.notify("Playhead must be inside the selected clip", err)
		case errors.Is(err, timeline.ErrLocked):
			c.notify("Track is locked", err)
		default:
			c.notify("Cannot split clip", err)
		}
		return "", err
	}
	c.log.Debug().Str("clip", id).Str("second", second).Float64("at", playhead).Msg("clip split")
	return second, nil
}

// DeleteSelected removes the selected clip unless its track is locked.
func (c *Controller) DeleteSelected() bool {
	id := c.Selected()
	if id == "" {
		return false
	}
	_, trackID, _ := c.store.Clip(id)
	if c.store.TrackLocked(trackID) {
		c.notify("Track is locked", timeline.ErrLocked)
		return false
	}
	if !c.store.DeleteClip(id) {
		return false
	}
	c.selected = ""
	return true
}

func (c *Controller) notify(msg string, err error) {
	c.log.Info().Err(err).Msg(msg)
	if c.notifier != nil {
		c.notifier.Notify(Notice{Message: msg, Err: err})
	}
}
