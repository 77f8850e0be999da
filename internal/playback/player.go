package playback

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ivlev/cutline/internal/renderer"
	"github.com/ivlev/cutline/internal/timeline"
)

// Compositor is the frame renderer the player drives.
type Compositor interface {
	Composite(t float64, snap timeline.Snapshot, playing bool) *renderer.Frame
}

// Transport is the playback state shown by a host, independent of any
// clip selection.
type Transport struct {
	Playing  bool
	Time     float64
	Duration float64
}

type PlayerOption func(*Player)

// WithFrameHandler receives every composited frame. It runs on the
// scheduler's goroutine.
func WithFrameHandler(fn func(*renderer.Frame)) PlayerOption {
	return func(p *Player) { p.onFrame = fn }
}

func WithPlayerLogger(l zerolog.Logger) PlayerOption {
	return func(p *Player) { p.log = l }
}

// Player ties the clock, the store, a compositor and a scheduler into the
// render loop.
type Player struct {
	mu    sync.Mutex // serialises composites
	clock *Clock
	store *timeline.Store
	comp  Compositor
	sched Scheduler

	onFrame     func(*renderer.Frame)
	log         zerolog.Logger
	unsubscribe func()
	last        *renderer.Frame
	closed      bool
}

func NewPlayer(store *timeline.Store, comp Compositor, sched Scheduler, clock *Clock, opts ...PlayerOption) *Player {
	if clock == nil {
		clock = NewClock(nil)
	}
	p := &Player{
		clock: clock,
		store: store,
		comp:  comp,
		sched: sched,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.unsubscribe = store.Subscribe(p.onChange)
	return p
}

// onChange re-composites after an edit; a running loop picks the edit up
// on its next tick anyway.
func (p *Player) onChange(timeline.Change) {
	if p.clock.Running() {
		return
	}
	p.render()
}

// Play starts the loop. From the end of the timeline it rewinds first.
func (p *Player) Play() {
	if p.clock.Running() {
		return
	}
	total := p.store.TotalDuration()
	if p.clock.Time() >= total {
		p.clock.Seek(0, total)
	}
	p.clock.Play()
	p.sched.Start(p.tick)
	p.log.Debug().Float64("at", p.clock.Time()).Msg("play")
}

func (p *Player) Pause() {
	if !p.clock.Running() {
		return
	}
	p.clock.Pause()
	p.sched.Stop()
	// one more frame so elements see the paused transport
	p.render()
	p.log.Debug().Float64("at", p.clock.Time()).Msg("pause")
}

func (p *Player) Toggle() {
	if p.clock.Running() {
		p.Pause()
		return
	}
	p.Play()
}

// Seek moves the playhead. While stopped the new position is composited
// immediately so scrubbing shows the frame.
func (p *Player) Seek(t float64) {
	p.clock.Seek(t, p.store.TotalDuration())
	if !p.clock.Running() {
		p.render()
	}
}

// Frame runs one loop iteration: snapshot, advance, composite.
func (p *Player) Frame() *renderer.Frame {
	return p.render()
}

func (p *Player) tick() {
	p.render()
}

func (p *Player) render() *renderer.Frame {
	p.mu.Lock()
	if p.closed {
		defer p.mu.Unlock()
		return p.last
	}
	snap := p.store.Snapshot()
	t, ended := p.clock.Tick(snap.TotalDuration())
	playing := p.clock.Running()
	frame := p.comp.Composite(t, snap, playing)
	p.last = frame
	p.mu.Unlock()

	if ended {
		p.sched.Stop()
		p.log.Debug().Float64("at", t).Msg("reached end")
	}
	if p.onFrame != nil {
		p.onFrame(frame)
	}
	return frame
}

// Last returns the most recent frame, nil before the first composite.
func (p *Player) Last() *renderer.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Player) Transport() Transport {
	return Transport{
		Playing:  p.clock.Running(),
		Time:     p.clock.Time(),
		Duration: p.store.TotalDuration(),
	}
}

// Close stops the loop and detaches from the store. It waits for an
// in-flight composite, so the compositor may be released afterwards.
func (p *Player) Close() {
	p.sched.Stop()
	p.clock.Pause()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}
