package playback

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cutline/internal/renderer"
	"github.com/ivlev/cutline/internal/timeline"
)

type call struct {
	t       float64
	playing bool
	tracks  int
}

type recordingCompositor struct {
	calls []call
}

func (r *recordingCompositor) Composite(t float64, snap timeline.Snapshot, playing bool) *renderer.Frame {
	r.calls = append(r.calls, call{t: t, playing: playing, tracks: len(snap.Tracks)})
	return &renderer.Frame{Time: t}
}

func (r *recordingCompositor) last() call {
	return r.calls[len(r.calls)-1]
}

type fixture struct {
	wall   *fakeNow
	store  *timeline.Store
	comp   *recordingCompositor
	sched  *ManualScheduler
	player *Player
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		wall:  &fakeNow{t: time.Unix(0, 0)},
		store: timeline.NewStore(),
		comp:  &recordingCompositor{},
		sched: &ManualScheduler{},
	}
	f.player = NewPlayer(f.store, f.comp, f.sched, NewClock(f.wall.now))
	t.Cleanup(f.player.Close)
	return f
}

func TestPlayerLoop(t *testing.T) {
	f := newFixture(t)
	f.player.Play()
	assert.True(t, f.sched.Running())

	f.wall.advance(time.Second)
	require.Equal(t, 1, f.sched.Step(1))
	assert.InDelta(t, 1, f.comp.last().t, 1e-9)
	assert.True(t, f.comp.last().playing)

	tr := f.player.Transport()
	assert.True(t, tr.Playing)
	assert.Equal(t, 40.0, tr.Duration)
}

func TestPlayerStopsAtEnd(t *testing.T) {
	f := newFixture(t)
	f.player.Seek(39.9)
	f.player.Play()

	f.wall.advance(time.Second)
	f.sched.Step(5)

	assert.False(t, f.sched.Running())
	assert.Equal(t, 40.0, f.comp.last().t)
	assert.False(t, f.comp.last().playing)
	assert.False(t, f.player.Transport().Playing)

	// playing from the end rewinds
	f.player.Play()
	f.sched.Step(1)
	assert.Equal(t, 0.0, f.comp.last().t)
}

func TestPlayerScrubComposites(t *testing.T) {
	f := newFixture(t)
	f.player.Seek(12)
	require.Len(t, f.comp.calls, 1)
	assert.Equal(t, 12.0, f.comp.last().t)
	assert.False(t, f.comp.last().playing)

	// running: the next tick renders, no extra composite on seek
	f.player.Play()
	f.player.Seek(20)
	assert.Len(t, f.comp.calls, 1)
	f.sched.Step(1)
	assert.Equal(t, 20.0, f.comp.last().t)
}

func TestPlayerPauseAndToggle(t *testing.T) {
	f := newFixture(t)
	f.player.Toggle()
	f.wall.advance(2 * time.Second)
	f.sched.Step(1)

	f.player.Toggle()
	assert.False(t, f.sched.Running())
	assert.False(t, f.comp.last().playing)
	assert.InDelta(t, 2, f.comp.last().t, 1e-9)

	f.wall.advance(time.Second)
	assert.InDelta(t, 2, f.player.Transport().Time, 1e-9)
}

func TestEditWhilePausedRecomposites(t *testing.T) {
	f := newFixture(t)
	f.store.AddTrack(timeline.KindVideo)
	require.Len(t, f.comp.calls, 1)
	assert.Equal(t, 1, f.comp.last().tracks)

	f.player.Play()
	f.store.AddTrack(timeline.KindAudio)
	assert.Len(t, f.comp.calls, 1)

	f.player.Close()
	f.store.AddTrack(timeline.KindText)
	assert.Len(t, f.comp.calls, 1)
}

func TestFrameHandler(t *testing.T) {
	var frames atomic.Int32
	store := timeline.NewStore()
	p := NewPlayer(store, &recordingCompositor{}, &ManualScheduler{}, nil,
		WithFrameHandler(func(*renderer.Frame) { frames.Add(1) }))
	defer p.Close()

	p.Frame()
	p.Seek(3)
	assert.EqualValues(t, 2, frames.Load())
	require.NotNil(t, p.Last())
	assert.Equal(t, 3.0, p.Last().Time)
}

func TestTickerScheduler(t *testing.T) {
	s := NewTickerScheduler(200)
	ticks := make(chan struct{}, 16)
	s.Start(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	assert.True(t, s.Running())

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker never fired")
	}

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
}
