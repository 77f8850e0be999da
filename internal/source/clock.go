package source

import "time"

// mediaClock is the position of a single media element. While playing it
// advances with wall time.
type mediaClock struct {
	now     func() time.Time
	pos     float64
	playing bool
	since   time.Time
}

func newMediaClock(now func() time.Time) mediaClock {
	if now == nil {
		now = time.Now
	}
	return mediaClock{now: now}
}

func (m *mediaClock) time() float64 {
	if m.playing {
		return m.pos + m.now().Sub(m.since).Seconds()
	}
	return m.pos
}

func (m *mediaClock) seek(t float64) {
	if t < 0 {
		t = 0
	}
	m.pos = t
	m.since = m.now()
}

func (m *mediaClock) play() {
	if m.playing {
		return
	}
	m.since = m.now()
	m.playing = true
}

func (m *mediaClock) pause() {
	if !m.playing {
		return
	}
	m.pos = m.time()
	m.playing = false
}
