package timeline

import (
	"fmt"
	"math"
)

// Snapshot is an immutable copy of the whole timeline. The compositor and
// the exporter read one snapshot per frame so that a concurrent edit is
// never half applied to a frame.
type Snapshot struct {
	Tracks []TrackSnapshot
}

// TrackSnapshot is a track header with its clips in sequence order.
type TrackSnapshot struct {
	ID     string
	Kind   Kind
	Label  string
	Muted  bool
	Locked bool
	Hidden bool
	Clips  []Clip
}

// ActiveAt returns the first clip in sequence whose interval contains t.
func (t TrackSnapshot) ActiveAt(at float64) (Clip, bool) {
	for _, c := range t.Clips {
		if c.Contains(at) {
			return c, true
		}
	}
	return Clip{}, false
}

// TotalDuration recomputes the derived timeline length.
func (s Snapshot) TotalDuration() float64 {
	maxEnd := 0.0
	for _, t := range s.Tracks {
		for _, c := range t.Clips {
			maxEnd = math.Max(maxEnd, c.End())
		}
	}
	return totalDuration(maxEnd)
}

// AnyActive reports whether any track of the kind has a clip at t,
// regardless of hidden or muted state.
func (s Snapshot) AnyActive(kind Kind, at float64) bool {
	for _, t := range s.Tracks {
		if t.Kind != kind {
			continue
		}
		if _, ok := t.ActiveAt(at); ok {
			return true
		}
	}
	return false
}

// Snapshot copies the current state under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Tracks: make([]TrackSnapshot, 0, len(s.tracks))}
	for _, t := range s.tracks {
		ts := TrackSnapshot{
			ID:     t.ID,
			Kind:   t.Kind,
			Label:  t.Label,
			Muted:  t.Muted,
			Locked: t.Locked,
			Hidden: t.Hidden,
			Clips:  make([]Clip, 0, len(t.clipIDs)),
		}
		for _, cid := range t.clipIDs {
			ts.Clips = append(ts.Clips, *s.clips[cid])
		}
		snap.Tracks = append(snap.Tracks, ts)
	}
	return snap
}

// Tracks returns the track headers in declaration order.
func (s *Store) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		cp := *t
		cp.clipIDs = append([]string(nil), t.clipIDs...)
		out = append(out, cp)
	}
	return out
}

// ClipIDs returns the ordered clip ids of a track view.
func (t Track) ClipIDs() []string {
	return append([]string(nil), t.clipIDs...)
}

// FromSnapshot rebuilds a store from a persisted snapshot. Ids are kept.
// Durations between zero and the floor are raised to the floor; anything
// structurally wrong is an error.
func FromSnapshot(snap Snapshot, opts ...Option) (*Store, error) {
	s := NewStore(opts...)
	seenTracks := make(map[string]bool)

	for i, ts := range snap.Tracks {
		if ts.ID == "" {
			return nil, fmt.Errorf("track %d: missing id", i)
		}
		if seenTracks[ts.ID] {
			return nil, fmt.Errorf("track %s: duplicate id", ts.ID)
		}
		seenTracks[ts.ID] = true
		if !ts.Kind.Valid() {
			return nil, fmt.Errorf("track %s: unknown kind %q", ts.ID, ts.Kind)
		}

		t := &Track{
			ID:     ts.ID,
			Kind:   ts.Kind,
			Label:  ts.Label,
			Muted:  ts.Muted,
			Locked: ts.Locked,
			Hidden: ts.Hidden,
		}
		s.tracks = append(s.tracks, t)

		for j, c := range ts.Clips {
			if c.ID == "" {
				return nil, fmt.Errorf("track %s clip %d: missing id", ts.ID, j)
			}
			if _, dup := s.clips[c.ID]; dup {
				return nil, fmt.Errorf("clip %s: duplicate id", c.ID)
			}
			if c.Kind == "" {
				c.Kind = ts.Kind
			}
			if c.Kind != ts.Kind {
				return nil, fmt.Errorf("clip %s: kind %q on %s track", c.ID, c.Kind, ts.Kind)
			}
			if c.Start < 0 || math.IsNaN(c.Start) || math.IsInf(c.Start, 0) {
				return nil, fmt.Errorf("clip %s: invalid start %v", c.ID, c.Start)
			}
			if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
				return nil, fmt.Errorf("clip %s: invalid duration %v", c.ID, c.Duration)
			}
			c.Duration = math.Max(MinClipDuration, c.Duration)
			cp := c
			s.insertLocked(t, &cp, len(t.clipIDs))
		}
	}
	return s, nil
}
