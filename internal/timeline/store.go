package timeline

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("clip or track not found")
	ErrLocked     = errors.New("track is locked")
	ErrOutOfRange = errors.New("split point is outside the clip")
)

// Op names the mutation reported to subscribers.
type Op string

const (
	OpAddTrack    Op = "add_track"
	OpRemoveTrack Op = "remove_track"
	OpTrackFlag   Op = "track_flag"
	OpRenameTrack Op = "rename_track"
	OpAddClip     Op = "add_clip"
	OpMoveClip    Op = "move_clip"
	OpTrimClip    Op = "trim_clip"
	OpSplitClip   Op = "split_clip"
	OpDeleteClip  Op = "delete_clip"
)

// Change describes one applied mutation.
type Change struct {
	Op      Op
	TrackID string
	ClipID  string
}

type Option func(*Store)

// WithIDGenerator replaces the default uuid-based identifiers.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

// Store owns tracks and clips. Clips live in an arena addressed by id,
// tracks keep the ordered list of their clip ids. All mutations are
// synchronous and never fail loudly: out-of-range deltas are clamped and
// locked tracks turn mutations into no-ops. SplitClip is the only
// operation that reports an error.
type Store struct {
	mu     sync.RWMutex
	tracks []*Track
	clips  map[string]*Clip
	owner  map[string]*Track
	nextID func() string
	subs   map[int]func(Change)
	subSeq int
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		clips:  make(map[string]*Clip),
		owner:  make(map[string]*Track),
		nextID: uuid.NewString,
		subs:   make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called after every applied mutation. The
// callback runs outside the store lock and may read the store.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

// AddTrack appends an empty track and returns its id. An invalid kind
// falls back to video.
func (s *Store) AddTrack(kind Kind) string {
	s.mu.Lock()
	t := s.addTrackLocked(kind)
	s.mu.Unlock()

	s.notify(Change{Op: OpAddTrack, TrackID: t.ID})
	return t.ID
}

func (s *Store) addTrackLocked(kind Kind) *Track {
	if !kind.Valid() {
		kind = KindVideo
	}
	n := 1
	for _, t := range s.tracks {
		if t.Kind == kind {
			n++
		}
	}
	t := &Track{
		ID:    s.nextID(),
		Kind:  kind,
		Label: fmt.Sprintf("%s %d", kindTitle(kind), n),
	}
	s.tracks = append(s.tracks, t)
	return t
}

// EnsureTrack returns the first track of the given kind, creating one
// when none exists.
func (s *Store) EnsureTrack(kind Kind) string {
	s.mu.Lock()
	for _, t := range s.tracks {
		if t.Kind == kind {
			s.mu.Unlock()
			return t.ID
		}
	}
	t := s.addTrackLocked(kind)
	s.mu.Unlock()

	s.notify(Change{Op: OpAddTrack, TrackID: t.ID})
	return t.ID
}

// RemoveTrack deletes the track together with its clips.
func (s *Store) RemoveTrack(id string) {
	s.mu.Lock()
	idx := s.trackIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	t := s.tracks[idx]
	for _, cid := range t.clipIDs {
		delete(s.clips, cid)
		delete(s.owner, cid)
	}
	s.tracks = append(s.tracks[:idx], s.tracks[idx+1:]...)
	s.mu.Unlock()

	s.notify(Change{Op: OpRemoveTrack, TrackID: id})
}

// SetTrackFlag toggles muted, locked or hidden.
func (s *Store) SetTrackFlag(trackID string, flag Flag, value bool) bool {
	s.mu.Lock()
	idx := s.trackIndexLocked(trackID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	t := s.tracks[idx]
	switch flag {
	case FlagMuted:
		t.Muted = value
	case FlagLocked:
		t.Locked = value
	case FlagHidden:
		t.Hidden = value
	default:
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	s.notify(Change{Op: OpTrackFlag, TrackID: trackID})
	return true
}

func (s *Store) RenameTrack(trackID, label string) bool {
	s.mu.Lock()
	idx := s.trackIndexLocked(trackID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.tracks[idx].Label = label
	s.mu.Unlock()

	s.notify(Change{Op: OpRenameTrack, TrackID: trackID})
	return true
}

// AddClip appends a clip right after the current last clip of the track,
// so it never overlaps what is already there. It returns false when the
// track is unknown, locked, or of a different kind.
func (s *Store) AddClip(trackID string, tmpl ClipTemplate) (string, bool) {
	s.mu.Lock()
	idx := s.trackIndexLocked(trackID)
	if idx < 0 {
		s.mu.Unlock()
		return "", false
	}
	t := s.tracks[idx]
	if t.Locked {
		s.mu.Unlock()
		return "", false
	}
	kind := tmpl.Kind
	if kind == "" {
		kind = t.Kind
	}
	if kind != t.Kind {
		s.mu.Unlock()
		return "", false
	}

	c := &Clip{
		ID:        s.nextID(),
		Kind:      kind,
		Name:      tmpl.Name,
		SourceRef: tmpl.SourceRef,
		Content:   tmpl.Content,
		Start:     s.trackEndLocked(t),
		Duration:  clipDuration(tmpl.Duration),
	}
	if kind != KindText {
		c.Content = ""
	}
	s.insertLocked(t, c, len(t.clipIDs))
	s.mu.Unlock()

	s.notify(Change{Op: OpAddClip, TrackID: trackID, ClipID: c.ID})
	return c.ID, true
}

// Anchor captures the clip state a gesture is measured against, including
// the free space around the clip on its track.
func (s *Store) Anchor(clipID string) (Anchor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clips[clipID]
	if !ok {
		return Anchor{}, false
	}
	a := Anchor{Start: c.Start, Duration: c.Duration, NextStart: math.Inf(1)}
	for _, cid := range s.owner[clipID].clipIDs {
		if cid == clipID {
			continue
		}
		o := s.clips[cid]
		if o.End() <= c.Start && o.End() > a.PrevEnd {
			a.PrevEnd = o.End()
		}
		if o.Start >= c.End() && o.Start < a.NextStart {
			a.NextStart = o.Start
		}
	}
	return a, true
}

// MoveClip places the clip at anchor.Start+delta, never below zero and
// never into its neighbours.
func (s *Store) MoveClip(clipID string, a Anchor, delta float64) bool {
	delta = finite(delta)
	return s.mutateClip(clipID, OpMoveClip, func(c *Clip) {
		start := math.Max(0, a.Start+delta)
		start = math.Max(start, a.PrevEnd)
		if limit := a.NextStart - a.Duration; start > limit {
			start = math.Max(limit, a.PrevEnd)
		}
		c.Start = start
		c.Duration = a.Duration
	})
}

// TrimStart moves the left edge by delta. The duration never drops below
// MinClipDuration and the start never goes below zero. When a previous
// clip exists the left edge stops at its end; past zero the duration keeps
// growing by the full delta, bounded only by the next clip.
func (s *Store) TrimStart(clipID string, a Anchor, delta float64) bool {
	delta = finite(delta)
	return s.mutateClip(clipID, OpTrimClip, func(c *Clip) {
		actual := math.Min(delta, a.Duration-MinClipDuration)
		if a.PrevEnd > 0 {
			actual = math.Max(actual, a.PrevEnd-a.Start)
		}
		start := math.Max(0, a.Start+actual)
		d := a.Duration - actual
		if room := a.NextStart - start; d > room {
			d = math.Max(room, MinClipDuration)
		}
		c.Start = start
		c.Duration = d
	})
}

// TrimEnd moves the right edge by delta, keeping the start.
func (s *Store) TrimEnd(clipID string, a Anchor, delta float64) bool {
	delta = finite(delta)
	return s.mutateClip(clipID, OpTrimClip, func(c *Clip) {
		d := math.Max(MinClipDuration, a.Duration+delta)
		if room := a.NextStart - a.Start; d > room {
			d = math.Max(room, MinClipDuration)
		}
		c.Start = a.Start
		c.Duration = d
	})
}

func (s *Store) mutateClip(clipID string, op Op, fn func(c *Clip)) bool {
	s.mu.Lock()
	c, ok := s.clips[clipID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	t := s.owner[clipID]
	if t.Locked {
		s.mu.Unlock()
		return false
	}
	fn(c)
	s.mu.Unlock()

	s.notify(Change{Op: op, TrackID: t.ID, ClipID: clipID})
	return true
}

// SplitClip cuts the clip at time at into two adjacent clips whose
// durations sum to the original. The first part keeps the id; the id of
// the second part is returned.
func (s *Store) SplitClip(clipID string, at float64) (string, error) {
	s.mu.Lock()
	c, ok := s.clips[clipID]
	if !ok {
		s.mu.Unlock()
		return "", ErrNotFound
	}
	t := s.owner[clipID]
	if t.Locked {
		s.mu.Unlock()
		return "", ErrLocked
	}
	if !(c.Start < at && at < c.End()) {
		s.mu.Unlock()
		return "", fmt.Errorf("split at %.2fs, clip spans [%.2f, %.2f): %w", at, c.Start, c.End(), ErrOutOfRange)
	}

	end := c.End()
	second := &Clip{
		ID:        s.nextID(),
		Kind:      c.Kind,
		Name:      c.Name,
		SourceRef: c.SourceRef,
		Content:   c.Content,
		Start:     at,
		Duration:  end - at,
	}
	c.Duration = at - c.Start
	s.insertLocked(t, second, indexOf(t.clipIDs, clipID)+1)
	s.mu.Unlock()

	s.notify(Change{Op: OpSplitClip, TrackID: t.ID, ClipID: second.ID})
	return second.ID, nil
}

// DeleteClip removes the clip from whichever track holds it.
func (s *Store) DeleteClip(clipID string) bool {
	s.mu.Lock()
	t, ok := s.owner[clipID]
	if !ok || t.Locked {
		s.mu.Unlock()
		return false
	}
	t.clipIDs = removeID(t.clipIDs, clipID)
	delete(s.clips, clipID)
	delete(s.owner, clipID)
	s.mu.Unlock()

	s.notify(Change{Op: OpDeleteClip, TrackID: t.ID, ClipID: clipID})
	return true
}

// Clip returns a copy of the clip and the id of its track.
func (s *Store) Clip(clipID string) (Clip, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clips[clipID]
	if !ok {
		return Clip{}, "", false
	}
	return *c, s.owner[clipID].ID, true
}

// Track returns a copy of the track header.
func (s *Store) Track(trackID string) (Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.trackIndexLocked(trackID)
	if idx < 0 {
		return Track{}, false
	}
	t := *s.tracks[idx]
	t.clipIDs = append([]string(nil), t.clipIDs...)
	return t, true
}

// TrackLocked reports whether the track exists and is locked.
func (s *Store) TrackLocked(trackID string) bool {
	t, ok := s.Track(trackID)
	return ok && t.Locked
}

// TotalDuration is max(30, latest clip end) + 10 seconds.
func (s *Store) TotalDuration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxEnd := 0.0
	for _, c := range s.clips {
		maxEnd = math.Max(maxEnd, c.End())
	}
	return totalDuration(maxEnd)
}

func (s *Store) trackIndexLocked(id string) int {
	for i, t := range s.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// trackEndLocked is the latest end on the track. After moves the last id
// in order is not necessarily the clip that ends last.
func (s *Store) trackEndLocked(t *Track) float64 {
	end := 0.0
	for _, cid := range t.clipIDs {
		end = math.Max(end, s.clips[cid].End())
	}
	return end
}

func (s *Store) insertLocked(t *Track, c *Clip, at int) {
	s.clips[c.ID] = c
	s.owner[c.ID] = t
	t.clipIDs = append(t.clipIDs, "")
	copy(t.clipIDs[at+1:], t.clipIDs[at:])
	t.clipIDs[at] = c.ID
}

// finite turns NaN and infinite pointer deltas into no motion.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clipDuration(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return MinClipDuration
	}
	return math.Max(MinClipDuration, d)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	if i := indexOf(ids, id); i >= 0 {
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}

func kindTitle(k Kind) string {
	switch k {
	case KindAudio:
		return "Audio"
	case KindText:
		return "Text"
	}
	return "Video"
}
