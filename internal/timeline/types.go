package timeline

import (
	"fmt"
	"math"
)

// Kind is the media kind of a track and of every clip on it.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindText  Kind = "text"
)

// Kinds lists the supported kinds in their canonical order.
var Kinds = []Kind{KindVideo, KindAudio, KindText}

func (k Kind) Valid() bool {
	switch k {
	case KindVideo, KindAudio, KindText:
		return true
	}
	return false
}

// ParseKind accepts the lower-case kind name; an empty string means video.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindVideo, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown track kind %q", s)
	}
	return k, nil
}

// Flag is one of the boolean track toggles.
type Flag int

const (
	FlagMuted Flag = iota
	FlagLocked
	FlagHidden
)

func (f Flag) String() string {
	switch f {
	case FlagMuted:
		return "muted"
	case FlagLocked:
		return "locked"
	case FlagHidden:
		return "hidden"
	}
	return fmt.Sprintf("flag(%d)", int(f))
}

const (
	// MinClipDuration is the floor every trim respects.
	MinClipDuration = 0.5
	// MinTimelineDuration is the shortest timeline ever reported.
	MinTimelineDuration = 30.0
	// TrailingBuffer is the empty tail appended after the last clip.
	TrailingBuffer = 10.0
)

// Clip is a placed media reference. Its interval is [Start, Start+Duration).
type Clip struct {
	ID        string
	Kind      Kind
	Name      string
	SourceRef string
	Content   string
	Start     float64
	Duration  float64
}

func (c Clip) End() float64 {
	return c.Start + c.Duration
}

// Contains reports whether t falls inside the clip's half-open interval.
func (c Clip) Contains(t float64) bool {
	return t >= c.Start && t < c.End()
}

// ClipTemplate describes a clip to append with AddClip. Kind may be left
// empty, in which case the track kind is used.
type ClipTemplate struct {
	Kind      Kind
	Name      string
	SourceRef string
	Content   string
	Duration  float64
}

// Track is a lane holding clips of a single kind.
type Track struct {
	ID     string
	Kind   Kind
	Label  string
	Muted  bool
	Locked bool
	Hidden bool

	clipIDs []string
}

// Anchor is the state of a clip at the start of a gesture. PrevEnd and
// NextStart bound the free space around the clip on its track; NextStart
// is +Inf when nothing follows.
type Anchor struct {
	Start     float64
	Duration  float64
	PrevEnd   float64
	NextStart float64
}

func (a Anchor) End() float64 {
	return a.Start + a.Duration
}

// Caption is a timed text cue produced by an external captioning step.
// Start and Duration are approximate.
type Caption struct {
	Text     string
	Start    float64
	Duration float64
}

// totalDuration implements the derived timeline length.
func totalDuration(maxEnd float64) float64 {
	return math.Max(MinTimelineDuration, maxEnd) + TrailingBuffer
}
