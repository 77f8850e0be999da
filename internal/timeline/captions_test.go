package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCaptionsCreatesTextTrack(t *testing.T) {
	s := NewStore(seqIDs())
	s.AddTrack(KindVideo)

	ids, err := s.AddCaptions([]Caption{
		{Text: "Hello there", Start: 1, Duration: 2},
		{Text: "  ", Start: 2, Duration: 1},
		{Text: "Overlapping cue", Start: 2.5, Duration: 0.2},
		{Text: "Later", Start: 10, Duration: 3},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	snap := s.Snapshot()
	require.Len(t, snap.Tracks, 2)
	text := snap.Tracks[1]
	assert.Equal(t, KindText, text.Kind)
	require.Len(t, text.Clips, 3)

	assert.Equal(t, 1.0, text.Clips[0].Start)
	assert.Equal(t, "Hello there", text.Clips[0].Content)
	assert.Equal(t, 3.0, text.Clips[1].Start, "pushed past the previous cue")
	assert.Equal(t, MinClipDuration, text.Clips[1].Duration)
	assert.Equal(t, 10.0, text.Clips[2].Start)
}

func TestAddCaptionsReusesTrackAndRespectsLock(t *testing.T) {
	s := NewStore(seqIDs())
	text := s.AddTrack(KindText)
	assert.Equal(t, text, s.EnsureTrack(KindText))

	s.SetTrackFlag(text, FlagLocked, true)
	_, err := s.AddCaptions([]Caption{{Text: "x", Duration: 1}})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestAddCaptionsNonFiniteTiming(t *testing.T) {
	s := NewStore(seqIDs())
	ids, err := s.AddCaptions([]Caption{
		{Text: "nan", Start: math.NaN(), Duration: math.NaN()},
		{Text: "inf", Start: math.Inf(-1), Duration: math.Inf(1)},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	first, _, _ := s.Clip(ids[0])
	assert.Equal(t, 0.0, first.Start)
	assert.Equal(t, MinClipDuration, first.Duration)
	second, _, _ := s.Clip(ids[1])
	assert.Equal(t, MinClipDuration, second.Start)
	assert.Equal(t, MinClipDuration, second.Duration)
	assert.Equal(t, MinTimelineDuration+TrailingBuffer, s.TotalDuration())
}

func TestCaptionNameTruncates(t *testing.T) {
	assert.Equal(t, "short", captionName("short"))
	assert.Equal(t, "abcdefghijklmnopqrstuvwx…", captionName("abcdefghijklmnopqrstuvwxyz"))
}
