package project

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cutline/internal/timeline"
)

func seqIDs() timeline.Option {
	n := 0
	return timeline.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id%d", n)
	})
}

func teaser(t *testing.T) *timeline.Store {
	t.Helper()
	s := timeline.NewStore(seqIDs())
	video := s.AddTrack(timeline.KindVideo)
	audio := s.AddTrack(timeline.KindAudio)

	_, ok := s.AddClip(video, timeline.ClipTemplate{Name: "Intro", SourceRef: "media/intro.mp4", Duration: 12.5})
	require.True(t, ok)
	_, ok = s.AddClip(video, timeline.ClipTemplate{Name: "Demo", SourceRef: "media/demo.pdf", Duration: 20})
	require.True(t, ok)
	_, ok = s.AddClip(audio, timeline.ClipTemplate{Name: "Score", SourceRef: "media/score.mp3", Duration: 45})
	require.True(t, ok)
	require.True(t, s.SetTrackFlag(audio, timeline.FlagMuted, true))

	_, err := s.AddCaptions([]timeline.Caption{{Text: "Welcome to cutline", Start: 1, Duration: 3}})
	require.NoError(t, err)
	return s
}

func TestEncodeGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FromSnapshot("Launch teaser", teaser(t).Snapshot())))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "launch_teaser", buf.Bytes())
}

func TestRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "p.yaml")
	orig := teaser(t)
	require.NoError(t, Save(path, "Launch teaser", orig))

	store, doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Launch teaser", doc.Name)
	assert.Equal(t, orig.Snapshot(), store.Snapshot())
}

func TestDecodeIgnoresStoredTotal(t *testing.T) {
	doc, err := Decode(strings.NewReader(`
version: "1.0"
total_duration: 999
tracks:
  - id: v
    kind: video
    clips:
      - id: c
        start: 50
        duration: 0.2
`))
	require.NoError(t, err)

	store, err := Restore(doc)
	require.NoError(t, err)
	assert.Equal(t, 60.5, store.TotalDuration())

	c, trackID, ok := store.Clip("c")
	require.True(t, ok)
	assert.Equal(t, "v", trackID)
	assert.Equal(t, timeline.KindVideo, c.Kind)
	assert.Equal(t, 0.5, c.Duration)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"bad version": "version: \"2.0\"\ntracks: []\n",
		"not yaml":    "tracks: [",
	}
	for name, in := range cases {
		_, err := Decode(strings.NewReader(in))
		assert.Error(t, err, name)
	}

	restoreCases := map[string]string{
		"unknown kind":   "tracks:\n  - id: a\n    kind: smell\n    clips: []\n",
		"negative start": "tracks:\n  - id: a\n    kind: audio\n    clips:\n      - id: c\n        start: -1\n        duration: 2\n",
		"missing id":     "tracks:\n  - kind: text\n    clips: []\n",
	}
	for name, in := range restoreCases {
		doc, err := Decode(strings.NewReader(in))
		require.NoError(t, err, name)
		_, err = Restore(doc)
		assert.Error(t, err, name)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	at := time.Date(2026, 2, 13, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("projects", "project_2026-02-13_01-00-00.yaml"), GeneratePath(DefaultDir, at))

	dir := t.TempDir()
	require.NoError(t, Write(GeneratePath(dir, at), &Document{Version: Version}))
	got, err := FindLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, GeneratePath(dir, at), got)
}
