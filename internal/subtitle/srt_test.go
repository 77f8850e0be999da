package subtitle

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cutline/internal/timeline"
)

const sample = "\ufeff1\r\n00:00:01,000 --> 00:00:03,500\r\nHello there\r\n\r\n2\r\n00:00:04,000 --> 00:00:06,000\r\nTwo\r\nlines\r\n"

func TestParseSRT(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, time.Second, entries[0].Start)
	assert.Equal(t, 3500*time.Millisecond, entries[0].End)
	assert.Equal(t, "Hello there", entries[0].Text)
	assert.Equal(t, "Two\nlines", entries[1].Text)
	assert.Equal(t, 2, entries[1].Index)
}

func TestParseVTT(t *testing.T) {
	in := "WEBVTT\n\nintro\n00:01.000 --> 00:02.250 align:center\nHi\n"
	entries, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2250*time.Millisecond, entries[0].End)
	assert.Equal(t, "Hi", entries[0].Text)
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"1\n00:00:05,000 --> 00:00:01,000\nbackwards\n",
		"1\nnonsense --> 00:00:01,000\nx\n",
	} {
		_, err := Parse(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

func TestCaptions(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	caps := Captions(entries)
	require.Len(t, caps, 2)
	assert.Equal(t, timeline.Caption{Text: "Hello there", Start: 1, Duration: 2.5}, caps[0])
}

func TestWriteSRT(t *testing.T) {
	clips := []timeline.Clip{
		{Kind: timeline.KindText, Content: "Hello", Start: 1, Duration: 2.5},
		{Kind: timeline.KindVideo, SourceRef: "a.mp4", Start: 0, Duration: 10},
		{Kind: timeline.KindText, Content: "Later", Start: 3725.25, Duration: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSRT(&buf, clips))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "1\n00:00:01,000 --> 00:00:03,500\nHello\n"), out)
	assert.Contains(t, out, "2\n01:02:05,250 --> 01:02:06,250\nLater")

	back, err := Parse(&buf)
	require.NoError(t, err)
	assert.Len(t, back, 2)
}

func TestWriteSRTWithoutText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSRT(&buf, []timeline.Clip{{Kind: timeline.KindText, Content: "  "}}))
	assert.Empty(t, buf.String())
}
