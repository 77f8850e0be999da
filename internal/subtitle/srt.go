package subtitle

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"github.com/ivlev/cutline/internal/timeline"
)

// Entry is one cue of a subtitle file.
type Entry struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

var bom = []byte("\ufeff")

// Parse reads SRT or WebVTT cues. The format is picked from the WEBVTT
// header; multi-line cues keep their line breaks.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, bom)

	var subs *astisub.Subtitles
	if bytes.HasPrefix(data, []byte("WEBVTT")) {
		subs, err = astisub.ReadFromWebVTT(bytes.NewReader(data))
	} else {
		subs, err = astisub.ReadFromSRT(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parse subtitles: %w", err)
	}

	entries := make([]Entry, 0, len(subs.Items))
	for i, it := range subs.Items {
		if it.EndAt < it.StartAt {
			return nil, fmt.Errorf("cue %d ends before it starts", i+1)
		}
		lines := make([]string, 0, len(it.Lines))
		for _, l := range it.Lines {
			if s := strings.TrimSpace(l.String()); s != "" {
				lines = append(lines, s)
			}
		}
		entries = append(entries, Entry{
			Index: i + 1,
			Start: it.StartAt.Round(time.Millisecond),
			End:   it.EndAt.Round(time.Millisecond),
			Text:  strings.Join(lines, "\n"),
		})
	}
	return entries, nil
}

// Captions converts entries to timeline caption triples.
func Captions(entries []Entry) []timeline.Caption {
	out := make([]timeline.Caption, 0, len(entries))
	for _, e := range entries {
		out = append(out, timeline.Caption{
			Text:     e.Text,
			Start:    e.Start.Seconds(),
			Duration: (e.End - e.Start).Seconds(),
		})
	}
	return out
}

// WriteSRT renders the clips of a text track as an SRT file. Nothing is
// written when no clip carries text.
func WriteSRT(w io.Writer, clips []timeline.Clip) error {
	subs := astisub.NewSubtitles()
	for _, c := range clips {
		if c.Kind != timeline.KindText || strings.TrimSpace(c.Content) == "" {
			continue
		}
		it := &astisub.Item{
			StartAt: seconds(c.Start),
			EndAt:   seconds(c.End()),
		}
		for _, line := range strings.Split(c.Content, "\n") {
			it.Lines = append(it.Lines, astisub.Line{Items: []astisub.LineItem{{Text: line}}})
		}
		subs.Items = append(subs.Items, it)
	}
	if len(subs.Items) == 0 {
		return nil
	}
	return subs.WriteToSRT(w)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}
