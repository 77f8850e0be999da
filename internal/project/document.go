package project

import (
	"github.com/ivlev/cutline/internal/timeline"
)

const Version = "1.0"

// Document is the persisted timeline, also handed to the external encoder.
type Document struct {
	Version string  `yaml:"version"`
	Name    string  `yaml:"name,omitempty"`
	Tracks  []Track `yaml:"tracks"`
	// TotalDuration is informational; it is recomputed on load.
	TotalDuration float64 `yaml:"total_duration"`
}

type Track struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Label  string `yaml:"label,omitempty"`
	Muted  bool   `yaml:"muted,omitempty"`
	Locked bool   `yaml:"locked,omitempty"`
	Hidden bool   `yaml:"hidden,omitempty"`
	Clips  []Clip `yaml:"clips"`
}

type Clip struct {
	ID        string  `yaml:"id"`
	Kind      string  `yaml:"kind,omitempty"`
	Name      string  `yaml:"name,omitempty"`
	SourceRef string  `yaml:"source_ref,omitempty"`
	Content   string  `yaml:"content,omitempty"`
	Start     float64 `yaml:"start"`
	Duration  float64 `yaml:"duration"`
}

// FromSnapshot builds a document from a timeline snapshot.
func FromSnapshot(name string, snap timeline.Snapshot) *Document {
	doc := &Document{
		Version:       Version,
		Name:          name,
		Tracks:        make([]Track, 0, len(snap.Tracks)),
		TotalDuration: snap.TotalDuration(),
	}
	for _, ts := range snap.Tracks {
		tr := Track{
			ID:     ts.ID,
			Kind:   string(ts.Kind),
			Label:  ts.Label,
			Muted:  ts.Muted,
			Locked: ts.Locked,
			Hidden: ts.Hidden,
			Clips:  make([]Clip, 0, len(ts.Clips)),
		}
		for _, c := range ts.Clips {
			tr.Clips = append(tr.Clips, Clip{
				ID:        c.ID,
				Kind:      string(c.Kind),
				Name:      c.Name,
				SourceRef: c.SourceRef,
				Content:   c.Content,
				Start:     c.Start,
				Duration:  c.Duration,
			})
		}
		doc.Tracks = append(doc.Tracks, tr)
	}
	return doc
}

// Snapshot converts the document back. Kinds are parsed leniently here;
// timeline.FromSnapshot does the validation.
func (d *Document) Snapshot() timeline.Snapshot {
	snap := timeline.Snapshot{Tracks: make([]timeline.TrackSnapshot, 0, len(d.Tracks))}
	for _, tr := range d.Tracks {
		ts := timeline.TrackSnapshot{
			ID:     tr.ID,
			Kind:   timeline.Kind(tr.Kind),
			Label:  tr.Label,
			Muted:  tr.Muted,
			Locked: tr.Locked,
			Hidden: tr.Hidden,
			Clips:  make([]timeline.Clip, 0, len(tr.Clips)),
		}
		if tr.Kind == "" {
			ts.Kind = timeline.KindVideo
		}
		for _, c := range tr.Clips {
			ts.Clips = append(ts.Clips, timeline.Clip{
				ID:        c.ID,
				Kind:      timeline.Kind(c.Kind),
				Name:      c.Name,
				SourceRef: c.SourceRef,
				Content:   c.Content,
				Start:     c.Start,
				Duration:  c.Duration,
			})
		}
		snap.Tracks = append(snap.Tracks, ts)
	}
	return snap
}

// Restore validates the document and builds a live store from it.
func Restore(d *Document, opts ...timeline.Option) (*timeline.Store, error) {
	return timeline.FromSnapshot(d.Snapshot(), opts...)
}
