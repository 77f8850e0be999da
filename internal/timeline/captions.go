package timeline

import (
	"math"
	"strings"
)

// AddCaptions places cues as ordinary text clips on the first text track,
// creating the track if needed. A cue starts at its approximate offset
// unless that would overlap the previous caption, in which case it is
// pushed to the end of the track.
func (s *Store) AddCaptions(cues []Caption) ([]string, error) {
	trackID := s.EnsureTrack(KindText)

	s.mu.Lock()
	idx := s.trackIndexLocked(trackID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	t := s.tracks[idx]
	if t.Locked {
		s.mu.Unlock()
		return nil, ErrLocked
	}

	ids := make([]string, 0, len(cues))
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		c := &Clip{
			ID:       s.nextID(),
			Kind:     KindText,
			Name:     captionName(text),
			Content:  text,
			Start:    math.Max(math.Max(finite(cue.Start), 0), s.trackEndLocked(t)),
			Duration: clipDuration(cue.Duration),
		}
		s.insertLocked(t, c, len(t.clipIDs))
		ids = append(ids, c.ID)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.notify(Change{Op: OpAddClip, TrackID: trackID, ClipID: id})
	}
	return ids, nil
}

func captionName(text string) string {
	const max = 24
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "…"
}
