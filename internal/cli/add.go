package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/config"
	"github.com/ivlev/cutline/internal/source"
	"github.com/ivlev/cutline/internal/system"
	"github.com/ivlev/cutline/internal/timeline"
)

// DefaultStillDuration is used for images and unprobeable media.
const DefaultStillDuration = 5.0

var audioExts = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		kindName string
		trackID  string
		text     string
		name     string
		duration float64
	)

	cmd := &cobra.Command{
		Use:   "add [media]",
		Short: "Append a media or text clip to a track",
		Long: `Append a clip at the end of a track.

Media durations are taken from the file when --duration is not given:
documents show each page for page_duration seconds, frame directories play
at fps, other files are probed with ffprobe.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}

			var tmpl timeline.ClipTemplate
			switch {
			case text != "":
				tmpl = timeline.ClipTemplate{Kind: timeline.KindText, Name: name, Content: text, Duration: duration}
				if tmpl.Name == "" {
					tmpl.Name = strings.SplitN(text, "\n", 2)[0]
				}
				if tmpl.Duration <= 0 {
					tmpl.Duration = 3
				}
			case len(args) == 1:
				kind, err := mediaKind(args[0], kindName)
				if err != nil {
					return err
				}
				tmpl = timeline.ClipTemplate{Kind: kind, Name: name, SourceRef: args[0], Duration: duration}
				if tmpl.Name == "" {
					tmpl.Name = filepath.Base(args[0])
				}
				if tmpl.Duration <= 0 {
					tmpl.Duration = mediaDuration(cmd.ErrOrStderr(), s.library(rootOpts), rootOpts.Config(), args[0])
				}
			default:
				return fmt.Errorf("nothing to add: pass a media path or --text")
			}

			if trackID == "" {
				trackID = s.store.EnsureTrack(tmpl.Kind)
			}
			id, ok := s.store.AddClip(trackID, tmpl)
			if !ok {
				return fmt.Errorf("track %s rejected the clip (unknown, locked or not a %s track)", trackID, tmpl.Kind)
			}
			if err := s.save(); err != nil {
				return err
			}

			c, _, _ := s.store.Clip(id)
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Added %s %s at %.2fs (%.2fs) on track %s\n", c.Kind, id, c.Start, c.Duration, trackID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", "", "clip kind: video, audio, text (default: from the file extension)")
	cmd.Flags().StringVarP(&trackID, "track", "t", "", "target track id (default: first track of the kind)")
	cmd.Flags().StringVar(&text, "text", "", "add a text clip with this content")
	cmd.Flags().StringVar(&name, "name", "", "clip name")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "clip duration in seconds")
	return cmd
}

func mediaKind(ref, explicit string) (timeline.Kind, error) {
	if explicit != "" {
		return timeline.ParseKind(explicit)
	}
	ext := strings.ToLower(filepath.Ext(ref))
	for _, a := range audioExts {
		if ext == a {
			return timeline.KindAudio, nil
		}
	}
	return timeline.KindVideo, nil
}

func mediaDuration(warn io.Writer, lib *source.Library, cfg *config.Config, ref string) float64 {
	path := ref
	if lib.Root != "" && !filepath.IsAbs(ref) {
		path = filepath.Join(lib.Root, ref)
	}
	ext := strings.ToLower(filepath.Ext(ref))

	switch {
	case ext == ".pdf":
		if n, err := lib.PageCount(ref); err == nil {
			return float64(n) * cfg.PageDuration
		}
	case isDir(path):
		if n, err := lib.PageCount(ref); err == nil && cfg.FPS > 0 {
			return float64(n) / float64(cfg.FPS)
		}
	case ext == ".png" || ext == ".jpg" || ext == ".jpeg":
		return DefaultStillDuration
	default:
		d, err := system.ProbeDuration(path)
		if err == nil && d > 0 {
			return d
		}
		fmt.Fprintf(warn, "[!] Не удалось определить длительность %s: %v\n", ref, err)
	}
	return DefaultStillDuration
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
