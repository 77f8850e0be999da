package cli

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ivlev/cutline/internal/effects"
	"github.com/ivlev/cutline/internal/logging"
	"github.com/ivlev/cutline/internal/playback"
	"github.com/ivlev/cutline/internal/project"
	"github.com/ivlev/cutline/internal/renderer"
	"github.com/ivlev/cutline/internal/source"
	"github.com/ivlev/cutline/internal/timeline"
)

// session is an opened project file.
type session struct {
	path  string
	doc   *project.Document
	store *timeline.Store
}

func (s *session) save() error {
	return project.Save(s.path, s.doc.Name, s.store)
}

func resolveProject(opts *RootOptions) (string, error) {
	if opts.ProjectPath != "" {
		return opts.ProjectPath, nil
	}
	latest, err := project.FindLatest(project.DefaultDir)
	if err != nil {
		return "", fmt.Errorf("no --project given and none found: %w", err)
	}
	return latest, nil
}

func openProject(opts *RootOptions) (*session, error) {
	path, err := resolveProject(opts)
	if err != nil {
		return nil, err
	}
	store, doc, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	return &session{path: path, doc: doc, store: store}, nil
}

// library resolves media relative to media_root, or to the project file.
func (s *session) library(opts *RootOptions) *source.Library {
	cfg := opts.Config()
	root := cfg.MediaRoot
	if root == "" {
		root = filepath.Dir(s.path)
	}
	return &source.Library{
		Root:         root,
		FPS:          float64(cfg.FPS),
		PageDuration: cfg.PageDuration,
		DPI:          cfg.DPI,
	}
}

func newCompositor(opts *RootOptions, lib *source.Library, exact bool) (*renderer.Compositor, error) {
	cfg := opts.Config()
	filter, err := effects.Resolve(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return renderer.New(renderer.Options{
		Width:          cfg.Width,
		Height:         cfg.Height,
		NewDecoder:     func() renderer.VideoDecoder { return lib.NewDecoder() },
		NewAudio:       func() renderer.AudioElement { return lib.NewAudio() },
		Filter:         filter,
		DuckUnderVideo: cfg.DuckUnderVideo,
		DuckVolume:     cfg.DuckVolume,
		SeekTolerance:  cfg.SeekTolerance,
		ExactSeek:      exact,
		FontSize:       cfg.FontSize,
		BurnIn:         cfg.BurnIn,
		Logger:         logging.WithComponent("renderer"),
	})
}

// renderPreview composites one frame the way a scrub does and writes it
// as PNG.
func renderPreview(opts *RootOptions, s *session, at float64, out string) (*renderer.Frame, error) {
	comp, err := newCompositor(opts, s.library(opts), true)
	if err != nil {
		return nil, err
	}
	defer comp.Close()

	player := playback.NewPlayer(s.store, comp, &playback.ManualScheduler{}, nil)
	defer player.Close()
	player.Seek(at)
	frame := player.Last()

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := png.Encode(f, frame.Image); err != nil {
		return nil, err
	}
	return frame, nil
}
