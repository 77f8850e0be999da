package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/logging"
)

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		at  float64
		out string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render a preview frame whenever the project file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveProject(rootOpts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchProject(ctx, rootOpts, path, at, out, cmd.OutOrStdout(), nil)
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "preview time in seconds")
	cmd.Flags().StringVarP(&out, "out", "o", "preview.png", "output PNG")
	return cmd
}

// watchProject renders once, then again on every write to path, until ctx
// is done. ready is closed once the watcher is armed.
func watchProject(ctx context.Context, opts *RootOptions, path string, at float64, out string, w io.Writer, ready chan<- struct{}) error {
	log := logging.WithComponent("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// editors replace files, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	render := func() {
		opts.ProjectPath = path
		s, err := openProject(opts)
		if err != nil {
			fmt.Fprintf(w, "[!] %v\n", err)
			return
		}
		frame, err := renderPreview(opts, s, at, out)
		if err != nil {
			fmt.Fprintf(w, "[!] %v\n", err)
			return
		}
		fmt.Fprintf(w, "[*] Preview updated: %s (%d layers)\n", out, len(frame.Layers))
	}

	render()
	fmt.Fprintf(w, "[*] Watching %s\n", path)
	if ready != nil {
		close(ready)
	}

	// coalesce bursts of events from one save
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debug().Str("event", event.Op.String()).Msg("project changed")
				debounce = time.After(100 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		case <-debounce:
			debounce = nil
			render()
		}
	}
}
