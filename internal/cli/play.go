package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/logging"
	"github.com/ivlev/cutline/internal/playback"
	"github.com/ivlev/cutline/internal/renderer"
	"github.com/ivlev/cutline/internal/scale"
)

func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		from float64
		span time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run the real-time preview loop headless and report transport state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			comp, err := newCompositor(rootOpts, s.library(rootOpts), false)
			if err != nil {
				return err
			}
			defer comp.Close()

			var frames atomic.Int64
			player := playback.NewPlayer(s.store, comp, playback.NewTickerScheduler(rootOpts.Config().FPS), nil,
				playback.WithFrameHandler(func(*renderer.Frame) { frames.Add(1) }),
				playback.WithPlayerLogger(logging.WithComponent("playback")),
			)
			defer player.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			player.Seek(from)
			player.Play()
			runTransport(ctx, player, span, func(tr playback.Transport) {
				fmt.Fprintf(cmd.OutOrStdout(), "[>] %s / %s\n", scale.FormatTime(tr.Time), scale.FormatTime(tr.Duration))
			})
			player.Pause()

			fmt.Fprintf(cmd.OutOrStdout(), "[*] Stopped at %.2fs after %d frames\n", player.Transport().Time, frames.Load())
			return nil
		},
	}

	cmd.Flags().Float64Var(&from, "from", 0, "start position in seconds")
	cmd.Flags().DurationVar(&span, "for", 5*time.Second, "how long to play")
	return cmd
}

// runTransport reports the transport once a second until the span elapses,
// playback reaches the end or ctx is cancelled.
func runTransport(ctx context.Context, player *playback.Player, span time.Duration, report func(playback.Transport)) {
	deadline := time.NewTimer(span)
	defer deadline.Stop()
	status := time.NewTicker(time.Second)
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-status.C:
			tr := player.Transport()
			report(tr)
			if !tr.Playing {
				return
			}
		}
	}
}
