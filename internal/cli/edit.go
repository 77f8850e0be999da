package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/interact"
	"github.com/ivlev/cutline/internal/logging"
	"github.com/ivlev/cutline/internal/scale"
	"github.com/ivlev/cutline/internal/timeline"
)

// noticeSink prints controller notices and keeps the last one.
type noticeSink struct {
	w    io.Writer
	last *interact.Notice
}

func (n *noticeSink) Notify(notice interact.Notice) {
	fmt.Fprintf(n.w, "[!] %s\n", notice.Message)
	n.last = &notice
}

func (n *noticeSink) err(fallback string) error {
	if n.last == nil {
		return errors.New(fallback)
	}
	if n.last.Err != nil {
		return fmt.Errorf("%s: %w", n.last.Message, n.last.Err)
	}
	return errors.New(n.last.Message)
}

func newController(s *session, pps float64, w io.Writer) (*interact.Controller, *noticeSink) {
	sink := &noticeSink{w: w}
	ctl := interact.NewController(s.store, scale.New(pps),
		interact.WithNotifier(sink),
		interact.WithLogger(logging.WithComponent("interact")),
	)
	return ctl, sink
}

func NewDragCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		mode string
		dx   float64
		pps  float64
	)

	cmd := &cobra.Command{
		Use:   "drag <clip-id>",
		Short: "Replay a pointer drag on a clip (move, trim-start, trim-end)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := interact.ParseDragKind(mode)
			if err != nil {
				return err
			}
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			before, trackID, ok := s.store.Clip(args[0])
			if !ok {
				return fmt.Errorf("clip %s: %w", args[0], timeline.ErrNotFound)
			}

			if pps <= 0 {
				pps = rootOpts.Config().PixelsPerSecond
			}
			ctl, sink := newController(s, pps, cmd.ErrOrStderr())
			if !ctl.PointerDown(before.ID, trackID, kind, 0) {
				return sink.err("drag refused")
			}
			ctl.PointerMove(dx)
			ctl.PointerUp()

			after, _, _ := s.store.Clip(before.ID)
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[*] %s %s: [%.2f, %.2f) -> [%.2f, %.2f)\n",
				kind, before.ID, before.Start, before.End(), after.Start, after.End())
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "move", "gesture: move, trim-start, trim-end")
	cmd.Flags().Float64Var(&dx, "dx", 0, "pointer delta in pixels")
	cmd.Flags().Float64Var(&pps, "scale", 0, "pixels per second (default: pixels_per_second)")
	return cmd
}

func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	var at float64

	cmd := &cobra.Command{
		Use:   "split <clip-id>",
		Short: "Split a clip at the playhead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			ctl, _ := newController(s, rootOpts.Config().PixelsPerSecond, cmd.ErrOrStderr())
			if !ctl.Select(args[0]) {
				return fmt.Errorf("clip %s: %w", args[0], timeline.ErrNotFound)
			}
			second, err := ctl.RequestSplit(at)
			if err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Split %s at %.2fs, new clip %s\n", args[0], at, second)
			return nil
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "playhead position in seconds")
	cmd.MarkFlagRequired("at")
	return cmd
}

func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <clip-id>",
		Short: "Delete a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			_, trackID, ok := s.store.Clip(args[0])
			if !ok {
				return fmt.Errorf("clip %s: %w", args[0], timeline.ErrNotFound)
			}
			if s.store.TrackLocked(trackID) {
				return fmt.Errorf("clip %s: %w", args[0], timeline.ErrLocked)
			}
			ctl, _ := newController(s, rootOpts.Config().PixelsPerSecond, cmd.ErrOrStderr())
			ctl.Select(args[0])
			if !ctl.DeleteSelected() {
				return fmt.Errorf("clip %s was not deleted", args[0])
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[-] Deleted %s\n", args[0])
			return nil
		},
	}
}

func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Add, change or remove tracks",
	}
	cmd.AddCommand(newTrackAddCommand(rootOpts))
	cmd.AddCommand(newTrackSetCommand(rootOpts))
	cmd.AddCommand(newTrackRemoveCommand(rootOpts))
	return cmd
}

func newTrackAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <video|audio|text>",
		Short: "Append a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := timeline.ParseKind(args[0])
			if err != nil {
				return err
			}
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			id := s.store.AddTrack(kind)
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Track %s (%s)\n", id, kind)
			return nil
		},
	}
}

func newTrackSetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		muted, locked, hidden bool
		label                 string
	)

	cmd := &cobra.Command{
		Use:   "set <track-id>",
		Short: "Change track flags or label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			id := args[0]
			if _, ok := s.store.Track(id); !ok {
				return fmt.Errorf("track %s: %w", id, timeline.ErrNotFound)
			}

			flags := []struct {
				name  string
				flag  timeline.Flag
				value bool
			}{
				{"muted", timeline.FlagMuted, muted},
				{"locked", timeline.FlagLocked, locked},
				{"hidden", timeline.FlagHidden, hidden},
			}
			for _, f := range flags {
				if cmd.Flags().Changed(f.name) {
					s.store.SetTrackFlag(id, f.flag, f.value)
				}
			}
			if cmd.Flags().Changed("label") {
				s.store.RenameTrack(id, label)
			}
			if err := s.save(); err != nil {
				return err
			}

			tr, _ := s.store.Track(id)
			fmt.Fprintf(cmd.OutOrStdout(), "[*] %s: muted=%t locked=%t hidden=%t\n", tr.Label, tr.Muted, tr.Locked, tr.Hidden)
			return nil
		},
	}

	cmd.Flags().BoolVar(&muted, "muted", false, "mute the track")
	cmd.Flags().BoolVar(&locked, "locked", false, "lock the track against edits")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "hide the track from the preview")
	cmd.Flags().StringVar(&label, "label", "", "new track label")
	return cmd
}

func newTrackRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <track-id>",
		Short: "Remove a track together with its clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			if _, ok := s.store.Track(args[0]); !ok {
				return fmt.Errorf("track %s: %w", args[0], timeline.ErrNotFound)
			}
			s.store.RemoveTrack(args[0])
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[-] Removed track %s\n", args[0])
			return nil
		},
	}
}
