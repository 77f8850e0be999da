package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/subtitle"
	"github.com/ivlev/cutline/internal/timeline"
)

func NewCaptionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "captions",
		Short: "Import or export captions as SRT/WebVTT",
	}
	cmd.AddCommand(newCaptionsImportCommand(rootOpts))
	cmd.AddCommand(newCaptionsExportCommand(rootOpts))
	return cmd
}

func newCaptionsImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.srt|file.vtt>",
		Short: "Place subtitle cues on the text track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			entries, err := subtitle.Parse(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			ids, err := s.store.AddCaptions(subtitle.Captions(entries))
			if err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Imported %d captions from %s\n", len(ids), args[0])
			return nil
		},
	}
}

func newCaptionsExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.srt>",
		Short: "Write the first text track as SRT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			var clips []timeline.Clip
			for _, tr := range s.store.Snapshot().Tracks {
				if tr.Kind == timeline.KindText {
					clips = tr.Clips
					break
				}
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := subtitle.WriteSRT(f, clips); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Wrote %d captions to %s\n", len(clips), args[0])
			return nil
		},
	}
}
