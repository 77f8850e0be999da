package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/scale"
)

func NewFrameCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		at  float64
		out string
	)

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Composite a single frame to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			frame, err := renderPreview(rootOpts, s, at, out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "[+] Frame at %s written: %s\n", scale.FormatTime(frame.Time), out)
			for _, l := range frame.Layers {
				fmt.Fprintf(w, "    layer %-5s %s (track %s)\n", l.Kind, l.ClipID, l.TrackID)
			}
			for _, a := range frame.Audio {
				if a.ClipID != "" {
					fmt.Fprintf(w, "    audio %s volume=%.2f\n", a.ClipID, a.Volume)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "time in seconds")
	cmd.Flags().StringVarP(&out, "out", "o", "preview.png", "output PNG")
	return cmd
}
