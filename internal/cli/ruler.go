package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/scale"
)

func NewRulerCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		pps          float64
		scroll       float64
		width        float64
		includeMinor bool
	)

	cmd := &cobra.Command{
		Use:   "ruler",
		Short: "Print the time ruler ticks for a viewport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("scale") {
				pps = rootOpts.Config().PixelsPerSecond
			}
			m := scale.New(pps)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "[*] %.1f px/s, step %gs, visible %s - %s\n",
				m.PixelsPerSecond(), m.TickStep(),
				scale.FormatTime(m.ToSeconds(scroll)), scale.FormatTime(m.ToSeconds(scroll+width)))

			for _, t := range m.Ticks(scroll, width) {
				switch {
				case t.Major:
					fmt.Fprintf(w, "%8.1f | %s\n", t.X, t.Label)
				case includeMinor:
					fmt.Fprintf(w, "%8.1f .\n", t.X)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&pps, "scale", scale.DefaultPixelsPerSecond, "pixels per second")
	cmd.Flags().Float64Var(&scroll, "scroll", 0, "horizontal scroll offset in pixels")
	cmd.Flags().Float64Var(&width, "width", 800, "viewport width in pixels")
	cmd.Flags().BoolVar(&includeMinor, "minor", false, "include minor ticks")
	return cmd
}
