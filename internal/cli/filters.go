package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/effects"
)

func NewFiltersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters [expression]",
		Short: "List filter presets or check a filter expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := effects.Resolve(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "[+] ok: %q\n", f.String())
				return nil
			}
			for _, name := range effects.PresetNames() {
				fmt.Fprintf(w, "%-8s %s\n", name, effects.Presets[name])
			}
			return nil
		},
	}
}
