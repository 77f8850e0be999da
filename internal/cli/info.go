package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/timeline"
)

func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print tracks and clips of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printInfo(w io.Writer, s *session) {
	snap := s.store.Snapshot()
	fmt.Fprintln(w, "--- [PROJECT] ---")
	fmt.Fprintf(w, "[*] %s | %s | Tracks: %d | Duration: %.2fs\n", s.doc.Name, s.path, len(snap.Tracks), snap.TotalDuration())
	for _, tr := range snap.Tracks {
		fmt.Fprintf(w, "[*] %s (%s) id=%s%s\n", tr.Label, tr.Kind, tr.ID, flagSuffix(tr))
		for _, c := range tr.Clips {
			what := c.SourceRef
			if c.Kind == timeline.KindText {
				what = fmt.Sprintf("%q", c.Content)
			}
			fmt.Fprintf(w, "    - %s %-20s [%7.2f, %7.2f) %s\n", c.ID, c.Name, c.Start, c.End(), what)
		}
	}
	fmt.Fprintln(w, "-----------------")
}

func flagSuffix(tr timeline.TrackSnapshot) string {
	var flags []string
	if tr.Muted {
		flags = append(flags, "muted")
	}
	if tr.Locked {
		flags = append(flags, "locked")
	}
	if tr.Hidden {
		flags = append(flags, "hidden")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, " ") + "]"
}
