package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/project"
	"github.com/ivlev/cutline/internal/timeline"
)

func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	var name string
	var empty bool

	cmd := &cobra.Command{
		Use:   "new [path]",
		Short: "Create a project with one video, audio and text track",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.GeneratePath(project.DefaultDir, time.Now())
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			store := timeline.NewStore()
			if !empty {
				for _, k := range timeline.Kinds {
					store.AddTrack(k)
				}
			}
			if err := project.Save(path, name, store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Project created: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "Untitled", "project name")
	cmd.Flags().BoolVar(&empty, "empty", false, "create without tracks")
	return cmd
}
