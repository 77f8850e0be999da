package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/config"
	"github.com/ivlev/cutline/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	ConfigPath  string
	ProjectPath string
	Preset      string
	Version     string

	cfg *config.Config
}

// Config returns the configuration loaded for the running command.
func (o *RootOptions) Config() *config.Config {
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	return o.cfg
}

// NewRootCommand creates the root command for the cutline CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:           "cutline",
		Short:         "cutline - headless multi-track timeline editor",
		Long:          "Edit, preview and export multi-track video/audio/text timelines stored as YAML projects.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.InitWriter(cmd.ErrOrStderr(), opts.Verbose)

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyPreset(opts.Preset); err != nil {
				return err
			}
			cfg.BuildVersion = opts.Version
			opts.cfg = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.ProjectPath, "project", "p", "", fmt.Sprintf("project file (default: newest in %s/)", "projects"))
	cmd.PersistentFlags().StringVar(&opts.Preset, "preset", "", "canvas preset: 16:9, 9:16, 4:5, 1:1")

	// Add subcommands
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewTrackCommand(opts))
	cmd.AddCommand(NewDragCommand(opts))
	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewCaptionsCommand(opts))
	cmd.AddCommand(NewFrameCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewRulerCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewFiltersCommand(opts))

	return cmd
}
