package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ivlev/cutline/internal/effects"
	"github.com/ivlev/cutline/internal/engine"
	"github.com/ivlev/cutline/internal/logging"
	"github.com/ivlev/cutline/internal/system"
)

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out      string
		from, to float64
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the timeline to a PNG sequence for an external encoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config()
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			s, err := openProject(rootOpts)
			if err != nil {
				return err
			}
			filter, err := effects.Resolve(cfg.Filter)
			if err != nil {
				return fmt.Errorf("filter: %w", err)
			}

			log := logging.WithComponent("engine")
			// Увеличиваем лимит открытых файлов (документы открываются в каждом воркере)
			if limit, err := system.RaiseOpenFileLimit(2048); err != nil {
				log.Warn().Err(err).Msg("open file limit unchanged")
			} else {
				log.Debug().Uint64("limit", limit).Msg("open file limit")
			}

			w := cmd.OutOrStdout()
			exporter := &engine.Exporter{
				Config:  cfg,
				Library: s.library(rootOpts),
				Filter:  filter,
				Log:     log,
				Name:    s.doc.Name,
				Progress: func(done, total int) {
					step := max(total/10, 1)
					if done%step == 0 || done == total {
						fmt.Fprintf(w, "[>] Ready: %d/%d\n", done, total)
					}
				},
			}

			fmt.Fprintln(w, "--- [EXPORT] ---")
			fmt.Fprintf(w, "[*] Project: %s | %dx%d @ %d FPS | Filter: %q\n", s.path, cfg.Width, cfg.Height, cfg.FPS, filter.String())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			report, err := exporter.Export(ctx, s.store.Snapshot(), out, engine.Range{From: from, To: to})
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "[+++] Export finished: %d frames in %s\n", report.Frames, out)
			if cfg.ShowStats {
				if err := engine.WriteReport(w, report, cfg.BuildVersion, "benchmark.log"); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "[!] Не удалось записать benchmark.log: %v\n", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "output/frames", "output directory")
	cmd.Flags().Float64Var(&from, "from", 0, "start time in seconds")
	cmd.Flags().Float64Var(&to, "to", 0, "end time in seconds (default: timeline end)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel renderers (default: physical cores)")
	return cmd
}
