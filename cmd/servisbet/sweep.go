package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horlartundhey/servisbet-sub001/internal/config"
	"github.com/horlartundhey/servisbet-sub001/internal/sysutil"
)

func newSweepCmd() *cobra.Command {
	var fireDue bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Purge old batches and expired idempotency keys, then exit",
		Long: `Runs one retention sweep: completed and failed batches older than
SCHEDULE_RETENTION and expired Idempotency-Key records are deleted. With
--fire-due, overdue pending batches are executed first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty)

			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			a := newApp(cmd.Context(), cfg, db, nil, logger)
			defer a.close()

			if fireDue {
				n, err := a.scheduler.FireDue(cmd.Context(), cfg.Scheduler.PollBatch)
				if err != nil {
					return fmt.Errorf("fire due: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "fired %d overdue batches\n", n)
			}
			n, err := a.scheduler.Sweep(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d batches\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fireDue, "fire-due", false, "Execute overdue pending batches before sweeping")
	return cmd
}
