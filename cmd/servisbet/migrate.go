package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horlartundhey/servisbet-sub001/internal/config"
	"github.com/horlartundhey/servisbet-sub001/internal/sysutil"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty)

			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied to %s\n", cfg.DBPath)
			return nil
		},
	}
}
