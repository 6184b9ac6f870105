// Command servisbet runs the review response API and its scheduler.
//
//	servisbet serve     start the HTTP API, timers and poller
//	servisbet migrate   create or update the database schema
//	servisbet sweep     run one retention sweep and exit
//	servisbet version   print build information
//
// Configuration comes from the environment; a .env file is loaded first
// when present.
//
// @title       Servisbet Review Response API
// @version     1.0
// @description Response templates, bulk and scheduled replies to customer reviews.
// @BasePath    /api/v1
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var envFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "servisbet",
		Short:         "Servisbet - templated and scheduled responses to customer reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file (ignored when missing)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSweepCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "servisbet %s (built %s)\n", version, buildTime)
		},
	}
}

// loadEnvFile applies path without overriding variables already set. A
// missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
