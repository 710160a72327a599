package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one tracking batch from the spreadsheet's URL column",
	Long: `Run a single tracking batch and exit.

The batch reads the URL column of the configured spreadsheet, admits post
URLs only, scrapes them through the Apify actor, and reconciles the result
into the data sheet. This is the command to put behind cron.

Exit code 0 means the batch completed (including the case where the URL
column held nothing to track); exit code 1 means it failed.`,
	Example: `  # Run a batch with config from the environment
  igtracker run

  # Run with an explicit config file
  igtracker run --config /etc/igtracker.yaml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runBatchCommand()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBatchCommand() {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := loadAppConfig(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		os.Exit(1)
	}

	if err := a.runBatch(); err != nil {
		a.log.WithError(err).Error("Tracking batch failed")
		os.Exit(1)
	}
}
