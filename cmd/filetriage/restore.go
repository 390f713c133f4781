package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/filetriage/internal/exitcode"
	"github.com/gyeh/filetriage/internal/logging"
	"github.com/gyeh/filetriage/internal/transferlog"
)

var (
	restoreIDs    []int64
	restoreDryRun bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [session file]",
	Short: "Replay a transfer session in reverse, moving files back where they came from",
	Long:  "Replays the inverse of each logged operation. Defaults to the most recent session when no file is given. Files whose source still exists or whose target has vanished are skipped, never overwritten.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRestore,
}

func init() {
	f := restoreCmd.Flags()
	f.Int64SliceVar(&restoreIDs, "ids", nil, "Restore only these operation ids (default: all)")
	f.BoolVar(&restoreDryRun, "dry-run", false, "Report what would be restored without touching any file")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Debug)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}

	var sessionFile string
	if len(args) == 1 {
		sessionFile = args[0]
	} else {
		tlm, err := transferlog.NewManager(cfg.LogDir, log)
		if err != nil {
			log.Error().Err(err).Msg("cannot open transfer log directory")
			os.Exit(exitcode.RestoreError)
		}
		sessions, err := tlm.List()
		if err != nil || len(sessions) == 0 {
			log.Error().Err(err).Msg("no transfer sessions found")
			os.Exit(exitcode.RestoreError)
		}
		sessionFile = sessions[0]
	}

	report, err := transferlog.Restore(sessionFile, restoreIDs, restoreDryRun, log)
	if err != nil {
		log.Error().Err(err).Str("session", sessionFile).Msg("restore failed")
		os.Exit(exitcode.RestoreError)
	}

	mode := "restore"
	if report.DryRun {
		mode = "restore (dry run)"
	}
	fmt.Printf("%s of %s: %d restored, %d skipped, %d failed of %d operations\n",
		mode, report.SessionFile, report.Restored, report.Skipped, report.Failed, report.Total)
	for _, d := range report.Details {
		marker := "-"
		if d.Restored {
			marker = "+"
		}
		fmt.Printf("  %s op %d: %s\n", marker, d.OperationID, d.Message)
	}

	if report.Failed > 0 {
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
