package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/filetriage/internal/exitcode"
	"github.com/gyeh/filetriage/internal/logging"
	"github.com/gyeh/filetriage/internal/transferlog"
)

var cleanupDays int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List transfer sessions, newest first",
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&cleanupDays, "cleanup", 0, "Delete sessions older than this many days")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Debug)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}

	tlm, err := transferlog.NewManager(cfg.LogDir, log)
	if err != nil {
		log.Error().Err(err).Msg("cannot open transfer log directory")
		os.Exit(exitcode.RestoreError)
	}

	if cleanupDays > 0 {
		removed, err := tlm.CleanupOlderThan(cleanupDays)
		if err != nil {
			log.Error().Err(err).Msg("cleanup failed")
			os.Exit(exitcode.RestoreError)
		}
		fmt.Printf("Removed %d sessions older than %d days.\n", removed, cleanupDays)
	}

	sessions, err := tlm.List()
	if err != nil {
		log.Error().Err(err).Msg("cannot list sessions")
		os.Exit(exitcode.RestoreError)
	}
	if len(sessions) == 0 {
		fmt.Println("No transfer sessions.")
		return nil
	}

	for _, path := range sessions {
		doc, err := transferlog.Load(path)
		if err != nil {
			fmt.Printf("%s  (unreadable: %v)\n", path, err)
			continue
		}
		state := "open"
		if doc.Info.EndTime != nil {
			state = "closed"
		}
		fmt.Printf("%s  %s  %d ops (%d ok, %d failed)  %s\n",
			path, doc.Info.StartTime.Format("2006-01-02 15:04:05"),
			doc.Info.Total, doc.Info.Successful, doc.Info.Failed, state)
	}
	return nil
}
