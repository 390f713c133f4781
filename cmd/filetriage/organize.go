package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/filetriage/internal/exitcode"
	"github.com/gyeh/filetriage/internal/logging"
	"github.com/gyeh/filetriage/internal/organize"
	"github.com/gyeh/filetriage/internal/scan"
)

var organizeCmd = &cobra.Command{
	Use:   "organize [source dir...]",
	Short: "Classify and migrate files from source directories into the target tree",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOrganize,
}

func init() {
	f := organizeCmd.Flags()
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Report what would happen without touching any file")
	f.BoolVar(&cfg.Move, "move", false, "Move files instead of copying them")
	f.IntVar(&cfg.Workers, "workers", 0, "Concurrent file workers (default from config)")
	rootCmd.AddCommand(organizeCmd)
}

func runOrganize(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Debug)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.ValidationError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := scan.Run(args, log)
	if err != nil {
		log.Error().Err(err).Msg("source scan failed")
		os.Exit(exitcode.ScanError)
	}
	if len(files) == 0 {
		fmt.Println("No files found in the source directories.")
		return nil
	}

	summary, err := organize.Run(ctx, &cfg, files, log)
	if err != nil {
		log.Error().Err(err).Msg("organize run failed")
		os.Exit(exitcode.MigrateError)
	}

	mode := "organize"
	if summary.DryRun {
		mode = "organize (dry run)"
	}
	fmt.Printf("%s complete: %d/%d files migrated, %d partial, %d failed (%.1fs)\n",
		mode, summary.FilesMigrated, summary.FilesTotal, summary.FilesPartial,
		summary.Failures(), summary.DurationTotal.Seconds())
	fmt.Printf("Transfer log: %s\n", summary.SessionFile)

	switch {
	case summary.FilesTotal > 0 && summary.FilesMigrated == 0:
		os.Exit(exitcode.MigrateError)
	case summary.Failures() > 0:
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
