package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/filetriage/internal/backend"
	"github.com/gyeh/filetriage/internal/classify"
	"github.com/gyeh/filetriage/internal/exitcode"
	"github.com/gyeh/filetriage/internal/logging"
	"github.com/gyeh/filetriage/internal/model"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Preview the classification of a single file (no writes)",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Debug)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.ValidationError)
	}

	rec, err := model.NewFileRecord(args[0])
	if err != nil {
		log.Error().Err(err).Msg("cannot read file")
		os.Exit(exitcode.ScanError)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FileTimeout)
	defer cancel()

	backends, err := backend.NewManager(cfg.EnabledBackends(), log)
	if err != nil {
		log.Error().Err(err).Msg("backend setup failed")
		os.Exit(exitcode.ValidationError)
	}
	classifier := classify.New(&cfg, backends, log)
	decision, timing := classifier.Classify(ctx, rec, cfg.TargetRoot)

	fmt.Printf("File:      %s\n", rec.Name)
	if decision.Success {
		fmt.Printf("Target:    %s\n", decision.TargetDir(cfg.TargetRoot))
		fmt.Printf("Complete:  %v\n", decision.Complete)
	} else {
		fmt.Println("Target:    (no match)")
	}
	if decision.Summary != "" {
		fmt.Printf("Summary:   %s\n", decision.Summary)
	}
	fmt.Printf("Reason:    %s\n", decision.Reason)
	fmt.Printf("Timing:    extract %dms, summary %dms, classify %dms\n",
		timing.ExtractMS, timing.SummaryMS, timing.ClassifyMS)

	if !decision.Success {
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
