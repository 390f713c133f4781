package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/filetriage/internal/exitcode"
	"github.com/gyeh/filetriage/internal/logging"
	"github.com/gyeh/filetriage/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan [source dir...]",
	Short: "List the files an organize run would process (no writes)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Debug)

	files, err := scan.Run(args, log)
	if err != nil {
		log.Error().Err(err).Msg("source scan failed")
		os.Exit(exitcode.ScanError)
	}

	var total int64
	for _, f := range files {
		fmt.Printf("%10d  %s\n", f.Size, f.Path)
		total += f.Size
	}
	fmt.Printf("%d files, %d bytes\n", len(files), total)
	return nil
}
