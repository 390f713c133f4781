package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gyeh/filetriage/internal/exitcode"
	"github.com/gyeh/filetriage/internal/logging"
	"github.com/gyeh/filetriage/internal/report"
	"github.com/gyeh/filetriage/internal/resultstore"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print result-store statistics, optionally exporting to Parquet",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Write all result entries to this Parquet file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Debug)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}

	store, err := resultstore.New(cfg.ResultFile, log)
	if err != nil {
		log.Error().Err(err).Msg("cannot open result store")
		os.Exit(exitcode.ValidationError)
	}

	stats, err := store.Stat()
	if err != nil {
		log.Error().Err(err).Msg("cannot read result store")
		os.Exit(exitcode.ValidationError)
	}

	fmt.Println("=== filetriage report ===")
	fmt.Printf("Store:       %s\n", store.Path())
	fmt.Printf("Entries:     %d\n", stats.Total)
	fmt.Printf("Total bytes: %d\n", stats.TotalBytes)
	fmt.Println()
	fmt.Println("By status:")
	for _, status := range sortedKeys(stats.ByStatus) {
		fmt.Printf("  %-22s %d\n", status, stats.ByStatus[status])
	}
	fmt.Println("By extension:")
	for _, ext := range sortedKeys(stats.ByExt) {
		fmt.Printf("  %-22s %d\n", ext, stats.ByExt[ext])
	}

	if reportOut != "" {
		rows, err := report.Export(store, reportOut, log)
		if err != nil {
			log.Error().Err(err).Msg("parquet export failed")
			os.Exit(exitcode.ValidationError)
		}
		fmt.Printf("\nWrote %d rows to %s\n", rows, reportOut)
	}
	return nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
