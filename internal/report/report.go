// Package report exports the result store to Parquet for downstream
// analysis and prints run statistics.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/model"
	"github.com/gyeh/filetriage/internal/resultstore"
)

// ResultRow is the flattened Parquet projection of one result entry.
type ResultRow struct {
	ProcessedAt int64   `parquet:"processed_at,timestamp"`
	RunID       string  `parquet:"run_id"`
	FileName    string  `parquet:"file_name"`
	Extension   string  `parquet:"extension"`
	SizeBytes   int64   `parquet:"size_bytes"`
	TargetPath  *string `parquet:"target_path,optional"`
	RelPath     *string `parquet:"relative_path,optional"`
	Status      string  `parquet:"status"`
	Kind        string  `parquet:"operation_type"`
	Reason      *string `parquet:"match_reason,optional"`
	Error       *string `parquet:"error,optional"`
	ExtractMS   int64   `parquet:"content_extraction_ms"`
	SummaryMS   int64   `parquet:"summary_generation_ms"`
	ClassifyMS  int64   `parquet:"classification_ms"`
	MigrateMS   int64   `parquet:"migration_ms"`
	TotalMS     int64   `parquet:"total_processing_ms"`
}

func toRow(e model.ResultEntry) ResultRow {
	return ResultRow{
		ProcessedAt: e.ProcessedAt.UnixMilli(),
		RunID:       e.RunID,
		FileName:    e.FileName,
		Extension:   e.FileMeta.Extension,
		SizeBytes:   e.FileMeta.Size,
		TargetPath:  optional(e.TargetPath),
		RelPath:     optional(e.RelPath),
		Status:      string(e.Status),
		Kind:        string(e.Kind),
		Reason:      optional(e.Reason),
		Error:       optional(e.Error),
		ExtractMS:   e.Timing.ExtractMS,
		SummaryMS:   e.Timing.SummaryMS,
		ClassifyMS:  e.Timing.ClassifyMS,
		MigrateMS:   e.Timing.MigrateMS,
		TotalMS:     e.Timing.TotalMS,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Export writes every result-store entry to a Parquet file at outPath and
// returns the number of rows written.
func Export(store *resultstore.Store, outPath string, log zerolog.Logger) (int, error) {
	entries, err := store.Load()
	if err != nil {
		return 0, fmt.Errorf("load result store: %w", err)
	}

	rows := make([]ResultRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toRow(e))
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}
	defer outFile.Close()

	start := time.Now()
	writer := parquet.NewGenericWriter[ResultRow](outFile)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return 0, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("close parquet writer: %w", err)
	}

	log.Info().Int("rows", len(rows)).Str("path", outPath).Dur("elapsed", time.Since(start)).Msg("parquet export complete")
	return len(rows), nil
}

// Read streams every row back out of a previously exported Parquet file.
func Read(path string) ([]ResultRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[ResultRow](pf)
	defer reader.Close()

	out := make([]ResultRow, 0, reader.NumRows())
	buf := make([]ResultRow, 64)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
}
