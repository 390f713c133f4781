package transferlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/fileutil"
	"github.com/gyeh/filetriage/internal/model"
)

// Restore replays the inverse of the successful operations in a session
// document. ids narrows the selection when non-empty. Restore is
// conservative: a source file that still exists is never overwritten, an
// operation whose source and target are both gone is reported as skipped,
// and one bad operation never aborts the batch.
func Restore(path string, ids []int64, dryRun bool, log zerolog.Logger) (*model.RestoreReport, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}

	wanted := func(id int64) bool { return true }
	if len(ids) > 0 {
		set := make(map[int64]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		wanted = func(id int64) bool { return set[id] }
	}

	report := &model.RestoreReport{SessionFile: path, DryRun: dryRun}
	for _, op := range doc.Operations {
		if !op.Success || !wanted(op.ID) {
			continue
		}
		report.Total++

		detail := model.RestoreDetail{
			OperationID: op.ID,
			SourcePath:  op.SourcePath,
			TargetPath:  op.TargetPath,
			Kind:        op.Kind,
		}

		sourceExists := exists(op.SourcePath)
		targetExists := exists(op.TargetPath)

		switch {
		case sourceExists:
			// Already intact; never overwrite a present source.
			detail.Restored = true
			detail.Message = "source still present, nothing to restore"
			report.Restored++

		case !targetExists:
			detail.Message = "skipped: target missing"
			report.Skipped++
			log.Warn().Int64("op", op.ID).Str("target", op.TargetPath).Msg("restore skipped, neither source nor target exists")

		default:
			if err := replayInverse(op, dryRun); err != nil {
				detail.Message = fmt.Sprintf("restore failed: %s", err)
				report.Failed++
				log.Error().Err(err).Int64("op", op.ID).Msg("restore failed")
			} else {
				detail.Restored = true
				if dryRun {
					detail.Message = "dry run: would restore from target"
				} else {
					detail.Message = "restored from target"
				}
				report.Restored++
			}
		}
		report.Details = append(report.Details, detail)
	}

	log.Info().
		Int("total", report.Total).
		Int("restored", report.Restored).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Bool("dry_run", dryRun).
		Msg("restore complete")
	return report, nil
}

// replayInverse undoes one operation: a copy is copied back, a move is
// moved back.
func replayInverse(op model.TransferOperation, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(op.SourcePath), 0o755); err != nil {
		return fmt.Errorf("create source directory: %w", err)
	}
	switch op.Kind {
	case model.OpCopy:
		return fileutil.CopyFile(op.TargetPath, op.SourcePath)
	case model.OpMove:
		return fileutil.MoveFile(op.TargetPath, op.SourcePath)
	default:
		return fmt.Errorf("operation kind %s cannot be restored", op.Kind)
	}
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Lstat(path)
	return err == nil
}
