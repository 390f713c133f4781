// Package organize drives a full organize run: a bounded worker pool
// classifies and migrates files concurrently while a single aggregator
// serializes result-store appends, one transfer session open for the whole
// run.
package organize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/filetriage/internal/backend"
	"github.com/gyeh/filetriage/internal/classify"
	"github.com/gyeh/filetriage/internal/config"
	"github.com/gyeh/filetriage/internal/model"
	"github.com/gyeh/filetriage/internal/resultstore"
	"github.com/gyeh/filetriage/internal/transferlog"
)

// outcome pairs a result entry with run-level tallies the entry itself does
// not carry.
type outcome struct {
	entry   model.ResultEntry
	partial bool
}

// Runner owns the collaborators of one organize run.
type Runner struct {
	cfg        *config.Config
	classifier *classify.Classifier
	executor   *Executor
	store      *resultstore.Store
	log        zerolog.Logger
	runID      string
	kind       model.OperationKind
}

// Run classifies and migrates files against cfg.TargetRoot. Every input file
// yields exactly one result-store entry; per-file failures never abort the
// batch. The returned summary covers the whole run.
func Run(ctx context.Context, cfg *config.Config, files []model.FileRecord, log zerolog.Logger) (*model.OrganizeSummary, error) {
	start := time.Now()

	backends, err := backend.NewManager(cfg.EnabledBackends(), log)
	if err != nil {
		return nil, fmt.Errorf("backend manager: %w", err)
	}
	classifier := classify.New(cfg, backends, log)

	tlm, err := transferlog.NewManager(cfg.LogDir, log)
	if err != nil {
		return nil, fmt.Errorf("transfer log: %w", err)
	}
	session, err := tlm.Start("")
	if err != nil {
		return nil, fmt.Errorf("transfer log: %w", err)
	}

	store, err := resultstore.New(cfg.ResultFile, log)
	if err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}

	r := &Runner{
		cfg:        cfg,
		classifier: classifier,
		executor:   NewExecutor(session, log),
		store:      store,
		log:        log,
		runID:      uuid.New().String(),
		kind:       model.OpCopy,
	}
	if cfg.Move {
		r.kind = model.OpMove
	}

	summary := &model.OrganizeSummary{
		RunID:       r.runID,
		SessionFile: session.Path(),
		TargetRoot:  cfg.TargetRoot,
		DryRun:      cfg.DryRun,
		FilesTotal:  int64(len(files)),
	}

	// Single aggregator: the only goroutine touching the result store.
	outcomes := make(chan outcome)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for o := range outcomes {
			if err := r.store.Append(o.entry); err != nil {
				r.log.Error().Err(err).Str("file", o.entry.FileName).Msg("result store append failed")
			}
			switch o.entry.Status {
			case model.StatusMigrated, model.StatusDryRun:
				summary.FilesMigrated++
				summary.BytesMoved += o.entry.FileMeta.Size
				if o.partial {
					summary.FilesPartial++
				}
			case model.StatusTimeout:
				summary.FilesTimedOut++
			case model.StatusSkipped:
				summary.FilesSkipped++
			default:
				summary.FilesFailed++
			}
		}
	}()

	var eg errgroup.Group
	eg.SetLimit(cfg.Workers)
	for _, rec := range files {
		rec := rec
		eg.Go(func() error {
			if ctx.Err() != nil {
				outcomes <- r.skipped(rec, ctx.Err())
				return nil
			}
			fileCtx, cancel := context.WithTimeout(ctx, cfg.FileTimeout)
			outcomes <- r.processFile(fileCtx, rec)
			cancel()
			return nil
		})
	}
	eg.Wait()
	close(outcomes)
	<-done

	if _, err := tlm.End(session); err != nil {
		r.log.Error().Err(err).Msg("closing transfer session failed")
	}

	summary.DurationTotal = time.Since(start)
	r.log.Info().
		Str("run_id", summary.RunID).
		Int64("total", summary.FilesTotal).
		Int64("migrated", summary.FilesMigrated).
		Int64("failed", summary.Failures()).
		Dur("elapsed", summary.DurationTotal).
		Msg("organize run finished")
	return summary, nil
}

// processFile takes one file through classify and migrate under its per-file
// deadline. Migration is skipped, never interrupted, once the deadline has
// passed.
func (r *Runner) processFile(ctx context.Context, rec model.FileRecord) outcome {
	start := time.Now()
	entry := model.ResultEntry{
		ProcessedAt: start.UTC(),
		RunID:       r.runID,
		FileName:    rec.Name,
		Kind:        r.kind,
		FileMeta:    rec,
	}

	decision, timing := r.classifier.Classify(ctx, rec, r.cfg.TargetRoot)
	entry.Timing = timing
	entry.RelPath = decision.RelPath
	entry.LevelTags = decision.LevelTags
	entry.Summary = decision.Summary
	entry.Reason = decision.Reason

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		entry.Status = model.StatusTimeout
		entry.Error = ctx.Err().Error()
	case ctx.Err() != nil:
		entry.Status = model.StatusSkipped
		entry.Error = ctx.Err().Error()
	case !decision.Success:
		entry.Status = model.StatusClassifyFailed
		entry.Error = decision.Reason
	default:
		res := r.executor.ExecuteItem(PlanItem{
			Source:    rec.Path,
			TargetDir: decision.TargetDir(r.cfg.TargetRoot),
			Kind:      r.kind,
		}, r.cfg.DryRun)
		entry.Timing.MigrateMS = time.Since(start).Milliseconds() - timing.ExtractMS - timing.SummaryMS - timing.ClassifyMS
		entry.TargetPath = res.Target
		switch {
		case !res.Success:
			entry.Status = model.StatusMigrateFailed
			entry.Error = res.Err.Error()
		case r.cfg.DryRun:
			entry.Status = model.StatusDryRun
		default:
			entry.Status = model.StatusMigrated
		}
	}

	entry.Timing.TotalMS = time.Since(start).Milliseconds()
	return outcome{entry: entry, partial: decision.Success && !decision.Complete}
}

// skipped records a file the run never got to before cancellation. The file
// is untouched on disk and will be picked up by the next run.
func (r *Runner) skipped(rec model.FileRecord, cause error) outcome {
	return outcome{entry: model.ResultEntry{
		ProcessedAt: time.Now().UTC(),
		RunID:       r.runID,
		FileName:    rec.Name,
		Kind:        r.kind,
		FileMeta:    rec,
		Status:      model.StatusSkipped,
		Error:       cause.Error(),
	}}
}
