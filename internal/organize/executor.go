package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/fileutil"
	"github.com/gyeh/filetriage/internal/model"
	"github.com/gyeh/filetriage/internal/transferlog"
)

// ErrCollision reports that the timestamp-suffix rename scheme could not
// find a free target name.
var ErrCollision = errors.New("target name collision could not be resolved")

// collisionRetries bounds the counter suffixes tried after the timestamp
// suffix is also taken.
const collisionRetries = 5

// PlanItem is one migration to perform.
type PlanItem struct {
	Source    string
	TargetDir string
	Kind      model.OperationKind
}

// ItemResult is the outcome of one attempted migration.
type ItemResult struct {
	Source  string
	Target  string
	Success bool
	Err     error
}

// Executor performs copy/move migrations, resolving name collisions and
// writing every attempt to the transfer session before reporting it.
type Executor struct {
	session *transferlog.Session
	log     zerolog.Logger

	mu      sync.Mutex
	claimed map[string]bool
}

// NewExecutor returns an Executor that logs to session. The session must be
// open; every attempted item is appended to it (log-before-report).
func NewExecutor(session *transferlog.Session, log zerolog.Logger) *Executor {
	return &Executor{
		session: session,
		log:     log,
		claimed: make(map[string]bool),
	}
}

// Execute runs the plan in order. With dryRun set, no filesystem mutation
// happens and repeated calls against an unchanged filesystem produce
// byte-identical result lists.
func (e *Executor) Execute(ctx context.Context, items []PlanItem, dryRun bool) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			results = append(results, ItemResult{Source: item.Source, Err: ctx.Err()})
			continue
		}
		results = append(results, e.ExecuteItem(item, dryRun))
	}
	return results
}

// ExecuteItem migrates a single file. The transfer session is appended to
// before the result is returned, success or failure, so the log can never
// under-report a performed mutation.
func (e *Executor) ExecuteItem(item PlanItem, dryRun bool) ItemResult {
	res := e.migrate(item, dryRun)

	op := transferlog.AppendOp{
		Kind:       item.Kind,
		SourcePath: item.Source,
		TargetPath: res.Target,
		TargetDir:  item.TargetDir,
		Success:    res.Success,
	}
	if info, err := os.Stat(item.Source); err == nil {
		op.FileSize = info.Size()
		mod := info.ModTime()
		op.SourceModTime = &mod
	}
	if res.Success && !dryRun {
		path := res.Target
		if item.Kind == model.OpCopy {
			path = item.Source
		}
		if hash, err := fileutil.FileHash(path); err == nil {
			op.FileHash = hash
		}
	}
	if res.Err != nil {
		op.ErrorMessage = res.Err.Error()
	}

	if err := e.session.Append(op); err != nil {
		// A failed log write disqualifies the item: the mutation (if any)
		// happened, but it must not be reported as a clean success.
		e.log.Error().Err(err).Str("source", item.Source).Msg("transfer log append failed")
		if res.Err == nil {
			res.Err = fmt.Errorf("transfer log append: %w", err)
			res.Success = false
		}
	}
	return res
}

func (e *Executor) migrate(item PlanItem, dryRun bool) ItemResult {
	res := ItemResult{Source: item.Source}

	if item.TargetDir == "" {
		res.Err = errors.New("no target directory")
		return res
	}
	if _, err := os.Stat(item.Source); err != nil {
		res.Err = fmt.Errorf("source unavailable: %w", err)
		return res
	}

	target, err := e.resolveTarget(item)
	if err != nil {
		res.Err = err
		return res
	}
	res.Target = target

	if dryRun {
		res.Success = true
		return res
	}

	if err := os.MkdirAll(item.TargetDir, 0o755); err != nil {
		res.Err = fmt.Errorf("create target directory: %w", err)
		return res
	}

	switch item.Kind {
	case model.OpCopy:
		err = fileutil.CopyFile(item.Source, target)
	case model.OpMove:
		err = fileutil.MoveFile(item.Source, target)
	case model.OpDeleteDuplicate:
		err = os.Remove(item.Source)
	default:
		err = fmt.Errorf("unknown operation kind %q", item.Kind)
	}
	if err != nil {
		res.Err = err
		return res
	}

	res.Success = true
	e.log.Info().Str("source", item.Source).Str("target", target).Str("kind", string(item.Kind)).Msg("migrated")
	return res
}

// resolveTarget picks a free target path, never an existing one. The first
// fallback suffix derives from the source mod time so dry runs stay
// deterministic; numbered suffixes follow, then ErrCollision.
func (e *Executor) resolveTarget(item PlanItem) (string, error) {
	name := filepath.Base(item.Source)

	e.mu.Lock()
	defer e.mu.Unlock()

	plain := filepath.Join(item.TargetDir, name)
	if e.free(plain) {
		e.claimed[plain] = true
		return plain, nil
	}

	info, err := os.Stat(item.Source)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	stamp := info.ModTime().Format("20060102_150405")
	stamped := filepath.Join(item.TargetDir, suffixed(name, "_"+stamp))
	if e.free(stamped) {
		e.claimed[stamped] = true
		return stamped, nil
	}

	for i := 1; i <= collisionRetries; i++ {
		candidate := filepath.Join(item.TargetDir, suffixed(name, fmt.Sprintf("_%s_%d", stamp, i)))
		if e.free(candidate) {
			e.claimed[candidate] = true
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrCollision, name, item.TargetDir)
}

// free reports whether path is neither on disk nor claimed earlier in this
// run. Callers hold e.mu.
func (e *Executor) free(path string) bool {
	if e.claimed[path] {
		return false
	}
	_, err := os.Lstat(path)
	return os.IsNotExist(err)
}

// suffixed inserts suffix before the file extension.
func suffixed(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + suffix + ext
}
