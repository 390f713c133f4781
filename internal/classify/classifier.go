// Package classify implements the content-driven recursive classification
// engine. Classification descends the target tree one directory level at a
// time; at each level an ordered chain of heuristics picks the best-matching
// child, with the summarization backend consulted only when cheaper
// heuristics fail.
package classify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/backend"
	"github.com/gyeh/filetriage/internal/config"
	"github.com/gyeh/filetriage/internal/extract"
	"github.com/gyeh/filetriage/internal/model"
)

// ErrNoMatch reports that no directory matched at any depth.
var ErrNoMatch = errors.New("no directory matched")

// Classifier classifies files against a target directory tree.
type Classifier struct {
	backends      *backend.Manager
	matchers      []Matcher
	extractLength int
	summaryLength int
	maxDepth      int
	log           zerolog.Logger
}

// New builds a Classifier with the standard matcher chain: temporal,
// literal, content-assisted, fuzzy.
func New(cfg *config.Config, backends *backend.Manager, log zerolog.Logger) *Classifier {
	return &Classifier{
		backends:      backends,
		extractLength: cfg.ExtractLength,
		summaryLength: cfg.SummaryLength,
		maxDepth:      cfg.MaxDepth,
		log:           log,
		matchers: []Matcher{
			temporalMatcher{},
			literalMatcher{},
			contentMatcher{backends: backends, rules: cfg.Rules},
			fuzzyMatcher{},
		},
	}
}

// fileContext holds everything derived for one file during its
// classification. It lives for exactly one Classify call and is discarded
// afterward; nothing survives across files.
type fileContext struct {
	record  model.FileRecord
	content string
	summary string
	tags    []string
	reasons []string
}

// Classify descends from targetRoot picking one child directory per level.
// The returned decision records the deepest matched path; Success is true
// when at least one level matched (a partial path is a partial success,
// distinct from a fully unmatched file). Timing reports where the time went.
func (c *Classifier) Classify(ctx context.Context, rec model.FileRecord, targetRoot string) (model.ClassificationDecision, model.Timing) {
	var timing model.Timing
	fc := &fileContext{record: rec}

	// Bounded content prefix; extraction trouble is a degradation, not a
	// failure.
	extractStart := time.Now()
	content, err := extract.Text(rec.Path, c.extractLength)
	timing.ExtractMS = time.Since(extractStart).Milliseconds()
	if err != nil {
		c.log.Warn().Err(err).Str("file", rec.Name).Msg("content extraction failed")
	}
	fc.content = content

	// Summary via the backend, skipped when no backend answers. The
	// heuristic matchers still run without it.
	summaryStart := time.Now()
	if fc.content != "" && c.backends != nil && c.backends.Available() {
		summary, err := c.backends.Summarize(ctx, rec.Name, fc.content, c.summaryLength)
		if err != nil {
			var be *backend.Error
			if errors.As(err, &be) {
				c.log.Warn().Err(err).Str("file", rec.Name).Msg("summarizer unavailable, degrading to heuristics")
			} else {
				c.log.Warn().Err(err).Str("file", rec.Name).Msg("summary generation failed")
			}
		} else {
			fc.summary = summary
		}
	}
	timing.SummaryMS = time.Since(summaryStart).Milliseconds()

	classifyStart := time.Now()
	decision := c.descend(ctx, fc, targetRoot)
	timing.ClassifyMS = time.Since(classifyStart).Milliseconds()
	return decision, timing
}

func (c *Classifier) descend(ctx context.Context, fc *fileContext, targetRoot string) model.ClassificationDecision {
	req := Request{
		FileName:  fc.record.Name,
		Extension: fc.record.Extension,
		Summary:   fc.summary,
	}
	base := targetRoot
	complete := false

	for level := 1; level <= c.maxDepth; level++ {
		candidates, err := childDirs(base)
		if err != nil {
			fc.reasons = append(fc.reasons, fmt.Sprintf("level %d: cannot list directories: %s", level, err))
			break
		}
		if len(candidates) == 0 {
			// Reached a leaf of the target tree.
			complete = len(fc.tags) > 0
			break
		}

		dir, reason := c.matchLevel(ctx, req, candidates)
		if dir == "" {
			fc.reasons = append(fc.reasons, fmt.Sprintf("level %d: %s", level, reason))
			break
		}

		fc.tags = append(fc.tags, dir)
		fc.reasons = append(fc.reasons, fmt.Sprintf("level %d: %s", level, reason))
		base = filepath.Join(base, dir)
		c.log.Debug().Str("file", fc.record.Name).Int("level", level).Str("dir", dir).Msg("level matched")
	}

	decision := model.ClassificationDecision{
		LevelTags: fc.tags,
		RelPath:   filepath.Join(fc.tags...),
		Reason:    strings.Join(fc.reasons, "; "),
		Summary:   fc.summary,
		Success:   len(fc.tags) > 0,
		Complete:  complete,
	}
	if !decision.Success && decision.Reason == "" {
		decision.Reason = ErrNoMatch.Error()
	}
	return decision
}

// matchLevel runs the matcher chain for one level, first match wins.
func (c *Classifier) matchLevel(ctx context.Context, req Request, candidates []string) (string, string) {
	for _, m := range c.matchers {
		dir, reason, ok, err := m.Match(ctx, req, candidates)
		if err != nil {
			c.log.Warn().Err(err).Str("matcher", m.Name()).Msg("matcher failed, continuing chain")
			continue
		}
		if ok {
			return dir, fmt.Sprintf("%s: %s", m.Name(), reason)
		}
	}
	return "", "no candidate matched"
}

// childDirs lists the immediate child directories of dir, skipping hidden
// entries. Never looks more than one level ahead.
func childDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
