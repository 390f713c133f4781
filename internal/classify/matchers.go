package classify

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gyeh/filetriage/internal/backend"
)

// Request carries the per-file inputs a matcher may consult when picking a
// child directory at one tree level.
type Request struct {
	FileName  string
	Extension string
	Summary   string
}

// Matcher is one heuristic in the ordered chain used to pick a child
// directory. Matchers are tried in strict priority order, first match wins.
type Matcher interface {
	Name() string
	// Match picks one of candidates for the file, returning the chosen
	// directory and a human-readable reason. ok is false when this
	// heuristic has no opinion. A non-nil error marks backend trouble and
	// lets the chain continue with the remaining heuristics.
	Match(ctx context.Context, req Request, candidates []string) (dir, reason string, ok bool, err error)
}

var yearRe = regexp.MustCompile(`\d{4}`)

// fileYear extracts the first plausible 4-digit year from a name.
func fileYear(name string) (int, bool) {
	for _, m := range yearRe.FindAllString(name, -1) {
		y, err := strconv.Atoi(m)
		if err == nil && y >= 1900 && y <= 2030 {
			return y, true
		}
	}
	return 0, false
}

// temporalMatcher selects a candidate whose year token equals a year token
// in the filename. Highest priority: it short-circuits content inspection.
type temporalMatcher struct{}

func (temporalMatcher) Name() string { return "temporal" }

func (temporalMatcher) Match(_ context.Context, req Request, candidates []string) (string, string, bool, error) {
	year, ok := fileYear(req.FileName)
	if !ok {
		return "", "", false, nil
	}
	for _, cand := range candidates {
		if candYear, found := fileYear(cand); found && candYear == year {
			reason := fmt.Sprintf("year %d in file name matches %s", year, cand)
			return cand, reason, true, nil
		}
	}
	return "", "", false, nil
}

// literalMatcher selects a candidate whose name is a case-insensitive
// substring of the filename.
type literalMatcher struct{}

func (literalMatcher) Name() string { return "literal" }

func (literalMatcher) Match(_ context.Context, req Request, candidates []string) (string, string, bool, error) {
	lowerName := strings.ToLower(req.FileName)
	for _, cand := range candidates {
		if strings.Contains(lowerName, strings.ToLower(cand)) {
			return cand, fmt.Sprintf("file name contains %s", cand), true, nil
		}
	}
	return "", "", false, nil
}

// contentMatcher asks the summarization backend to pick one candidate. The
// answer must echo a candidate literally or it is rejected.
type contentMatcher struct {
	backends *backend.Manager
	rules    map[string]string
}

func (contentMatcher) Name() string { return "content" }

func (m contentMatcher) Match(ctx context.Context, req Request, candidates []string) (string, string, bool, error) {
	if m.backends == nil || !m.backends.Available() {
		return "", "", false, nil
	}
	picked, ok, err := m.backends.PickCandidate(ctx, backend.PickRequest{
		FileName:   req.FileName,
		Extension:  req.Extension,
		Summary:    req.Summary,
		Candidates: candidates,
		Rules:      m.rules,
	})
	if err != nil {
		return "", "", false, err
	}
	if !ok {
		return "", "", false, nil
	}
	return picked, fmt.Sprintf("content match to %s", picked), true, nil
}

// fuzzyMatcher is the last-resort heuristic: keyword overlap between the
// filename plus summary and a candidate's name tokens.
type fuzzyMatcher struct{}

func (fuzzyMatcher) Name() string { return "fuzzy" }

var tokenSplitRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func (fuzzyMatcher) Match(_ context.Context, req Request, candidates []string) (string, string, bool, error) {
	haystack := strings.ToLower(req.FileName + " " + req.Summary)
	for _, cand := range candidates {
		for _, tok := range tokenSplitRe.Split(strings.ToLower(cand), -1) {
			if len([]rune(tok)) > 2 && strings.Contains(haystack, tok) {
				return cand, fmt.Sprintf("keyword %q matches %s", tok, cand), true, nil
			}
		}
	}
	return "", "", false, nil
}
