package model

import "path/filepath"

// ClassificationDecision is the outcome of classifying one file against a
// target directory tree. It is consumed once by the migration executor and
// never retained after the file's processing ends.
type ClassificationDecision struct {
	// LevelTags holds the matched directory name at each tree level, in
	// descent order. Empty when nothing matched at the first level.
	LevelTags []string `json:"level_tags"`
	// RelPath is the matched path relative to the target root
	// (filepath.Join of LevelTags).
	RelPath string `json:"relative_path"`
	// Reason is a human-readable per-level explanation of the match chain.
	Reason string `json:"match_reason"`
	// Summary is the backend-generated content summary, when one was
	// produced. Informational only.
	Summary string `json:"content_summary,omitempty"`
	// Success is true when at least one level matched. A partial path
	// (matched at level 1, stopped at level 2) still counts as success,
	// distinct from a fully unmatched file.
	Success bool `json:"success"`
	// Complete is true when the descent ended at a leaf directory rather
	// than stopping early on an unmatched level.
	Complete bool `json:"complete"`
}

// TargetDir resolves the decision against a target root. Returns the root
// itself for an empty decision.
func (d ClassificationDecision) TargetDir(targetRoot string) string {
	if d.RelPath == "" {
		return targetRoot
	}
	return filepath.Join(targetRoot, d.RelPath)
}
