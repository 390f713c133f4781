package model

import "time"

// ProcessStatus is the final per-file outcome recorded in the result store.
type ProcessStatus string

const (
	StatusMigrated       ProcessStatus = "migrated"
	StatusDryRun         ProcessStatus = "dry-run"
	StatusClassifyFailed ProcessStatus = "classification-failed"
	StatusMigrateFailed  ProcessStatus = "migrate-failed"
	StatusTimeout        ProcessStatus = "timeout"
	StatusSkipped        ProcessStatus = "skipped"
)

// Timing breaks down where one file's processing time went, in milliseconds.
type Timing struct {
	ExtractMS  int64 `json:"content_extraction_ms"`
	SummaryMS  int64 `json:"summary_generation_ms"`
	ClassifyMS int64 `json:"classification_ms"`
	MigrateMS  int64 `json:"migration_ms"`
	TotalMS    int64 `json:"total_processing_ms"`
}

// ResultEntry is one per-file outcome in the result store. Entries are
// unique by the (FileName, TargetPath) pair.
type ResultEntry struct {
	ProcessedAt time.Time     `json:"processed_at"`
	RunID       string        `json:"run_id,omitempty"`
	FileName    string        `json:"file_name"`
	// TargetPath is the final absolute target path of the file, empty when
	// classification or migration failed. Second half of the dedup key.
	TargetPath string        `json:"target_path"`
	RelPath    string        `json:"relative_path"`
	LevelTags  []string      `json:"level_tags,omitempty"`
	Summary    string        `json:"content_summary,omitempty"`
	Reason     string        `json:"match_reason"`
	Kind       OperationKind `json:"operation_type"`
	Status     ProcessStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
	Timing     Timing        `json:"timing"`
	FileMeta   FileRecord    `json:"file_metadata"`
}

// DedupKey returns the identity used by the result store to suppress
// duplicate entries.
func (e ResultEntry) DedupKey() [2]string {
	return [2]string{e.FileName, e.TargetPath}
}
