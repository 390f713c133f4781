package model

import "time"

// OrganizeSummary captures metrics from a single organize run.
type OrganizeSummary struct {
	RunID         string
	SessionFile   string
	TargetRoot    string
	DryRun        bool
	FilesTotal    int64
	FilesMigrated int64
	FilesPartial  int64
	FilesFailed   int64
	FilesTimedOut int64
	FilesSkipped  int64
	BytesMoved    int64
	DurationTotal time.Duration
}

// Failures reports how many files did not end in a migrated or dry-run
// outcome.
func (s *OrganizeSummary) Failures() int64 {
	return s.FilesFailed + s.FilesTimedOut + s.FilesSkipped
}
