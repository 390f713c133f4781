package model

import "time"

// OperationKind is the kind of filesystem mutation recorded in a transfer
// session.
type OperationKind string

const (
	OpCopy            OperationKind = "copy"
	OpMove            OperationKind = "move"
	OpDeleteDuplicate OperationKind = "delete_duplicate"
)

// TransferOperation is one attempted migration, successful or not.
// Operations are append-only and never mutated after being written.
type TransferOperation struct {
	// ID is assigned by the session on append, strictly increasing from 1.
	ID            int64         `json:"operation_id"`
	Timestamp     time.Time     `json:"timestamp"`
	Kind          OperationKind `json:"operation_type"`
	SourcePath    string        `json:"source_path"`
	TargetPath    string        `json:"target_path"`
	TargetDir     string        `json:"target_folder"`
	FileSize      int64         `json:"file_size"`
	FileHash      string        `json:"file_hash,omitempty"`
	SourceModTime *time.Time    `json:"source_mod_time,omitempty"`
	Success       bool          `json:"success"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// SessionInfo carries the header and running totals of a transfer session.
type SessionInfo struct {
	Name       string     `json:"session_name"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Total      int64      `json:"total_operations"`
	Successful int64      `json:"successful_operations"`
	Failed     int64      `json:"failed_operations"`
}

// SessionDocument is the on-disk shape of one transfer session: a header
// plus the ordered operation list, written as a single JSON document.
type SessionDocument struct {
	Info       SessionInfo         `json:"session_info"`
	Operations []TransferOperation `json:"operations"`
}

// RestoreDetail reports the handling of one operation during a restore.
type RestoreDetail struct {
	OperationID int64         `json:"operation_id"`
	SourcePath  string        `json:"source_path"`
	TargetPath  string        `json:"target_path"`
	Kind        OperationKind `json:"operation_type"`
	Restored    bool          `json:"restored"`
	Message     string        `json:"message"`
}

// RestoreReport summarizes a replay-based restore over one session.
type RestoreReport struct {
	SessionFile string          `json:"session_file"`
	DryRun      bool            `json:"dry_run"`
	Total       int             `json:"total_operations"`
	Restored    int             `json:"successful_restores"`
	Failed      int             `json:"failed_restores"`
	Skipped     int             `json:"skipped_operations"`
	Details     []RestoreDetail `json:"restore_details"`
}
