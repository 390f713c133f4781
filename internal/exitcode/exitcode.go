// Package exitcode defines the process exit codes used by the filetriage CLI.
package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	ScanError       = 3
	MigrateError    = 4
	RestoreError    = 5
	PartialSuccess  = 6
)
