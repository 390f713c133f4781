package resultstore

import (
	"fmt"

	"github.com/gofrs/flock"
)

// CrossProcessLock serializes writers across processes sharing the same
// store path. The implementation is chosen at construction, never branched
// on per call site.
type CrossProcessLock interface {
	Lock() error
	Unlock() error
}

// flockLock is the advisory file-lock implementation. flock picks the
// platform facility (flock on Unix, LockFileEx on Windows) itself.
type flockLock struct {
	fl *flock.Flock
}

func newFlockLock(path string) *flockLock {
	return &flockLock{fl: flock.New(path)}
}

func (l *flockLock) Lock() error {
	if err := l.fl.Lock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	return nil
}

func (l *flockLock) Unlock() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release store lock: %w", err)
	}
	return nil
}
