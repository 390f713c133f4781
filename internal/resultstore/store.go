// Package resultstore is the deduplicating, crash-safe append store for
// per-file outcome records. The on-disk representation is a single JSON
// array that is always complete and parseable: every write rebuilds the
// collection in memory and atomically swaps it into place, serialized by a
// process mutex plus an advisory cross-process file lock.
package resultstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/fileutil"
	"github.com/gyeh/filetriage/internal/model"
)

// ErrCorrupt reports that the on-disk store cannot be parsed. The store
// refuses to write over a corrupt document rather than silently replacing
// it; the write for that record fails, the batch continues.
var ErrCorrupt = errors.New("result store corrupt")

// Store appends ResultEntry records to a single JSON document, unique by
// (file name, final target path).
type Store struct {
	path string
	log  zerolog.Logger

	mu       sync.Mutex
	fileLock CrossProcessLock
}

// New returns a Store for path, creating the parent directory if needed.
// Writers in other processes sharing the same path are serialized through
// an advisory lock beside the store file.
func New(path string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	return &Store{
		path:     path,
		log:      log,
		fileLock: newFlockLock(path + ".lock"),
	}, nil
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Append adds one record unless its dedup key is already present; a
// duplicate is a logged no-op success.
func (s *Store) Append(entry model.ResultEntry) error {
	_, err := s.AppendBatch([]model.ResultEntry{entry})
	return err
}

// AppendBatch adds every record whose dedup key is not yet present and
// reports how many were added. The full read-append-swap cycle runs under
// both locks.
func (s *Store) AppendBatch(entries []model.ResultEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fileLock.Lock(); err != nil {
		return 0, err
	}
	defer s.fileLock.Unlock()

	existing, err := s.read()
	if err != nil {
		return 0, err
	}

	keys := make(map[[2]string]bool, len(existing))
	for _, e := range existing {
		keys[e.DedupKey()] = true
	}

	added := 0
	for _, entry := range entries {
		if keys[entry.DedupKey()] {
			s.log.Debug().Str("file", entry.FileName).Msg("duplicate result entry skipped")
			continue
		}
		keys[entry.DedupKey()] = true
		existing = append(existing, entry)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal result store: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0o640); err != nil {
		return 0, fmt.Errorf("write result store: %w", err)
	}
	return added, nil
}

// Load returns all entries currently in the store. A missing file is an
// empty store.
func (s *Store) Load() ([]model.ResultEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// read parses the store document. Callers hold s.mu.
func (s *Store) read() ([]model.ResultEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read result store: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []model.ResultEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrCorrupt, s.path, err)
	}
	return entries, nil
}

// Stats aggregates the store for reporting.
type Stats struct {
	Total      int
	ByStatus   map[model.ProcessStatus]int
	ByExt      map[string]int
	TotalBytes int64
}

// Stat computes summary statistics over the current store contents.
func (s *Store) Stat() (*Stats, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	st := &Stats{
		ByStatus: make(map[model.ProcessStatus]int),
		ByExt:    make(map[string]int),
	}
	for _, e := range entries {
		st.Total++
		st.ByStatus[e.Status]++
		ext := e.FileMeta.Extension
		if ext == "" {
			ext = "(none)"
		}
		st.ByExt[ext]++
		st.TotalBytes += e.FileMeta.Size
	}
	return st, nil
}
