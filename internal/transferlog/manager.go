// Package transferlog records migration operations in per-session JSON
// documents and supports replay-based restore. A session moves
// Closed → Open → Closed; appending is the sole mutation path and every
// document write goes through an atomic temp-file swap.
package transferlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/fileutil"
	"github.com/gyeh/filetriage/internal/model"
)

// ErrCorrupt reports that a session document on disk cannot be parsed.
// Writes against a corrupt document are refused, never papered over.
var ErrCorrupt = errors.New("transfer log corrupt")

// ErrSessionClosed reports an append after End.
var ErrSessionClosed = errors.New("transfer session already ended")

// Manager owns a directory of transfer session documents.
type Manager struct {
	dir string
	log zerolog.Logger

	mu   sync.Mutex
	open *Session
}

// NewManager ensures dir exists and returns a Manager for it.
func NewManager(dir string, log zerolog.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Manager{dir: dir, log: log}, nil
}

// Session is one open transfer session. All appends are serialized
// internally; concurrent workers submit operations through the same path.
type Session struct {
	path string
	log  zerolog.Logger

	mu    sync.Mutex
	doc   model.SessionDocument
	ended bool
}

// Start opens a new session named name (a timestamped name is generated
// when empty). Only one session may be open per Manager at a time.
func (m *Manager) Start(name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open != nil {
		return nil, fmt.Errorf("session %s is still open", m.open.doc.Info.Name)
	}
	if name == "" {
		name = "transfer_" + time.Now().Format("20060102_150405")
	}

	s := &Session{
		path: filepath.Join(m.dir, name+".json"),
		log:  m.log,
		doc: model.SessionDocument{
			Info: model.SessionInfo{
				Name:      name,
				StartTime: time.Now(),
			},
			Operations: []model.TransferOperation{},
		},
	}
	if _, err := os.Lstat(s.path); err == nil {
		return nil, fmt.Errorf("session document %s already exists", s.path)
	}
	if err := s.flush(); err != nil {
		return nil, err
	}
	m.open = s
	m.log.Info().Str("session", name).Str("path", s.path).Msg("transfer session started")
	return s, nil
}

// Path returns the session document location.
func (s *Session) Path() string {
	return s.path
}

// AppendOp carries the caller-supplied fields of one operation; the id and
// timestamp are assigned on append.
type AppendOp struct {
	Kind          model.OperationKind
	SourcePath    string
	TargetPath    string
	TargetDir     string
	FileSize      int64
	FileHash      string
	SourceModTime *time.Time
	Success       bool
	ErrorMessage  string
}

// Append assigns the next operation id, updates the running totals, and
// rewrites the session document before returning. Ids are strictly
// increasing in append order within the session.
func (s *Session) Append(op AppendOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrSessionClosed
	}

	rec := model.TransferOperation{
		ID:            int64(len(s.doc.Operations)) + 1,
		Timestamp:     time.Now(),
		Kind:          op.Kind,
		SourcePath:    op.SourcePath,
		TargetPath:    op.TargetPath,
		TargetDir:     op.TargetDir,
		FileSize:      op.FileSize,
		FileHash:      op.FileHash,
		SourceModTime: op.SourceModTime,
		Success:       op.Success,
		ErrorMessage:  op.ErrorMessage,
	}
	s.doc.Operations = append(s.doc.Operations, rec)
	s.doc.Info.Total++
	if op.Success {
		s.doc.Info.Successful++
	} else {
		s.doc.Info.Failed++
	}

	if err := s.flush(); err != nil {
		// Roll the in-memory state back so the document and memory agree.
		s.doc.Operations = s.doc.Operations[:len(s.doc.Operations)-1]
		s.doc.Info.Total--
		if op.Success {
			s.doc.Info.Successful--
		} else {
			s.doc.Info.Failed--
		}
		return err
	}
	return nil
}

// End stamps the end time and closes the session. Further appends fail.
func (m *Manager) End(s *Session) (model.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return s.doc.Info, ErrSessionClosed
	}

	now := time.Now()
	s.doc.Info.EndTime = &now
	if err := s.flush(); err != nil {
		s.doc.Info.EndTime = nil
		return model.SessionInfo{}, err
	}
	s.ended = true

	m.mu.Lock()
	if m.open == s {
		m.open = nil
	}
	m.mu.Unlock()

	m.log.Info().
		Str("session", s.doc.Info.Name).
		Int64("total", s.doc.Info.Total).
		Int64("successful", s.doc.Info.Successful).
		Int64("failed", s.doc.Info.Failed).
		Msg("transfer session ended")
	return s.doc.Info, nil
}

// flush writes the session document atomically. Callers hold s.mu.
func (s *Session) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session document: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0o640); err != nil {
		return fmt.Errorf("write session document: %w", err)
	}
	return nil
}

// List returns the session document paths in the manager's directory,
// newest first.
func (m *Manager) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(m.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan log directory: %w", err)
	}
	sort.Slice(paths, func(i, j int) bool {
		fi, errI := os.Stat(paths[i])
		fj, errJ := os.Stat(paths[j])
		if errI != nil || errJ != nil {
			return paths[i] > paths[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})
	return paths, nil
}

// Load parses a session document. Malformed documents yield ErrCorrupt.
func Load(path string) (*model.SessionDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session document: %w", err)
	}
	var doc model.SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrCorrupt, path, err)
	}
	return &doc, nil
}

// CleanupOlderThan deletes session documents whose mod time is older than
// the retention window. Returns the number of deleted files.
func (m *Manager) CleanupOlderThan(days int) (int, error) {
	paths, err := m.List()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	deleted := 0
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err != nil {
				m.log.Warn().Err(err).Str("path", p).Msg("could not delete old session document")
				continue
			}
			deleted++
		}
	}
	return deleted, nil
}
