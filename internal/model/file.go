package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileRecord captures the filesystem metadata of a single source file.
// Records are re-derived on every run and never persisted on their own.
type FileRecord struct {
	Path       string    `json:"file_path"`
	Name       string    `json:"file_name"`
	Extension  string    `json:"file_extension"`
	Size       int64     `json:"file_size"`
	CreatedAt  time.Time `json:"created_time"`
	ModifiedAt time.Time `json:"modified_time"`
}

// NewFileRecord stats path and builds an immutable FileRecord.
// Creation time is approximated by the mod time on platforms that do not
// expose a birth time through os.Stat.
func NewFileRecord(path string) (FileRecord, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileRecord{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return FileRecord{}, fmt.Errorf("%s is a directory", abs)
	}
	return FileRecord{
		Path:       abs,
		Name:       info.Name(),
		Extension:  strings.ToLower(filepath.Ext(info.Name())),
		Size:       info.Size(),
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
	}, nil
}
