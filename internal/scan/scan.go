// Package scan discovers candidate files for an organize run.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/model"
)

// Run walks each source directory recursively and returns a record per
// regular file found. Hidden files and hidden directories are skipped. A file
// that disappears or cannot be described mid-walk is logged and skipped; a
// source directory that cannot be walked at all is an error.
func Run(dirs []string, log zerolog.Logger) ([]model.FileRecord, error) {
	var records []model.FileRecord
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", dir, err)
		}
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			hidden := strings.HasPrefix(d.Name(), ".") && path != abs
			if d.IsDir() {
				if hidden {
					return filepath.SkipDir
				}
				return nil
			}
			if hidden || !d.Type().IsRegular() {
				return nil
			}
			rec, err := model.NewFileRecord(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("skipping unreadable file")
				return nil
			}
			records = append(records, rec)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	log.Debug().Int("files", len(records)).Int("dirs", len(dirs)).Msg("scan complete")
	return records, nil
}
