package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTargetExists is returned by CopyFile and MoveFile when the destination
// already exists. Neither function ever overwrites.
var ErrTargetExists = errors.New("target file already exists")

// CopyFile copies src to dst, preserving the source modification time.
// Fails with ErrTargetExists if dst is already present.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrTargetExists, dst)
		}
		return fmt.Errorf("create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy data: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("sync target: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close target: %w", err)
	}

	// Preserve timestamps like a copy2-style copy. Best effort.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// MoveFile moves src to dst via rename, falling back to copy+remove when the
// paths are on different filesystems. Fails with ErrTargetExists if dst is
// already present.
func MoveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, dst)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Rename across devices fails with EXDEV; fall back to copy+remove.
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}
