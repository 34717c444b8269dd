/*
 * tablinum: content-addressed document archive engine
 * Copyright © 2026 The Tablinum Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package fsx implements the filesystem primitives the engine builds
// on: existence checks that never raise, idempotent directory
// creation, atomic rename-based commits, and a callback-driven
// directory listing. Anything "committed" to disk goes through a
// sibling temp file and a rename into place.
package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Exists reports whether path exists. It never returns an error: any
// stat failure is treated as non-existence.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

// MkdirOne creates a single directory. It succeeds if the directory
// already exists, and fails if path exists as a non-directory.
func MkdirOne(path string) error {
	if fi, err := os.Stat(path); err == nil {
		if !fi.IsDir() {
			return fmt.Errorf("fsx: %s exists and is not a directory", path)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("fsx: stat %s: %w", path, err)
	}
	if err := os.Mkdir(path, 0o755); err != nil && !os.IsExist(err) {
		return fmt.Errorf("fsx: mkdir %s: %w", path, err)
	}
	return nil
}

// MkdirP creates path and all missing parents, idempotently.
func MkdirP(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("fsx: mkdir -p %s: %w", path, err)
	}
	return nil
}

// RenameAtomic renames src to dst. When replace is false the call
// fails if dst already exists; concurrent racers are resolved by the
// OS rename semantics, so the caller that observes success owns dst.
func RenameAtomic(src, dst string, replace bool) error {
	if !replace {
		if _, err := os.Lstat(dst); err == nil {
			return fmt.Errorf("fsx: destination already exists: %s", dst)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("fsx: stat %s: %w", dst, err)
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("fsx: rename %s -> %s: %w", src, dst, err)
	}
	return nil
}

// WriteFile truncates (or creates) path and writes data to it. This
// is the plain, non-atomic form for metadata the caller regenerates
// on retry (e.g. job.meta); records use WriteFileAtomic instead, and
// CAS objects are staged and renamed into place by internal/cas.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fsx: write %s: %w", path, err)
	}
	return nil
}

// WriteFileAtomic writes data to a sibling temp file in dir(path) and
// renames it into place, so partial writes never appear at path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := MkdirP(dir); err != nil {
		return err
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".tmp.%s", uuid.NewString()))
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fsx: create temp for %s: %w", path, err)
	}
	defer func() {
		_ = os.Remove(tmp)
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("fsx: write temp for %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("fsx: fsync temp for %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fsx: close temp for %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("fsx: rename temp into place for %s: %w", path, err)
	}
	return nil
}

// EntryCallback is invoked once per directory entry. Returning false
// stops iteration early.
type EntryCallback func(name, fullPath string, isDir bool) (cont bool)

// ListDir enumerates the non-"."/".." entries of dir, in whatever
// order the filesystem returns them. Callers must not rely on the
// order.
func ListDir(dir string, cb EntryCallback) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("fsx: read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if fi, statErr := os.Stat(full); statErr == nil {
				isDir = fi.IsDir()
			}
		}
		if !cb(e.Name(), full, isDir) {
			return nil
		}
	}
	return nil
}

// RmRF best-effort recursively removes path. Errors are swallowed
// except that the final error (if any) is returned so callers that
// care can log it; nothing here is allowed to abort a caller's
// primary operation.
func RmRF(path string) error {
	err := os.RemoveAll(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("fsx: rm -rf %s: %w", path, err)
	}
	return nil
}

// CopyFile copies src to dst byte-for-byte, truncating dst if it
// exists. Used by export and package build, which copy CAS objects
// and record files into a caller-chosen tree rather than renaming
// them (the source must remain in place).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("fsx: open %s: %w", src, err)
	}
	defer in.Close()

	if err := MkdirP(filepath.Dir(dst)); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fsx: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("fsx: copy %s -> %s: %w", src, dst, err)
	}
	return out.Sync()
}
