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

// Package cas implements the content-addressed object store: PutFile
// hashes a source file, derives the object path from the hash, and
// atomically places a copy there. Objects live at
// <repo>/sha256/<first two hex chars>/<remaining 62>; an object's
// path is a pure function of its content.
package cas

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// Store is a content-addressed object store rooted at RepoRoot.
// Metrics is optional: a nil Recorder (the zero value) makes every
// PutFile call a no-op with respect to counters.
type Store struct {
	RepoRoot string
	Metrics  *metrics.Recorder
}

// New returns a Store rooted at repoRoot.
func New(repoRoot string) Store {
	return Store{RepoRoot: repoRoot}
}

// ObjectPath is a pure function of hexDigest: <repo>/sha256/<ab>/<rest>.
func (s Store) ObjectPath(hexDigest string) (string, error) {
	if !sha256x.IsValidHex(hexDigest) {
		return "", tblerr.New(tblerr.Schema, "invalid sha256 hex: %q", hexDigest)
	}
	return filepath.Join(s.RepoRoot, "sha256", hexDigest[:2], hexDigest[2:]), nil
}

// Exists reports whether the CAS object named by hexDigest is present.
func (s Store) Exists(hexDigest string) bool {
	p, err := s.ObjectPath(hexDigest)
	if err != nil {
		return false
	}
	return fsx.Exists(p)
}

// PutResult describes the outcome of a PutFile call.
type PutResult struct {
	HexDigest string
	Bytes     int64
	Placed    bool // false when the object already existed (dedupe)
}

// PutFile streams srcPath through SHA-256, derives the object path
// from the digest, and atomically places a copy of srcPath there. A
// second PutFile of equal content is a safe no-op: one caller wins the
// rename, the rest observe the object already exists. Partial objects
// never appear at the final path: writes land in a temp file under
// <repo>/sha256/.incoming/ first and are renamed into place.
func (s Store) PutFile(srcPath string) (PutResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return PutResult{}, tblerr.Wrap(tblerr.IO, err, "open %s", srcPath)
	}
	defer src.Close()

	tmpDir := filepath.Join(s.RepoRoot, "sha256", ".incoming")
	if err := fsx.MkdirP(tmpDir); err != nil {
		return PutResult{}, tblerr.Wrap(tblerr.IO, err, "prepare incoming dir")
	}

	tmpPath := filepath.Join(tmpDir, fmt.Sprintf("tmp.%s", uuid.NewString()))
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return PutResult{}, tblerr.Wrap(tblerr.IO, err, "create temp object")
	}
	removeTmp := true
	defer func() {
		if removeTmp {
			_ = os.Remove(tmpPath)
		}
	}()

	h := sha256x.New()
	buf := make([]byte, 1<<20)
	var n int64
	for {
		rn, rerr := src.Read(buf)
		if rn > 0 {
			h.Update(buf[:rn])
			wn, werr := tmp.Write(buf[:rn])
			n += int64(wn)
			if werr != nil {
				_ = tmp.Close()
				return PutResult{}, tblerr.Wrap(tblerr.IO, werr, "write temp object")
			}
			if wn != rn {
				_ = tmp.Close()
				return PutResult{}, tblerr.New(tblerr.IO, "short write to temp object")
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			_ = tmp.Close()
			return PutResult{}, tblerr.Wrap(tblerr.IO, rerr, "read %s", srcPath)
		}
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return PutResult{}, tblerr.Wrap(tblerr.IO, err, "fsync temp object")
	}
	if err := tmp.Close(); err != nil {
		return PutResult{}, tblerr.Wrap(tblerr.IO, err, "close temp object")
	}

	hexDigest := h.Final()
	finalPath, err := s.ObjectPath(hexDigest)
	if err != nil {
		return PutResult{}, err
	}

	if fsx.Exists(finalPath) {
		s.Metrics.IncCASPut(false)
		return PutResult{HexDigest: hexDigest, Bytes: n, Placed: false}, nil
	}

	if err := fsx.MkdirP(filepath.Dir(finalPath)); err != nil {
		return PutResult{}, tblerr.Wrap(tblerr.IO, err, "prepare object dir")
	}

	if err := fsx.RenameAtomic(tmpPath, finalPath, false); err != nil {
		// Lost a dedupe race: someone else placed the object first.
		if fsx.Exists(finalPath) {
			s.Metrics.IncCASPut(false)
			return PutResult{HexDigest: hexDigest, Bytes: n, Placed: false}, nil
		}
		return PutResult{}, tblerr.Wrap(tblerr.IO, err, "place object %s", finalPath)
	}
	removeTmp = false

	s.Metrics.IncCASPut(true)
	return PutResult{HexDigest: hexDigest, Bytes: n, Placed: true}, nil
}
