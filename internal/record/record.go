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

// Package record implements the durable per-job metadata record at
// <repo>/records/<jobid>.ini. Writes use the atomic temp-rename
// pattern from internal/fsx rather than a plain truncating write, so
// a record is either fully present or absent even across a crash
// mid-write.
package record

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/ini"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// Status is the record's status field.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFail    Status = "fail"
	StatusUnknown Status = "unknown"
)

// Record is the durable metadata for one job.
type Record struct {
	Status   Status
	Job      string
	Payload  string
	SHA256   string
	Bytes    uint32
	StoredAt uint32
	Reason   string
}

// Path returns <repo>/records/<jobid>.ini.
func Path(repoRoot, jobID string) string {
	return filepath.Join(repoRoot, "records", jobID+".ini")
}

// Validate enforces the record invariant: if Status == ok, SHA256
// must be a valid hex digest.
func (r Record) Validate() error {
	if r.Status == StatusOK && !sha256x.IsValidHex(r.SHA256) {
		return tblerr.New(tblerr.Schema, "record for job %q has status=ok but invalid sha256", r.Job)
	}
	return nil
}

// Write serializes r to <repo>/records/<jobid>.ini, atomically. Each
// key appears at most once; unknown keys are never written.
func Write(repoRoot string, r Record) error {
	if r.Job == "" {
		tblerr.Panic("record.Write: empty job id")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "status=%s\n", r.Status)
	fmt.Fprintf(&b, "job=%s\n", r.Job)
	fmt.Fprintf(&b, "payload=%s\n", r.Payload)
	if r.SHA256 != "" {
		fmt.Fprintf(&b, "sha256=%s\n", r.SHA256)
	}
	fmt.Fprintf(&b, "bytes=%d\n", r.Bytes)
	fmt.Fprintf(&b, "stored_at=%d\n", r.StoredAt)
	if r.Reason != "" {
		fmt.Fprintf(&b, "reason=%s\n", sanitizeLine(r.Reason))
	}

	path := Path(repoRoot, r.Job)
	if err := fsx.WriteFileAtomic(path, []byte(b.String())); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "write record for job %q", r.Job)
	}
	return nil
}

// Read parses <repo>/records/<jobid>.ini. Unknown keys are ignored.
func Read(repoRoot, jobID string) (Record, error) {
	path := Path(repoRoot, jobID)
	if !fsx.Exists(path) {
		return Record{}, tblerr.New(tblerr.NotFound, "no record for job %q", jobID)
	}

	r := Record{Job: jobID}
	err := ini.ParseFile(path, func(section, key, value string, lineNo int) error {
		if section != "" {
			return nil // records have no sections; tolerate and ignore
		}
		switch key {
		case "status":
			r.Status = Status(value)
		case "job":
			r.Job = value
		case "payload":
			r.Payload = value
		case "sha256":
			r.SHA256 = value
		case "bytes":
			v, perr := strconv.ParseUint(value, 10, 32)
			if perr == nil {
				r.Bytes = uint32(v)
			}
		case "stored_at":
			v, perr := strconv.ParseUint(value, 10, 32)
			if perr == nil {
				r.StoredAt = uint32(v)
			}
		case "reason":
			r.Reason = value
		}
		return nil
	})
	if err != nil {
		return Record{}, tblerr.Wrap(tblerr.Schema, err, "parse record for job %q", jobID)
	}

	return r, nil
}

// IsSafeBasename reports whether name is usable as record.payload:
// non-empty, no path separator, no ".." substring.
func IsSafeBasename(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return true
}

// sanitizeLine keeps the freeform reason single-line: control bytes
// (including CR and LF) become '_', everything else passes through.
func sanitizeLine(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
