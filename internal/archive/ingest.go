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

package archive

import (
	"path/filepath"

	"github.com/tablinum/tablinum/internal/cas"
	"github.com/tablinum/tablinum/internal/events"
	"github.com/tablinum/tablinum/internal/ini"
	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/record"
	"github.com/tablinum/tablinum/internal/safeio"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// IngestOptions configures a package-into-repo ingest.
type IngestOptions struct {
	RepoRoot string
	PkgDir   string
	Now      int64

	// Metrics is optional: a nil Recorder makes every counter a no-op.
	Metrics *metrics.Recorder
}

// Ingest verifies the package, then puts its representation payload
// into the local CAS, writes the record, and appends an
// ingest-package.ok audit event. Any failing step returns
// immediately, leaving the repo clean of that record — Verify runs to
// completion before any write touches RepoRoot.
func Ingest(opts IngestOptions) error {
	result, err := Verify(opts.PkgDir)
	if err != nil {
		return err
	}

	payloadPath := filepath.Join(opts.PkgDir, repRootDir, result.PayloadBasename)

	store := cas.New(opts.RepoRoot)
	store.Metrics = opts.Metrics
	put, err := store.PutFile(payloadPath)
	if err != nil {
		return err
	}
	if put.HexDigest != result.SHA256 {
		return tblerr.New(tblerr.Integrity, "CAS put produced %s, package record declares %s", put.HexDigest, result.SHA256)
	}

	rec, err := readFullRecord(opts.PkgDir)
	if err != nil {
		return err
	}
	rec.Job = result.JobID
	rec.SHA256 = put.HexDigest

	if err := record.Write(opts.RepoRoot, rec); err != nil {
		return err
	}

	events.Append(opts.RepoRoot, opts.Now, events.Fields{
		Event:  "ingest-package.ok",
		Job:    result.JobID,
		Status: "ok",
		SHA256: put.HexDigest,
	})
	opts.Metrics.IncAuditAppend("ingest-package.ok")

	return nil
}

// readFullRecord parses the packaged metadata/record.ini into a full
// record.Record so every original field (bytes, stored_at, reason)
// survives the round trip, not just the subset Verify inspects.
func readFullRecord(pkgDir string) (record.Record, error) {
	path := filepath.Join(pkgDir, relRecord)
	var r record.Record
	err := ini.ParseFile(path, func(section, key, value string, lineNo int) error {
		if section != "" {
			return nil
		}
		switch key {
		case "status":
			r.Status = record.Status(value)
		case "job":
			r.Job = value
		case "payload":
			r.Payload = value
		case "sha256":
			r.SHA256 = value
		case "bytes":
			if v, perr := safeio.ParseU32(value); perr == nil {
				r.Bytes = v
			}
		case "stored_at":
			if v, perr := safeio.ParseU32(value); perr == nil {
				r.StoredAt = v
			}
		case "reason":
			r.Reason = value
		}
		return nil
	})
	if err != nil {
		return record.Record{}, tblerr.Wrap(tblerr.Schema, err, "parse packaged record.ini")
	}
	return r, nil
}
