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

// Package export implements the DIP-light export role: a flatter,
// unpackaged sibling of internal/archive's AIP/SIP build. An export
// is just the record, the payload, and a sha256sum-compatible
// manifest, with no metadata/package.ini or events.log.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tablinum/tablinum/internal/cas"
	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/record"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// Relative paths inside an export directory.
const (
	relRecord   = "record.ini"
	relManifest = "sha256sum.txt"
)

// Run produces <outDir>/record.ini, <outDir>/<payload-basename>, and
// <outDir>/sha256sum.txt for jobID, reading from <repoRoot>'s record
// store and CAS.
func Run(repoRoot, jobID, outDir string) error {
	rec, err := record.Read(repoRoot, jobID)
	if err != nil {
		return err
	}
	if rec.Status != record.StatusOK {
		return tblerr.New(tblerr.NotFound, "job %q has no status=ok record", jobID)
	}
	if !sha256x.IsValidHex(rec.SHA256) {
		return tblerr.New(tblerr.Integrity, "record for job %q has invalid sha256", jobID)
	}

	store := cas.New(repoRoot)
	objPath, err := store.ObjectPath(rec.SHA256)
	if err != nil {
		return err
	}
	if !fsx.Exists(objPath) {
		return tblerr.New(tblerr.NotFound, "CAS object for job %q not found", jobID)
	}

	if err := fsx.MkdirP(outDir); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "create %s", outDir)
	}

	payloadBasename := rec.Payload
	if payloadBasename == "" {
		payloadBasename = "payload.bin"
	}
	payloadOut := filepath.Join(outDir, payloadBasename)
	if err := fsx.CopyFile(objPath, payloadOut); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "copy payload into export")
	}

	if err := fsx.CopyFile(record.Path(repoRoot, jobID), filepath.Join(outDir, relRecord)); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "copy record into export")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", rec.SHA256, payloadBasename)
	recordHex, _, err := sha256x.HexOfFile(filepath.Join(outDir, relRecord))
	if err != nil {
		return tblerr.Wrap(tblerr.IO, err, "hash exported record.ini")
	}
	fmt.Fprintf(&b, "%s  %s\n", recordHex, relRecord)

	if err := fsx.WriteFile(filepath.Join(outDir, relManifest), []byte(b.String())); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "write export manifest")
	}
	return nil
}
