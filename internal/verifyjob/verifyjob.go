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

// Package verifyjob recomputes a job's CAS object hash and requires
// it to still equal the record's declared sha256.
package verifyjob

import (
	"github.com/tablinum/tablinum/internal/cas"
	"github.com/tablinum/tablinum/internal/record"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// Outcome distinguishes a verified job from one skipped because its
// record isn't status=ok; a skip is OK for exit-code purposes.
type Outcome int

const (
	Verified Outcome = iota
	Skipped
)

// Run reads the record for jobID and, if its status is ok, streams
// the corresponding CAS object through SHA-256 and requires equality
// with record.sha256. A non-ok record returns Skipped, not an error.
func Run(repoRoot, jobID string) (Outcome, error) {
	rec, err := record.Read(repoRoot, jobID)
	if err != nil {
		return Verified, err
	}
	if rec.Status != record.StatusOK {
		return Skipped, nil
	}

	store := cas.New(repoRoot)
	objPath, err := store.ObjectPath(rec.SHA256)
	if err != nil {
		return Verified, err
	}

	hexDigest, _, err := sha256x.HexOfFile(objPath)
	if err != nil {
		return Verified, tblerr.New(tblerr.Integrity, "CAS object for job %q not found", jobID)
	}
	if hexDigest != rec.SHA256 {
		return Verified, tblerr.New(tblerr.Integrity, "sha256 mismatch")
	}

	return Verified, nil
}
