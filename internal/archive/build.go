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

// Package archive implements the package build/verify/ingest
// pipeline: a deterministic AIP/SIP layout with a filtered events log
// and a checksum manifest that closes over every file the package
// contains. Files land in the package via plain copies into the
// caller-chosen tree, not renames — the source record and CAS object
// must stay in place.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tablinum/tablinum/internal/cas"
	"github.com/tablinum/tablinum/internal/events"
	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/record"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
	"github.com/tablinum/tablinum/internal/version"
)

// Kind is the package flavor: archival (AIP) or submission (SIP).
type Kind string

const (
	KindAIP Kind = "aip"
	KindSIP Kind = "sip"
)

// Relative paths inside a package, in the fixed manifest order.
const (
	relRecord       = "metadata/record.ini"
	relPackageIni   = "metadata/package.ini"
	relEventsLog    = "metadata/events.log"
	relManifest     = "metadata/manifest-sha256.txt"
	repRootDir      = "representations/rep0/data"
	metadataDirName = "metadata"
)

// BuildOptions configures a package build.
type BuildOptions struct {
	RepoRoot   string
	JobID      string
	OutDir     string
	Kind       Kind
	Now        int64 // used only if record.StoredAt is zero
	ToolCommit string
}

// Build produces a self-describing package directory tree at
// opts.OutDir for opts.JobID. Packaging the same inputs twice must be
// byte-identical; created_utc is taken from the record's immutable
// StoredAt whenever it's non-zero to preserve that.
func Build(opts BuildOptions) error {
	if opts.Kind != KindAIP && opts.Kind != KindSIP {
		return tblerr.New(tblerr.Usage, "unknown package kind %q", opts.Kind)
	}

	rec, err := record.Read(opts.RepoRoot, opts.JobID)
	if err != nil {
		return err
	}
	if rec.Status != record.StatusOK {
		return tblerr.New(tblerr.NotFound, "job %q has no status=ok record", opts.JobID)
	}
	if !sha256x.IsValidHex(rec.SHA256) {
		return tblerr.New(tblerr.Integrity, "record for job %q has invalid sha256", opts.JobID)
	}

	store := cas.New(opts.RepoRoot)
	objPath, err := store.ObjectPath(rec.SHA256)
	if err != nil {
		return err
	}
	if !fsx.Exists(objPath) {
		return tblerr.New(tblerr.NotFound, "CAS object for job %q not found", opts.JobID)
	}

	for _, dir := range []string{
		opts.OutDir,
		filepath.Join(opts.OutDir, metadataDirName),
		filepath.Join(opts.OutDir, repRootDir),
	} {
		if err := fsx.MkdirP(dir); err != nil {
			return tblerr.Wrap(tblerr.IO, err, "create %s", dir)
		}
	}

	payloadBasename := rec.Payload
	if payloadBasename == "" {
		payloadBasename = "payload.bin"
	}
	if err := fsx.CopyFile(objPath, filepath.Join(opts.OutDir, repRootDir, payloadBasename)); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "copy payload into package")
	}

	if err := fsx.CopyFile(record.Path(opts.RepoRoot, opts.JobID), filepath.Join(opts.OutDir, relRecord)); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "copy record into package")
	}

	eventsSource, err := materializeEvents(opts.RepoRoot, opts.JobID, filepath.Join(opts.OutDir, relEventsLog))
	if err != nil {
		return err
	}

	createdUTC := rec.StoredAt
	if createdUTC == 0 {
		createdUTC = uint32(opts.Now)
	}

	if err := writePackageIni(opts, createdUTC, eventsSource); err != nil {
		return err
	}

	if err := writeManifest(opts.OutDir, payloadBasename); err != nil {
		return err
	}

	return nil
}

// materializeEvents writes dst with the job's filtered events: prefer
// the per-job stream verbatim (CR stripped), else filter the legacy
// stream for lines naming this job. Returns which source was used.
func materializeEvents(repoRoot, jobID, dst string) (string, error) {
	perJobPath := events.PerJobPath(repoRoot, jobID)
	if fsx.Exists(perJobPath) {
		raw, err := os.ReadFile(perJobPath)
		if err != nil {
			return "", tblerr.Wrap(tblerr.IO, err, "read per-job events for %q", jobID)
		}
		stripped := strings.ReplaceAll(string(raw), "\r", "")
		if err := fsx.WriteFile(dst, []byte(stripped)); err != nil {
			return "", tblerr.Wrap(tblerr.IO, err, "write package events.log")
		}
		return "job", nil
	}

	legacyPath := events.LegacyPath(repoRoot)
	var filtered strings.Builder
	if fsx.Exists(legacyPath) {
		raw, err := os.ReadFile(legacyPath)
		if err != nil {
			return "", tblerr.Wrap(tblerr.IO, err, "read legacy events for %q", jobID)
		}
		needle1 := "job=" + jobID
		prefix := "job=" + jobID
		for _, line := range strings.Split(strings.ReplaceAll(string(raw), "\r", ""), "\n") {
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, prefix) || strings.Contains(line, " "+needle1) {
				filtered.WriteString(line)
				filtered.WriteByte('\n')
			}
		}
	}

	if err := fsx.WriteFile(dst, []byte(filtered.String())); err != nil {
		return "", tblerr.Wrap(tblerr.IO, err, "write package events.log")
	}
	return "legacy", nil
}

func writePackageIni(opts BuildOptions, createdUTC uint32, eventsSource string) error {
	var b strings.Builder
	b.WriteString("[package]\n")
	fmt.Fprintf(&b, "schema_version = 1\n")
	fmt.Fprintf(&b, "kind = %s\n", opts.Kind)
	fmt.Fprintf(&b, "jobid = %s\n", opts.JobID)
	fmt.Fprintf(&b, "created_utc = %d\n", createdUTC)
	fmt.Fprintf(&b, "events_source = %s\n", eventsSource)
	fmt.Fprintf(&b, "tool_version = %s\n", version.String())
	if opts.ToolCommit != "" {
		fmt.Fprintf(&b, "tool_commit = %s\n", opts.ToolCommit)
	}

	if err := fsx.WriteFile(filepath.Join(opts.OutDir, relPackageIni), []byte(b.String())); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "write package.ini")
	}
	return nil
}

func writeManifest(outDir, payloadBasename string) error {
	entries := []string{
		filepath.ToSlash(filepath.Join(repRootDir, payloadBasename)),
		relRecord,
		relPackageIni,
		relEventsLog,
	}

	var b strings.Builder
	for _, rel := range entries {
		hexDigest, _, err := sha256x.HexOfFile(filepath.Join(outDir, rel))
		if err != nil {
			return tblerr.Wrap(tblerr.IO, err, "hash %s", rel)
		}
		fmt.Fprintf(&b, "%s  %s\n", hexDigest, rel)
	}

	if err := fsx.WriteFile(filepath.Join(outDir, relManifest), []byte(b.String())); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "write manifest")
	}
	return nil
}
