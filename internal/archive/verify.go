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
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/ini"
	"github.com/tablinum/tablinum/internal/jobid"
	"github.com/tablinum/tablinum/internal/record"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// manifestOrder is the fixed tail of the manifest: after the
// representation payload come record.ini, package.ini, events.log.
var manifestOrder = []string{relRecord, relPackageIni, relEventsLog}

// packageIniRequiredKeys and packageIniOptionalKeys bound the key set
// package.ini is allowed to carry; any other key is a SCHEMA failure.
var (
	packageIniRequiredKeys = map[string]bool{
		"schema_version": true,
		"kind":           true,
		"jobid":          true,
		"created_utc":    true,
		"tool_version":   true,
	}
	packageIniOptionalKeys = map[string]bool{
		"tool_commit":   true,
		"events_source": true,
	}
)

// VerifyResult carries the package facts Verify establishes, for
// callers (e.g. Ingest) that need them without re-parsing.
type VerifyResult struct {
	JobID           string
	PayloadBasename string
	SHA256          string
}

// Verify runs the strict, ordered package checks against pkgDir:
// layout, LF-only metadata, package.ini schema, record/jobid
// agreement, payload safety and hash, and the manifest's fixed order
// and hashes. The first failing check returns immediately with the
// matching tblerr.Kind.
func Verify(pkgDir string) (VerifyResult, error) {
	if !fsx.IsDir(pkgDir) {
		return VerifyResult{}, tblerr.New(tblerr.NotFound, "package directory %q not found", pkgDir)
	}

	metaDir := filepath.Join(pkgDir, metadataDirName)
	repDir := filepath.Join(pkgDir, repRootDir)
	if !fsx.IsDir(metaDir) {
		return VerifyResult{}, tblerr.New(tblerr.Schema, "missing metadata/ directory")
	}
	if !fsx.IsDir(repDir) {
		return VerifyResult{}, tblerr.New(tblerr.Schema, "missing representations/rep0/data/ directory")
	}

	requiredFiles := []string{relRecord, relPackageIni, relEventsLog, relManifest}
	for _, rel := range requiredFiles {
		if !fsx.Exists(filepath.Join(pkgDir, rel)) {
			return VerifyResult{}, tblerr.New(tblerr.NotFound, "package missing %s", rel)
		}
	}

	lfOnlyFiles := []string{relRecord, relPackageIni, relEventsLog, relManifest}
	for _, rel := range lfOnlyFiles {
		raw, err := os.ReadFile(filepath.Join(pkgDir, rel))
		if err != nil {
			return VerifyResult{}, tblerr.Wrap(tblerr.IO, err, "read %s", rel)
		}
		if bytes.ContainsRune(raw, '\r') {
			return VerifyResult{}, tblerr.New(tblerr.Schema, "%s: CR found (LF-only required)", rel)
		}
	}

	pkgIni, err := parsePackageIni(pkgDir)
	if err != nil {
		return VerifyResult{}, err
	}

	rec, err := parseRecordIni(pkgDir)
	if err != nil {
		return VerifyResult{}, err
	}
	if rec.Job != pkgIni["jobid"] {
		return VerifyResult{}, tblerr.New(tblerr.Integrity, "record job %q does not match package jobid %q", rec.Job, pkgIni["jobid"])
	}
	// A foreign package's jobid becomes a local records/<jobid>.ini
	// path on ingest; an unsafe id must never get that far.
	if !jobid.IsSafe(rec.Job) {
		return VerifyResult{}, tblerr.New(tblerr.Schema, "unsafe job id %q", rec.Job)
	}

	if !record.IsSafeBasename(rec.Payload) {
		return VerifyResult{}, tblerr.New(tblerr.Schema, "record payload %q is not a safe basename", rec.Payload)
	}
	payloadPath := filepath.Join(repDir, rec.Payload)
	if !fsx.Exists(payloadPath) {
		return VerifyResult{}, tblerr.New(tblerr.NotFound, "representation payload %q not found", rec.Payload)
	}

	payloadHex, _, err := sha256x.HexOfFile(payloadPath)
	if err != nil {
		return VerifyResult{}, tblerr.Wrap(tblerr.IO, err, "hash representation payload")
	}
	if payloadHex != rec.SHA256 {
		return VerifyResult{}, tblerr.New(tblerr.Integrity, "representation payload hash does not match record.sha256")
	}

	recomputed := map[string]string{
		filepath.ToSlash(filepath.Join(repRootDir, rec.Payload)): payloadHex,
	}
	for _, rel := range manifestOrder {
		hexDigest, _, err := sha256x.HexOfFile(filepath.Join(pkgDir, rel))
		if err != nil {
			return VerifyResult{}, tblerr.Wrap(tblerr.IO, err, "hash %s", rel)
		}
		recomputed[rel] = hexDigest
	}

	if err := verifyManifest(pkgDir, rec.Payload, recomputed); err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{JobID: rec.Job, PayloadBasename: rec.Payload, SHA256: rec.SHA256}, nil
}

// parsePackageIni parses metadata/package.ini and enforces its
// single-section, bounded-key-set schema.
func parsePackageIni(pkgDir string) (map[string]string, error) {
	path := filepath.Join(pkgDir, relPackageIni)
	values := map[string]string{}
	var sawOtherSection bool

	err := ini.ParseFile(path, func(section, key, value string, lineNo int) error {
		if section != "package" {
			sawOtherSection = true
			return nil
		}
		if !packageIniRequiredKeys[key] && !packageIniOptionalKeys[key] {
			return tblerr.New(tblerr.Schema, "package.ini: unknown key %q (line %d)", key, lineNo)
		}
		values[key] = value
		return nil
	})
	if err != nil {
		if te, ok := err.(*tblerr.Error); ok {
			return nil, te
		}
		return nil, tblerr.Wrap(tblerr.Schema, err, "parse package.ini")
	}
	if sawOtherSection {
		return nil, tblerr.New(tblerr.Schema, "package.ini: unknown section")
	}
	for k := range packageIniRequiredKeys {
		if _, ok := values[k]; !ok {
			return nil, tblerr.New(tblerr.Schema, "package.ini: missing required key %q", k)
		}
	}
	if values["schema_version"] != "1" {
		return nil, tblerr.New(tblerr.Schema, "package.ini: schema_version %q is not 1", values["schema_version"])
	}
	if values["kind"] != string(KindAIP) && values["kind"] != string(KindSIP) {
		return nil, tblerr.New(tblerr.Schema, "package.ini: kind %q is not aip or sip", values["kind"])
	}
	if es, ok := values["events_source"]; ok && es != "job" && es != "legacy" {
		return nil, tblerr.New(tblerr.Schema, "package.ini: events_source %q is not job or legacy", es)
	}
	return values, nil
}

// minimalRecord is the subset of record.Record verify needs, parsed
// directly from the packaged metadata/record.ini rather than via
// record.Read (which assumes a <repo>/records/ layout the package
// doesn't have).
type minimalRecord struct {
	Job     string
	Payload string
	SHA256  string
}

func parseRecordIni(pkgDir string) (minimalRecord, error) {
	path := filepath.Join(pkgDir, relRecord)
	var r minimalRecord
	err := ini.ParseFile(path, func(section, key, value string, lineNo int) error {
		if section != "" {
			return nil
		}
		switch key {
		case "job":
			r.Job = value
		case "payload":
			r.Payload = value
		case "sha256":
			r.SHA256 = value
		}
		return nil
	})
	if err != nil {
		return minimalRecord{}, tblerr.Wrap(tblerr.Schema, err, "parse record.ini")
	}
	return r, nil
}

// verifyManifest parses metadata/manifest-sha256.txt and requires
// exactly four lines, in the fixed order, each a safe relative path
// whose hash matches recomputed.
func verifyManifest(pkgDir, payloadBasename string, recomputed map[string]string) error {
	path := filepath.Join(pkgDir, relManifest)
	f, err := os.Open(path)
	if err != nil {
		return tblerr.Wrap(tblerr.IO, err, "open manifest")
	}
	defer f.Close()

	wantOrder := append([]string{filepath.ToSlash(filepath.Join(repRootDir, payloadBasename))}, manifestOrder...)

	sc := bufio.NewScanner(f)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "read manifest")
	}

	if len(lines) != 4 {
		return tblerr.New(tblerr.Integrity, "manifest has %d lines, want 4", len(lines))
	}

	for i, line := range lines {
		hexDigest, rel, err := parseManifestLine(line, i+1)
		if err != nil {
			return err
		}
		if !isSafeRelPath(rel) {
			return tblerr.New(tblerr.Schema, "manifest line %d: unsafe path %q", i+1, rel)
		}
		if rel != wantOrder[i] {
			return tblerr.New(tblerr.Integrity, "manifest order/path mismatch at line %d: got %q, want %q", i+1, rel, wantOrder[i])
		}
		want, ok := recomputed[rel]
		if !ok || hexDigest != want {
			return tblerr.New(tblerr.Integrity, "manifest hash mismatch for %s", rel)
		}
	}
	return nil
}

func parseManifestLine(line string, lineNo int) (hexDigest, rel string, err error) {
	const sep = "  "
	idx := strings.Index(line, sep)
	if idx != sha256x.HexLen || !sha256x.IsValidHex(line[:sha256x.HexLen]) {
		return "", "", tblerr.New(tblerr.Schema, "manifest line %d: malformed (want <64hex>  <path>)", lineNo)
	}
	return line[:sha256x.HexLen], line[idx+len(sep):], nil
}

func isSafeRelPath(rel string) bool {
	if rel == "" || filepath.IsAbs(rel) {
		return false
	}
	if strings.Contains(rel, "\\") {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." || seg == "" {
			return false
		}
	}
	return true
}
