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

// Package events implements the engine's three event sinks: a legacy
// combined stream, a per-job stream, and the hash-chained ops audit.
// Every sink is best effort — a write failure here must never fail
// the caller's primary operation.
package events

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/sha256x"
)

// ZeroHash is the 64-zero sentinel used as the chain's genesis prev.
var ZeroHash = strings.Repeat("0", 64)

// Fields describes one event; Job, Status, SHA256, and Reason are
// optional and omitted from the canonical line when empty.
type Fields struct {
	Event  string
	Job    string
	Status string
	SHA256 string
	Reason string
}

// Canonical renders ts=<unix> event=<name> [job=X] [status=S]
// [sha256=H] [reason=R], sanitizing each value (bytes <= 0x20 and '='
// become '_').
func Canonical(ts int64, f Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ts=%d event=%s", ts, sanitize(f.Event))
	if f.Job != "" {
		fmt.Fprintf(&b, " job=%s", sanitize(f.Job))
	}
	if f.Status != "" {
		fmt.Fprintf(&b, " status=%s", sanitize(f.Status))
	}
	if f.SHA256 != "" {
		fmt.Fprintf(&b, " sha256=%s", sanitize(f.SHA256))
	}
	if f.Reason != "" {
		fmt.Fprintf(&b, " reason=%s", sanitize(f.Reason))
	}
	return b.String()
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= 0x20 || r == '=' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Append writes the event to the legacy combined stream, the per-job
// stream, and the chained ops audit. Every sink is best effort: a
// write failure here is swallowed, never propagated to the caller.
// now is the unix timestamp to stamp the canonical line with.
func Append(repoRoot string, now int64, f Fields) {
	canonical := Canonical(now, f)
	line := canonical + "\n"

	appendLegacy(repoRoot, line)
	if f.Job != "" {
		appendPerJob(repoRoot, f.Job, line)
	}
	appendAudit(repoRoot, canonical)
}

func appendLegacy(repoRoot, line string) {
	path := filepath.Join(repoRoot, "events.log")
	_ = appendFile(path, line)
}

func appendPerJob(repoRoot, job, line string) {
	dir := filepath.Join(repoRoot, "jobs", job)
	if err := fsx.MkdirP(dir); err != nil {
		return
	}
	_ = appendFile(filepath.Join(dir, "events.log"), line)
}

func appendFile(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}

// appendAudit appends one chained line to <repo>/audit/ops.log: the
// line's prev is the previous line's hash (zero-initialized for the
// first line), and hash = SHA256(prev || "\n" || canonical).
func appendAudit(repoRoot, canonical string) {
	path := filepath.Join(repoRoot, "audit", "ops.log")
	if err := fsx.MkdirP(filepath.Dir(path)); err != nil {
		return
	}

	prev := tailPrevHash(path)
	hash := sha256x.HexOf([]byte(prev + "\n" + canonical))
	line := fmt.Sprintf("prev=%s hash=%s %s\n", prev, hash, canonical)
	_ = appendFile(path, line)
}

// tailPrevHash reads the last up-to-4KiB of path to find the most
// recent line's hash=<64hex> field. Returns ZeroHash if the file is
// missing or no valid previous hash can be found.
func tailPrevHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ZeroHash
	}
	defer f.Close()

	const tailSize = 4096
	fi, err := f.Stat()
	if err != nil {
		return ZeroHash
	}

	size := fi.Size()
	readSize := int64(tailSize)
	if size < readSize {
		readSize = size
	}
	if readSize == 0 {
		return ZeroHash
	}

	buf := make([]byte, readSize)
	if _, err := f.ReadAt(buf, size-readSize); err != nil {
		return ZeroHash
	}

	lines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")
	if len(lines) == 0 {
		return ZeroHash
	}
	last := lines[len(lines)-1]

	idx := strings.Index(last, "hash=")
	if idx < 0 || idx+5+64 > len(last) {
		return ZeroHash
	}
	candidate := last[idx+5 : idx+5+64]
	if !sha256x.IsValidHex(candidate) {
		return ZeroHash
	}
	return candidate
}

// Line is one parsed ops-audit entry.
type Line struct {
	LineNo    int
	Prev      string
	Hash      string
	Canonical string
}

// ReadAuditLines reads and parses every line of <repo>/audit/ops.log,
// the same shape appendAudit writes, without verifying the chain
// (that is internal/auditverify's job). Malformed lines are skipped,
// not reported; callers that need strict validation run auditverify.
func ReadAuditLines(repoRoot string) ([]Line, error) {
	path := filepath.Join(repoRoot, "audit", "ops.log")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Line
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		l, ok := parseLine(sc.Text(), lineNo)
		if ok {
			out = append(out, l)
		}
	}
	return out, sc.Err()
}

func parseLine(text string, lineNo int) (Line, bool) {
	const prevPrefix = "prev="
	if !strings.HasPrefix(text, prevPrefix) {
		return Line{}, false
	}
	rest := text[len(prevPrefix):]
	if len(rest) < 64 {
		return Line{}, false
	}
	prev := rest[:64]
	rest = strings.TrimPrefix(rest[64:], " ")
	const hashPrefix = "hash="
	if !strings.HasPrefix(rest, hashPrefix) {
		return Line{}, false
	}
	rest = rest[len(hashPrefix):]
	if len(rest) < 64 {
		return Line{}, false
	}
	hash := rest[:64]
	canonical := strings.TrimPrefix(rest[64:], " ")
	return Line{LineNo: lineNo, Prev: prev, Hash: hash, Canonical: canonical}, true
}

// LegacyPath and PerJobPath expose the sink file locations for
// internal/archive's package-build event materialization.
func LegacyPath(repoRoot string) string      { return filepath.Join(repoRoot, "events.log") }
func PerJobPath(repoRoot, job string) string { return filepath.Join(repoRoot, "jobs", job, "events.log") }
func AuditPath(repoRoot string) string       { return filepath.Join(repoRoot, "audit", "ops.log") }
