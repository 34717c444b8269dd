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

// Package auditverify replays the hash-chained ops audit log and
// detects tampering: a broken prev/hash chain, a corrupted canonical
// payload, or a structurally malformed line. It is a read-only
// sibling of internal/events, which writes the chain this package
// verifies.
package auditverify

import (
	"fmt"
	"os"
	"strings"

	"github.com/tablinum/tablinum/internal/events"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// Result summarizes a successful verification.
type Result struct {
	Lines int
}

// Verify scans <repo>/audit/ops.log line by line: each line must end
// in LF (no CR, no missing terminator, including
// the last line), parse as "prev=<64hex> hash=<64hex> <canonical>"
// with canonical starting "ts=" and containing " event=", its prev
// must equal the previous line's chained hash (zero for line 1), and
// recomputing SHA256(prev || "\n" || canonical) must equal hash. The
// first mismatch returns tblerr.Integrity with the offending line
// number; a missing file returns tblerr.NotFound.
func Verify(repoRoot string) (Result, error) {
	path := events.AuditPath(repoRoot)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, tblerr.New(tblerr.NotFound, "audit log not found at %s", path)
		}
		return Result{}, tblerr.Wrap(tblerr.IO, err, "read audit log")
	}

	if len(raw) == 0 {
		return Result{Lines: 0}, nil
	}
	if raw[len(raw)-1] != '\n' {
		return Result{}, integrity(countLines(raw), "missing trailing LF")
	}

	// Split on LF only, so a CR just before the LF stays in the line
	// text and the CR check below sees it.
	lines := strings.Split(string(raw[:len(raw)-1]), "\n")

	prevHash := events.ZeroHash
	for i, text := range lines {
		lineNo := i + 1
		if strings.ContainsRune(text, '\r') {
			return Result{}, integrity(lineNo, "CR found (LF-only required)")
		}

		prev, hash, canonical, err := parseLine(text)
		if err != nil {
			return Result{}, integrity(lineNo, err.Error())
		}
		if !strings.HasPrefix(canonical, "ts=") || !strings.Contains(canonical, " event=") {
			return Result{}, integrity(lineNo, "canonical payload malformed")
		}
		if prev != prevHash {
			return Result{}, integrity(lineNo, "prev mismatch")
		}

		wantHash := sha256x.HexOf([]byte(prev + "\n" + canonical))
		if hash != wantHash {
			return Result{}, integrity(lineNo, "hash mismatch")
		}

		prevHash = hash
	}

	return Result{Lines: len(lines)}, nil
}

func integrity(lineNo int, reason string) error {
	return tblerr.New(tblerr.Integrity, "audit integrity: line %d: %s", lineNo, reason)
}

func countLines(raw []byte) int {
	n := strings.Count(string(raw), "\n")
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		n++
	}
	return n
}

func parseLine(text string) (prev, hash, canonical string, err error) {
	const prevPrefix = "prev="
	if !strings.HasPrefix(text, prevPrefix) {
		return "", "", "", fmt.Errorf("missing prev= field")
	}
	rest := text[len(prevPrefix):]
	if len(rest) < sha256x.HexLen {
		return "", "", "", fmt.Errorf("prev field too short")
	}
	prev = rest[:sha256x.HexLen]
	if !sha256x.IsValidHex(prev) {
		return "", "", "", fmt.Errorf("prev is not valid hex")
	}
	rest = rest[sha256x.HexLen:]
	if !strings.HasPrefix(rest, " ") {
		return "", "", "", fmt.Errorf("missing space after prev")
	}
	rest = rest[1:]

	const hashPrefix = "hash="
	if !strings.HasPrefix(rest, hashPrefix) {
		return "", "", "", fmt.Errorf("missing hash= field")
	}
	rest = rest[len(hashPrefix):]
	if len(rest) < sha256x.HexLen {
		return "", "", "", fmt.Errorf("hash field too short")
	}
	hash = rest[:sha256x.HexLen]
	if !sha256x.IsValidHex(hash) {
		return "", "", "", fmt.Errorf("hash is not valid hex")
	}
	rest = rest[sha256x.HexLen:]
	if !strings.HasPrefix(rest, " ") {
		return "", "", "", fmt.Errorf("missing space after hash")
	}
	canonical = rest[1:]
	return prev, hash, canonical, nil
}
