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

// Package tpath implements overflow-checked path composition, layered
// on top of path/filepath. Go strings don't silently truncate, so
// "overflow" here means a configurable hard cap on path length
// (PATH_MAX-style): Join returns an error rather than a longer path.
// internal/config falls back to filepath.Join when Join fails, so
// configured core paths are not held to the cap.
package tpath

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxLen is the default cap enforced by Join.
const MaxLen = 1024

// IsAbs reports whether p is an absolute path on either a POSIX or a
// Windows filesystem: "/…", "\…", or "<letter>:[sep]…".
func IsAbs(p string) bool {
	if p == "" {
		return false
	}
	if p[0] == '/' || p[0] == '\\' {
		return true
	}
	if len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':' {
		return true
	}
	return false
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Join composes a and b: if b is absolute it is used literally (the
// caller is responsible for filtering that case); otherwise a
// separator is inserted between a and b as needed, and the result is
// normalized (both separators collapsed to the platform separator,
// repeated separators collapsed). Join fails if the composed path
// would exceed maxLen.
func Join(a, b string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = MaxLen
	}

	var joined string
	if IsAbs(b) {
		joined = b
	} else {
		joined = a
		if joined != "" && !strings.HasSuffix(joined, "/") && !strings.HasSuffix(joined, "\\") {
			joined += string(filepath.Separator)
		}
		trimmed := b
		if joined != "" {
			trimmed = strings.TrimLeft(b, `/\`)
		}
		joined += trimmed
	}

	joined = normalize(joined)

	if len(joined) > maxLen {
		return "", fmt.Errorf("tpath: joined path exceeds %d bytes", maxLen)
	}
	return joined, nil
}

// normalize converts both separators to the platform separator and
// collapses runs of separators into one.
func normalize(p string) string {
	if p == "" {
		return p
	}
	sep := string(filepath.Separator)
	repl := strings.NewReplacer("/", sep, "\\", sep)
	p = repl.Replace(p)

	var b strings.Builder
	var prevWasSep bool
	for i, r := range p {
		isSep := string(r) == sep
		if isSep && prevWasSep && i != 0 {
			continue
		}
		b.WriteRune(r)
		prevWasSep = isSep
	}
	return b.String()
}
