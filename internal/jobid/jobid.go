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

// Package jobid validates opaque job identifiers. A job id is the
// jobdir's directory name and must be safe to embed in a path: no
// control bytes, no path separators, no drive colon, no ".."
// substring.
package jobid

import "strings"

// IsSafe reports whether id is usable as a job id / jobdir name.
func IsSafe(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.Contains(id, "..") {
		return false
	}
	for _, r := range id {
		if r < 0x20 {
			return false
		}
		switch r {
		case '/', '\\', ':':
			return false
		}
	}
	return true
}
