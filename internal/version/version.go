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

// Package version carries the engine's semver identity:
// MAJOR.MINOR.PATCH, an optional pre-release suffix, and optional
// build metadata.
package version

import "strconv"

const (
	Major = 0
	Minor = 2
	Patch = 0

	// Suffix is the pre-release tag; empty for release builds.
	Suffix = "-dev"
)

// BuildMeta is optional build metadata (SemVer "+..." component),
// e.g. a short commit hash. Left empty unless a build sets it via
// -ldflags "-X .../internal/version.BuildMeta=+abc123".
var BuildMeta = ""

// Base returns "MAJOR.MINOR.PATCH".
func Base() string {
	return strconv.Itoa(Major) + "." + strconv.Itoa(Minor) + "." + strconv.Itoa(Patch)
}

// String returns the full version string: base + suffix + build meta.
func String() string {
	return Base() + Suffix + BuildMeta
}
