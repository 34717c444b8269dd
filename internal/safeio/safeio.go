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

// Package safeio provides bounded string and overflow-checked
// arithmetic helpers. The goal is to make silent truncation and
// integer overflow impossible to reach accidentally at the API
// boundary, rather than trusting callers to check every return value.
package safeio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AddU64 returns a+b, or an error if the sum would overflow uint64.
func AddU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("safeio: uint64 addition overflow: %d + %d", a, b)
	}
	return sum, nil
}

// MulU64 returns a*b, or an error if the product would overflow uint64.
func MulU64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/a != b {
		return 0, fmt.Errorf("safeio: uint64 multiplication overflow: %d * %d", a, b)
	}
	return p, nil
}

// ParseU32 parses s as a decimal uint32. It accepts optional
// surrounding whitespace, digits only, and the range [0, 2^32-1].
// An empty string (after trimming) is rejected.
func ParseU32(s string) (uint32, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, fmt.Errorf("safeio: empty decimal string")
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("safeio: %q is not a decimal digit string", s)
		}
	}
	v, err := strconv.ParseUint(t, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("safeio: %q out of range for uint32: %w", s, err)
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("safeio: %q out of range for uint32", s)
	}
	return uint32(v), nil
}

// EncodeU32 writes the shortest decimal form of v: no leading zero
// except for the value zero itself.
func EncodeU32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

// BoundedCopy copies src into dst, returning the length that would
// have been written (len(src)) and whether the full string fit. It
// never writes more than len(dst) bytes.
//
// Go strings don't truncate silently the way a raw strlcpy target
// can; this exists for callers that need to enforce a hard cap
// (e.g. INI value lengths) without allocating the full input first.
func BoundedCopy(dst []byte, src string) (wouldWrite int, fit bool) {
	wouldWrite = len(src)
	n := copy(dst, src)
	return wouldWrite, n == len(src)
}

// BoundedConcat appends b to a, returning the result truncated to cap
// bytes and whether the untruncated concatenation would have fit.
func BoundedConcat(a, b string, cap int) (result string, fit bool) {
	total := len(a) + len(b)
	if total <= cap {
		return a + b, true
	}
	joined := a + b
	if cap < 0 {
		cap = 0
	}
	if cap > len(joined) {
		cap = len(joined)
	}
	return joined[:cap], false
}
