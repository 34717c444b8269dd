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

// Package ini implements a strict, callback-driven INI parser.
// Off-the-shelf INI support (viper's go-ini backend, gopkg.in/ini.v1)
// is lenient where this engine demands strictness: unknown
// sections/keys must be hard errors decided by the caller, and every
// failure must carry a 1-based line number. So the grammar is
// hand-written here, driven by bufio.Scanner.
package ini

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrCallback is returned (wrapped) when the callback aborts parsing
// by returning a non-nil error.
var ErrCallback = fmt.Errorf("ini: callback aborted parsing")

// MaxLineLen bounds a single line; longer lines are reported as
// errors rather than silently accepted.
const MaxLineLen = 4096

// Callback is invoked once per key/value pair. Returning a non-nil
// error aborts parsing; the caller's error is wrapped in ErrCallback.
type Callback func(section, key, value string, lineNo int) error

// ParseFile parses the file at path. Line 1 may carry a UTF-8 BOM,
// which is stripped before parsing.
func ParseFile(path string, cb Callback) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ini: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, cb)
}

// ParseBuf parses an in-memory INI document.
func ParseBuf(buf []byte, cb Callback) error {
	return Parse(bytes.NewReader(buf), cb)
}

// Parse drives the line-level parser over r, LF-or-CRLF tolerant on
// input regardless of what the engine itself writes.
func Parse(r io.Reader, cb Callback) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, MaxLineLen), MaxLineLen+64)

	section := ""
	lineNo := 0
	first := true

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		line = strings.TrimRight(line, "\r")

		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}

		if len(line) > MaxLineLen {
			return fmt.Errorf("ini: line too long (line %d)", lineNo)
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed[0] == ';' || trimmed[0] == '#' {
			continue
		}

		if trimmed[0] == '[' {
			name, err := parseSectionHeader(trimmed, lineNo)
			if err != nil {
				return err
			}
			section = name
			continue
		}

		key, value, err := parseKV(trimmed, lineNo)
		if err != nil {
			return err
		}

		if err := cb(section, key, value, lineNo); err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrCallback, lineNo, err)
		}
	}

	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return fmt.Errorf("ini: line too long (line %d)", lineNo+1)
		}
		return fmt.Errorf("ini: read error: %w", err)
	}

	return nil
}

func parseSectionHeader(trimmed string, lineNo int) (string, error) {
	close := strings.IndexByte(trimmed, ']')
	if close < 0 {
		return "", fmt.Errorf("ini: unterminated section header (line %d)", lineNo)
	}
	name := strings.TrimSpace(trimmed[1:close])
	if name == "" {
		return "", fmt.Errorf("ini: empty section name (line %d)", lineNo)
	}

	trailer := strings.TrimSpace(trimmed[close+1:])
	if trailer != "" && trailer[0] != ';' && trailer[0] != '#' {
		return "", fmt.Errorf("ini: trailing content after ']' (line %d)", lineNo)
	}
	return name, nil
}

func parseKV(trimmed string, lineNo int) (key, value string, err error) {
	eq := strings.IndexByte(trimmed, '=')
	if eq < 0 {
		return "", "", fmt.Errorf("ini: expected 'key = value' (line %d)", lineNo)
	}
	key = strings.TrimSpace(trimmed[:eq])
	if key == "" {
		return "", "", fmt.Errorf("ini: empty key (line %d)", lineNo)
	}
	value = strings.TrimSpace(trimmed[eq+1:])
	return key, value, nil
}
