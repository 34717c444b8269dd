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

package ini

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv struct {
	section, key, value string
	lineNo              int
}

func collect(t *testing.T, doc string) []kv {
	t.Helper()
	var got []kv
	err := ParseBuf([]byte(doc), func(section, key, value string, lineNo int) error {
		got = append(got, kv{section, key, value, lineNo})
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestParseBasic(t *testing.T) {
	t.Parallel()

	got := collect(t, "[core]\nroot = .\nspool=spool\n")
	assert.Equal(t, []kv{
		{"core", "root", ".", 2},
		{"core", "spool", "spool", 3},
	}, got)
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	got := collect(t, "; leading comment\n\n# another\n[core]\nroot = . ; trailing not supported on kv\n")
	require.Len(t, got, 1)
	assert.Equal(t, "core", got[0].section)
	assert.Equal(t, "root", got[0].key)
	assert.Equal(t, ". ; trailing not supported on kv", got[0].value)
}

func TestParseCRLFTolerant(t *testing.T) {
	t.Parallel()

	got := collect(t, "[core]\r\nroot = .\r\n")
	require.Len(t, got, 1)
	assert.Equal(t, ".", got[0].value)
}

func TestParseStripsBOMOnFirstLine(t *testing.T) {
	t.Parallel()

	got := collect(t, "\ufeff[core]\nroot = .\n")
	require.Len(t, got, 1)
	assert.Equal(t, "core", got[0].section)
}

func TestParseGlobalKeyWithoutSection(t *testing.T) {
	t.Parallel()

	got := collect(t, "root = .\n")
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].section)
}

func TestParseEmptyKeyRejected(t *testing.T) {
	t.Parallel()

	err := ParseBuf([]byte("[core]\n = value\n"), func(string, string, string, int) error { return nil })
	assert.Error(t, err)
}

func TestParseSectionTrailerMustBeCommentOrBlank(t *testing.T) {
	t.Parallel()

	err := ParseBuf([]byte("[core] junk\n"), func(string, string, string, int) error { return nil })
	assert.Error(t, err)

	err = ParseBuf([]byte("[core] ; ok\nroot=.\n"), func(string, string, string, int) error { return nil })
	assert.NoError(t, err)
}

func TestParseUnterminatedSection(t *testing.T) {
	t.Parallel()

	err := ParseBuf([]byte("[core\n"), func(string, string, string, int) error { return nil })
	assert.Error(t, err)
}

func TestParseCallbackAbort(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	err := ParseBuf([]byte("[core]\nroot=.\n"), func(string, string, string, int) error {
		return sentinel
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCallback)
}

func TestParseLineTooLong(t *testing.T) {
	t.Parallel()

	long := "[core]\nroot = " + strings.Repeat("x", MaxLineLen+10) + "\n"
	err := ParseBuf([]byte(long), func(string, string, string, int) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line too long")
	assert.Contains(t, err.Error(), "line 2")
}
