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

package cas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablinum/tablinum/internal/sha256x"
)

func TestPutFileContentAddress(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0o644))

	s := New(repo)
	res, err := s.PutFile(src)
	require.NoError(t, err)

	assert.Equal(t, sha256x.HexOf([]byte("abc")), res.HexDigest)
	assert.True(t, res.Placed)
	assert.Equal(t, int64(3), res.Bytes)

	objPath, err := s.ObjectPath(res.HexDigest)
	require.NoError(t, err)
	assert.True(t, s.Exists(res.HexDigest))

	got, err := os.ReadFile(objPath)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	// no temp siblings left behind
	entries, err := os.ReadDir(filepath.Dir(objPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPutFileIdempotentDedupe(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0o644))

	s := New(repo)
	first, err := s.PutFile(src)
	require.NoError(t, err)
	assert.True(t, first.Placed)

	second, err := s.PutFile(src)
	require.NoError(t, err)
	assert.Equal(t, first.HexDigest, second.HexDigest)
	assert.False(t, second.Placed)
}

func TestObjectPathDeterministic(t *testing.T) {
	t.Parallel()

	s := New("/repo")
	hexDigest := sha256x.HexOf([]byte("abc"))

	p1, err := s.ObjectPath(hexDigest)
	require.NoError(t, err)
	p2, err := s.ObjectPath(hexDigest)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, filepath.Join("/repo", "sha256", hexDigest[:2], hexDigest[2:]), p1)
}

func TestObjectPathRejectsBadHex(t *testing.T) {
	t.Parallel()

	s := New("/repo")
	_, err := s.ObjectPath("not-a-hash")
	assert.Error(t, err)
}
