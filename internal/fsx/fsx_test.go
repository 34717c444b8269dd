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

package fsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsAndIsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, Exists(dir))
	assert.True(t, Exists(file))
	assert.False(t, Exists(filepath.Join(dir, "missing")))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
	assert.False(t, IsDir(filepath.Join(dir, "missing")))
}

func TestMkdirOneIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "a")

	require.NoError(t, MkdirOne(target))
	require.NoError(t, MkdirOne(target)) // already exists: ok

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, MkdirOne(file))
}

func TestMkdirP(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, MkdirP(target))
	assert.True(t, IsDir(target))
}

func TestRenameAtomicNoReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	require.NoError(t, RenameAtomic(src, dst, false))
	assert.True(t, Exists(dst))
	assert.False(t, Exists(src))

	require.NoError(t, os.WriteFile(src, []byte("b"), 0o644))
	assert.Error(t, RenameAtomic(src, dst, false))
}

func TestWriteFileAtomicLeavesNoTempOnSuccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "record.ini")
	require.NoError(t, WriteFileAtomic(target, []byte("status=ok\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "record.ini", entries[0].Name())
}

func TestListDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))

	seen := map[string]bool{}
	require.NoError(t, ListDir(dir, func(name, full string, isDir bool) bool {
		seen[name] = isDir
		return true
	}))
	assert.Equal(t, map[string]bool{"a": false, "b": true}, seen)
}

func TestListDirStopsEarly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}

	count := 0
	require.NoError(t, ListDir(dir, func(name, full string, isDir bool) bool {
		count++
		return false
	}))
	assert.Equal(t, 1, count)
}

func TestRmRF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "nested", "f"), []byte("x"), 0o644))

	require.NoError(t, RmRF(sub))
	assert.False(t, Exists(sub))

	// removing a missing path is a no-op, not an error
	assert.NoError(t, RmRF(filepath.Join(dir, "does-not-exist")))
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "out", "dst")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, CopyFile(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}
