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

package sha256x

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abcHex = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestHexOfKnownVector(t *testing.T) {
	t.Parallel()

	got := HexOf([]byte("abc"))
	assert.Len(t, got, 64)
	assert.Equal(t, abcHex[:64], got)
}

func TestDigestStreaming(t *testing.T) {
	t.Parallel()

	d := New()
	d.Update([]byte("ab"))
	d.Update([]byte("c"))
	got := d.Final()

	assert.Equal(t, HexOf([]byte("abc")), got)
}

func TestDigestFinalTwicePanics(t *testing.T) {
	t.Parallel()

	d := New()
	d.Update([]byte("x"))
	d.Final()

	assert.Panics(t, func() { d.Final() })
}

func TestHexOfFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "payload.bin")
	require.NoError(t, os.WriteFile(p, []byte("abc"), 0o644))

	hexDigest, n, err := HexOfFile(p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, HexOf([]byte("abc")), hexDigest)
}

func TestIsValidHex(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidHex(HexOf([]byte("abc"))))
	assert.False(t, IsValidHex("short"))
	assert.False(t, IsValidHex("Z"+HexOf([]byte("abc"))[1:]))
}
