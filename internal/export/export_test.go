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

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablinum/tablinum/internal/cas"
	"github.com/tablinum/tablinum/internal/record"
)

func TestRunWritesPayloadRecordAndManifest(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("hello tablinum\n"), 0o644))

	store := cas.New(repo)
	put, err := store.PutFile(src)
	require.NoError(t, err)
	require.NoError(t, record.Write(repo, record.Record{
		Status: record.StatusOK, Job: "job1", Payload: "payload.bin", SHA256: put.HexDigest, Bytes: uint32(put.Bytes),
	}))

	outDir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, Run(repo, "job1", outDir))

	assert.FileExists(t, filepath.Join(outDir, "payload.bin"))
	assert.FileExists(t, filepath.Join(outDir, relRecord))
	manifest, err := os.ReadFile(filepath.Join(outDir, relManifest))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), put.HexDigest+"  payload.bin")
}

func TestRunFailsWhenRecordNotOK(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	require.NoError(t, record.Write(repo, record.Record{Status: record.StatusFail, Job: "job1", Reason: "x"}))

	err := Run(repo, "job1", t.TempDir())
	assert.Error(t, err)
}
