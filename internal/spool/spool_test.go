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

package spool

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSpool(t *testing.T, jobs ...string) Spool {
	t.Helper()
	root := t.TempDir()
	s := New(root)
	require.NoError(t, s.Init())
	for _, j := range jobs {
		dir := filepath.Join(root, Inbox, j)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "payload.bin"), []byte("x"), 0o644))
	}
	return s
}

func TestClaimNextThenCommitOut(t *testing.T) {
	t.Parallel()

	s := setupSpool(t, "job1")

	name, err := s.ClaimNext()
	require.NoError(t, err)
	assert.Equal(t, "job1", name)

	assert.True(t, dirExists(filepath.Join(s.Root, Claim, "job1")))
	assert.False(t, dirExists(filepath.Join(s.Root, Inbox, "job1")))

	require.NoError(t, s.CommitOut("job1"))
	assert.True(t, dirExists(filepath.Join(s.Root, Out, "job1")))
	assert.False(t, dirExists(filepath.Join(s.Root, Claim, "job1")))
}

func TestClaimNextEmptyInboxReturnsENOJOB(t *testing.T) {
	t.Parallel()

	s := setupSpool(t)
	_, err := s.ClaimNext()
	assert.ErrorIs(t, err, ErrNoJob)
}

func TestClaimNextMutualExclusionUnderConcurrency(t *testing.T) {
	t.Parallel()

	const nJobs = 20
	jobs := make([]string, nJobs)
	for i := range jobs {
		jobs[i] = "job" + string(rune('a'+i))
	}
	s := setupSpool(t, jobs...)

	const nCallers = 8
	results := make([][]string, nCallers)
	var wg sync.WaitGroup
	for c := 0; c < nCallers; c++ {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				name, err := s.ClaimNext()
				if err != nil {
					return
				}
				results[c] = append(results[c], name)
			}
		}()
	}
	wg.Wait()

	seen := map[string]int{}
	total := 0
	for _, r := range results {
		for _, name := range r {
			seen[name]++
			total++
		}
	}
	assert.Equal(t, nJobs, total)
	for _, name := range jobs {
		assert.Equal(t, 1, seen[name], "job %s claimed %d times", name, seen[name])
	}
}

func TestCommitFail(t *testing.T) {
	t.Parallel()

	s := setupSpool(t, "jobBAD")
	name, err := s.ClaimNext()
	require.NoError(t, err)

	require.NoError(t, s.CommitFail(name))
	assert.True(t, dirExists(filepath.Join(s.Root, Fail, "jobBAD")))
}

func dirExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
