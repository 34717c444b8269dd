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

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/record"
	"github.com/tablinum/tablinum/internal/sha256x"
	"github.com/tablinum/tablinum/internal/tblerr"
)

type fakeClock struct {
	t     int64
	slept []uint32
}

func (c *fakeClock) Now() int64 { return c.t }
func (c *fakeClock) Sleep(s uint32) {
	c.slept = append(c.slept, s)
}

func dropJob(t *testing.T, spoolRoot, name string, payload []byte, withPayload bool) {
	t.Helper()
	dir := filepath.Join(spoolRoot, "inbox", name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if withPayload {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "payload.bin"), payload, 0o644))
	}
}

func TestRunIngestsOneJob(t *testing.T) {
	t.Parallel()

	spoolRoot := t.TempDir()
	repoRoot := t.TempDir()
	dropJob(t, spoolRoot, "jobOK", []byte("abc"), true)

	res, err := Run(Config{SpoolRoot: spoolRoot, RepoRoot: repoRoot, Once: true}, &fakeClock{t: 1000})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.JobsDone)

	assert.DirExists(t, filepath.Join(spoolRoot, "out", "jobOK"))

	meta, err := os.ReadFile(filepath.Join(spoolRoot, "out", "jobOK", "job.meta"))
	require.NoError(t, err)
	wantHex := sha256x.HexOf([]byte("abc"))
	assert.Contains(t, string(meta), "status=ok")
	assert.Contains(t, string(meta), "sha256="+wantHex)

	objPath := filepath.Join(repoRoot, "sha256", wantHex[:2], wantHex[2:])
	assert.FileExists(t, objPath)

	rec, err := record.Read(repoRoot, "jobOK")
	require.NoError(t, err)
	assert.Equal(t, record.StatusOK, rec.Status)
	assert.Equal(t, wantHex, rec.SHA256)
}

func TestRunMissingPayloadFails(t *testing.T) {
	t.Parallel()

	spoolRoot := t.TempDir()
	repoRoot := t.TempDir()
	dropJob(t, spoolRoot, "jobBAD", nil, false)

	res, err := Run(Config{SpoolRoot: spoolRoot, RepoRoot: repoRoot, Once: true}, &fakeClock{t: 1000})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.JobsDone)

	meta, err := os.ReadFile(filepath.Join(spoolRoot, "fail", "jobBAD", "job.meta"))
	require.NoError(t, err)
	assert.Contains(t, string(meta), "status=fail")
	assert.Contains(t, string(meta), "reason=missing payload.bin")

	entries, _ := os.ReadDir(filepath.Join(repoRoot, "sha256"))
	assert.Len(t, entries, 0)
}

func TestRunMaxJobsStopsEarly(t *testing.T) {
	t.Parallel()

	spoolRoot := t.TempDir()
	repoRoot := t.TempDir()
	dropJob(t, spoolRoot, "job1", []byte("a"), true)
	dropJob(t, spoolRoot, "job2", []byte("b"), true)
	dropJob(t, spoolRoot, "job3", []byte("c"), true)

	res, err := Run(Config{SpoolRoot: spoolRoot, RepoRoot: repoRoot, Once: true, MaxJobs: 2}, &fakeClock{t: 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), res.JobsDone)
}

func TestRunOnceExitsOnEmptyInbox(t *testing.T) {
	t.Parallel()

	spoolRoot := t.TempDir()
	repoRoot := t.TempDir()

	clk := &fakeClock{t: 1}
	res, err := Run(Config{SpoolRoot: spoolRoot, RepoRoot: repoRoot, Once: true}, clk)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), res.JobsDone)
	assert.Empty(t, clk.slept)
}

func TestRunAppendsAuditEvents(t *testing.T) {
	t.Parallel()

	spoolRoot := t.TempDir()
	repoRoot := t.TempDir()
	dropJob(t, spoolRoot, "job1", []byte("x"), true)

	_, err := Run(Config{SpoolRoot: spoolRoot, RepoRoot: repoRoot, Once: true}, &fakeClock{t: 42})
	require.NoError(t, err)

	audit, err := os.ReadFile(filepath.Join(repoRoot, "audit", "ops.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(audit), "event=ingest.ok"))
}

func TestRunAbortsWhenCommitFails(t *testing.T) {
	t.Parallel()

	spoolRoot := t.TempDir()
	repoRoot := t.TempDir()
	dropJob(t, spoolRoot, "jobOK", []byte("abc"), true)

	// Occupy the destination so the claim -> out rename must fail.
	require.NoError(t, os.MkdirAll(filepath.Join(spoolRoot, "out"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(spoolRoot, "out", "jobOK"), []byte("x"), 0o644))

	res, err := Run(Config{SpoolRoot: spoolRoot, RepoRoot: repoRoot, Once: true}, &fakeClock{t: 1000})
	require.Error(t, err)
	assert.Equal(t, tblerr.IO, tblerr.As(err))
	assert.Equal(t, uint32(0), res.JobsDone)

	// The jobdir stays in claim/, visible to an operator.
	assert.DirExists(t, filepath.Join(spoolRoot, "claim", "jobOK"))
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()

	spoolRoot := t.TempDir()
	repoRoot := t.TempDir()
	dropJob(t, spoolRoot, "jobOK", []byte("abc"), true)
	dropJob(t, spoolRoot, "jobBAD", nil, false)

	rec := metrics.New(nil)
	res, err := Run(Config{SpoolRoot: spoolRoot, RepoRoot: repoRoot, Once: true, Metrics: rec}, &fakeClock{t: 1000})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), res.JobsDone)

	mfs, err := rec.Registry().Gather()
	require.NoError(t, err)

	var sawClaimed, sawCommittedOut, sawCommittedFail, sawCASPut, sawAudit bool
	for _, mf := range mfs {
		switch mf.GetName() {
		case "tablinum_spool_jobs_claimed_total":
			for _, m := range mf.GetMetric() {
				if m.GetCounter().GetValue() == 2 {
					sawClaimed = true
				}
			}
		case "tablinum_spool_jobs_committed_total":
			for _, m := range mf.GetMetric() {
				for _, lbl := range m.GetLabel() {
					if lbl.GetName() == "lane" && lbl.GetValue() == "out" && m.GetCounter().GetValue() == 1 {
						sawCommittedOut = true
					}
					if lbl.GetName() == "lane" && lbl.GetValue() == "fail" && m.GetCounter().GetValue() == 1 {
						sawCommittedFail = true
					}
				}
			}
		case "tablinum_cas_puts_total":
			sawCASPut = true
		case "tablinum_audit_appends_total":
			sawAudit = true
		}
	}

	assert.True(t, sawClaimed, "expected 2 spool claims recorded")
	assert.True(t, sawCommittedOut, "expected a commit-to-out recorded")
	assert.True(t, sawCommittedFail, "expected a commit-to-fail recorded")
	assert.True(t, sawCASPut, "expected a CAS put recorded")
	assert.True(t, sawAudit, "expected an audit append recorded")
}
