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

// Package ingest implements the claim -> CAS -> record -> audit loop.
// On a successful ingest, Run writes both job.meta (for spool-local
// inspection) and the durable record at <repo>/records/<jobid>.ini,
// mirroring the same fields, before committing the jobdir to out/ —
// verify, export, and package all read that record.
package ingest

import (
	"errors"
	"path/filepath"

	"github.com/tablinum/tablinum/internal/cas"
	"github.com/tablinum/tablinum/internal/events"
	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/record"
	"github.com/tablinum/tablinum/internal/spool"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// Config mirrors the [ingest] configuration section.
type Config struct {
	SpoolRoot   string
	RepoRoot    string
	Once        bool
	PollSeconds uint32
	MaxJobs     uint32 // 0 = unlimited

	// Metrics is optional: a nil Recorder makes every counter a no-op.
	Metrics *metrics.Recorder
}

// Clock supplies the current unix time and a sleep primitive, so tests
// never depend on the wall clock or actually block.
type Clock interface {
	Now() int64
	Sleep(seconds uint32)
}

// Result summarizes one Run invocation.
type Result struct {
	JobsDone uint32
}

// Run executes the ingest loop until either Once is set and the spool
// is drained, or MaxJobs is reached.
func Run(cfg Config, clk Clock) (Result, error) {
	sp := spool.New(cfg.SpoolRoot)
	if err := sp.Init(); err != nil {
		return Result{}, tblerr.Wrap(tblerr.IO, err, "init spool")
	}
	if err := fsx.MkdirP(cfg.RepoRoot); err != nil {
		return Result{}, tblerr.Wrap(tblerr.IO, err, "init repo root")
	}

	sp.Metrics = cfg.Metrics
	store := cas.New(cfg.RepoRoot)
	store.Metrics = cfg.Metrics
	var done uint32

	for {
		name, err := sp.ClaimNext()
		if err != nil {
			if errors.Is(err, spool.ErrNoJob) {
				if cfg.Once {
					return Result{JobsDone: done}, nil
				}
				clk.Sleep(cfg.PollSeconds)
				continue
			}
			return Result{JobsDone: done}, err
		}

		if err := processOne(sp, store, cfg.RepoRoot, name, clk.Now(), cfg.Metrics); err != nil {
			return Result{JobsDone: done}, err
		}
		done++

		if cfg.MaxJobs > 0 && done == cfg.MaxJobs {
			return Result{JobsDone: done}, nil
		}
	}
}

// processOne handles a single claimed jobdir. A job's own failure
// (missing payload, CAS error) is local: the job is committed to
// fail/ and processOne returns nil so the loop continues. A failed
// commit rename is not local — the jobdir would be stuck in claim/
// with the loop reporting it done — so commit errors propagate and
// abort the run.
func processOne(sp spool.Spool, store cas.Store, repoRoot, name string, now int64, rec *metrics.Recorder) error {
	payloadPath := sp.PayloadPath(spool.Claim, name)

	if !fsx.Exists(payloadPath) {
		writeMeta(sp, name, record.Record{
			Status: record.StatusFail,
			Job:    name,
			Reason: "missing payload.bin",
		})
		appendEvent(repoRoot, now, events.Fields{Event: "ingest.fail", Job: name, Status: "fail", Reason: "missing payload.bin"}, rec)
		return sp.CommitFail(name)
	}

	res, err := store.PutFile(payloadPath)
	if err != nil {
		writeMeta(sp, name, record.Record{
			Status: record.StatusFail,
			Job:    name,
			Reason: err.Error(),
		})
		appendEvent(repoRoot, now, events.Fields{Event: "ingest.fail", Job: name, Status: "fail", Reason: err.Error()}, rec)
		return sp.CommitFail(name)
	}

	r := record.Record{
		Status:   record.StatusOK,
		Job:      name,
		Payload:  filepath.Base(payloadPath),
		SHA256:   res.HexDigest,
		Bytes:    uint32(res.Bytes),
		StoredAt: uint32(now),
	}
	writeMeta(sp, name, r)

	if err := record.Write(repoRoot, r); err != nil {
		// The record is the authoritative store; a failure to persist
		// it downgrades this job to fail even though the CAS object
		// (content-addressed, safe to keep) is already in place.
		writeMeta(sp, name, record.Record{Status: record.StatusFail, Job: name, Reason: err.Error()})
		appendEvent(repoRoot, now, events.Fields{Event: "ingest.fail", Job: name, Status: "fail", Reason: err.Error()}, rec)
		return sp.CommitFail(name)
	}

	appendEvent(repoRoot, now, events.Fields{Event: "ingest.ok", Job: name, Status: "ok", SHA256: res.HexDigest}, rec)
	return sp.CommitOut(name)
}

// appendEvent writes f to the event sinks and, when rec is non-nil,
// counts the audit append — the same rec that also counts this job's
// spool claim and CAS put, so a single Recorder reflects one job's
// whole lifecycle.
func appendEvent(repoRoot string, now int64, f events.Fields, rec *metrics.Recorder) {
	events.Append(repoRoot, now, f)
	rec.IncAuditAppend(f.Event)
}

func writeMeta(sp spool.Spool, name string, rec record.Record) {
	var b []byte
	b = append(b, []byte("status="+string(rec.Status)+"\n")...)
	b = append(b, []byte("job="+rec.Job+"\n")...)
	if rec.Payload != "" {
		b = append(b, []byte("payload="+rec.Payload+"\n")...)
	}
	if rec.SHA256 != "" {
		b = append(b, []byte("sha256="+rec.SHA256+"\n")...)
	}
	if rec.Reason != "" {
		b = append(b, []byte("reason="+rec.Reason+"\n")...)
	}
	// job.meta is regenerated on every retry; a plain truncating
	// write is enough here.
	_ = fsx.WriteFile(sp.MetaPath(spool.Claim, name), b)
}
