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

// Package spool implements the inbox -> claim -> out/fail state
// machine: at-most-once hand-off of jobdirs on a shared filesystem,
// using atomic rename as the only synchronization primitive. A
// jobdir's state is its lane membership; a successful rename into
// claim/ transfers exclusive ownership to the renamer.
package spool

import (
	"path/filepath"

	"github.com/tablinum/tablinum/internal/fsx"
	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/tblerr"
)

// Lane names under spool_root.
const (
	Inbox = "inbox"
	Claim = "claim"
	Out   = "out"
	Fail  = "fail"
)

// Spool is rooted at Root and owns the four lane directories.
// Metrics is optional: a nil Recorder (the zero value) makes every
// claim/commit call a no-op with respect to counters.
type Spool struct {
	Root    string
	Metrics *metrics.Recorder
}

// New returns a Spool rooted at root.
func New(root string) Spool {
	return Spool{Root: root}
}

// Init creates the four lane directories if they don't already exist.
func (s Spool) Init() error {
	for _, lane := range []string{Inbox, Claim, Out, Fail} {
		if err := fsx.MkdirP(filepath.Join(s.Root, lane)); err != nil {
			return tblerr.Wrap(tblerr.IO, err, "init spool lane %q", lane)
		}
	}
	return nil
}

func (s Spool) lanePath(lane, name string) string {
	return filepath.Join(s.Root, lane, name)
}

// ErrNoJob is returned by ClaimNext when no jobdir could be claimed.
var ErrNoJob = tblerr.New(tblerr.NotFound, "ENOJOB: no claimable job in inbox")

// ClaimNext enumerates inbox and attempts to rename each candidate to
// claim/<name>, stopping at the first success. The rename is the
// lock: exactly one racer among concurrent ClaimNext callers succeeds
// for any given name; losers continue scanning. Discovery order is
// filesystem-defined and must not be relied upon.
func (s Spool) ClaimNext() (name string, err error) {
	var claimed string
	listErr := fsx.ListDir(s.lanePath(Inbox, ""), func(entryName, fullPath string, isDir bool) bool {
		if !isDir {
			return true // keep scanning; only directories are jobdirs
		}
		dst := s.lanePath(Claim, entryName)
		if rerr := fsx.RenameAtomic(fullPath, dst, false); rerr == nil {
			claimed = entryName
			return false // stop: we own it
		}
		return true // lost the race or some other issue; keep scanning
	})
	if listErr != nil {
		return "", tblerr.Wrap(tblerr.IO, listErr, "scan inbox")
	}
	if claimed == "" {
		return "", ErrNoJob
	}
	s.Metrics.IncJobClaimed()
	return claimed, nil
}

// CommitOut moves the claimed jobdir name from claim/ to out/.
func (s Spool) CommitOut(name string) error {
	return s.commit(name, Out)
}

// CommitFail moves the claimed jobdir name from claim/ to fail/.
func (s Spool) CommitFail(name string) error {
	return s.commit(name, Fail)
}

func (s Spool) commit(name, lane string) error {
	src := s.lanePath(Claim, name)
	dst := s.lanePath(lane, name)
	if err := fsx.RenameAtomic(src, dst, false); err != nil {
		return tblerr.Wrap(tblerr.IO, err, "commit job %q to %s", name, lane)
	}
	s.Metrics.IncJobCommitted(lane)
	return nil
}

// JobDirPath returns the path to the named jobdir within lane.
func (s Spool) JobDirPath(lane, name string) string {
	return s.lanePath(lane, name)
}

// PayloadPath returns <jobdir>/payload.bin for the jobdir currently in
// lane.
func (s Spool) PayloadPath(lane, name string) string {
	return filepath.Join(s.lanePath(lane, name), "payload.bin")
}

// MetaPath returns <jobdir>/job.meta for the jobdir currently in lane.
func (s Spool) MetaPath(lane, name string) string {
	return filepath.Join(s.lanePath(lane, name), "job.meta")
}
