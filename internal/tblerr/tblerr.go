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

// Package tblerr defines the typed error kinds that cross the core
// boundary and their mapping to the engine's stable exit codes.
package tblerr

import (
	"fmt"
	"runtime"
)

// Kind is one of the engine's six stable exit codes.
type Kind int

const (
	OK Kind = iota
	Usage
	NotFound
	IO
	Integrity
	Schema
)

// ExitCode returns the stable process exit code for k.
func (k Kind) ExitCode() int {
	switch k {
	case OK:
		return 0
	case Usage:
		return 2
	case NotFound:
		return 3
	case IO:
		return 4
	case Integrity:
		return 5
	case Schema:
		return 6
	default:
		return 2
	}
}

func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case Usage:
		return "USAGE"
	case NotFound:
		return "NOTFOUND"
	case IO:
		return "IO"
	case Integrity:
		return "INTEGRITY"
	case Schema:
		return "SCHEMA"
	default:
		return "UNKNOWN"
	}
}

// Error is a typed operational error: a kind plus a short diagnostic.
// It carries enough context (line numbers, paths, job ids) in Msg for
// the caller to locate the failure without a second lookup.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error for kind, attaching cause as the wrapped error.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// As extracts the Kind of err if it is (or wraps) a *Error, otherwise
// returns Usage as a conservative default for unclassified failures.
func As(err error) Kind {
	if err == nil {
		return OK
	}
	var te *Error
	if ok := asError(err, &te); ok {
		return te.Kind
	}
	return Usage
}

func asError(err error, target **Error) bool {
	for err != nil {
		if te, ok := err.(*Error); ok {
			*target = te
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Panic reports a programmer error (nil argument, zero-length output
// buffer, a violated invariant) and terminates the process. It is
// distinct from operational errors, which are always returned as
// *Error.
func Panic(msg string) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	panic(fmt.Sprintf("PANIC at %s:%d: %s", file, line, msg))
}
