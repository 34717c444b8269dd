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

// Package metrics wires github.com/prometheus/client_golang counters
// for the engine's core operations (spool, cas, ingest), optionally
// exposed over HTTP by the reserved serve/worker roles at the
// configured [http] listen address. The Recorder registers a fixed
// set of vectors on a caller-supplied registry; every observer method
// is nil-safe so a caller that never wires metrics pays nothing.
package metrics

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder counts the events the engine emits: spool claims and lane
// commits, CAS puts, and audit appends.
type Recorder struct {
	once sync.Once
	reg  *prom.Registry

	jobsClaimed   prom.Counter
	jobsCommitted *prom.CounterVec
	casPuts       *prom.CounterVec
	auditAppends  *prom.CounterVec
}

// New constructs and registers a Recorder's metrics on reg. A nil reg
// gets a fresh prometheus.Registry. Callers that also mount an HTTP
// handler for these metrics must serve Recorder.Registry(), not a
// second registry, or the handler will have nothing registered on it.
func New(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{reg: reg}
	r.once.Do(func() {
		r.jobsClaimed = prom.NewCounter(prom.CounterOpts{
			Namespace: "tablinum",
			Name:      "spool_jobs_claimed_total",
			Help:      "Jobdirs successfully claimed from the spool inbox",
		})
		r.jobsCommitted = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "tablinum",
			Name:      "spool_jobs_committed_total",
			Help:      "Jobdirs committed out of claim, by destination lane",
		}, []string{"lane"})
		r.casPuts = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "tablinum",
			Name:      "cas_puts_total",
			Help:      "CAS put_file calls, by whether the object was newly placed",
		}, []string{"placed"})
		r.auditAppends = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "tablinum",
			Name:      "audit_appends_total",
			Help:      "Ops-audit line appends, by event name",
		}, []string{"event"})
		reg.MustRegister(r.jobsClaimed, r.jobsCommitted, r.casPuts, r.auditAppends)
	})
	return r
}

// Registry returns the prometheus.Registry r's metrics were
// registered on, for a caller that needs to serve them over HTTP
// (metrics.Handler(rec.Registry())) without standing up an unrelated
// second registry.
func (r *Recorder) Registry() *prom.Registry {
	if r == nil {
		return prom.NewRegistry()
	}
	return r.reg
}

func (r *Recorder) IncJobClaimed() {
	if r == nil || r.jobsClaimed == nil {
		return
	}
	r.jobsClaimed.Inc()
}

func (r *Recorder) IncJobCommitted(lane string) {
	if r == nil || r.jobsCommitted == nil {
		return
	}
	r.jobsCommitted.WithLabelValues(lane).Inc()
}

func (r *Recorder) IncCASPut(placed bool) {
	if r == nil || r.casPuts == nil {
		return
	}
	label := "dedup"
	if placed {
		label = "placed"
	}
	r.casPuts.WithLabelValues(label).Inc()
}

func (r *Recorder) IncAuditAppend(event string) {
	if r == nil || r.auditAppends == nil {
		return
	}
	r.auditAppends.WithLabelValues(event).Inc()
}
