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

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tablinum/tablinum/internal/ingest"
	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/tblerr"
)

type realClock struct{ pollOverride time.Duration }

func (c realClock) Now() int64 { return time.Now().Unix() }
func (c realClock) Sleep(seconds uint32) {
	d := time.Duration(seconds) * time.Second
	if c.pollOverride > 0 {
		d = c.pollOverride
	}
	time.Sleep(d)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "claim jobdirs from the spool, store their payload in the CAS, and write a record",
	Long: `Runs the spool inbox -> claim -> out/fail loop: claim the next jobdir,
put its payload.bin into the content-addressed store, write the durable
record and job.meta, and commit the jobdir to out (or fail).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Core.Spool == "" || cfg.Core.Repo == "" {
			return tblerr.New(tblerr.Usage, "config must set core.spool and core.repo")
		}

		logger := newLogger()
		rec := metrics.New(nil)
		icfg := ingest.Config{
			SpoolRoot:   cfg.Core.Spool,
			RepoRoot:    cfg.Core.Repo,
			Once:        cfg.Ingest.Once,
			PollSeconds: cfg.Ingest.PollSeconds,
			MaxJobs:     cfg.Ingest.MaxJobs,
			Metrics:     rec,
		}

		result, err := ingest.Run(icfg, realClock{})
		if err != nil {
			return err
		}
		logger.Info("ingest complete", "jobs_done", result.JobsDone)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
