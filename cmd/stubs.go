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

// Reserved roles: all, serve, index, and worker are placeholders the
// repository reserves but does not fully implement. Each logs a TODO
// line; beyond that, index opens/migrates its SQLite database, worker
// counts its ingest loop with a metrics.Recorder and, when [http]
// listen is set, serves it alongside, and serve mounts the same
// Recorder/registry pairing with no ingest loop of its own. No
// search or broader HTTP surface exists over any of them.
package cmd

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tablinum/tablinum/internal/index"
	"github.com/tablinum/tablinum/internal/ingest"
	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/tblerr"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "reserved: run every role together (not implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		newLogger().Info("[all] TODO")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "reserved: expose Prometheus metrics over [http] listen (no other HTTP surface)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		if cfg.HTTP.Listen == "" {
			logger.Info("[serve] TODO (listen=)")
			return nil
		}

		// Handler must serve rec's own registry, not an unrelated one,
		// or /metrics always comes back empty.
		rec := metrics.New(nil)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(rec.Registry()))
		logger.Info("[serve] TODO", "listen", cfg.HTTP.Listen)
		return http.ListenAndServe(cfg.HTTP.Listen, mux)
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "reserved: open/migrate the index database (no search layer implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		if cfg.Core.DB == "" {
			logger.Info("[index] TODO", "db", "")
			return nil
		}

		db, err := index.Open(cfg.Core.DB)
		if err != nil {
			return tblerr.Wrap(tblerr.IO, err, "open index db")
		}
		defer db.Close()

		if err := index.Migrate(context.Background(), db); err != nil {
			return tblerr.Wrap(tblerr.IO, err, "migrate index db")
		}
		logger.Info("[index] TODO", "db", cfg.Core.DB)
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "reserved: run ingest in a long-lived worker loop (not implemented beyond ingest)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		if cfg.Core.Spool == "" || cfg.Core.Repo == "" {
			logger.Info("[worker] TODO")
			return nil
		}

		rec := metrics.New(nil)
		if cfg.HTTP.Listen != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(rec.Registry()))
			go func() {
				if err := http.ListenAndServe(cfg.HTTP.Listen, mux); err != nil {
					logger.Error("[worker] metrics server stopped", "err", err)
				}
			}()
		}

		icfg := ingest.Config{
			SpoolRoot:   cfg.Core.Spool,
			RepoRoot:    cfg.Core.Repo,
			Once:        false,
			PollSeconds: cfg.Ingest.PollSeconds,
			MaxJobs:     cfg.Ingest.MaxJobs,
			Metrics:     rec,
		}
		logger.Info("[worker] TODO", "spool", cfg.Core.Spool)
		_, err = ingest.Run(icfg, realClock{})
		return err
	},
}

func init() {
	rootCmd.AddCommand(allCmd, serveCmd, indexCmd, workerCmd)
}
