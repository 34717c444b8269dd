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

	"github.com/tablinum/tablinum/internal/archive"
	"github.com/tablinum/tablinum/internal/metrics"
	"github.com/tablinum/tablinum/internal/tblerr"
)

var ingestPackageCmd = &cobra.Command{
	Use:   "ingest-package PKGDIR",
	Short: "verify a package and ingest its record and payload into the local repo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Core.Repo == "" {
			return tblerr.New(tblerr.Usage, "config must set core.repo")
		}

		logger := newLogger()
		if err := archive.Ingest(archive.IngestOptions{
			RepoRoot: cfg.Core.Repo,
			PkgDir:   args[0],
			Now:      time.Now().Unix(),
			Metrics:  metrics.New(nil),
		}); err != nil {
			return err
		}
		logger.Info("ingest-package complete", "pkg_dir", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestPackageCmd)
}
