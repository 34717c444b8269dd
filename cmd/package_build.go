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
	"github.com/tablinum/tablinum/internal/jobid"
	"github.com/tablinum/tablinum/internal/tblerr"
)

var packageFormat string

var packageCmd = &cobra.Command{
	Use:   "package JOBID OUTDIR",
	Short: "build a deterministic AIP/SIP package for a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Core.Repo == "" {
			return tblerr.New(tblerr.Usage, "config must set core.repo")
		}

		kind := archive.Kind(packageFormat)
		if kind != archive.KindAIP && kind != archive.KindSIP {
			return tblerr.New(tblerr.Usage, "--format must be aip or sip, got %q", packageFormat)
		}
		if !jobid.IsSafe(args[0]) {
			return tblerr.New(tblerr.Usage, "unsafe job id %q", args[0])
		}

		logger := newLogger()
		err = archive.Build(archive.BuildOptions{
			RepoRoot: cfg.Core.Repo,
			JobID:    args[0],
			OutDir:   args[1],
			Kind:     kind,
			Now:      time.Now().Unix(),
		})
		if err != nil {
			return err
		}
		logger.Info("package built", "job", args[0], "out_dir", args[1], "kind", kind)
		return nil
	},
}

func init() {
	packageCmd.Flags().StringVar(&packageFormat, "format", "aip", "package kind: aip or sip")
	rootCmd.AddCommand(packageCmd)
}
