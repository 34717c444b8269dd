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
	"github.com/spf13/cobra"

	"github.com/tablinum/tablinum/internal/export"
	"github.com/tablinum/tablinum/internal/jobid"
	"github.com/tablinum/tablinum/internal/tblerr"
)

var exportCmd = &cobra.Command{
	Use:   "export JOBID OUTDIR",
	Short: "write a DIP-light export (record + payload + sha256sum manifest) for a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Core.Repo == "" {
			return tblerr.New(tblerr.Usage, "config must set core.repo")
		}
		if !jobid.IsSafe(args[0]) {
			return tblerr.New(tblerr.Usage, "unsafe job id %q", args[0])
		}

		logger := newLogger()
		if err := export.Run(cfg.Core.Repo, args[0], args[1]); err != nil {
			return err
		}
		logger.Info("export complete", "job", args[0], "out_dir", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
