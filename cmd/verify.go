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

	"github.com/tablinum/tablinum/internal/jobid"
	"github.com/tablinum/tablinum/internal/tblerr"
	"github.com/tablinum/tablinum/internal/verifyjob"
)

var verifyCmd = &cobra.Command{
	Use:   "verify JOBID",
	Short: "recompute a job's CAS object hash and compare it with its record",
	Args:  cobra.ExactArgs(1),
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
		outcome, err := verifyjob.Run(cfg.Core.Repo, args[0])
		if err != nil {
			return err
		}
		if outcome == verifyjob.Skipped {
			logger.Info("verify: skipped (record not status=ok)", "job", args[0])
			return nil
		}
		logger.Info("verify: OK", "job", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
