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
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tablinum/tablinum/internal/auditverify"
	"github.com/tablinum/tablinum/internal/report"
	"github.com/tablinum/tablinum/internal/tblerr"
)

var verifyAuditCmd = &cobra.Command{
	Use:   "verify-audit",
	Short: "replay the hash-chained ops audit log and report the first break, if any",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Core.Repo == "" {
			return tblerr.New(tblerr.Usage, "config must set core.repo")
		}

		logger := newLogger()
		result, verr := auditverify.Verify(cfg.Core.Repo)

		if isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Println(report.AuditVerifyReport(cfg.Core.Repo, result.Lines, verr))
		}
		if verr != nil {
			return verr
		}
		logger.Info("verify-audit: OK", "lines", result.Lines)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyAuditCmd)
}
