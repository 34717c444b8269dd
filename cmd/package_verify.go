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

	"github.com/tablinum/tablinum/internal/archive"
	"github.com/tablinum/tablinum/internal/report"
)

var verifyPackageCmd = &cobra.Command{
	Use:   "verify-package PKGDIR",
	Short: "run the strict package schema and integrity checks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		result, err := archive.Verify(args[0])

		if isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Println(report.PackageVerifyReport(args[0], result.JobID, err))
		}
		if err != nil {
			return err
		}
		logger.Info("verify-package: OK", "pkg_dir", args[0], "job", result.JobID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyPackageCmd)
}
