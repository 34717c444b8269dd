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

// Package report renders human-readable verify-package / verify-audit
// summaries on a TTY, using github.com/charmbracelet/lipgloss/table.
// Machine-readable callers (scripts) read the exit code and stderr
// diagnostics instead; the table is only printed when stdout is a
// terminal.
package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/table"
)

// Row is one check/line entry in a report.
type Row struct {
	Name   string
	Result string
	Detail string
}

// Render formats rows as a bordered table, headed by title.
func Render(title string, rows []Row) string {
	tableRows := [][]string{}
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			fmt.Sprintf(" %s ", r.Name),
			fmt.Sprintf(" %s ", r.Result),
			fmt.Sprintf(" %s ", r.Detail),
		})
	}

	t := table.New().
		Headers(" Check ", " Result ", " Detail ").
		Rows(tableRows...)

	return title + "\n" + t.String()
}

// PackageVerifyReport renders the outcome of an archive.Verify call.
func PackageVerifyReport(pkgDir string, jobID string, err error) string {
	result, detail := "OK", "all checks passed"
	if err != nil {
		result, detail = "FAIL", err.Error()
	}
	return Render(fmt.Sprintf("verify-package: %s", pkgDir), []Row{
		{Name: "schema + integrity", Result: result, Detail: detail},
		{Name: "jobid", Result: jobID, Detail: ""},
	})
}

// AuditVerifyReport renders the outcome of an auditverify.Verify call.
func AuditVerifyReport(repoRoot string, lines int, err error) string {
	result, detail := "OK", fmt.Sprintf("%d lines verified", lines)
	if err != nil {
		result, detail = "FAIL", err.Error()
	}
	return Render(fmt.Sprintf("verify-audit: %s", repoRoot), []Row{
		{Name: "hash chain", Result: result, Detail: detail},
	})
}
