// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"askdb/cli/internal/db"
	"askdb/cli/internal/errors"
	"askdb/cli/internal/httperrors"
	"askdb/cli/internal/logging"

	"github.com/pterm/pterm"
)

// renderRows prints a query result as a table with the original column order.
// NULL values render as NULL, never as empty strings.
func renderRows(rows *db.Rows, elapsed time.Duration) {
	if rows == nil || len(rows.Rows) == 0 {
		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("(no rows) in %s", elapsed.Round(time.Millisecond)))
		pterm.Println()
		return
	}

	data := pterm.TableData{rows.Columns}
	for _, row := range rows.Rows {
		cells := make([]string, len(rows.Columns))
		for i, col := range rows.Columns {
			cells[i] = formatCell(row[col])
		}
		data = append(data, cells)
	}

	pterm.Println()
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		// Fall back to plain output if the terminal rejects the table
		for _, row := range data {
			fmt.Println(row)
		}
	}
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("%d row(s) in %s", len(rows.Rows), elapsed.Round(time.Millisecond)))
	pterm.Println()
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

// presentGenerationError explains an AI provider failure. Transport-level
// failures get the full network troubleshooting treatment; everything else
// is categorized from the provider's response.
func presentGenerationError(err error) {
	if isNetworkError(err) {
		_ = httperrors.FormatNetworkError(err, "requesting SQL from the AI provider")
		return
	}
	logging.PresentProviderError(err.Error())
}

// presentRunError explains a terminal pipeline failure by its category.
func presentRunError(err error) {
	pterm.Println()
	switch errors.KindOf(err) {
	case errors.Connection:
		pterm.Println("❌ Could not connect to the database.")
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("   " + logging.Mask(errors.RootMessage(err))))
		pterm.Println("   Check the connection with: askdb sources list")
	case errors.Validation:
		pterm.Println("🚫 The query was rejected by the read-only check and was not executed.")
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("   " + err.Error()))
	case errors.Generation:
		presentGenerationError(err)
		return
	default:
		pterm.Println("❌ " + logging.Mask(err.Error()))
	}
	pterm.Println()
}

// isNetworkError reports whether the error chain contains a transport-level
// failure rather than an application-level provider response.
func isNetworkError(err error) bool {
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return stderrors.As(err, &urlErr)
}
