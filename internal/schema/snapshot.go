// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema builds a normalized snapshot of a database's tables and
// columns from a live connection. The snapshot is built once when a data
// source is selected and then held read-only for the session; it is never
// mutated, only replaced wholesale on the next selection.
package schema

import (
	"fmt"
	"strings"
)

// Column describes one column of a table.
type Column struct {
	Name     string
	DataType string
}

// Table describes one user table. Columns are in catalog ordinal position
// (declaration order for sqlite).
type Table struct {
	Name    string
	Columns []Column
}

// Snapshot is the normalized table→columns view of a database.
type Snapshot struct {
	Tables []Table
}

// Empty reports whether the snapshot contains no tables.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Tables) == 0
}

// TableNames returns the table names in snapshot order.
func (s *Snapshot) TableNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// PromptText renders the snapshot as structured text for embedding in AI
// prompts. Identifiers keep their exact case so the model can quote them.
func (s *Snapshot) PromptText() string {
	if s.Empty() {
		return "(no tables found)"
	}
	var b strings.Builder
	for i, t := range s.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Table: %s\n", t.Name)
		b.WriteString("Columns:\n")
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.DataType)
		}
	}
	return b.String()
}
