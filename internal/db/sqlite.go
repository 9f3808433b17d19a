// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package db

import (
	"strings"

	// Registers the "sqlite" database/sql driver (pure Go, no cgo).
	_ "modernc.org/sqlite"
)

// sqliteConnector connects to a SQLite database file. The file is opened
// in read-only mode via the DSN; PRAGMA query_only would be redundant and
// fails on ?mode=ro connections, so no session init statement is used.
type sqliteConnector struct {
	base
}

func newSQLite(connString string) *sqliteConnector {
	return &sqliteConnector{base{
		driverName: "sqlite",
		dsn:        readOnlyPath(connString),
	}}
}

// readOnlyPath appends mode=ro to a SQLite path unless a mode is already set.
func readOnlyPath(path string) string {
	if !strings.Contains(path, "?") {
		return path + "?mode=ro"
	}
	if !strings.Contains(path, "mode=") {
		return path + "&mode=ro"
	}
	return path
}
