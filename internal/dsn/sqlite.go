// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import "strings"

// SQLiteResolver handles SQLite DSN parsing and normalization
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

// Parse accepts sqlite://path, sqlite3://path, or a bare file path and
// records the file path in Database. SQLite has no host, port, or auth.
func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a path to a SQLite database file")
	}

	path := strings.TrimSpace(dsn)
	lower := strings.ToLower(path)
	switch {
	case strings.HasPrefix(lower, "sqlite3://"):
		path = path[len("sqlite3://"):]
	case strings.HasPrefix(lower, "sqlite://"):
		path = path[len("sqlite://"):]
	}

	if strings.TrimSpace(path) == "" {
		return nil, NewParseError(dsn, "missing database file path", "format should be sqlite:///path/to/file.db")
	}

	return &DSNInfo{
		Type:     DBTypeSQLite,
		Database: path,
		Params:   make(map[string]string),
		Original: dsn,
	}, nil
}

// Normalize returns the plain file path the sqlite driver expects.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	if strings.TrimSpace(info.Database) == "" {
		return "", NewParseError(info.Original, "missing database file path", "")
	}
	return info.Database, nil
}

// Validate checks if the DSN is valid for SQLite
func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
