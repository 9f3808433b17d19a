// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DBTypePostgreSQL
	}
	if strings.HasPrefix(lower, "mysql://") {
		return DBTypeMySQL
	}
	if strings.HasPrefix(lower, "sqlite://") || strings.HasPrefix(lower, "sqlite3://") {
		return DBTypeSQLite
	}
	// Bare file paths count as sqlite when they carry a known extension.
	if !strings.Contains(lower, "://") {
		for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
			if strings.HasSuffix(lower, ext) {
				return DBTypeSQLite
			}
		}
	}

	return DBTypeUnknown
}

func resolverFor(dsn string) (Resolver, error) {
	switch DetectDBType(dsn) {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeMySQL:
		return NewMySQLResolver(), nil
	case DBTypeSQLite:
		return NewSQLiteResolver(), nil
	default:
		return nil, NewParseError(dsn, "unknown database type", "use postgres://, mysql://, sqlite://, or a .db/.sqlite file path")
	}
}

// Parse parses a DSN string and returns the driver-native connection string.
// This is the main entry point for DSN parsing.
func Parse(dsn string) (string, error) {
	if dsn == "" {
		return "", NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}

	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}

	normalized, err := resolver.Normalize(info)
	if err != nil {
		return "", err
	}

	return normalized, nil
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	if dsn == "" {
		return NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	resolver, err := resolverFor(dsn)
	if err != nil {
		return err
	}

	return resolver.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
// Useful for inspecting connection details
func ParseInfo(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}

	return resolver.Parse(dsn)
}
