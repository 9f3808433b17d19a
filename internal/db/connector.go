// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package db provides a uniform connect/query/close contract over the
// supported database backends (postgres, mysql, sqlite). Every execution
// attempt works with its own Connector instance: connections are opened for
// one attempt and closed when that attempt resolves, never pooled or reused.
package db

import (
	"context"
	"database/sql"
	"strings"

	"askdb/cli/internal/errors"
)

// Protocol identifies a supported database backend.
type Protocol string

const (
	ProtocolPostgres Protocol = "postgres"
	ProtocolMySQL    Protocol = "mysql"
	ProtocolSQLite   Protocol = "sqlite"
)

// ParseProtocol normalizes a stored protocol tag.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql":
		return ProtocolPostgres, nil
	case "mysql":
		return ProtocolMySQL, nil
	case "sqlite", "sqlite3":
		return ProtocolSQLite, nil
	default:
		return "", errors.Newf(errors.Configuration, "unsupported database protocol %q", s)
	}
}

// Row is a single result row as an ordered column-name→value mapping.
// NULL values are preserved as nil, never coerced to empty strings.
type Row map[string]any

// Rows is an ordered query result. Columns preserves the result column
// order so callers can render rows deterministically.
type Rows struct {
	Columns []string
	Rows    []Row
}

// Connector is the per-attempt database handle.
//
// Connect is idempotent: calling it on an already-connected instance is a
// no-op. Close is safe to call even if Connect was never called or already
// failed. Query executes a raw SQL string with no parameter binding.
type Connector interface {
	Connect(ctx context.Context) error
	Query(ctx context.Context, sqlText string) (*Rows, error)
	Close() error
}

// New creates a Connector for the given protocol and driver-native
// connection string. The string must already be in the form the driver
// expects (see internal/dsn for normalization).
func New(protocol Protocol, connString string) (Connector, error) {
	switch protocol {
	case ProtocolPostgres:
		return newPostgres(connString), nil
	case ProtocolMySQL:
		return newMySQL(connString), nil
	case ProtocolSQLite:
		return newSQLite(connString), nil
	default:
		return nil, errors.Newf(errors.Configuration, "unsupported database protocol %q", string(protocol))
	}
}

// base carries the database/sql plumbing shared by all three backends.
type base struct {
	driverName string
	dsn        string
	// sessionInit runs once after connecting to put the session in
	// read-only mode, as a second line of defense behind the validator.
	sessionInit string
	db          *sql.DB
}

func (b *base) Connect(ctx context.Context) error {
	if b.db != nil {
		return nil // already connected
	}
	handle, err := sql.Open(b.driverName, b.dsn)
	if err != nil {
		return errors.Wrap(errors.Connection, "failed to open database", err)
	}
	// One attempt, one connection.
	handle.SetMaxOpenConns(1)
	if err := handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return errors.Wrap(errors.Connection, "failed to connect", err)
	}
	if b.sessionInit != "" {
		if _, err := handle.ExecContext(ctx, b.sessionInit); err != nil {
			_ = handle.Close()
			return errors.Wrap(errors.Connection, "failed to enforce read-only session", err)
		}
	}
	b.db = handle
	return nil
}

func (b *base) Query(ctx context.Context, sqlText string) (*Rows, error) {
	if b.db == nil {
		if err := b.Connect(ctx); err != nil {
			return nil, err
		}
	}
	rows, err := b.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, errors.Wrap(errors.Execution, "query failed", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.Execution, "failed to read result columns", err)
	}

	out := &Rows{Columns: cols, Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(errors.Execution, "failed to scan row", err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.Execution, "row iteration failed", err)
	}
	return out, nil
}

func (b *base) Close() error {
	if b.db == nil {
		return nil // never connected or already closed
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// normalizeValue converts driver-specific scan results into plain values.
// The mysql driver returns text columns as []byte; NULLs stay nil.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return v
	}
}
