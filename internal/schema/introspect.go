// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"context"
	"fmt"
	"strings"

	"askdb/cli/internal/db"
)

// Catalog queries per dialect. Results must come back ordered by table name
// then ordinal position so grouping preserves column order.
const (
	postgresColumnsQuery = `SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position`

	mysqlColumnsQuery = `SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		ORDER BY table_name, ordinal_position`

	sqliteTablesQuery = `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
)

// Get introspects the connected database and returns a fresh Snapshot.
// An unsupported dialect yields an empty snapshot and no error; fetch
// failures are returned as-is so callers can distinguish them from
// connection errors.
func Get(ctx context.Context, conn db.Connector, dialect db.Protocol) (*Snapshot, error) {
	switch dialect {
	case db.ProtocolPostgres:
		return fromInformationSchema(ctx, conn, postgresColumnsQuery)
	case db.ProtocolMySQL:
		return fromInformationSchema(ctx, conn, mysqlColumnsQuery)
	case db.ProtocolSQLite:
		return fromSQLiteCatalog(ctx, conn)
	default:
		return &Snapshot{}, nil
	}
}

// fromInformationSchema groups (table, column, type) tuples by table,
// preserving the catalog's ordering within each table.
func fromInformationSchema(ctx context.Context, conn db.Connector, query string) (*Snapshot, error) {
	res, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	index := make(map[string]int)
	for _, row := range res.Rows {
		tableName := asString(firstOf(row, "table_name", "TABLE_NAME"))
		columnName := asString(firstOf(row, "column_name", "COLUMN_NAME"))
		dataType := asString(firstOf(row, "data_type", "DATA_TYPE"))
		if tableName == "" || columnName == "" {
			continue
		}
		i, ok := index[tableName]
		if !ok {
			snap.Tables = append(snap.Tables, Table{Name: tableName})
			i = len(snap.Tables) - 1
			index[tableName] = i
		}
		snap.Tables[i].Columns = append(snap.Tables[i].Columns, Column{Name: columnName, DataType: dataType})
	}
	return snap, nil
}

// fromSQLiteCatalog lists user tables from sqlite_master and then issues one
// PRAGMA table_info per table, preserving declared column order.
func fromSQLiteCatalog(ctx context.Context, conn db.Connector) (*Snapshot, error) {
	tables, err := conn.Query(ctx, sqliteTablesQuery)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	for _, row := range tables.Rows {
		name := asString(row["name"])
		if name == "" {
			continue
		}
		// PRAGMA table_info cannot use placeholders; embed the name safely.
		info, err := conn.Query(ctx, fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(name, "'", "''")))
		if err != nil {
			return nil, err
		}
		table := Table{Name: name}
		for _, col := range info.Rows {
			table.Columns = append(table.Columns, Column{
				Name:     asString(col["name"]),
				DataType: asString(col["type"]),
			})
		}
		snap.Tables = append(snap.Tables, table)
	}
	return snap, nil
}

func firstOf(row db.Row, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
