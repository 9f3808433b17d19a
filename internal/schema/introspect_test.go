// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"askdb/cli/internal/db"
)

// fakeConn serves canned results keyed by a substring of the query text.
type fakeConn struct {
	results map[string]*db.Rows
	err     error
}

func (f *fakeConn) Connect(ctx context.Context) error { return nil }
func (f *fakeConn) Close() error                      { return nil }

func (f *fakeConn) Query(ctx context.Context, sqlText string) (*db.Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	for key, rows := range f.results {
		if strings.Contains(sqlText, key) {
			return rows, nil
		}
	}
	return &db.Rows{}, nil
}

func TestGetGroupsInformationSchemaRows(t *testing.T) {
	conn := &fakeConn{results: map[string]*db.Rows{
		"information_schema.columns": {
			Columns: []string{"table_name", "column_name", "data_type"},
			Rows: []db.Row{
				{"table_name": "orders", "column_name": "id", "data_type": "integer"},
				{"table_name": "orders", "column_name": "total", "data_type": "numeric"},
				{"table_name": "users", "column_name": "id", "data_type": "integer"},
				{"table_name": "users", "column_name": "Name", "data_type": "text"},
			},
		},
	}}

	snap, err := Get(context.Background(), conn, db.ProtocolPostgres)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(snap.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(snap.Tables))
	}
	if snap.Tables[0].Name != "orders" || snap.Tables[1].Name != "users" {
		t.Errorf("table order = %v, want [orders users]", snap.TableNames())
	}
	users := snap.Tables[1]
	if len(users.Columns) != 2 {
		t.Fatalf("users has %d columns, want 2", len(users.Columns))
	}
	if users.Columns[0].Name != "id" || users.Columns[1].Name != "Name" {
		t.Errorf("column order = %v, want ordinal order with case preserved", users.Columns)
	}
}

func TestGetSQLiteCatalog(t *testing.T) {
	conn := &fakeConn{results: map[string]*db.Rows{
		"sqlite_master": {
			Columns: []string{"name"},
			Rows:    []db.Row{{"name": "albums"}, {"name": "tracks"}},
		},
		"table_info('albums')": {
			Columns: []string{"cid", "name", "type", "notnull", "dflt_value", "pk"},
			Rows: []db.Row{
				{"cid": int64(0), "name": "AlbumId", "type": "INTEGER"},
				{"cid": int64(1), "name": "Title", "type": "NVARCHAR(160)"},
			},
		},
		"table_info('tracks')": {
			Columns: []string{"cid", "name", "type", "notnull", "dflt_value", "pk"},
			Rows:    []db.Row{{"cid": int64(0), "name": "TrackId", "type": "INTEGER"}},
		},
	}}

	snap, err := Get(context.Background(), conn, db.ProtocolSQLite)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(snap.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(snap.Tables))
	}
	albums := snap.Tables[0]
	if albums.Name != "albums" {
		t.Errorf("first table = %q, want albums", albums.Name)
	}
	if len(albums.Columns) != 2 || albums.Columns[0].Name != "AlbumId" || albums.Columns[1].Name != "Title" {
		t.Errorf("albums columns = %v, want declared order", albums.Columns)
	}
}

func TestGetUnsupportedDialectIsEmptyNotError(t *testing.T) {
	snap, err := Get(context.Background(), &fakeConn{}, db.Protocol("duckdb"))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !snap.Empty() {
		t.Errorf("snapshot should be empty for an unrecognized dialect")
	}
}

func TestGetPropagatesFetchErrors(t *testing.T) {
	wantErr := errors.New("relation does not exist")
	snap, err := Get(context.Background(), &fakeConn{err: wantErr}, db.ProtocolPostgres)
	if snap != nil {
		t.Errorf("snapshot should be nil on fetch error")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestPromptText(t *testing.T) {
	snap := &Snapshot{Tables: []Table{
		{Name: "users", Columns: []Column{{Name: "id", DataType: "integer"}, {Name: "Name", DataType: "text"}}},
	}}
	text := snap.PromptText()
	for _, want := range []string{"Table: users", "- id (integer)", "- Name (text)"} {
		if !strings.Contains(text, want) {
			t.Errorf("PromptText() missing %q:\n%s", want, text)
		}
	}

	empty := &Snapshot{}
	if got := empty.PromptText(); !strings.Contains(got, "no tables") {
		t.Errorf("empty PromptText() = %q", got)
	}
}
