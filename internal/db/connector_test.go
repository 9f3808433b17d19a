// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package db

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"askdb/cli/internal/errors"
)

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		in      string
		want    Protocol
		wantErr bool
	}{
		{"postgres", ProtocolPostgres, false},
		{"postgresql", ProtocolPostgres, false},
		{"POSTGRES", ProtocolPostgres, false},
		{"mysql", ProtocolMySQL, false},
		{"sqlite", ProtocolSQLite, false},
		{"sqlite3", ProtocolSQLite, false},
		{" sqlite ", ProtocolSQLite, false},
		{"oracle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProtocol(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseProtocol(%q) expected error", tt.in)
				}
				if errors.KindOf(err) != errors.Configuration {
					t.Errorf("error kind = %v, want configuration", errors.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProtocol(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseProtocol(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	for _, p := range []Protocol{ProtocolPostgres, ProtocolMySQL, ProtocolSQLite} {
		if _, err := New(p, "conn"); err != nil {
			t.Errorf("New(%v) error: %v", p, err)
		}
	}
	if _, err := New(Protocol("mssql"), "conn"); err == nil {
		t.Error("New with unknown protocol should fail")
	}
}

func TestQueryPreservesNullsAndOrder(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	conn := &base{db: mockDB}
	defer conn.Close()

	mock.ExpectQuery("SELECT id, name, note FROM users").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "note"}).
			AddRow(int64(1), []byte("alice"), nil).
			AddRow(int64(2), []byte("bob"), []byte("hi")))

	rows, err := conn.Query(context.Background(), "SELECT id, name, note FROM users")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	wantCols := []string{"id", "name", "note"}
	if len(rows.Columns) != len(wantCols) {
		t.Fatalf("Columns = %v, want %v", rows.Columns, wantCols)
	}
	for i, c := range wantCols {
		if rows.Columns[i] != c {
			t.Errorf("Columns[%d] = %q, want %q", i, rows.Columns[i], c)
		}
	}
	if len(rows.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows.Rows))
	}
	if rows.Rows[0]["name"] != "alice" {
		t.Errorf("name = %v, want alice (byte slices should become strings)", rows.Rows[0]["name"])
	}
	if rows.Rows[0]["note"] != nil {
		t.Errorf("note = %v, want nil (NULL must stay nil)", rows.Rows[0]["note"])
	}
	if rows.Rows[1]["note"] != "hi" {
		t.Errorf("note = %v, want hi", rows.Rows[1]["note"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestQueryErrorIsExecutionKind(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	conn := &base{db: mockDB}
	defer conn.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errSyntax{})

	_, err = conn.Query(context.Background(), "SELECT nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.KindOf(err) != errors.Execution {
		t.Errorf("error kind = %v, want execution", errors.KindOf(err))
	}
}

type errSyntax struct{}

func (errSyntax) Error() string { return `syntax error at or near "nope"` }

func TestCloseIsIdempotent(t *testing.T) {
	conn := &base{}
	if err := conn.Close(); err != nil {
		t.Errorf("Close() on never-connected connector: %v", err)
	}

	mockDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	conn = &base{db: mockDB}
	if err := conn.Close(); err != nil {
		t.Errorf("first Close(): %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close(): %v", err)
	}
}

func TestReadOnlyPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"app.db", "app.db?mode=ro"},
		{"app.db?cache=shared", "app.db?cache=shared&mode=ro"},
		{"app.db?mode=rw", "app.db?mode=rw"},
	}
	for _, tt := range tests {
		if got := readOnlyPath(tt.in); got != tt.want {
			t.Errorf("readOnlyPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
