// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"testing"
)

func TestSQLiteResolver_Parse(t *testing.T) {
	resolver := NewSQLiteResolver()

	tests := []struct {
		name        string
		dsn         string
		wantPath    string
		expectError bool
	}{
		{
			name:     "sqlite scheme with absolute path",
			dsn:      "sqlite:///var/data/app.db",
			wantPath: "/var/data/app.db",
		},
		{
			name:     "sqlite scheme with relative path",
			dsn:      "sqlite://./local.db",
			wantPath: "./local.db",
		},
		{
			name:     "sqlite3 scheme",
			dsn:      "sqlite3://analytics.sqlite3",
			wantPath: "analytics.sqlite3",
		},
		{
			name:     "bare file path",
			dsn:      "/home/user/data.sqlite",
			wantPath: "/home/user/data.sqlite",
		},
		{
			name:        "empty DSN",
			dsn:         "",
			expectError: true,
		},
		{
			name:        "scheme without path",
			dsn:         "sqlite://",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := resolver.Parse(tt.dsn)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if info.Type != DBTypeSQLite {
				t.Errorf("type = %v, want %v", info.Type, DBTypeSQLite)
			}
			if info.Database != tt.wantPath {
				t.Errorf("database = %q, want %q", info.Database, tt.wantPath)
			}
		})
	}
}

func TestSQLiteResolver_Normalize(t *testing.T) {
	resolver := NewSQLiteResolver()

	info, err := resolver.Parse("sqlite:///var/data/app.db")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	normalized, err := resolver.Normalize(info)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if normalized != "/var/data/app.db" {
		t.Errorf("Normalize() = %q, want the plain file path", normalized)
	}
}
