// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"askdb/cli/internal/db"
	"askdb/cli/internal/errors"
	"askdb/cli/internal/schema"
	"askdb/cli/internal/session"
)

func testSnapshot() *schema.Snapshot {
	return &schema.Snapshot{Tables: []schema.Table{
		{Name: "users", Columns: []schema.Column{{Name: "id", DataType: "integer"}, {Name: "Name", DataType: "text"}}},
	}}
}

// captured is the request body shape the fake provider records.
type captured struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newFakeProvider(t *testing.T, status int, content string, got *captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		if status < 400 {
			fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
		} else {
			fmt.Fprint(w, `{"error":{"message":"boom"}}`)
		}
	}))
}

func newTestGenerator(t *testing.T, baseURL string) *Generator {
	t.Helper()
	client, err := NewClient(Config{BaseURL: baseURL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return NewGenerator(client, db.ProtocolPostgres)
}

func TestGenerateSendsHistoryAndSchema(t *testing.T) {
	var got captured
	srv := newFakeProvider(t, http.StatusOK, `{"sql": "SELECT \"id\" FROM \"users\""}`, &got)
	defer srv.Close()

	gen := newTestGenerator(t, srv.URL)
	history := []session.Turn{
		{Role: session.RoleUser, Content: "how many users?"},
		{Role: session.RoleAssistant, Content: "SELECT count(*) FROM \"users\""},
	}

	sqlText, err := gen.Generate(context.Background(), "show their names", testSnapshot(), history)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if sqlText != `SELECT "id" FROM "users"` {
		t.Errorf("sql = %q", sqlText)
	}

	// system + 2 history turns + new question
	if len(got.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(got.Messages))
	}
	if got.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", got.Messages[0].Role)
	}
	if !strings.Contains(got.Messages[0].Content, "Table: users") {
		t.Error("system prompt should embed the schema")
	}
	if !strings.Contains(got.Messages[0].Content, "read-only") {
		t.Error("system prompt should state the read-only constraint")
	}
	if got.Messages[1].Content != "how many users?" || got.Messages[1].Role != "user" {
		t.Errorf("history turn 1 = %+v", got.Messages[1])
	}
	if got.Messages[2].Role != "assistant" {
		t.Errorf("history turn 2 role = %q", got.Messages[2].Role)
	}
	if got.Messages[3].Content != "show their names" {
		t.Errorf("final message = %q", got.Messages[3].Content)
	}
}

func TestGenerateStripsFencedSQL(t *testing.T) {
	srv := newFakeProvider(t, http.StatusOK, "{\"sql\": \"```sql\\nSELECT 1\\n```\"}", nil)
	defer srv.Close()

	gen := newTestGenerator(t, srv.URL)
	sqlText, err := gen.Generate(context.Background(), "one", testSnapshot(), nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if sqlText != "SELECT 1" {
		t.Errorf("sql = %q, want SELECT 1", sqlText)
	}
}

func TestRepairSendsNoHistory(t *testing.T) {
	var got captured
	srv := newFakeProvider(t, http.StatusOK, `{"sql": "SELECT \"Name\" FROM \"users\""}`, &got)
	defer srv.Close()

	gen := newTestGenerator(t, srv.URL)
	sqlText, err := gen.Repair(context.Background(), `SELECT "nam" FROM "users"`, `column "nam" does not exist`, testSnapshot())
	if err != nil {
		t.Fatalf("Repair() error: %v", err)
	}
	if sqlText != `SELECT "Name" FROM "users"` {
		t.Errorf("sql = %q", sqlText)
	}

	// system + single repair prompt, no history
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if !strings.Contains(got.Messages[1].Content, `column "nam" does not exist`) {
		t.Error("repair prompt should include the database error")
	}
	if !strings.Contains(got.Messages[1].Content, `SELECT "nam" FROM "users"`) {
		t.Error("repair prompt should include the failed SQL")
	}
}

func TestGenerateProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{"http error", http.StatusInternalServerError, ""},
		{"unauthorized", http.StatusUnauthorized, ""},
		{"not a json object", http.StatusOK, "SELECT 1"},
		{"empty sql field", http.StatusOK, `{"sql": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeProvider(t, tt.status, tt.content, nil)
			defer srv.Close()

			gen := newTestGenerator(t, srv.URL)
			_, err := gen.Generate(context.Background(), "q", testSnapshot(), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.KindOf(err) != errors.Generation {
				t.Errorf("error kind = %v, want generation", errors.KindOf(err))
			}
		})
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if errors.KindOf(err) != errors.Configuration {
		t.Errorf("error kind = %v, want configuration", errors.KindOf(err))
	}
}

func TestCleanSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sql fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"bare fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"already clean", "SELECT 1", "SELECT 1"},
		{"surrounding whitespace", "  SELECT 1\n", "SELECT 1"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanSQL(tt.in)
			if got != tt.want {
				t.Errorf("CleanSQL(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Idempotent: cleaning the result again changes nothing.
			if again := CleanSQL(got); again != got {
				t.Errorf("CleanSQL not idempotent: %q -> %q", got, again)
			}
		})
	}
}
