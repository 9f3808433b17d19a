// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package ai

import (
	"context"
	"fmt"
	"strings"

	"askdb/cli/internal/db"
	"askdb/cli/internal/schema"
	"askdb/cli/internal/session"
)

// Generator produces and repairs SQL for a fixed data source dialect.
type Generator struct {
	client  *Client
	dialect db.Protocol
}

// NewGenerator builds a Generator on top of a configured client.
func NewGenerator(client *Client, dialect db.Protocol) *Generator {
	return &Generator{client: client, dialect: dialect}
}

// Generate asks the model to turn a natural-language question into a single
// read-only SQL query. The conversation history (at most the last
// session.WindowSize turns, in chronological order) is sent ahead of the new
// question so follow-up questions can reference earlier answers.
func (g *Generator) Generate(ctx context.Context, question string, snap *schema.Snapshot, history []session.Turn) (string, error) {
	messages := make([]chatMessage, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: question})

	return g.client.complete(ctx, g.systemPrompt(snap), messages)
}

// Repair asks the model to fix a SQL query that the database rejected. No
// conversation history is sent: the failed SQL, the database error, and the
// schema are the whole context.
func (g *Generator) Repair(ctx context.Context, failedSQL, errMessage string, snap *schema.Snapshot) (string, error) {
	prompt := fmt.Sprintf(
		"The following %s query failed:\n\n%s\n\nDatabase error:\n%s\n\nFix the query. Respond with the corrected query only.",
		g.dialect, failedSQL, errMessage)

	return g.client.complete(ctx, g.systemPrompt(snap), []chatMessage{{Role: "user", Content: prompt}})
}

// systemPrompt embeds the schema and the hard safety constraints.
func (g *Generator) systemPrompt(snap *schema.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You translate natural-language questions into a single %s SQL query.\n\n", g.dialect)
	b.WriteString("Database schema:\n")
	b.WriteString(snap.PromptText())
	b.WriteString("\nRules:\n")
	b.WriteString("- The query must be strictly read-only: a single SELECT (or WITH ... SELECT) statement.\n")
	b.WriteString("- Never use INSERT, UPDATE, DELETE, DROP, ALTER, CREATE, TRUNCATE, REPLACE, GRANT, REVOKE, EXEC, EXECUTE, CALL, PRAGMA, ATTACH, DETACH, or VACUUM.\n")
	fmt.Fprintf(&b, "- Quote every table and column identifier with %s to preserve case sensitivity.\n", g.identifierQuote())
	b.WriteString("- Use only tables and columns from the schema above.\n")
	b.WriteString("- Never end the query with a semicolon and never emit more than one statement.\n")
	b.WriteString("\nRespond with a JSON object containing a single field \"sql\" holding the query.\n")
	return b.String()
}

func (g *Generator) identifierQuote() string {
	if g.dialect == db.ProtocolMySQL {
		return "backticks (`)"
	}
	return "double quotes (\")"
}
