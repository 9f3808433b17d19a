// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds the conversation transcript for one chat session.
// The transcript itself grows without bound; generation only ever consumes
// a bounded window of the most recent turns, handed to the pipeline as an
// immutable slice so no shared mutable state crosses the call boundary.
package session

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single conversation entry used as generation context.
type Turn struct {
	Role    Role
	Content string
}

// WindowSize is the number of most recent turns sent to the AI provider.
const WindowSize = 10

// History is the ordered conversation transcript.
type History struct {
	turns []Turn
}

// Add appends a turn to the transcript.
func (h *History) Add(role Role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})
}

// Len returns the number of recorded turns.
func (h *History) Len() int { return len(h.turns) }

// Window returns a copy of the last n turns in chronological order.
func (h *History) Window(n int) []Turn {
	if n <= 0 || len(h.turns) == 0 {
		return nil
	}
	start := len(h.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}
