// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(Validation, "not read-only")
	if KindOf(err) != Validation {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), Validation)
	}
	if !Is(err, Validation) {
		t.Error("Is() = false, want true")
	}
	if KindOf(fmt.Errorf("plain")) != "" {
		t.Error("plain errors should have no kind")
	}

	// Kind survives wrapping with %w.
	wrapped := fmt.Errorf("outer: %w", err)
	if KindOf(wrapped) != Validation {
		t.Errorf("KindOf(wrapped) = %v, want %v", KindOf(wrapped), Validation)
	}
}

func TestErrorFormatting(t *testing.T) {
	inner := stderrors.New("dial tcp: connection refused")
	err := Wrap(Connection, "failed to connect", inner)

	got := err.Error()
	want := "connection_error: failed to connect: dial tcp: connection refused"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, inner) {
		t.Error("wrapped error must be reachable through Unwrap")
	}
}

func TestRootMessage(t *testing.T) {
	inner := stderrors.New(`column "nam" does not exist`)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrapped", Wrap(Execution, "query failed", inner), `column "nam" does not exist`},
		{"no inner error", New(Generation, "model returned empty SQL"), "generation_error: model returned empty SQL"},
		{"plain error", inner, `column "nam" does not exist`},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RootMessage(tt.err); got != tt.want {
				t.Errorf("RootMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
