// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pipeline orchestrates query execution with bounded AI-assisted
// repair. A run proceeds through up to MaxAttempts attempts; each attempt
// opens its own connection and closes it before the attempt resolves.
//
// Terminal outcomes per attempt:
//   - connection failure: terminal immediately, on any attempt, never repaired
//   - execution success: rows returned
//   - execution failure with budget left: repair, re-validate, next attempt
//   - repair failure or invalid repaired SQL: terminal immediately
//   - execution failure on the last attempt: terminal aggregate error
package pipeline

import (
	"context"

	"askdb/cli/internal/ai"
	"askdb/cli/internal/db"
	"askdb/cli/internal/errors"
	"askdb/cli/internal/schema"
	"askdb/cli/internal/validate"
)

// MaxAttempts bounds the execution/repair loop.
const MaxAttempts = 3

// Result is the terminal outcome of one execution request. SQL carries the
// final statement, which may differ from the input when repairs were applied.
type Result struct {
	SQL  string
	Rows *db.Rows
	Err  error
}

// AttemptLog describes one attempt for the side-channel observer. Err is nil
// when the attempt succeeded.
type AttemptLog struct {
	Attempt int
	SQL     string
	Err     error
}

// Observer receives one AttemptLog per attempt, independent of the returned
// Result.
type Observer func(AttemptLog)

// Repairer rewrites failed SQL given the database error and the schema.
// *ai.Generator satisfies this.
type Repairer interface {
	Repair(ctx context.Context, failedSQL, errMessage string, snap *schema.Snapshot) (string, error)
}

// ConnectorFactory returns a fresh, unconnected Connector. It is called once
// per attempt; connectors are never shared between attempts.
type ConnectorFactory func() (db.Connector, error)

// Runner executes validated SQL against a data source with bounded repair.
type Runner struct {
	NewConnector ConnectorFactory
	Repairer     Repairer
	Snapshot     *schema.Snapshot
	Observe      Observer
}

// Run executes sqlText, repairing and retrying on execution errors up to
// MaxAttempts. The input must already have passed read-only validation; Run
// re-checks it so the invariant holds even for careless callers.
func (r *Runner) Run(ctx context.Context, sqlText string) Result {
	if err := validate.Check(sqlText); err != nil {
		return Result{SQL: sqlText, Err: errors.Wrap(errors.Validation, "query failed read-only validation", err)}
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		rows, err := r.runAttempt(ctx, attempt, sqlText)
		if err == nil {
			return Result{SQL: sqlText, Rows: rows}
		}

		// A connection failure is terminal on every attempt, even when the
		// connection string is unchanged from a previous successful attempt.
		if errors.Is(err, errors.Connection) || errors.Is(err, errors.Configuration) {
			return Result{SQL: sqlText, Err: err}
		}

		lastErr = err
		if attempt == MaxAttempts {
			break
		}

		repaired, repairErr := r.Repairer.Repair(ctx, sqlText, errors.RootMessage(err), r.Snapshot)
		if repairErr != nil {
			// Repair failures do not consume attempt budget; they end the run.
			return Result{SQL: sqlText, Err: repairErr}
		}
		repaired = ai.CleanSQL(repaired)
		if verr := validate.Check(repaired); verr != nil {
			return Result{SQL: repaired, Err: errors.Wrap(errors.Validation, "repaired query failed read-only validation", verr)}
		}
		sqlText = repaired
	}

	return Result{SQL: sqlText, Err: errors.Newf(errors.Execution,
		"query failed after %d attempts: %s", MaxAttempts, errors.RootMessage(lastErr))}
}

// runAttempt opens a fresh connection, executes the statement, and closes
// the connection on every exit path.
func (r *Runner) runAttempt(ctx context.Context, attempt int, sqlText string) (*db.Rows, error) {
	conn, err := r.NewConnector()
	if err != nil {
		r.observe(attempt, sqlText, err)
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	if err := conn.Connect(ctx); err != nil {
		r.observe(attempt, sqlText, err)
		return nil, err
	}

	rows, err := conn.Query(ctx, sqlText)
	r.observe(attempt, sqlText, err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Runner) observe(attempt int, sqlText string, err error) {
	if r.Observe == nil {
		return
	}
	r.Observe(AttemptLog{Attempt: attempt, SQL: sqlText, Err: err})
}
