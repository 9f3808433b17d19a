// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package db

import (
	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// postgresConnector connects to PostgreSQL through the pgx stdlib driver.
type postgresConnector struct {
	base
}

func newPostgres(connString string) *postgresConnector {
	return &postgresConnector{base{
		driverName:  "pgx",
		dsn:         connString,
		sessionInit: "SET SESSION CHARACTERISTICS AS TRANSACTION READ ONLY",
	}}
}
