// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package db

import (
	// Registers the "mysql" database/sql driver.
	_ "github.com/go-sql-driver/mysql"
)

// mysqlConnector connects to MySQL through go-sql-driver. The connection
// string must be in the driver's native form, e.g.
// "user:pass@tcp(host:3306)/dbname" (see internal/dsn for URL conversion).
type mysqlConnector struct {
	base
}

func newMySQL(connString string) *mysqlConnector {
	return &mysqlConnector{base{
		driverName:  "mysql",
		dsn:         connString,
		sessionInit: "SET SESSION TRANSACTION READ ONLY",
	}}
}
