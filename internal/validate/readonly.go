// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package validate implements the static read-only safety check applied to
// every SQL statement before it becomes eligible for execution. The check is
// pure and deterministic: it never touches a database or any session state.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenKeywords are the statement keywords that disqualify a query.
// Matching is whole-word and case-insensitive, so a keyword appearing only
// as a substring of a longer identifier (e.g. "execution_time") is allowed.
var forbiddenKeywords = []struct {
	re   *regexp.Regexp
	name string
}{
	{wordPattern("INSERT"), "INSERT"},
	{wordPattern("UPDATE"), "UPDATE"},
	{wordPattern("DELETE"), "DELETE"},
	{wordPattern("DROP"), "DROP"},
	{wordPattern("ALTER"), "ALTER"},
	{wordPattern("CREATE"), "CREATE"},
	{wordPattern("TRUNCATE"), "TRUNCATE"},
	{wordPattern("REPLACE"), "REPLACE"},
	{wordPattern("GRANT"), "GRANT"},
	{wordPattern("REVOKE"), "REVOKE"},
	{wordPattern("EXEC"), "EXEC"},
	{wordPattern("EXECUTE"), "EXECUTE"},
	{wordPattern("CALL"), "CALL"},
	{wordPattern("PRAGMA"), "PRAGMA"},
	{wordPattern("ATTACH"), "ATTACH"},
	{wordPattern("DETACH"), "DETACH"},
	{wordPattern("VACUUM"), "VACUUM"},
}

var collapseWhitespace = regexp.MustCompile(`\s+`)

func wordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^a-zA-Z0-9_])` + keyword + `(?:[^a-zA-Z0-9_]|$)`)
}

// Check reports why a SQL string is not a single read-only statement.
// It returns nil when the statement is safe to execute. Rules are applied
// in order: multi-statement detection, forbidden keyword scan, and finally
// the SELECT/WITH prefix requirement.
func Check(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}

	// More than one non-empty statement when split on ";"
	nonEmpty := 0
	for _, part := range strings.Split(trimmed, ";") {
		if strings.TrimSpace(part) != "" {
			nonEmpty++
		}
	}
	if nonEmpty > 1 {
		return fmt.Errorf("multiple statements are not allowed")
	}

	for _, kw := range forbiddenKeywords {
		if kw.re.MatchString(trimmed) {
			return fmt.Errorf("query contains forbidden keyword: %s", kw.name)
		}
	}

	normalized := strings.ToUpper(collapseWhitespace.ReplaceAllString(trimmed, " "))
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return fmt.Errorf("only SELECT and WITH queries are allowed")
	}

	return nil
}

// IsReadOnly reports whether a SQL string passes the read-only check.
func IsReadOnly(sql string) bool {
	return Check(sql) == nil
}
