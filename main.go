// Package main is the entry point for the askdb CLI application.
// It lets users query their databases in natural language: questions are
// turned into read-only SQL by an AI provider, confirmed, and executed.
package main

import (
	"askdb/cli/cmd"
)

func main() {
	cmd.Execute()
}
