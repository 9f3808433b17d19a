// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"askdb/cli/internal/ai"
	"askdb/cli/internal/config"
	"askdb/cli/internal/db"
	"askdb/cli/internal/errors"
	"askdb/cli/internal/keychain"
	"askdb/cli/internal/logging"
	"askdb/cli/internal/pipeline"
	"askdb/cli/internal/schema"
	"askdb/cli/internal/session"
	"askdb/cli/internal/validate"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	chatSource  string
	chatModel   string
	chatBaseURL string
	verboseChat bool
)

const connectTimeout = 10 * time.Second

// chatCmd starts an interactive session: each question is turned into
// read-only SQL by the AI provider, shown for confirmation, and executed.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask your database questions in natural language",
	Long: `The chat command starts an interactive session against a saved data source.
Each question is sent to the AI provider together with the database schema
and recent conversation turns. The generated SQL is validated to be
read-only, shown for confirmation, and executed only after you approve it.
Failed queries are repaired automatically, up to three attempts per question.

In-session commands:
  /save <name>   save the last executed query as a preset
  /schema        show the inspected schema
  exit           leave the session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verboseChat {
			os.Setenv("ASKDB_VERBOSE", "1")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ds, err := pickDataSource(&cfg, chatSource)
		if err != nil {
			return err
		}
		protocol, err := db.ParseProtocol(ds.Type)
		if err != nil {
			return err
		}

		client, err := ai.NewClient(ai.Config{
			BaseURL: firstNonEmpty(chatBaseURL, cfg.BaseURL),
			APIKey:  keychain.ResolveAPIKey(),
			Model:   firstNonEmpty(chatModel, cfg.Model),
		})
		if err != nil {
			pterm.Println("❌ " + err.Error())
			return err
		}

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Source:     ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(ds.Name))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Connection: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(logging.Mask(ds.ConnectionString)))
		pterm.Println()

		snap, err := inspectSchema(cmd.Context(), protocol, ds.ConnectionString)
		if err != nil {
			pterm.Println("❌ Failed to connect to the database")
			pterm.Println(logging.PresentError("schema inspection", err))
			return err
		}
		if snap.Empty() {
			pterm.Println("⚠️  No tables found; the AI will work without schema context")
			pterm.Println()
		}

		generator := ai.NewGenerator(client, protocol)
		runner := &pipeline.Runner{
			NewConnector: func() (db.Connector, error) { return db.New(protocol, ds.ConnectionString) },
			Repairer:     generator,
			Snapshot:     snap,
			Observe: func(l pipeline.AttemptLog) {
				if l.Err == nil {
					return
				}
				pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("  attempt %d/%d failed: %s",
					l.Attempt, pipeline.MaxAttempts, logging.Mask(errors.RootMessage(l.Err))))
			},
		}

		pterm.Println("Ask a question, or type 'exit' to leave.")
		pterm.Println()

		history := &session.History{}
		reader := bufio.NewReader(os.Stdin)
		lastSQL := ""

		for {
			fmt.Print(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("❓ "))
			line, err := reader.ReadString('\n')
			if err != nil {
				// EOF or closed stdin ends the session
				pterm.Println()
				return nil
			}
			question := strings.TrimSpace(line)

			switch {
			case question == "":
				continue
			case question == "exit" || question == "quit":
				pterm.Println("Bye!")
				return nil
			case question == "/schema":
				pterm.DefaultBox.
					WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Schema")).
					WithPadding(1).
					Println(snap.PromptText())
				continue
			case strings.HasPrefix(question, "/save"):
				savePreset(&cfg, ds.ID, lastSQL, strings.TrimSpace(strings.TrimPrefix(question, "/save")))
				continue
			}

			stopSpinner := startInlineSpinner(os.Stdout, "generating SQL", []string{"-", "\\", "|", "/"}, 100*time.Millisecond)
			sqlText, err := generator.Generate(cmd.Context(), question, snap, history.Window(session.WindowSize))
			stopSpinner()
			if err != nil {
				presentGenerationError(err)
				continue
			}

			if err := validate.Check(sqlText); err != nil {
				pterm.Println("🚫 The model produced a query that is not read-only; it was not executed.")
				pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("   " + err.Error()))
				continue
			}

			// Both sides of the exchange become context for follow-ups.
			history.Add(session.RoleUser, question)
			history.Add(session.RoleAssistant, sqlText)

			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Generated SQL")).
				WithPadding(1).
				Println(sqlText)

			confirmed, _ := pterm.DefaultInteractiveConfirm.
				WithDefaultValue(true).
				Show("Execute this query?")
			if !confirmed {
				pterm.Println("Skipped.")
				pterm.Println()
				continue
			}

			start := time.Now()
			res := runner.Run(cmd.Context(), sqlText)
			if res.Err != nil {
				presentRunError(res.Err)
				continue
			}
			if res.SQL != sqlText {
				pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprint("  query was repaired before it succeeded:"))
				pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("  " + res.SQL))
			}
			lastSQL = res.SQL
			renderRows(res.Rows, time.Since(start))
		}
	},
}

// pickDataSource resolves the data source to chat with: the --source flag,
// the single configured source, or an interactive selection.
func pickDataSource(cfg *config.Config, requested string) (*config.DataSource, error) {
	if len(cfg.DataSources) == 0 {
		pterm.Println("⚠️  No data sources configured.")
		pterm.Println("   Please run: askdb sources add <name>")
		return nil, fmt.Errorf("no data sources configured")
	}

	if requested != "" {
		ds, ok := cfg.FindDataSource(requested)
		if !ok {
			return nil, fmt.Errorf("no data source named %q", requested)
		}
		return ds, nil
	}

	if len(cfg.DataSources) == 1 {
		return &cfg.DataSources[0], nil
	}

	names := make([]string, len(cfg.DataSources))
	for i, ds := range cfg.DataSources {
		names[i] = ds.Name
	}
	picked, err := pterm.DefaultInteractiveSelect.
		WithOptions(names).
		Show("Which data source do you want to query?")
	if err != nil {
		return nil, err
	}
	ds, ok := cfg.FindDataSource(picked)
	if !ok {
		return nil, fmt.Errorf("no data source named %q", picked)
	}
	return ds, nil
}

// inspectSchema opens a short-lived connection and reads the table layout.
func inspectSchema(ctx context.Context, protocol db.Protocol, connString string) (*schema.Snapshot, error) {
	stopSpinner := startInlineSpinner(os.Stdout, "inspecting schema", []string{"-", "\\", "|", "/"}, 100*time.Millisecond)
	defer stopSpinner()

	conn, err := db.New(protocol, connString)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	ctxConnect, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := conn.Connect(ctxConnect); err != nil {
		return nil, err
	}

	return schema.Get(ctx, conn, protocol)
}

// savePreset stores the last executed query under a name.
func savePreset(cfg *config.Config, sourceID, lastSQL, name string) {
	if lastSQL == "" {
		pterm.Println("⚠️  Nothing to save yet; run a query first.")
		return
	}
	if name == "" {
		pterm.Println("⚠️  Usage: /save <name>")
		return
	}
	if _, err := cfg.AddPreset(name, sourceID, lastSQL); err != nil {
		pterm.Println("❌ " + err.Error())
		return
	}
	if err := config.Save(*cfg); err != nil {
		pterm.Println("❌ Failed to save preset: " + err.Error())
		return
	}
	pterm.Printf("✅ Saved preset %q. Run it later with: askdb presets run %s\n", name, name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSource, "source", "", "Data source to query (name or ID)")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "AI model to use (overrides config)")
	chatCmd.Flags().StringVar(&chatBaseURL, "base-url", "", "AI provider base URL (overrides config)")
	chatCmd.Flags().BoolVarP(&verboseChat, "verbose", "v", false, "Enable verbose debug output")
}
