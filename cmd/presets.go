// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"askdb/cli/internal/config"
	"askdb/cli/internal/db"
	"askdb/cli/internal/errors"
	"askdb/cli/internal/logging"
	"askdb/cli/internal/validate"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const presetQueryTimeout = 60 * time.Second

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage saved queries",
	Long: `The presets command group manages queries saved from chat sessions with
/save. A preset replays its SQL verbatim against the data source it was
saved from, without involving the AI provider.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if len(cfg.Presets) == 0 {
			pterm.Println("⚠️  No presets saved")
			pterm.Println("   Save one from a chat session with: /save <name>")
			return nil
		}

		rows := pterm.TableData{{"Name", "Source", "Saved", "SQL"}}
		for _, p := range cfg.SortedPresets() {
			sourceName := p.SourceID
			if ds, ok := cfg.FindDataSource(p.SourceID); ok {
				sourceName = ds.Name
			}
			rows = append(rows, []string{p.Name, sourceName, p.CreatedAt.Format("2006-01-02"), truncateSQL(p.SQL, 60)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

// presetsRunCmd replays a saved query. The SQL passes the read-only check
// again before execution in case the config file was edited by hand.
var presetsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Execute a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		preset, ok := cfg.FindPreset(args[0])
		if !ok {
			return fmt.Errorf("no preset named %q", args[0])
		}
		ds, ok := cfg.FindDataSource(preset.SourceID)
		if !ok {
			return fmt.Errorf("the data source preset %q was saved from no longer exists", preset.Name)
		}
		protocol, err := db.ParseProtocol(ds.Type)
		if err != nil {
			return err
		}

		if err := validate.Check(preset.SQL); err != nil {
			return errors.Wrap(errors.Validation, "preset failed read-only validation", err)
		}

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Source: ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(ds.Name))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ SQL:    ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(preset.SQL))

		conn, err := db.New(protocol, ds.ConnectionString)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), presetQueryTimeout)
		defer cancel()

		start := time.Now()
		if err := conn.Connect(ctx); err != nil {
			pterm.Println("❌ Could not connect to the database.")
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("   " + logging.Mask(errors.RootMessage(err))))
			return err
		}
		rows, err := conn.Query(ctx, preset.SQL)
		if err != nil {
			pterm.Println("❌ " + logging.Mask(err.Error()))
			return err
		}

		renderRows(rows, time.Since(start))
		return nil
	},
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.RemovePreset(args[0]) {
			return fmt.Errorf("no preset named %q", args[0])
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("✅ Deleted preset %q\n", args[0])
		return nil
	},
}

func truncateSQL(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsRunCmd)
	presetsCmd.AddCommand(presetsDeleteCmd)
}
