// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"askdb/cli/internal/keychain"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the AI provider API key",
	Long: `The key command group stores and clears the AI provider API key in the OS
keychain (macOS Keychain or Windows Credential Manager).

The environment variables ASKDB_API_KEY and OPENAI_API_KEY take precedence
over the keychain, so CI and containers can skip this step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// keySetCmd reads the API key without echoing it and stores it in the
// keychain.
var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the AI provider API key in the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("Enter API key (input hidden): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read API key: %w", err)
		}
		apiKey := strings.TrimSpace(string(raw))
		if apiKey == "" {
			return errors.New("API key must not be empty")
		}

		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Println("   Keychain is only supported on macOS and Windows.")
			fmt.Println("   Export " + keychain.EnvAPIKey + " instead.")
			return err
		}
		if err := km.SaveAPIKey(apiKey); err != nil {
			fmt.Println("❌ Failed to save the API key securely.")
			return err
		}

		fmt.Println("✅ API key saved!")
		fmt.Println("   You're ready to run 'askdb chat'")
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key from the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearAPIKey(); err != nil {
			return err
		}
		fmt.Println("✅ API key removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
}
