package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcaldbick/RAM/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ramapi",
	Short: "Relationship Authorisation Manager API server",
	Long: `ramapi serves the Relationship Authorisation Manager REST API.
It resolves caller identities from gateway-injected headers, manages
authorisation relationships between parties, and enforces per-action
permission checks on every relationship operation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
