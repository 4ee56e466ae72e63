// Package cmd implements the command-line interface for goleads.
// It provides the root command and subcommands for running the lead
// generation server.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/goleads/cmd/httpd"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "goleads",
	Short: "A marketplace lead generation server",
	Long:  `A campaign-driven lead generation server that polls marketplaces for listings and surfaces new leads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("goleads version %s\n", Version)
		},
	})

	rootCmd.AddCommand(httpd.Command())
}
