package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "grabarrd",
	Short: "Acquisition-to-library import pipeline daemon",
	Long: `grabarrd searches newznab indexers, scores releases against
custom formats, hands the winner to a download client, and imports
finished downloads into the media library.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(configPath)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to config file")
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("grabarrd {{.Version}}\n")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
