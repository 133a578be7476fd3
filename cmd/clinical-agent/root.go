package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clinical-agent",
	Short: "Ask questions about clinical studies in plain language",
	Long: `clinical-agent answers natural-language questions about clinical studies by
letting a language model query the ClinicalTrials.gov API on your behalf.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal; variables may come from the shell.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ~/.clinical-agent/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log the agent's intermediate reasoning")
}

// openApp builds the App from the persistent flags.
func openApp(cmd *cobra.Command) (*App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return newApp(configPath, verbose)
}
