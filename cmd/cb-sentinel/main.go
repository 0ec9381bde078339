// Package main provides the cb-sentinel CLI: convertible bond volume
// breakout backtests, universe scans and conversion premium sweeps.
package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	envFile    string
	app        *deps
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before the config")

	rootCmd.AddCommand(backtestCmd, scanCmd, premiumCmd, serveCmd, historyCmd)
}

var rootCmd = &cobra.Command{
	Use:           "cb-sentinel",
	Short:         "Taiwanese convertible bond volume breakout monitor",
	Version:       Version + " (" + GitCommit + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		app, err = setupDependencies(cmd.Context(), configFile, envFile)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
