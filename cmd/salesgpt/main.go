// Package main is the entry point for the salesgpt CLI.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rahul/salesgpt/internal/observability"
	"github.com/rahul/salesgpt/pkg/config"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "salesgpt",
	Short: "A sales agent that answers product questions from your catalog",
	Long: `salesgpt builds a product knowledge base from a catalog file, a catalog URL
or the catalog database (DB_SQL_URL), and exposes it as the ProductSearch tool
to a conversational sales agent.

Ask one-off questions with "ask", talk to the agent with "chat", or serve the
HTTP API (and optionally a Telegram bot) with "serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if src, _ := cmd.Flags().GetString("catalog"); cmd.Flags().Changed("catalog") {
			loaded.Catalog.Source = src
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			loaded.App.LogLevel = lvl
		}
		cfg = loaded
		observability.Setup(cfg.App.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.{yaml,json} when present)")
	rootCmd.PersistentFlags().String("catalog", "", "product catalog file or URL; empty or equal to DB_SQL_URL uses the database")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("salesgpt failed")
		os.Exit(1)
	}
}
