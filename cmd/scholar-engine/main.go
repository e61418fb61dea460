// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-engine/internal/engine"
	"github.com/pdiddy/scholar-engine/internal/secrets"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the scholar-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-engine",
	Short: "Academic entity retrieval over OpenAlex",
	Long: `scholar-engine retrieves academic entities from OpenAlex: paper, author,
and institution search, citation-graph traversal, and full-text resolution.

Each retrieval operation is a subcommand. The serve subcommand exposes the
same operations as MCP tools on stdio for agent frameworks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-engine.yaml or ~/.config/scholar-engine/config.yaml)")
	rootCmd.PersistentFlags().String("mailto", "", "contact email for OpenAlex polite-pool access (overrides config and .secrets/openalex-email)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-engine"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging(cmd *cobra.Command) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// engineConfig assembles the engine configuration. The mailto contact is
// resolved flag, then config, then .secrets/openalex-email; the engine
// rejects an empty result.
func engineConfig() types.EngineConfig {
	cfg := types.EngineConfig{
		Mailto:          viper.GetString("mailto"),
		RequestInterval: viper.GetDuration("request_interval"),
		MaxAttempts:     viper.GetInt("max_attempts"),
		MaxWalkResults:  viper.GetInt("max_walk_results"),
	}
	cfg.Timeout = viper.GetDuration("timeout")
	cfg.UserAgent = viper.GetString("user_agent")
	cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	cfg.Cache.Path = viper.GetString("cache.path")
	cfg.Cache.TTL = viper.GetDuration("cache.ttl")

	if flagMailto, _ := rootCmd.PersistentFlags().GetString("mailto"); flagMailto != "" {
		cfg.Mailto = flagMailto
	}
	if cfg.Mailto == "" {
		cfg.Mailto = loadedSecrets.Mailto()
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join("cache", "scholar.db")
	}
	return cfg
}

// newEngine builds the engine for a command invocation. Callers own Close.
func newEngine() (*engine.Engine, error) {
	return engine.New(engineConfig())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
