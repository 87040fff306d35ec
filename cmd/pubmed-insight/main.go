// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-insight CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-insight/internal/pubmed"
	"github.com/pdiddy/pubmed-insight/internal/secrets"
	"github.com/pdiddy/pubmed-insight/internal/store"
	"github.com/pdiddy/pubmed-insight/internal/summarize"
	"github.com/pdiddy/pubmed-insight/internal/tools"
	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the dotenv file at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the pubmed-insight CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-insight",
	Short: "PubMed literature tools for LLM agents",
	Long: `pubmed-insight packages a biomedical literature workflow as tools an
LLM agent can call: fetch_articles searches PubMed and stores the matching
records as a named result set, summarize_abstracts condenses stored
abstracts into one integrated summary, and format_citations renders
citation strings for stored articles.

Run 'pubmed-insight serve' to expose the tools as HTTP endpoints, or
invoke them directly with the fetch, summarize, and cite subcommands.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("secrets")
		if path == "" {
			path = secrets.DefaultFile
		}
		s, err := secrets.Load(path)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-insight.yaml or ~/.config/pubmed-insight/config.yaml)")
	rootCmd.PersistentFlags().String("secrets", "", "dotenv file with credentials (default: ./.env)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-insight")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-insight"))
		}
	}

	viper.SetEnvPrefix("PUBMED_INSIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Built-in defaults; the config file and environment override them.
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", "pubmed-insight/0.1")
	viper.SetDefault("search.batch_size", 100)
	viper.SetDefault("search.batch_delay", time.Second)
	viper.SetDefault("search.max_retries", 3)
	viper.SetDefault("store.backend", "file")
	viper.SetDefault("store.dir", "output")
	viper.SetDefault("summarize.timeout", 120*time.Second)
	viper.SetDefault("summarize.model", "deepseek-ai/DeepSeek-V3")
	viper.SetDefault("summarize.max_tokens", 512)
	viper.SetDefault("summarize.temperature", 0.3)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.tool_timeout", 3*time.Minute)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the full configuration from viper, then fills
// credentials from the environment and the secrets file. Components
// receive this object and never read the environment themselves.
func buildConfig() types.Config {
	var cfg types.Config
	cfg.Search.Timeout = viper.GetDuration("search.timeout")
	cfg.Search.UserAgent = viper.GetString("search.user_agent")
	cfg.Search.Email = viper.GetString("search.email")
	cfg.Search.APIKey = viper.GetString("search.api_key")
	cfg.Search.BatchSize = viper.GetInt("search.batch_size")
	cfg.Search.BatchDelay = viper.GetDuration("search.batch_delay")
	cfg.Search.MaxRetries = viper.GetInt("search.max_retries")
	cfg.Store.Backend = types.StoreBackend(viper.GetString("store.backend"))
	cfg.Store.Dir = viper.GetString("store.dir")
	cfg.Summarize.Timeout = viper.GetDuration("summarize.timeout")
	cfg.Summarize.APIKey = viper.GetString("summarize.api_key")
	cfg.Summarize.Model = viper.GetString("summarize.model")
	cfg.Summarize.MaxTokens = viper.GetInt("summarize.max_tokens")
	cfg.Summarize.Temperature = viper.GetFloat64("summarize.temperature")
	cfg.Server.Addr = viper.GetString("server.addr")
	cfg.Server.ToolTimeout = viper.GetDuration("server.tool_timeout")
	cfg.Server.LogFile = viper.GetString("server.log_file")

	if cfg.Search.Email == "" {
		cfg.Search.Email = secrets.Resolve(secrets.EnvEmail, loadedSecrets)
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = secrets.Resolve(secrets.EnvNCBIKey, loadedSecrets)
	}
	if cfg.Summarize.APIKey == "" {
		cfg.Summarize.APIKey = secrets.Resolve(secrets.EnvSiliconFlowKey, loadedSecrets)
	}
	return cfg
}

// newStore builds the configured result-store backend.
func newStore(cfg types.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case types.StoreSQLite:
		return store.NewSQLite(filepath.Join(cfg.Dir, "insight.db"))
	case types.StoreFile, "":
		return store.NewFile(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q: use file or sqlite", cfg.Backend)
	}
}

// newOrchestrator wires the live components. The store is returned
// alongside so the caller can close it.
func newOrchestrator(cfg types.Config, log *logrus.Logger) (*tools.Orchestrator, store.Store, error) {
	st, err := newStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	orch := tools.New(cfg, pubmed.NewClient(cfg.Search), st, summarize.NewClient(cfg.Summarize), log)
	return orch, st, nil
}

// newCLILogger keeps one-shot commands quiet on stderr; only warnings
// and errors surface. The tool envelope on stdout carries the outcome.
func newCLILogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

// printEnvelope writes the tool response to stdout as indented JSON and
// converts a failure envelope into a command error.
func printEnvelope(resp any, env types.ToolResponse) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("%s: %s", env.Status, env.Message)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
