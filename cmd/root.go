package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/kan/internal/ai"
	"github.com/joescharf/kan/internal/output"
	"github.com/joescharf/kan/internal/prefs"
	"github.com/joescharf/kan/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui  *output.UI
	app *store.App

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "kan",
	Short: "kan - issue tracking with AI suggestions",
	Long: `kan is an issue-tracking client: a kanban board and list over an
in-memory issue collection, with AI-backed label suggestion, priority
suggestion, task breakdown, duplicate detection, and description
rewriting.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		// Bare `kan` shows the preferred view.
		a, err := getApp()
		if err != nil {
			return cmd.Help()
		}
		p, err := prefs.Load(prefsDir())
		if err != nil {
			ui.Warning("Could not load preferences: %v", err)
		}
		if p.View == "list" {
			return issueListRun(a)
		}
		return boardRun(a)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/kan/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "kan")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("KAN")
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "kan")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// getApp returns the shared store, seeding it from the fixed initial
// dataset on first call. Entity data is ephemeral; only UI preferences
// survive a restart.
func getApp() (*store.App, error) {
	if app != nil {
		return app, nil
	}

	a := store.New()
	if err := a.Seed(); err != nil {
		return nil, fmt.Errorf("seed store: %w", err)
	}

	app = a
	return app, nil
}

// prefsDir returns the directory holding the persisted UI preferences.
func prefsDir() string {
	return viper.GetString("state_dir")
}

// newOrchestrator creates the AI orchestrator from config/env. Without
// an API key it runs in degraded mode and every action falls back.
func newOrchestrator() *ai.Orchestrator {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return ai.New(nil)
	}
	return ai.New(ai.NewAnthropicCompleter(apiKey, viper.GetString("anthropic.model")))
}
