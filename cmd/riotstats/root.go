package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"riotstats/pkg/auth"
	"riotstats/pkg/config"
	"riotstats/pkg/logger"
	"riotstats/pkg/riot"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	region     string
	apiKeyFlag string
	dataDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "riotstats",
	Short: "Collect and analyze League of Legends match data",
	Long: `riotstats is a command-line tool for collecting League of Legends
match data through the Riot Games API.

Features:
  - Client-side rate limiting matched to the published API quotas
  - Automatic retry with exponential backoff for transient failures
  - Secure API key storage using the system keychain
  - Concurrent match collection with duplicate detection
  - Raw match JSON persisted for downstream analysis`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .riotstats.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", "", "platform region code (na1, euw1, kr, ...)")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Riot API key (overrides stored and environment keys)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base directory for collected data")

	rootCmd.SetVersionTemplate(`riotstats {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags collects the persistent flags that were actually set
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if apiKeyFlag != "" {
		flags["api-key"] = apiKeyFlag
	}
	if region != "" {
		flags["region"] = region
	}
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

// loadConfig resolves configuration from flags, environment, stored
// credentials and config file, then initializes the global logger.
func loadConfig(extra map[string]interface{}) (*config.Config, error) {
	flags := globalFlags()
	for k, v := range extra {
		flags[k] = v
	}

	// Fall back to a stored key when no flag or env var provides one
	if flags["api-key"] == nil && os.Getenv("RIOT_API_KEY") == "" && os.Getenv("RIOTSTATS_API_KEY") == "" {
		if manager, err := auth.NewManager(); err == nil {
			if key, err := manager.RetrieveDefault(); err == nil {
				flags["api-key"] = key.APIKey
				if flags["region"] == nil && key.Region != "" {
					flags["region"] = key.Region
				}
			}
		}
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// newRiotClient builds an API client from resolved configuration
func newRiotClient(cfg *config.Config) (*riot.Client, error) {
	return riot.NewClient(cfg.Riot.APIKey, riot.Options{
		Region:            cfg.Riot.Region,
		Timeout:           cfg.Riot.Timeout,
		MaxRetries:        cfg.Retry.MaxAttempts,
		DisableRateLimit:  !cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		Logger:            logger.GetLogger(),
	})
}

func fatal(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
