package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage riotstats configuration.

Configuration is resolved in priority order:
  - Command line flags (highest priority)
  - Environment variables (RIOT_API_KEY, RIOTSTATS_*)
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created as '.riotstats.yaml' in the current directory
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Show the configuration after merging all sources. The API key is
masked in the output.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the resolved configuration: YAML syntax, required fields,
value ranges and path accessibility.`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# riotstats configuration file
#
# All values here can be overridden with environment variables
# (RIOT_API_KEY, RIOTSTATS_REGION, RIOTSTATS_DATA_DIR, ...) or flags.

riot:
  # Riot API key (required). Prefer 'riotstats auth set' or the
  # RIOT_API_KEY environment variable over writing the key here.
  api_key: "your_riot_api_key_here"

  # Platform region code: na1, euw1, eun1, kr, jp1, br1, la1, la2,
  # oc1, ru, tr1
  region: "na1"

  # Per-request timeout
  timeout: 10s

# Client-side rate limiting, matched to the developer key quotas
rate_limit:
  enabled: true
  requests_per_second: 20
  requests_per_window: 100
  window: 2m

# Retry budget for timeouts and server errors
retry:
  max_attempts: 3

# Match collection settings
collection:
  matches_per_player: 20
  max_matches_per_run: 1000
  target_rank: "DIAMOND"
  workers: 3

# Dataset directory layout (raw/, processed/, models/)
data:
  base_directory: "./data"

logging:
  # Log level: debug, info, warn, error
  level: "info"
  # Log file path; empty logs to the console
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".riotstats.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fatal(fmt.Sprintf("configuration file already exists: %s", configPath), nil)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		fatal("failed to create configuration file", err)
	}

	fmt.Println("Configuration file created:", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store your API key with 'riotstats auth set' (or edit the file)")
	fmt.Println("2. Run 'riotstats config validate' to check the configuration")
	fmt.Println("3. Run 'riotstats check' to verify the API connection")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		fatal("failed to load configuration", err)
	}

	// Never print the full key
	displayCfg := *cfg
	displayCfg.Riot.APIKey = cfg.MaskedAPIKey()

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		fatal("failed to format configuration", err)
	}

	fmt.Println("Resolved configuration:")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (RIOT_API_KEY, RIOTSTATS_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (default locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		fatal("configuration validation failed", err)
	}

	// Check that the data and log directories are usable
	var errs []string
	if cfg.Data.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Data.BaseDirectory, 0755); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create data directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration has errors:")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
		os.Exit(1)
	}

	fmt.Println("Configuration is valid")
	fmt.Println("\nSummary:")
	fmt.Printf("  Region: %s\n", cfg.Riot.Region)
	fmt.Printf("  API key: %s\n", cfg.MaskedAPIKey())
	fmt.Printf("  Rate limit: %d/s, %d per %s\n",
		cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Workers: %d\n", cfg.Collection.Workers)
	fmt.Printf("  Data directory: %s\n", cfg.Data.BaseDirectory)
}
