package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for riotstats
type Config struct {
	// Riot API settings
	Riot RiotConfig `yaml:"riot" json:"riot"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behaviour for failed requests
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Data collection settings
	Collection CollectionConfig `yaml:"collection" json:"collection"`

	// Dataset directory layout
	Data DataConfig `yaml:"data" json:"data"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RiotConfig holds Riot API credentials and routing
type RiotConfig struct {
	APIKey  string        `yaml:"api_key" json:"api_key"`
	Region  string        `yaml:"region" json:"region"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds the two published API quotas
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerSecond int           `yaml:"requests_per_second" json:"requests_per_second"`
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
}

// RetryConfig holds the retry budget for transient failures
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
}

// CollectionConfig holds match collection settings
type CollectionConfig struct {
	MatchesPerPlayer int    `yaml:"matches_per_player" json:"matches_per_player"`
	MaxMatchesPerRun int    `yaml:"max_matches_per_run" json:"max_matches_per_run"`
	TargetRank       string `yaml:"target_rank" json:"target_rank"`
	Workers          int    `yaml:"workers" json:"workers"`
}

// DataConfig holds the dataset directory layout
type DataConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ValidRanks are the ranked tiers accepted for target_rank
var ValidRanks = []string{
	"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM",
	"DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER",
}

// validRegions mirrors the platform routing table in pkg/riot. The list
// is duplicated here so config stays a leaf package below pkg/logger.
var validRegions = []string{
	"br1", "eun1", "euw1", "jp1", "kr", "la1", "la2", "na1", "oc1", "ru", "tr1",
}

// DefaultConfig returns a Config instance with the Riot developer-key
// defaults: 20 requests/s, 100 requests per 2 minutes, 3 retries.
func DefaultConfig() *Config {
	return &Config{
		Riot: RiotConfig{
			Region:  "na1",
			Timeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			RequestsPerWindow: 100,
			Window:            2 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
		},
		Collection: CollectionConfig{
			MatchesPerPlayer: 20,
			MaxMatchesPerRun: 1000,
			TargetRank:       "DIAMOND",
			Workers:          3,
		},
		Data: DataConfig{
			BaseDirectory: "./data",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// RIOT_API_KEY is the name the developer portal documentation uses;
	// the RIOTSTATS_ prefixed form wins when both are set.
	if key := os.Getenv("RIOT_API_KEY"); key != "" {
		c.Riot.APIKey = key
	}
	if key := os.Getenv("RIOTSTATS_API_KEY"); key != "" {
		c.Riot.APIKey = key
	}
	if region := os.Getenv("RIOTSTATS_REGION"); region != "" {
		c.Riot.Region = region
	} else if region := os.Getenv("RIOT_REGION"); region != "" {
		c.Riot.Region = region
	}

	if rps := os.Getenv("RIOTSTATS_REQUESTS_PER_SECOND"); rps != "" {
		var val int
		fmt.Sscanf(rps, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerSecond = val
		}
	}
	if rpw := os.Getenv("RIOTSTATS_REQUESTS_PER_2_MINUTES"); rpw != "" {
		var val int
		fmt.Sscanf(rpw, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerWindow = val
		}
	}

	if retries := os.Getenv("RIOTSTATS_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val > 0 {
			c.Retry.MaxAttempts = val
		}
	}

	if rank := os.Getenv("RIOTSTATS_TARGET_RANK"); rank != "" {
		c.Collection.TargetRank = strings.ToUpper(rank)
	}
	if dataDir := os.Getenv("RIOTSTATS_DATA_DIR"); dataDir != "" {
		c.Data.BaseDirectory = dataDir
	}
	if logLevel := os.Getenv("RIOTSTATS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".riotstats.yaml",
		".riotstats.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "riotstats", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "riotstats", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".riotstats.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Riot.APIKey == "" {
		errs = append(errs, errors.New("Riot API key is required (set RIOT_API_KEY or riot.api_key)"))
	} else if c.Riot.APIKey == "your_riot_api_key_here" {
		errs = append(errs, errors.New("Riot API key still has its placeholder value"))
	}

	region := strings.ToLower(c.Riot.Region)
	if !contains(validRegions, region) {
		errs = append(errs, fmt.Errorf("invalid region %q, must be one of %s",
			c.Riot.Region, strings.Join(sortedRegions(), ", ")))
	}

	if c.Riot.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests per second must be positive"))
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("requests per window must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}

	if c.Collection.MatchesPerPlayer <= 0 {
		errs = append(errs, errors.New("matches per player must be positive"))
	}
	if !contains(ValidRanks, strings.ToUpper(c.Collection.TargetRank)) {
		errs = append(errs, fmt.Errorf("target rank must be one of %s", strings.Join(ValidRanks, ", ")))
	}
	if c.Collection.Workers <= 0 || c.Collection.Workers > 10 {
		errs = append(errs, errors.New("workers must be between 1 and 10"))
	}

	if c.Data.BaseDirectory == "" {
		errs = append(errs, errors.New("data directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may contain the API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Riot.APIKey = apiKey
	}
	if region, ok := flags["region"].(string); ok && region != "" {
		c.Riot.Region = region
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Data.BaseDirectory = dataDir
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Collection.Workers = workers
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".riotstats.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	config.Riot.Region = strings.ToLower(config.Riot.Region)
	config.Collection.TargetRank = strings.ToUpper(config.Collection.TargetRank)

	return config, nil
}

// MaskedAPIKey returns the API key with everything past a short prefix
// hidden, for display and diagnostics.
func (c *Config) MaskedAPIKey() string {
	return MaskKey(c.Riot.APIKey)
}

// MaskKey masks all but a bounded-length prefix of a credential.
func MaskKey(key string) string {
	if key == "" {
		return "NOT SET"
	}
	if len(key) <= 10 {
		return "**********"
	}
	return key[:10] + "..."
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedRegions() []string {
	out := make([]string, len(validRegions))
	copy(out, validRegions)
	sort.Strings(out)
	return out
}
