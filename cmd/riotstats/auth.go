package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"riotstats/pkg/auth"
)

var authProfile string

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Riot API keys",
	Long: `Manage Riot API keys securely.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (RIOT_API_KEY, read-only)

Development keys from https://developer.riotgames.com expire every
24 hours; run 'riotstats auth set' again with the refreshed key.`,
}

// authSetCmd represents the auth set command
var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a Riot API key securely",
	Long: `Store a Riot API key in the system keychain or encrypted file.

The key is read from the terminal without echoing. Get a key from
https://developer.riotgames.com after signing in with your Riot account.`,
	Example: `  # Store under the default profile
  riotstats auth set

  # Store under a named profile
  riotstats auth set --profile production`,
	Run: runAuthSet,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored key profiles",
	Long:  `List stored API key profiles with the key values masked.`,
	Run:   runAuthList,
}

// authRemoveCmd represents the auth remove command
var authRemoveCmd = &cobra.Command{
	Use:   "remove [profile]",
	Short: "Remove a stored key",
	Long: `Remove a stored API key. With no profile argument the default
profile is removed.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)

	authSetCmd.Flags().StringVar(&authProfile, "profile", auth.DefaultProfile, "profile name to store the key under")
}

func runAuthSet(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatal("failed to initialize credential manager", err)
	}

	reader := bufio.NewReader(os.Stdin)

	// Confirm overwrite of an existing profile
	if existing, _ := manager.Retrieve(authProfile); existing != nil {
		fmt.Printf("Profile '%s' already holds a key (%s). Replace it? (y/N): ",
			authProfile, auth.MaskKey(existing.APIKey))
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Riot API key (input hidden): ")
	apiKey, err := readSecret()
	if err != nil {
		fatal("failed to read API key", err)
	}
	apiKey = strings.TrimSpace(apiKey)

	if apiKey == "" {
		fatal("API key is required", nil)
	}
	if !strings.HasPrefix(apiKey, "RGAPI-") {
		fmt.Println("Warning: Riot keys normally start with 'RGAPI-'; storing anyway.")
	}

	fmt.Print("Default region for this key (press Enter for na1): ")
	keyRegion, _ := reader.ReadString('\n')
	keyRegion = strings.ToLower(strings.TrimSpace(keyRegion))
	if keyRegion == "" {
		keyRegion = "na1"
	}

	key := &auth.Key{
		Profile: authProfile,
		APIKey:  apiKey,
		Region:  keyRegion,
	}

	if err := manager.Store(key); err != nil {
		fatal("failed to store key", err)
	}

	fmt.Printf("Stored key %s under profile '%s' (region: %s)\n",
		auth.MaskKey(apiKey), authProfile, keyRegion)
	fmt.Println("\nVerify it works with:")
	fmt.Println("  riotstats check")
}

func runAuthList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatal("failed to initialize credential manager", err)
	}

	keys, err := manager.List()
	if err != nil {
		fatal("failed to list keys", err)
	}

	if len(keys) == 0 {
		fmt.Println("No stored keys. Use 'riotstats auth set' to add one.")
		return
	}

	fmt.Println("Stored API keys:")
	for _, key := range keys {
		sanitized := auth.Sanitize(key)
		fmt.Printf("  %s: %s (region: %s, updated: %s)\n",
			sanitized.Profile, sanitized.APIKey, sanitized.Region,
			sanitized.LastModified.Format("2006-01-02 15:04"))
	}
}

func runAuthRemove(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatal("failed to initialize credential manager", err)
	}

	profile := auth.DefaultProfile
	if len(args) > 0 {
		profile = args[0]
	}

	if err := manager.Delete(profile); err != nil {
		fatal("failed to remove key", err)
	}
	fmt.Printf("Removed key for profile '%s'\n", profile)
}

// readSecret reads a line from stdin without echoing when possible
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after hidden input
		if err == nil {
			return string(secret), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
