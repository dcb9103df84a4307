package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"riotstats/pkg/riot"
)

var checkRiotID string

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the API key and connection",
	Long: `Verify that the configured Riot API key works by walking the full
lookup chain: account resolution, summoner lookup, match history and
one match fetch.

By default a well-known account is used; pass --riot-id to check
against a specific player instead.`,
	Example: `  # Check with the default account
  riotstats check

  # Check against a specific player
  riotstats check --riot-id "Doublelift#NA1"`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkRiotID, "riot-id", "Doublelift#NA1", "Riot ID to resolve (GameName#TagLine)")
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		fatal("failed to load configuration", err)
	}

	client, err := newRiotClient(cfg)
	if err != nil {
		fatal("failed to create API client", err)
	}

	gameName, tagLine, err := splitRiotID(checkRiotID)
	if err != nil {
		fatal("invalid Riot ID", err)
	}

	ctx := context.Background()

	fmt.Printf("Checking API connection (region: %s, key: %s)\n\n", cfg.Riot.Region, cfg.MaskedAPIKey())

	fmt.Printf("1. Resolving account %s#%s... ", gameName, tagLine)
	account, err := client.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		fmt.Println("FAILED")
		fatal("account lookup failed", err)
	}
	fmt.Println("OK")

	fmt.Print("2. Fetching summoner... ")
	summoner, err := client.SummonerByPUUID(ctx, account.PUUID)
	if err != nil {
		fmt.Println("FAILED")
		fatal("summoner lookup failed", err)
	}
	fmt.Printf("OK (level %d)\n", summoner.SummonerLevel)

	fmt.Print("3. Listing recent matches... ")
	ids, err := client.MatchIDs(ctx, account.PUUID, riot.MatchIDsQuery{Count: 5})
	if err != nil {
		fmt.Println("FAILED")
		fatal("match listing failed", err)
	}
	fmt.Printf("OK (%d matches)\n", len(ids))

	if len(ids) > 0 {
		fmt.Printf("4. Fetching match %s... ", ids[0])
		match, err := client.Match(ctx, ids[0])
		if err != nil {
			fmt.Println("FAILED")
			fatal("match fetch failed", err)
		}
		fmt.Printf("OK (%s, %d participants)\n", match.Info.GameMode, len(match.Info.Participants))
	}

	fmt.Println("\nAPI connection is working.")
}

// splitRiotID parses "GameName#TagLine"
func splitRiotID(riotID string) (gameName, tagLine string, err error) {
	parts := strings.SplitN(riotID, "#", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected GameName#TagLine, got %q", riotID)
	}
	return parts[0], parts[1], nil
}
