package riot

import (
	"context"
	"encoding/json"
	"fmt"

	apierrors "riotstats/pkg/errors"
)

// AccountByRiotID looks up an account by Riot ID (game name + tag line).
// This is the recommended way to resolve players.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	c.logger.InfoWithFields("fetching account", map[string]interface{}{
		"game_name": gameName,
		"tag_line":  tagLine,
	})

	var account Account
	if err := c.getJSON(ctx, AccountByRiotIDURL(c.regionalURL, gameName, tagLine), nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SummonerByName looks up a summoner by in-game name.
//
// Deprecated upstream: may not resolve all accounts. Prefer
// AccountByRiotID plus SummonerByPUUID.
func (c *Client) SummonerByName(ctx context.Context, name string) (*Summoner, error) {
	c.logger.InfoWithFields("fetching summoner", map[string]interface{}{
		"summoner": name,
	})

	var summoner Summoner
	if err := c.getJSON(ctx, SummonerByNameURL(c.platformURL, name), nil, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// SummonerByPUUID looks up a summoner by PUUID
func (c *Client) SummonerByPUUID(ctx context.Context, puuid string) (*Summoner, error) {
	var summoner Summoner
	if err := c.getJSON(ctx, SummonerByPUUIDURL(c.platformURL, puuid), nil, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// MatchIDs lists match IDs for a player, newest first. Count is clamped
// to the API maximum of 100.
func (c *Client) MatchIDs(ctx context.Context, puuid string, q MatchIDsQuery) ([]string, error) {
	c.logger.InfoWithFields("fetching match ids", map[string]interface{}{
		"puuid": truncate(puuid, 8),
		"start": q.Start,
		"count": q.Count,
	})

	body, err := c.execute(ctx, MatchIDsURL(c.regionalURL, puuid), q.Values())
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, &apierrors.Error{
			Kind:    apierrors.KindMalformed,
			Message: fmt.Sprintf("expected a list of match IDs: %v", err),
		}
	}
	return ids, nil
}

// Match fetches detailed match information by ID
func (c *Client) Match(ctx context.Context, matchID string) (*Match, error) {
	c.logger.InfoWithFields("fetching match", map[string]interface{}{
		"match_id": matchID,
	})

	var match Match
	if err := c.getJSON(ctx, MatchURL(c.regionalURL, matchID), nil, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// MatchRaw fetches a match and returns the raw JSON body, for callers
// that persist matches without interpreting them.
func (c *Client) MatchRaw(ctx context.Context, matchID string) (json.RawMessage, error) {
	body, err := c.execute(ctx, MatchURL(c.regionalURL, matchID), nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &apierrors.Error{
			Kind:    apierrors.KindMalformed,
			Message: fmt.Sprintf("match %s: response is not valid JSON", matchID),
		}
	}
	return body, nil
}

// MatchTimeline fetches the frame-by-frame timeline of a match
func (c *Client) MatchTimeline(ctx context.Context, matchID string) (*MatchTimeline, error) {
	var timeline MatchTimeline
	if err := c.getJSON(ctx, MatchTimelineURL(c.regionalURL, matchID), nil, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// RankedEntries returns the ranked entries for a summoner, one per
// queue. An object-shaped body (the API occasionally answers errors
// this way) is logged and treated as no entries.
func (c *Client) RankedEntries(ctx context.Context, summonerID string) ([]LeagueEntry, error) {
	body, err := c.execute(ctx, RankedEntriesURL(c.platformURL, summonerID), nil)
	if err != nil {
		return nil, err
	}

	var entries []LeagueEntry
	if err := json.Unmarshal(body, &entries); err == nil {
		return entries, nil
	}

	var object map[string]interface{}
	if err := json.Unmarshal(body, &object); err == nil {
		c.logger.WarnWithFields("expected a list of ranked entries, got an object", map[string]interface{}{
			"summoner_id": summonerID,
		})
		return []LeagueEntry{}, nil
	}

	return nil, &apierrors.Error{
		Kind:    apierrors.KindMalformed,
		Message: "expected a list of ranked entries",
	}
}

// ChallengerLeague fetches the Challenger league for a queue. An empty
// queue defaults to ranked solo.
func (c *Client) ChallengerLeague(ctx context.Context, queue string) (*League, error) {
	var league League
	if err := c.getJSON(ctx, ChallengerLeagueURL(c.platformURL, queue), nil, &league); err != nil {
		return nil, err
	}
	return &league, nil
}

// RecentMatches resolves a Riot ID and fetches that player's most
// recent matches. Individual match failures are logged and skipped.
func (c *Client) RecentMatches(ctx context.Context, gameName, tagLine string, count int) ([]*Match, error) {
	account, err := c.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		return nil, fmt.Errorf("resolving %s#%s: %w", gameName, tagLine, err)
	}

	ids, err := c.MatchIDs(ctx, account.PUUID, MatchIDsQuery{Count: count})
	if err != nil {
		return nil, err
	}

	matches := make([]*Match, 0, len(ids))
	for i, id := range ids {
		c.logger.InfoWithFields("fetching match details", map[string]interface{}{
			"match_id": id,
			"progress": fmt.Sprintf("%d/%d", i+1, len(ids)),
		})

		match, err := c.Match(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return matches, ctx.Err()
			}
			c.logger.ErrorWithFields("failed to fetch match", map[string]interface{}{
				"match_id": id,
				"error":    err.Error(),
			})
			continue
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// CheckConnection verifies the API key works by resolving a well-known
// account.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, err := c.AccountByRiotID(ctx, "Doublelift", "NA1")
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
