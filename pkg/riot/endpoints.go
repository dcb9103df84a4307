package riot

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// MaxMatchCount is the API's cap on match IDs per request
	MaxMatchCount = 100

	// DefaultMatchCount is the number of match IDs fetched when the
	// caller does not say otherwise
	DefaultMatchCount = 20

	// QueueRankedSolo and QueueRankedFlex are the common queue filters
	QueueRankedSolo = 420
	QueueRankedFlex = 440

	// DefaultLeagueQueue is the queue used for league lookups
	DefaultLeagueQueue = "RANKED_SOLO_5x5"
)

// AccountByRiotIDURL constructs the URL for looking up an account by
// Riot ID (game name + tag line). Uses the continental routing host.
func AccountByRiotIDURL(regionalURL, gameName, tagLine string) string {
	return fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		regionalURL, url.PathEscape(gameName), url.PathEscape(tagLine))
}

// SummonerByNameURL constructs the URL for looking up a summoner by name.
//
// Deprecated upstream: the by-name endpoint no longer resolves all
// accounts. Prefer AccountByRiotIDURL plus SummonerByPUUIDURL.
func SummonerByNameURL(platformURL, name string) string {
	return fmt.Sprintf("%s/lol/summoner/v4/summoners/by-name/%s",
		platformURL, url.PathEscape(name))
}

// SummonerByPUUIDURL constructs the URL for looking up a summoner by PUUID
func SummonerByPUUIDURL(platformURL, puuid string) string {
	return fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s",
		platformURL, url.PathEscape(puuid))
}

// MatchIDsQuery holds the optional filters for a match-ID listing
type MatchIDsQuery struct {
	Start int
	Count int
	// Queue filters by queue ID; zero means no filter
	Queue int
	// Type filters by match type; empty means no filter
	Type string
}

// Values encodes the query, clamping Count to the API maximum.
func (q MatchIDsQuery) Values() url.Values {
	count := q.Count
	if count <= 0 {
		count = DefaultMatchCount
	}
	if count > MaxMatchCount {
		count = MaxMatchCount
	}

	params := url.Values{}
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("count", strconv.Itoa(count))
	if q.Queue > 0 {
		params.Set("queue", strconv.Itoa(q.Queue))
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	return params
}

// MatchIDsURL constructs the URL for listing a player's match IDs
func MatchIDsURL(regionalURL, puuid string) string {
	return fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids",
		regionalURL, url.PathEscape(puuid))
}

// MatchURL constructs the URL for fetching one match by ID
// (format REGION_MATCHID, e.g. "NA1_1234567890")
func MatchURL(regionalURL, matchID string) string {
	return fmt.Sprintf("%s/lol/match/v5/matches/%s",
		regionalURL, url.PathEscape(matchID))
}

// MatchTimelineURL constructs the URL for a match's timeline
func MatchTimelineURL(regionalURL, matchID string) string {
	return fmt.Sprintf("%s/lol/match/v5/matches/%s/timeline",
		regionalURL, url.PathEscape(matchID))
}

// RankedEntriesURL constructs the URL for a summoner's ranked entries
func RankedEntriesURL(platformURL, summonerID string) string {
	return fmt.Sprintf("%s/lol/league/v4/entries/by-summoner/%s",
		platformURL, url.PathEscape(summonerID))
}

// ChallengerLeagueURL constructs the URL for the Challenger league of a queue
func ChallengerLeagueURL(platformURL, queue string) string {
	if queue == "" {
		queue = DefaultLeagueQueue
	}
	return fmt.Sprintf("%s/lol/league/v4/challengerleagues/by-queue/%s",
		platformURL, url.PathEscape(queue))
}
