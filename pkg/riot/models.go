package riot

import "encoding/json"

// Account identifies a player by Riot ID across all games
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner represents a League of Legends summoner on one platform
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// LeagueEntry represents one ranked queue entry for a summoner
type LeagueEntry struct {
	LeagueID     string `json:"leagueId"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	Veteran      bool   `json:"veteran"`
}

// League represents a whole league (e.g. the Challenger ladder)
type League struct {
	LeagueID string        `json:"leagueId"`
	Tier     string        `json:"tier"`
	Name     string        `json:"name"`
	Queue    string        `json:"queue"`
	Entries  []LeagueEntry `json:"entries"`
}

// Match is a single game. Only the fields the collector needs are
// modelled; the raw body is preserved when matches are persisted.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata identifies a match and its participants
type MatchMetadata struct {
	DataVersion  string   `json:"dataVersion"`
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

// MatchInfo holds the game-level details of a match
type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"`
	GameDuration int64         `json:"gameDuration"`
	GameMode     string        `json:"gameMode"`
	GameVersion  string        `json:"gameVersion"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
}

// Participant is one player's line in a match
type Participant struct {
	PUUID        string `json:"puuid"`
	SummonerName string `json:"summonerName"`
	ChampionName string `json:"championName"`
	TeamID       int    `json:"teamId"`
	Kills        int    `json:"kills"`
	Deaths       int    `json:"deaths"`
	Assists      int    `json:"assists"`
	Win          bool   `json:"win"`
}

// MatchTimeline is the frame-by-frame event record of a match. Frames
// are kept raw; nothing downstream interprets them.
type MatchTimeline struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     TimelineInfo  `json:"info"`
}

// TimelineInfo holds the timeline frames
type TimelineInfo struct {
	FrameInterval int64             `json:"frameInterval"`
	Frames        []json.RawMessage `json:"frames"`
}
