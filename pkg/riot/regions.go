package riot

import (
	"fmt"
	"sort"
	"strings"
)

// platformHosts maps a platform region code to its shard host. Platform
// endpoints (summoner, league) are scoped to a specific game server.
var platformHosts = map[string]string{
	"br1":  "https://br1.api.riotgames.com",
	"eun1": "https://eun1.api.riotgames.com",
	"euw1": "https://euw1.api.riotgames.com",
	"jp1":  "https://jp1.api.riotgames.com",
	"kr":   "https://kr.api.riotgames.com",
	"la1":  "https://la1.api.riotgames.com",
	"la2":  "https://la2.api.riotgames.com",
	"na1":  "https://na1.api.riotgames.com",
	"oc1":  "https://oc1.api.riotgames.com",
	"ru":   "https://ru.api.riotgames.com",
	"tr1":  "https://tr1.api.riotgames.com",
}

// regionalHosts maps a continental routing value to its host. Account and
// match endpoints are scoped to one of three geographic groupings.
var regionalHosts = map[string]string{
	"americas": "https://americas.api.riotgames.com",
	"europe":   "https://europe.api.riotgames.com",
	"asia":     "https://asia.api.riotgames.com",
}

// platformToContinent maps each platform to its continental routing value
var platformToContinent = map[string]string{
	"na1": "americas", "br1": "americas", "la1": "americas", "la2": "americas",
	"euw1": "europe", "eun1": "europe", "tr1": "europe", "ru": "europe",
	"kr": "asia", "jp1": "asia", "oc1": "asia",
}

// Routing resolves a platform region code to its platform host and
// continental routing host. An unknown code fails with an error listing
// the valid codes.
func Routing(region string) (platformURL, regionalURL string, err error) {
	region = strings.ToLower(region)

	platformURL, ok := platformHosts[region]
	if !ok {
		return "", "", fmt.Errorf("invalid region %q, must be one of %s",
			region, strings.Join(ValidRegions(), ", "))
	}

	regionalURL = regionalHosts[platformToContinent[region]]
	return platformURL, regionalURL, nil
}

// ValidRegions returns the accepted platform region codes, sorted.
func ValidRegions() []string {
	regions := make([]string, 0, len(platformHosts))
	for region := range platformHosts {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
