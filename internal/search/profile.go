package search

import (
	"strings"
)

// QualityTier is one rung of a profile's quality ladder.
type QualityTier struct {
	ID      int
	Name    string
	Enabled bool
	Order   int
	Score   int
}

// Profile is a user-owned quality profile, read-only to this pipeline.
type Profile struct {
	Name              string
	Default           bool
	UpgradesAllowed   bool
	UpgradeUntil      string
	MinFormatScore    int
	UpgradeUntilScore int
	Tiers             []QualityTier
}

// EnabledTiers returns the profile's enabled tiers in ladder order.
func (p Profile) EnabledTiers() []QualityTier {
	var tiers []QualityTier
	for _, t := range p.Tiers {
		if t.Enabled {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// sourceSynonyms maps a source keyword appearing in a tier name to the
// title tokens that satisfy it.
var sourceSynonyms = map[string][]string{
	"web":    {"web", "web-dl", "webdl", "webrip", "web-rip"},
	"webdl":  {"web-dl", "webdl"},
	"webrip": {"webrip", "web-rip"},
	"bluray": {"bluray", "blu-ray", "bdrip", "brrip"},
	"remux":  {"remux"},
	"hdtv":   {"hdtv"},
	"dvd":    {"dvd", "dvdrip"},
}

var tierResolutions = []string{"2160", "1440", "1080", "720", "480"}

// TierMatches reports whether a release title satisfies a quality
// tier's keyword heuristic. A tier named "WEB 1080p" requires both the
// resolution substring and one of the web source tokens; a tier naming
// only one of the two requires just that one.
func TierMatches(tier QualityTier, title string) bool {
	tierName := strings.ToLower(tier.Name)
	titleLower := strings.ToLower(title)

	var wantResolution string
	for _, res := range tierResolutions {
		if strings.Contains(tierName, res) {
			wantResolution = res
			break
		}
	}

	// Longest keyword wins so "webrip" in a tier name is not treated
	// as bare "web".
	var sourceKeyword string
	for keyword := range sourceSynonyms {
		if strings.Contains(tierName, keyword) && len(keyword) > len(sourceKeyword) {
			sourceKeyword = keyword
		}
	}

	if wantResolution == "" && sourceKeyword == "" {
		// Tier name carries no recognizable constraint; match anything.
		return true
	}

	if wantResolution != "" && !strings.Contains(titleLower, wantResolution) {
		return false
	}

	if sourceKeyword != "" {
		found := false
		for _, token := range sourceSynonyms[sourceKeyword] {
			if strings.Contains(titleLower, token) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
