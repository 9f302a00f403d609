package release

import (
	"regexp"
	"strconv"
	"strings"
)

// Attribute rules are evaluated in declaration order and the first match
// wins within each category. Resolution is always classified before
// source so tokens like "2160p" are never consumed by a source rule.
type rule[T any] struct {
	re    *regexp.Regexp
	value T
}

var resolutionRules = []rule[Resolution]{
	{regexp.MustCompile(`(?i)\b(2160p|4k|uhd)\b`), Resolution2160p},
	{regexp.MustCompile(`(?i)\b1080p\b`), Resolution1080p},
	{regexp.MustCompile(`(?i)\b720p\b`), Resolution720p},
	{regexp.MustCompile(`(?i)\b480p\b`), Resolution480p},
}

var sourceRules = []rule[Source]{
	{regexp.MustCompile(`(?i)\b(blu[- ]?ray|bdrip|brrip|bd)\b`), SourceBluRay},
	{regexp.MustCompile(`(?i)\b(web[- ]?dl|webdl)\b`), SourceWEBDL},
	{regexp.MustCompile(`(?i)\b(web[- ]?rip)\b`), SourceWEBRip},
	// Bare "WEB" means WEB-DL in practice; checked after the rip variants.
	{regexp.MustCompile(`(?i)\bweb\b`), SourceWEBDL},
	{regexp.MustCompile(`(?i)\b(hdtv|pdtv|sdtv)\b`), SourceHDTV},
	{regexp.MustCompile(`(?i)\b(dvdrip|dvd)\b`), SourceDVD},
	{regexp.MustCompile(`(?i)\b(cam|camrip|hdcam)\b`), SourceCAM},
	{regexp.MustCompile(`(?i)\b(ts|telesync|hdts)\b`), SourceTelesync},
}

var codecRules = []rule[Codec]{
	{regexp.MustCompile(`(?i)\b(x265|h[. ]?265|hevc)\b`), CodecX265},
	{regexp.MustCompile(`(?i)\b(x264|h[. ]?264|avc)\b`), CodecX264},
	{regexp.MustCompile(`(?i)\b(xvid|divx)\b`), CodecXvid},
	{regexp.MustCompile(`(?i)\bav1\b`), CodecAV1},
}

var audioRules = []rule[AudioCodec]{
	{regexp.MustCompile(`(?i)\batmos\b`), AudioAtmos},
	{regexp.MustCompile(`(?i)\btrue-?hd\b`), AudioTrueHD},
	{regexp.MustCompile(`(?i)\bdts[- ]?(hd|x)\b`), AudioDTSHD},
	{regexp.MustCompile(`(?i)\bdts\b`), AudioDTS},
	{regexp.MustCompile(`(?i)\b(eac-?3|e-?ac-?3|ddp|dd\+)`), AudioEAC3},
	{regexp.MustCompile(`(?i)\b(ac-?3|dd)[\. ]?[0-9]`), AudioAC3},
	{regexp.MustCompile(`(?i)\bac-?3\b`), AudioAC3},
	{regexp.MustCompile(`(?i)\bflac\b`), AudioFLAC},
	{regexp.MustCompile(`(?i)\bopus\b`), AudioOpus},
	// AAC often carries the channel count glued on ("AAC2.0")
	{regexp.MustCompile(`(?i)\baac(\b|[0-9])`), AudioAAC},
}

var hdrRules = []rule[HDRFormat]{
	{regexp.MustCompile(`(?i)\b(dv|dovi|dolby[ .]?vision)\b`), DolbyVision},
	{regexp.MustCompile(`(?i)\bhdr10\+|\bhdr10plus\b`), HDR10Plus},
	{regexp.MustCompile(`(?i)\bhdr10\b`), HDR10},
	{regexp.MustCompile(`(?i)\bhlg\b`), HLG},
	{regexp.MustCompile(`(?i)\bhdr\b`), HDRGeneric},
}

var (
	channelsRegex = regexp.MustCompile(`[2578]\.[01]\b`)
	bitDepthRegex = regexp.MustCompile(`(?i)\b(8|10)[- ]?bit\b`)
	yearRegex     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	episodeRegex  = regexp.MustCompile(`(?i)\bS(\d{1,2})[ .]?E(\d{1,3})\b`)
	groupRegex    = regexp.MustCompile(`-([A-Za-z0-9][A-Za-z0-9_]*)(?:\.[A-Za-z0-9]{2,4})?$`)
)

var editionRules = []rule[string]{
	{regexp.MustCompile(`(?i)\bdirector'?s[ .]cut\b`), "Directors Cut"},
	{regexp.MustCompile(`(?i)\bextended\b`), "Extended"},
	{regexp.MustCompile(`(?i)\bimax\b`), "IMAX"},
	{regexp.MustCompile(`(?i)\btheatrical\b`), "Theatrical"},
	{regexp.MustCompile(`(?i)\bunrated\b`), "Unrated"},
	{regexp.MustCompile(`(?i)\buncut\b`), "Uncut"},
	{regexp.MustCompile(`(?i)\bremastered\b`), "Remastered"},
}

// nonGroupSuffixes are trailing dash segments that are not release groups.
var nonGroupSuffixes = map[string]bool{
	"internal":   true,
	"sample":     true,
	"proof":      true,
	"repack":     true,
	"proper":     true,
	"rerip":      true,
	"nfofix":     true,
	"obfuscated": true,
}

func firstMatch[T any](name string, rules []rule[T], fallback T) T {
	for _, r := range rules {
		if r.re.MatchString(name) {
			return r.value
		}
	}
	return fallback
}

// Parse extracts structured attributes from a release name.
// It never fails; attributes that cannot be identified stay zero.
func Parse(name string) Info {
	info := Info{}

	// Dots and underscores are word separators in scene names.
	spaced := strings.ReplaceAll(name, ".", " ")
	spaced = strings.ReplaceAll(spaced, "_", " ")

	info.Resolution = firstMatch(spaced, resolutionRules, ResolutionUnknown)
	info.Source = firstMatch(spaced, sourceRules, SourceUnknown)
	info.Codec = firstMatch(spaced, codecRules, CodecUnknown)
	info.Audio = firstMatch(spaced, audioRules, AudioUnknown)
	info.HDR = firstMatch(spaced, hdrRules, HDRNone)
	info.Edition = firstMatch(spaced, editionRules, "")

	// Channel layouts keep their dot ("5.1"), so match the raw name.
	if m := channelsRegex.FindString(name); m != "" {
		info.AudioChannels = m
	}
	if m := bitDepthRegex.FindStringSubmatch(spaced); m != nil {
		info.BitDepth = m[1] + "bit"
	}

	info.Proper = containsWord(spaced, "proper")
	info.Repack = containsWord(spaced, "repack") || containsWord(spaced, "rerip")
	info.IsRemux = containsWord(spaced, "remux")

	// Season/episode before year: S01E05 style numbering wins.
	if m := episodeRegex.FindStringSubmatchIndex(spaced); m != nil {
		season, _ := strconv.Atoi(spaced[m[2]:m[3]])
		episode, _ := strconv.Atoi(spaced[m[4]:m[5]])
		info.Season = season
		info.Episode = episode
	}

	// Year and title: the title is everything before the year token
	// (or before the SxxExx token for episodic releases).
	titleEnd := len(spaced)
	if m := yearRegex.FindStringIndex(spaced); m != nil && m[0] > 0 {
		info.Year, _ = strconv.Atoi(spaced[m[0]:m[1]])
		titleEnd = m[0]
	}
	if m := episodeRegex.FindStringIndex(spaced); m != nil && m[0] < titleEnd {
		titleEnd = m[0]
	}
	info.Title = strings.TrimSpace(strings.Trim(spaced[:titleEnd], " -"))
	info.CleanTitle = CleanTitle(info.Title)

	info.Group = parseGroup(name)

	return info
}

// parseGroup extracts the release group using the trailing-dash heuristic.
// Known non-group suffixes (INTERNAL, SAMPLE, PROOF, ...) are skipped.
func parseGroup(name string) string {
	m := groupRegex.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	group := m[1]
	if nonGroupSuffixes[strings.ToLower(group)] {
		return ""
	}
	return group
}

func containsWord(spaced, word string) bool {
	lower := strings.ToLower(spaced)
	for _, f := range strings.Fields(lower) {
		if f == word {
			return true
		}
	}
	return false
}
