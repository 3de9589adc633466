// Package filename extracts season, episode, quality and volume/chapter
// tokens from media filenames.
//
// Each token is resolved by an ordered list of rules. The first rule whose
// pattern matches wins and later rules are never consulted, so specific
// patterns sit above loose fallbacks.
package filename

import (
	"regexp"

	"github.com/easayliu/tg-autorename/pkg/logger"
)

// UnknownQuality is returned when no quality rule matches.
const UnknownQuality = "Unknown"

// Rule is a single step of a cascade.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// Extract picks the token out of a submatch slice; an empty result
	// counts as no match.
	Extract func(match []string) string
}

// Cascade is an ordered rule list evaluated first-match-wins.
type Cascade []Rule

// Match returns the value and rule name of the first matching rule.
func (c Cascade) Match(name string) (string, string, bool) {
	for _, rule := range c {
		m := rule.Pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if v := rule.Extract(m); v != "" {
			return v, rule.Name, true
		}
	}
	return "", "", false
}

func group(i int) func([]string) string {
	return func(m []string) string {
		if i < len(m) {
			return m[i]
		}
		return ""
	}
}

func firstGroup(indexes ...int) func([]string) string {
	return func(m []string) string {
		for _, i := range indexes {
			if i < len(m) && m[i] != "" {
				return m[i]
			}
		}
		return ""
	}
}

func literal(v string) func([]string) string {
	return func([]string) string { return v }
}

var (
	// S01E02, S01EP02
	seasonEpisodePattern = regexp.MustCompile(`S(\d+)(?:E|EP)(\d+)`)
	// S01 E02, S01 EP02, S01 - EP02
	seasonSeparatedEpisodePattern = regexp.MustCompile(`S(\d+)\s*(?:E|EP|-\s*EP)(\d+)`)
	// E02, EP02, [EP 02], (E02)
	episodeMarkerPattern = regexp.MustCompile(`(?:[([<{]?\s*(?:E|EP)\s*(\d+)\s*[)\]>}]?)`)
	// - 02
	hyphenEpisodePattern = regexp.MustCompile(`(?:\s*-\s*(\d+)\s*)`)
	// S2 09
	looseSeasonPattern = regexp.MustCompile(`(?i)S(\d+)[^\d]*(\d+)`)
	bareDigitsPattern  = regexp.MustCompile(`(\d+)`)

	resolutionPattern = regexp.MustCompile(`(?i)\b(?:.*?(\d{3,4}[^\dp]*p).*?|.*?(\d{3,4}p))\b`)
	quality4kPattern  = regexp.MustCompile(`(?i)[([<{]?\s*4k\s*[)\]>}]?`)
	quality2kPattern  = regexp.MustCompile(`(?i)[([<{]?\s*2k\s*[)\]>}]?`)
	hdRipPattern      = regexp.MustCompile(`(?i)[([<{]?\s*HdRip\s*[)\]>}]?|\bHdRip\b`)
	x264Pattern       = regexp.MustCompile(`(?i)[([<{]?\s*4kX264\s*[)\]>}]?`)
	x265Pattern       = regexp.MustCompile(`(?i)[([<{]?\s*4kx265\s*[)\]>}]?`)

	volumeChapterPattern = regexp.MustCompile(`(?i)Vol(\d+)\s*-\s*Ch(\d+)`)
)

// EpisodeRules resolve the episode number.
var EpisodeRules = Cascade{
	{Name: "season-episode", Pattern: seasonEpisodePattern, Extract: group(2)},
	{Name: "season-separated-episode", Pattern: seasonSeparatedEpisodePattern, Extract: group(2)},
	{Name: "episode-marker", Pattern: episodeMarkerPattern, Extract: group(1)},
	{Name: "hyphen-number", Pattern: hyphenEpisodePattern, Extract: group(1)},
	{Name: "loose-season", Pattern: looseSeasonPattern, Extract: group(2)},
	{Name: "bare-digits", Pattern: bareDigitsPattern, Extract: group(1)},
}

// SeasonRules resolve the season number. Season is optional.
var SeasonRules = Cascade{
	{Name: "season-episode", Pattern: seasonEpisodePattern, Extract: group(1)},
	{Name: "loose-season", Pattern: looseSeasonPattern, Extract: group(1)},
}

// QualityRules resolve the quality label. 4kX264 and 4kx265 sit below the
// plain 4k rule and are kept for parity with existing user templates.
var QualityRules = Cascade{
	{Name: "resolution", Pattern: resolutionPattern, Extract: firstGroup(1, 2)},
	{Name: "4k", Pattern: quality4kPattern, Extract: literal("4k")},
	{Name: "2k", Pattern: quality2kPattern, Extract: literal("2k")},
	{Name: "hdrip", Pattern: hdRipPattern, Extract: literal("HdRip")},
	{Name: "4kx264", Pattern: x264Pattern, Extract: literal("4kX264")},
	{Name: "4kx265", Pattern: x265Pattern, Extract: literal("4kx265")},
}

// Tokens holds the values derived from a filename. Empty means absent.
type Tokens struct {
	Season  string
	Episode string
	Quality string
	Volume  string
	Chapter string
}

// HasVolumeChapter reports whether both halves of the pair were found.
func (t Tokens) HasVolumeChapter() bool {
	return t.Volume != "" && t.Chapter != ""
}

// QualityKnown reports whether a quality rule matched.
func (t Tokens) QualityKnown() bool {
	return t.Quality != "" && t.Quality != UnknownQuality
}

// ExtractEpisode returns the episode number, or "" when nothing matches.
func ExtractEpisode(name string) string {
	return matchLogged(EpisodeRules, "episode", name)
}

// ExtractSeason returns the season number, or "".
func ExtractSeason(name string) string {
	return matchLogged(SeasonRules, "season", name)
}

// ExtractQuality returns the quality label or UnknownQuality.
func ExtractQuality(name string) string {
	if v := matchLogged(QualityRules, "quality", name); v != "" {
		return v
	}
	return UnknownQuality
}

// ExtractVolumeChapter returns both numbers of a "Vol<N> - Ch<M>" marker, or
// two empty strings.
func ExtractVolumeChapter(name string) (string, string) {
	m := volumeChapterPattern.FindStringSubmatch(name)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// Extract derives all tokens for name. Quality is left empty when
// skipQuality is set (document-exempt files).
func Extract(name string, skipQuality bool) Tokens {
	t := Tokens{
		Episode: ExtractEpisode(name),
		Season:  ExtractSeason(name),
	}
	t.Volume, t.Chapter = ExtractVolumeChapter(name)
	if !skipQuality {
		t.Quality = ExtractQuality(name)
	}
	return t
}

func matchLogged(c Cascade, field, name string) string {
	v, rule, ok := c.Match(name)
	if !ok {
		return ""
	}
	logger.Debug("filename rule matched", "field", field, "rule", rule, "value", v)
	return v
}
