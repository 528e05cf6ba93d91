package metadata

import (
	"regexp"
	"strings"

	"animix/pkg/models"
)

var seasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bseason\s*\d+\b`),
	regexp.MustCompile(`(?i)\bs\d+\b`),
	regexp.MustCompile(`(?i)\bpart\s*\d+\b`),
	regexp.MustCompile(`(?i)\bcour\s*\d+\b`),
	regexp.MustCompile(`(?i)\b(2nd|3rd|4th|5th)\s*season\b`),
	regexp.MustCompile(`(?i)\bsecond\s*season\b`),
	regexp.MustCompile(`(?i)\bthird\s*season\b`),
	regexp.MustCompile(`(?i)\bfourth\s*season\b`),
	regexp.MustCompile(`(?i)\bfifth\s*season\b`),
}

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(.*?\)`),
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`(?i)\b(sub|dub|indo|indonesia|subtitle|subbed|dubbed)\b`),
	regexp.MustCompile(`(?i)\b(tv|movie|ova|ona|special|episode|episodes|eps)\b`),
	regexp.MustCompile(`(?i)\b(season|part|cour)\b`),
}

var (
	spacesRe      = regexp.MustCompile(`\s+`)
	punctRe       = regexp.MustCompile(`[^\w\s]`)
	episodeTailRe = regexp.MustCompile(`-episode-\d+$`)
)

func collapse(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// RemoveSeasonTokens strips season markers ("season 2", "s2", "part 3",
// "cour 1", ordinal-word seasons) out of a title.
func RemoveSeasonTokens(s string) string {
	for _, re := range seasonPatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return collapse(s)
}

// RemoveNoiseTokens strips bracketed text and release-noise words.
func RemoveNoiseTokens(s string) string {
	for _, re := range noisePatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return collapse(s)
}

// BuildSearchCandidates produces the ordered, de-duplicated query list
// tried against the external metadata service. The raw title comes first,
// progressively more aggressive cleanups follow, and a humanized slug
// closes the list when one was supplied.
func BuildSearchCandidates(title, slug string) []string {
	var candidates []string
	seen := make(map[string]struct{})
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		candidates = append(candidates, value)
	}

	add(title)
	add(RemoveSeasonTokens(title))
	add(RemoveNoiseTokens(title))
	add(RemoveNoiseTokens(RemoveSeasonTokens(title)))

	stripped := collapse(punctRe.ReplaceAllString(title, " "))
	add(stripped)
	add(RemoveSeasonTokens(stripped))
	add(RemoveNoiseTokens(stripped))
	add(RemoveNoiseTokens(RemoveSeasonTokens(stripped)))

	if slug != "" {
		slugBase := strings.ReplaceAll(episodeTailRe.ReplaceAllString(slug, ""), "-", " ")
		add(slugBase)
		add(RemoveSeasonTokens(slugBase))
		add(RemoveNoiseTokens(slugBase))
	}

	return candidates
}

// BestMatchIndex picks the best result for a query among candidate
// titles: exact normalized equality wins immediately, otherwise the count
// of query words appearing as substrings of the normalized title decides,
// earliest seen winning ties. Returns -1 for an empty list.
func BestMatchIndex(query string, titles []string) int {
	if len(titles) == 0 {
		return -1
	}
	normQuery := models.NormalizeTitle(query)
	words := strings.Fields(normQuery)

	best := 0
	bestScore := -1
	for i, title := range titles {
		normTitle := models.NormalizeTitle(title)
		if normTitle == "" {
			continue
		}
		if normTitle == normQuery {
			return i
		}
		score := 0
		for _, word := range words {
			if strings.Contains(normTitle, word) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}
