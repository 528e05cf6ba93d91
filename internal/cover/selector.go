// Package cover picks the best-quality image URL among the many candidate
// fields upstream payloads expose, using string heuristics only.
package cover

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder is served when no usable candidate exists.
const Placeholder = "/placeholder-manga.svg"

var (
	sizeRe        = regexp.MustCompile(`(\d{2,4})x(\d{2,4})`)
	smallDimRe    = regexp.MustCompile(`\b\d{2,3}x\d{2,3}\b`)
	smallSuffixRe = regexp.MustCompile(`-\d{2,3}x\d{2,3}\.`)
)

var badMarkers = []string{"lazy.jpg", "placeholder", "noimage", "default", "blank"}

// LikelyBad reports whether url looks like a lazy-load stub, a known
// placeholder, an SVG, or a fixed small-dimension thumbnail.
func LikelyBad(url string) bool {
	if url == "" {
		return true
	}
	lowered := strings.ToLower(url)
	for _, marker := range badMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	if strings.HasSuffix(lowered, ".svg") {
		return true
	}
	if smallDimRe.MatchString(lowered) {
		return true
	}
	return smallSuffixRe.MatchString(lowered)
}

// Upgrade rewrites a URL to its higher-resolution variant: the thumbnail
// CDN subdomain is swapped for the image one and resize params dropped.
func Upgrade(url string) string {
	if url == "" {
		return url
	}
	next := url
	if strings.Contains(next, "thumbnail.komiku.org") {
		next = strings.Replace(next, "thumbnail.komiku.org", "img.komiku.org", 1)
	}
	if strings.Contains(next, "?resize=") {
		next = strings.SplitN(next, "?", 2)[0]
	}
	return next
}

func qualityHint(url string) int {
	lowered := strings.ToLower(url)
	score := 0
	if strings.Contains(lowered, "thumbnail") || strings.Contains(lowered, "thumb") || strings.Contains(lowered, "small") {
		score -= 2
	}
	if strings.Contains(lowered, "large") || strings.Contains(lowered, "original") || strings.Contains(lowered, "full") {
		score++
	}
	return score
}

func extractSize(url string) (width, height int, ok bool) {
	m := sizeRe.FindStringSubmatch(url)
	if m == nil {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(m[1])
	h, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return w, h, true
}

// PickBetter compares two candidates: not-bad beats bad, then the quality
// hint decides, then the larger extracted pixel area, else current wins.
func PickBetter(current, candidate string) string {
	currentBad := LikelyBad(current)
	candidateBad := LikelyBad(candidate)
	if currentBad && !candidateBad {
		return candidate
	}
	if !currentBad && candidateBad {
		return current
	}

	currentHint := qualityHint(current)
	candidateHint := qualityHint(candidate)
	if currentHint != candidateHint {
		if candidateHint > currentHint {
			return candidate
		}
		return current
	}

	cw, ch, cok := extractSize(current)
	nw, nh, nok := extractSize(candidate)
	if cok && nok {
		if nw*nh > cw*ch {
			return candidate
		}
		return current
	}
	if !cok && nok {
		return candidate
	}
	if current == "" {
		return candidate
	}
	return current
}

// SelectBest folds over the candidate URLs plus their upgraded variants
// and returns the winner, or the placeholder when nothing usable exists.
func SelectBest(candidates []string) string {
	seen := make(map[string]struct{}, len(candidates)*2)
	ordered := make([]string, 0, len(candidates)*2)
	add := func(url string) {
		if url == "" {
			return
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		ordered = append(ordered, url)
	}
	for _, candidate := range candidates {
		add(candidate)
		add(Upgrade(candidate))
	}

	best := ""
	for _, candidate := range ordered {
		if best == "" {
			best = candidate
			continue
		}
		best = PickBetter(best, candidate)
	}
	if best == "" {
		return Placeholder
	}
	return best
}
