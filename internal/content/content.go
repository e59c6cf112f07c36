// Package content holds the pure text rules applied to articles: slugs,
// read-time estimates and tag normalization.
package content

import (
	"math"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed used for read-time estimates.
const WordsPerMinute = 200

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, collapses every run of characters outside
// [a-z0-9] into a single hyphen and strips hyphens from both ends.
// Slugify(Slugify(s)) == Slugify(s).
func Slugify(title string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// TruncateSlug shortens a slug to at most max bytes, cutting at the last
// hyphen that fits so words stay whole. A single word longer than max is
// cut hard. Slugs are ASCII, so byte cuts never split a character.
func TruncateSlug(slug string, max int) string {
	if max <= 0 || len(slug) <= max {
		return slug
	}
	cut := slug[:max]
	if slug[max] != '-' {
		if i := strings.LastIndexByte(cut, '-'); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, "-")
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadTime estimates reading time in whole minutes, rounding up.
// Any non-blank text takes at least one minute; blank text takes zero.
func ReadTime(text string) int {
	words := WordCount(text)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}

// NormalizeTags trims tags, drops empty ones and removes exact duplicates,
// keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
