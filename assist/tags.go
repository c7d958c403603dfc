package assist

import (
	"regexp"
	"strings"
)

var (
	tagLabelRe     = regexp.MustCompile(`(?i)^#?\s*tags?\s*:\s*`)
	tagBulletRe    = regexp.MustCompile(`(?im)^[\s>*-]*[•*\-]\s*`)
	tagWhitespace  = regexp.MustCompile(`\s+`)
	tagDisallowed  = regexp.MustCompile(`[^a-z0-9+\-]`)
	tagDelimiterRe = regexp.MustCompile(`[,|;/]+`)
)

// NormalizeTag lowercases a tag, joins internal whitespace with hyphens and
// strips every character outside [a-z0-9+-].
func NormalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = tagWhitespace.ReplaceAllString(s, "-")
	return tagDisallowed.ReplaceAllString(s, "")
}

// ParseTags turns a raw tags section into a normalized, de-duplicated list.
// It strips a leading "tags:" label and list bullets, splits on the common
// delimiters and on whitespace, and preserves first-seen order.
func ParseTags(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = tagLabelRe.ReplaceAllString(s, "")
	s = tagBulletRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", ",")

	var tokens []string
	for _, part := range tagDelimiterRe.Split(s, -1) {
		tokens = append(tokens, strings.Fields(part)...)
	}

	return dedupeTags(tokens)
}

// MergeTags unions incoming tags into the existing set, normalizing both
// sides. Existing tags keep their position; new tags are appended in order.
func MergeTags(existing, add []string) []string {
	return dedupeTags(append(append([]string{}, existing...), add...))
}

func dedupeTags(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, t := range raw {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
