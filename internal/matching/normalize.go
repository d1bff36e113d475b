// internal/matching/normalize.go
package matching

import (
	"strings"

	"jobmatch-pipeline/internal/models"
)

// searchableText builds the lower-cased haystack for substring matching:
// posting title, description, category and company, space-joined.
func searchableText(p models.JobPosting) string {
	return strings.ToLower(p.Title + " " + p.Description + " " + p.Category + " " + p.Company)
}

// tokenize splits on whitespace, hyphens and underscores, keeping tokens
// strictly longer than minLen.
func tokenize(s string, minLen int) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '_':
			return true
		}
		return false
	})

	out := fields[:0]
	for _, f := range fields {
		if len(f) > minLen {
			out = append(out, f)
		}
	}
	return out
}

// normalizeSkill trims and lower-cases a skill string for matching. An empty
// result means the skill is blank and must be skipped.
func normalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}
