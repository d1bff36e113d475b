// internal/skillgap/aggregator.go
package skillgap

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// highDemandSkills carry a 1.5x demand multiplier.
var highDemandSkills = []string{
	"react", "javascript", "typescript", "python", "java",
	"aws", "docker", "kubernetes", "node.js", "sql",
	"machine learning", "data analysis", "cloud", "devops",
}

// trendingSkills carry a 1.8x demand multiplier and take precedence over
// the high-demand list when a skill matches both.
var trendingSkills = []string{
	"ai", "artificial intelligence", "generative ai", "llm",
	"rust", "go", "next.js", "react native", "graphql",
}

// Aggregator turns a set of scored jobs into a skill-gap report.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate builds the report. The ranked missing-skill list is truncated
// to limit entries. An empty job set produces a well-formed zero report.
func (a *Aggregator) Aggregate(jobs []JobInput, limit int) *Report {
	report := &Report{
		TopMissingSkills:       []MissingSkill{},
		SkillFrequency:         map[string]SkillFrequency{},
		ImprovementSuggestions: []Suggestion{},
		OverallMissingSkills:   []string{},
	}
	if len(jobs) == 0 {
		return report
	}

	report.TotalJobs = len(jobs)

	missingCounts := map[string]int{}
	matchedCounts := map[string]int{}
	missingOrder := []string{}
	totalMissing := 0
	totalMatched := 0

	for _, job := range jobs {
		switch {
		case job.Score >= 80:
			report.MatchDistribution.Excellent++
		case job.Score >= 60:
			report.MatchDistribution.Good++
		case job.Score >= 40:
			report.MatchDistribution.Fair++
		default:
			report.MatchDistribution.Low++
		}

		for _, skill := range job.MissingSkills {
			clean := strings.ToLower(strings.TrimSpace(skill))
			if clean == "" {
				continue
			}
			if _, seen := missingCounts[clean]; !seen {
				missingOrder = append(missingOrder, clean)
			}
			missingCounts[clean]++
			totalMissing++
		}

		for _, skill := range job.MatchedSkills {
			clean := strings.ToLower(strings.TrimSpace(skill))
			if clean == "" {
				continue
			}
			matchedCounts[clean]++
			totalMatched++
		}
	}

	ranked := make([]MissingSkill, 0, len(missingCounts))
	for _, skill := range missingOrder {
		count := missingCounts[skill]
		frequency := float64(count) / float64(len(jobs)) * 100
		ranked = append(ranked, MissingSkill{
			Skill:       titleCase(skill),
			Count:       count,
			Frequency:   frequency,
			ImpactScore: impactScore(skill, frequency),
		})
	}

	// Impact first, then frequency, then raw count; ties keep input order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ImpactScore != ranked[j].ImpactScore {
			return ranked[i].ImpactScore > ranked[j].ImpactScore
		}
		if ranked[i].Frequency != ranked[j].Frequency {
			return ranked[i].Frequency > ranked[j].Frequency
		}
		return ranked[i].Count > ranked[j].Count
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	report.TopMissingSkills = ranked

	for skill, count := range missingCounts {
		entry := report.SkillFrequency[titleCase(skill)]
		entry.Missing = count
		report.SkillFrequency[titleCase(skill)] = entry
	}
	for skill, count := range matchedCounts {
		entry := report.SkillFrequency[titleCase(skill)]
		entry.Matched = count
		report.SkillFrequency[titleCase(skill)] = entry
	}

	for skill := range missingCounts {
		report.OverallMissingSkills = append(report.OverallMissingSkills, titleCase(skill))
	}
	sort.Strings(report.OverallMissingSkills)

	report.Statistics = Statistics{
		TotalMissingSkills:   totalMissing,
		TotalMatchedSkills:   totalMatched,
		AverageMissingPerJob: float64(totalMissing) / float64(len(jobs)),
		AverageMatchedPerJob: float64(totalMatched) / float64(len(jobs)),
		OverallMatchRate:     matchRate(totalMatched, totalMissing),
	}

	report.ImprovementSuggestions = buildSuggestions(report.TopMissingSkills)

	return report
}

// impactScore weighs a missing skill's frequency by industry demand. The
// result is deliberately unbounded above 100.
func impactScore(skill string, frequency float64) float64 {
	multiplier := 1.0
	if matchesVocabulary(skill, highDemandSkills) {
		multiplier = 1.5
	}
	if matchesVocabulary(skill, trendingSkills) {
		multiplier = 1.8
	}
	return math.Round(frequency*multiplier*10) / 10
}

// matchesVocabulary checks substring containment in either direction.
func matchesVocabulary(skill string, vocabulary []string) bool {
	for _, v := range vocabulary {
		if strings.Contains(skill, v) || strings.Contains(v, skill) {
			return true
		}
	}
	return false
}

func matchRate(matched, missing int) float64 {
	total := matched + missing
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total) * 100
}

// titleCase upper-cases the first rune only, matching the report's display
// convention for skill names.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
