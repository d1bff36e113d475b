// internal/skillgap/suggestions.go
package skillgap

import (
	"fmt"
	"sort"
	"strings"
)

// buildSuggestions produces up to seven improvement suggestions: one per
// top-5 ranked missing skill plus two fixed generic ones, re-sorted by
// impact descending.
func buildSuggestions(topMissing []MissingSkill) []Suggestion {
	suggestions := []Suggestion{}

	top := topMissing
	if len(top) > 5 {
		top = top[:5]
	}

	for i, entry := range top {
		s := suggestionForSkill(entry.Skill, entry.ImpactScore)
		s.Priority = i + 1
		suggestions = append(suggestions, s)
	}

	suggestions = append(suggestions,
		Suggestion{
			Skill:                "Multiple Skills",
			ImpactScore:          25,
			Priority:             6,
			Action:               "Focus on building 2-3 key skills from the missing skills list",
			EstimatedImprovement: 15,
			Resources:            []string{"Create personal projects", "Contribute to open source", "Build a portfolio"},
		},
		Suggestion{
			Skill:                "Soft Skills",
			ImpactScore:          15,
			Priority:             7,
			Action:               "Improve communication and teamwork skills",
			EstimatedImprovement: 10,
			Resources:            []string{"Toastmasters International", "Coursera: Communication Skills", "Team collaboration tools"},
		},
	)

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].ImpactScore > suggestions[j].ImpactScore
	})

	return suggestions
}

// suggestionForSkill dispatches on well-known skill families; anything else
// gets the generic recommendation.
func suggestionForSkill(skill string, impact float64) Suggestion {
	lower := strings.ToLower(skill)

	switch {
	case strings.Contains(lower, "react"):
		return Suggestion{
			Skill:                skill,
			ImpactScore:          impact,
			Action:               fmt.Sprintf("Learn %s to improve your frontend development opportunities", skill),
			EstimatedImprovement: capAt(impact*1.5, 30),
			Resources: []string{
				"React Official Documentation",
				"FreeCodeCamp React Course",
				"YouTube: React Tutorial for Beginners",
			},
		}
	case strings.Contains(lower, "python"):
		return Suggestion{
			Skill:                skill,
			ImpactScore:          impact,
			Action:               fmt.Sprintf("Master %s for data science and backend development roles", skill),
			EstimatedImprovement: capAt(impact*1.3, 25),
			Resources: []string{
				"Python.org Official Tutorial",
				"Coursera: Python for Everybody",
				"Real Python Tutorials",
			},
		}
	case strings.Contains(lower, "aws"), strings.Contains(lower, "cloud"):
		return Suggestion{
			Skill:                skill,
			ImpactScore:          impact,
			Action:               fmt.Sprintf("Get certified in %s for cloud engineering positions", skill),
			EstimatedImprovement: capAt(impact*1.8, 35),
			Resources: []string{
				"AWS Free Tier & Training",
				"AWS Certified Solutions Architect",
				"A Cloud Guru Courses",
			},
		}
	case strings.Contains(lower, "sql"):
		return Suggestion{
			Skill:                skill,
			ImpactScore:          impact,
			Action:               fmt.Sprintf("Improve your %s skills for database-related roles", skill),
			EstimatedImprovement: capAt(impact*1.2, 20),
			Resources: []string{
				"SQLZoo Interactive Tutorial",
				"Mode Analytics SQL Tutorial",
				"LeetCode SQL Problems",
			},
		}
	default:
		return Suggestion{
			Skill:                skill,
			ImpactScore:          impact,
			Action:               fmt.Sprintf("Develop %s skills to increase your job match rate", skill),
			EstimatedImprovement: capAt(impact*1.1, 15),
			Resources: []string{
				"Udemy Courses",
				"LinkedIn Learning",
				"Official Documentation",
			},
		}
	}
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}
