// internal/matching/engine.go
package matching

import (
	"math"
	"sort"
	"strings"

	"jobmatch-pipeline/internal/models"
)

// The heuristic model is deliberately transparent: substring and token
// matching over the posting text, with fixed weights per factor. No NLP.
const (
	skillsWeight     = 50
	experienceWeight = 30
	educationScore   = 10
	seniorityScore   = 5

	titleExactBonus = 15
	titleTextBonus  = 10
	techKeywordPts  = 3
)

// degreeKeywords is the fixed vocabulary used for the education factor.
var degreeKeywords = []string{
	"bachelor", "master", "phd", "degree", "diploma", "university", "college",
}

// commonTechKeywords each add a small bonus when they appear in the posting
// text, regardless of the candidate's own skill list.
var commonTechKeywords = []string{
	"javascript", "python", "java", "react", "node", "sql", "html", "css", "typescript",
}

// Engine computes match scores. It is a pure function holder: no I/O, no
// state, safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Score computes a 0-100 match score with its breakdown for one
// (criteria, posting) pair. Inputs must already be string-normalized at the
// boundary; empty strings are fine, nils are not expected.
func (e *Engine) Score(criteria Criteria, posting models.JobPosting) MatchResult {
	text := searchableText(posting)

	matched, missing := matchSkills(criteria.Skills, text)

	skillsScore := 0
	if len(criteria.Skills) > 0 {
		skillsScore = int(math.Round(float64(len(matched)) / float64(len(criteria.Skills)) * skillsWeight))
	}

	matchedExperience, experienceScore := matchExperience(criteria.Experience, text)

	educationMatch := false
	eduScore := 0
	if len(criteria.Education) > 0 && containsAny(text, degreeKeywords) {
		educationMatch = true
		eduScore = educationScore
	}

	bonus := titleBonus(criteria.JobTitle, posting.Title, text) + techBonus(text)

	final := skillsScore + experienceScore + eduScore + seniorityScore + bonus
	if final > 100 {
		final = 100
	}

	return MatchResult{
		Score: final,
		Breakdown: models.ScoreBreakdown{
			Skills:     skillsScore,
			Experience: experienceScore,
			Education:  eduScore,
			Seniority:  seniorityScore,
			Bonus:      bonus,
		},
		MatchedSkills:     matched,
		MissingSkills:     missing,
		MatchedExperience: matchedExperience,
		EducationMatch:    educationMatch,
	}
}

// matchSkills classifies every non-blank candidate skill as matched or
// missing. A skill matches when its full normalized form appears in the
// text, or when any of its tokens longer than 2 characters does.
func matchSkills(skills []string, text string) (matched, missing []string) {
	matched = []string{}
	missing = []string{}

	for _, skill := range skills {
		clean := normalizeSkill(skill)
		if clean == "" {
			continue
		}

		if strings.Contains(text, clean) {
			matched = append(matched, skill)
			continue
		}

		found := false
		for _, tok := range tokenize(clean, 2) {
			if strings.Contains(text, tok) {
				found = true
				break
			}
		}
		if found {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	return matched, missing
}

// matchExperience marks an entry as matched when any token longer than 3
// characters from "title company" appears in the posting text.
func matchExperience(entries []models.ExperienceEntry, text string) ([]string, int) {
	titles := []string{}
	if len(entries) == 0 {
		return titles, 0
	}

	for _, entry := range entries {
		expText := strings.ToLower(entry.Title + " " + entry.Company)
		for _, tok := range tokenize(expText, 3) {
			if strings.Contains(text, tok) {
				titles = append(titles, entry.Title)
				break
			}
		}
	}

	score := float64(len(titles)) / float64(len(entries)) * experienceWeight
	if score > experienceWeight {
		score = experienceWeight
	}
	return titles, int(math.Round(score))
}

// titleBonus rewards relevance of the posting to the searched job title:
// 15 when the posting title itself contains it, 10 when only the broader
// text does.
func titleBonus(jobTitle, postingTitle, text string) int {
	target := strings.ToLower(strings.TrimSpace(jobTitle))
	if target == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(postingTitle), target) {
		return titleExactBonus
	}
	if strings.Contains(text, target) {
		return titleTextBonus
	}
	return 0
}

func techBonus(text string) int {
	bonus := 0
	for _, kw := range commonTechKeywords {
		if strings.Contains(text, kw) {
			bonus += techKeywordPts
		}
	}
	return bonus
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Rank sorts scored postings by score descending. Equal scores keep their
// insertion order.
func Rank(jobs []ScoredPosting) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Result.Score > jobs[j].Result.Score
	})
}
