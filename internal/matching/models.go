// internal/matching/models.go
package matching

import "jobmatch-pipeline/internal/models"

// Criteria is the candidate side of a scoring call. For the scheduled alert
// path only JobTitle and Skills are populated; the interactive flow supplies
// the full profile.
type Criteria struct {
	JobTitle   string
	Skills     []string
	Experience []models.ExperienceEntry
	Education  []models.EducationEntry
}

// IsEmpty reports whether the criteria carry no matching signal at all.
// Callers must short-circuit to an empty result set instead of scoring.
func (c Criteria) IsEmpty() bool {
	return c.JobTitle == "" && len(c.Skills) == 0 && len(c.Experience) == 0 && len(c.Education) == 0
}

// CriteriaFromProfile builds scoring criteria from a candidate profile plus
// the searched job title.
func CriteriaFromProfile(profile models.CandidateProfile, jobTitle string) Criteria {
	return Criteria{
		JobTitle:   jobTitle,
		Skills:     profile.Skills,
		Experience: profile.Experience,
		Education:  profile.Education,
	}
}

// CriteriaFromAlert builds scoring criteria from a saved alert.
func CriteriaFromAlert(alert models.Alert) Criteria {
	return Criteria{
		JobTitle: alert.JobTitle,
		Skills:   alert.Skills,
	}
}

// MatchResult is the auditable outcome of scoring one posting against one
// set of criteria.
type MatchResult struct {
	Score             int                   `json:"score"`
	Breakdown         models.ScoreBreakdown `json:"breakdown"`
	MatchedSkills     []string              `json:"matchedSkills"`
	MissingSkills     []string              `json:"missingSkills"`
	MatchedExperience []string              `json:"matchedExperience"`
	EducationMatch    bool                  `json:"educationMatch"`
}

// ScoredPosting pairs a posting with its match result for ranking.
type ScoredPosting struct {
	Posting models.JobPosting
	Result  MatchResult
}
