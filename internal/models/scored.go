// internal/models/scored.go
package models

// ScoreBreakdown is the five-component decomposition of a match score.
// The final score equals min(sum of components, 100).
type ScoreBreakdown struct {
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Education  int `json:"education"`
	Seniority  int `json:"seniority"`
	Bonus      int `json:"bonus"`
}

// Sum returns the unclamped component total.
func (b ScoreBreakdown) Sum() int {
	return b.Skills + b.Experience + b.Education + b.Seniority + b.Bonus
}

// ScoredJob is a persisted scored posting for one candidate. Rows of this
// shape are written by the interactive recommendation flow and consumed by
// the skill gap aggregator.
type ScoredJob struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId"`
	CVID              int64          `json:"cvId"`
	JobID             string         `json:"jobId"`
	Title             string         `json:"title"`
	Company           string         `json:"company"`
	Location          string         `json:"location"`
	URL               string         `json:"url"`
	Description       string         `json:"description"`
	Score             int            `json:"score"`
	MatchedSkills     []string       `json:"matchedSkills"`
	MissingSkills     []string       `json:"missingSkills"`
	MatchedExperience []string       `json:"matchedExperience"`
	EducationMatch    bool           `json:"educationMatch"`
	PostedDate        string         `json:"postedDate"`
	Salary            string         `json:"salary"`
	ContractType      string         `json:"contractType"`
	Breakdown         ScoreBreakdown `json:"breakdown"`
}
