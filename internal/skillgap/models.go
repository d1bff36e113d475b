// internal/skillgap/models.go
package skillgap

// MissingSkill is one ranked entry of the gap report.
type MissingSkill struct {
	Skill       string  `json:"skill"`
	Count       int     `json:"count"`
	Frequency   float64 `json:"frequency"`
	ImpactScore float64 `json:"impactScore"`
}

// SkillFrequency counts how often one skill appeared as missing vs matched
// across the considered jobs.
type SkillFrequency struct {
	Missing int `json:"missing"`
	Matched int `json:"matched"`
}

// MatchDistribution is the match-score histogram over four bands.
type MatchDistribution struct {
	Excellent int `json:"excellent"` // score >= 80
	Good      int `json:"good"`      // 60-79
	Fair      int `json:"fair"`      // 40-59
	Low       int `json:"low"`       // < 40
}

// Total returns the histogram sum; it always equals the job count.
func (d MatchDistribution) Total() int {
	return d.Excellent + d.Good + d.Fair + d.Low
}

// Statistics are the aggregate numbers of the report.
type Statistics struct {
	TotalMissingSkills   int     `json:"totalMissingSkills"`
	TotalMatchedSkills   int     `json:"totalMatchedSkills"`
	AverageMissingPerJob float64 `json:"averageMissingPerJob"`
	AverageMatchedPerJob float64 `json:"averageMatchedPerJob"`
	OverallMatchRate     float64 `json:"overallMatchRate"`
}

// Suggestion is one actionable improvement recommendation.
type Suggestion struct {
	Skill                string   `json:"skill"`
	ImpactScore          float64  `json:"impactScore"`
	Priority             int      `json:"priority"`
	Action               string   `json:"action"`
	EstimatedImprovement float64  `json:"estimatedImprovement"`
	Resources            []string `json:"resources"`
}

// Report is the full skill-gap analysis for one candidate's scored jobs.
// It is derived data, recomputed per request.
type Report struct {
	TotalJobs              int                       `json:"totalJobs"`
	TopMissingSkills       []MissingSkill            `json:"topMissingSkills"`
	SkillFrequency         map[string]SkillFrequency `json:"skillFrequency"`
	ImprovementSuggestions []Suggestion              `json:"improvementSuggestions"`
	OverallMissingSkills   []string                  `json:"overallMissingSkills"`
	MatchDistribution      MatchDistribution         `json:"matchDistribution"`
	Statistics             Statistics                `json:"statistics"`
}

// JobInput is the slice of a scored job the aggregator needs.
type JobInput struct {
	Score         int
	MatchedSkills []string
	MissingSkills []string
}
