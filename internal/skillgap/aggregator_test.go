// internal/skillgap/aggregator_test.go
package skillgap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_EmptyInput(t *testing.T) {
	report := NewAggregator().Aggregate(nil, 10)

	require.NotNil(t, report)
	assert.Equal(t, 0, report.TotalJobs)
	assert.Empty(t, report.TopMissingSkills)
	assert.Empty(t, report.SkillFrequency)
	assert.Empty(t, report.ImprovementSuggestions)
	assert.Empty(t, report.OverallMissingSkills)
	assert.Equal(t, float64(0), report.Statistics.OverallMatchRate)
}

func TestAggregate_MatchDistributionCoversEveryJob(t *testing.T) {
	jobs := []JobInput{
		{Score: 95}, {Score: 80}, // excellent
		{Score: 79}, {Score: 60}, // good
		{Score: 59}, {Score: 40}, // fair
		{Score: 39}, {Score: 0}, // low
	}

	report := NewAggregator().Aggregate(jobs, 10)

	assert.Equal(t, 2, report.MatchDistribution.Excellent)
	assert.Equal(t, 2, report.MatchDistribution.Good)
	assert.Equal(t, 2, report.MatchDistribution.Fair)
	assert.Equal(t, 2, report.MatchDistribution.Low)
	assert.Equal(t, len(jobs), report.MatchDistribution.Total())
}

func TestAggregate_FrequencyAndImpact(t *testing.T) {
	// Python missing in 6 of 10 jobs. Python is high demand, so
	// impact = round(60 * 1.5 * 10) / 10 = 90.0.
	jobs := make([]JobInput, 10)
	for i := 0; i < 6; i++ {
		jobs[i] = JobInput{Score: 50, MissingSkills: []string{"Python"}}
	}
	for i := 6; i < 10; i++ {
		jobs[i] = JobInput{Score: 50, MatchedSkills: []string{"Python"}}
	}

	report := NewAggregator().Aggregate(jobs, 10)

	require.Len(t, report.TopMissingSkills, 1)
	top := report.TopMissingSkills[0]
	assert.Equal(t, "Python", top.Skill)
	assert.Equal(t, 6, top.Count)
	assert.InDelta(t, 60.0, top.Frequency, 0.001)
	assert.InDelta(t, 90.0, top.ImpactScore, 0.001)

	freq, ok := report.SkillFrequency["Python"]
	require.True(t, ok)
	assert.Equal(t, 6, freq.Missing)
	assert.Equal(t, 4, freq.Matched)
}

func TestAggregate_TrendingMultiplierTakesPrecedence(t *testing.T) {
	// "react native" matches both vocabularies; trending (1.8x) wins.
	jobs := []JobInput{
		{Score: 50, MissingSkills: []string{"React Native"}},
		{Score: 50, MissingSkills: []string{"React Native"}},
	}

	report := NewAggregator().Aggregate(jobs, 10)

	require.Len(t, report.TopMissingSkills, 1)
	assert.InDelta(t, 180.0, report.TopMissingSkills[0].ImpactScore, 0.001)
}

func TestAggregate_NeutralSkillMultiplier(t *testing.T) {
	jobs := []JobInput{
		{Score: 50, MissingSkills: []string{"Gardening"}},
		{Score: 50, MissingSkills: []string{}},
	}

	report := NewAggregator().Aggregate(jobs, 10)

	require.Len(t, report.TopMissingSkills, 1)
	assert.InDelta(t, 50.0, report.TopMissingSkills[0].Frequency, 0.001)
	assert.InDelta(t, 50.0, report.TopMissingSkills[0].ImpactScore, 0.001)
}

func TestAggregate_RankingTiesKeepInputOrder(t *testing.T) {
	// Both skills miss in every job with the same multiplier; first seen
	// stays first.
	jobs := []JobInput{
		{Score: 50, MissingSkills: []string{"gardening", "carpentry"}},
		{Score: 50, MissingSkills: []string{"gardening", "carpentry"}},
	}

	report := NewAggregator().Aggregate(jobs, 10)

	require.Len(t, report.TopMissingSkills, 2)
	assert.Equal(t, "Gardening", report.TopMissingSkills[0].Skill)
	assert.Equal(t, "Carpentry", report.TopMissingSkills[1].Skill)
}

func TestAggregate_LimitTruncatesRankedList(t *testing.T) {
	jobs := []JobInput{
		{Score: 50, MissingSkills: []string{"a1", "b2", "c3", "d4", "e5"}},
	}

	report := NewAggregator().Aggregate(jobs, 3)

	assert.Len(t, report.TopMissingSkills, 3)
	assert.Len(t, report.OverallMissingSkills, 5)
}

func TestAggregate_NormalizesCaseAndWhitespace(t *testing.T) {
	jobs := []JobInput{
		{Score: 50, MissingSkills: []string{"  Docker "}},
		{Score: 50, MissingSkills: []string{"docker"}},
		{Score: 50, MissingSkills: []string{"", "   "}},
	}

	report := NewAggregator().Aggregate(jobs, 10)

	require.Len(t, report.TopMissingSkills, 1)
	assert.Equal(t, "Docker", report.TopMissingSkills[0].Skill)
	assert.Equal(t, 2, report.TopMissingSkills[0].Count)
	assert.Equal(t, 2, report.Statistics.TotalMissingSkills)
}

func TestAggregate_Statistics(t *testing.T) {
	jobs := []JobInput{
		{Score: 70, MatchedSkills: []string{"go", "sql"}, MissingSkills: []string{"react"}},
		{Score: 30, MatchedSkills: []string{"go"}, MissingSkills: []string{"react", "aws", "docker"}},
	}

	report := NewAggregator().Aggregate(jobs, 10)

	stats := report.Statistics
	assert.Equal(t, 4, stats.TotalMissingSkills)
	assert.Equal(t, 3, stats.TotalMatchedSkills)
	assert.InDelta(t, 2.0, stats.AverageMissingPerJob, 0.001)
	assert.InDelta(t, 1.5, stats.AverageMatchedPerJob, 0.001)
	assert.InDelta(t, 3.0/7.0*100, stats.OverallMatchRate, 0.001)
	assert.Equal(t, []string{"Aws", "Docker", "React"}, report.OverallMissingSkills)
}

func TestAggregate_MatchRateZeroWhenNoSkillsAtAll(t *testing.T) {
	report := NewAggregator().Aggregate([]JobInput{{Score: 50}}, 10)

	assert.Equal(t, float64(0), report.Statistics.OverallMatchRate)
}

func TestBuildSuggestions_KnownSkillFamilies(t *testing.T) {
	top := []MissingSkill{
		{Skill: "React", ImpactScore: 90},
		{Skill: "Python", ImpactScore: 80},
		{Skill: "AWS", ImpactScore: 70},
		{Skill: "SQL", ImpactScore: 60},
		{Skill: "Gardening", ImpactScore: 50},
	}

	suggestions := buildSuggestions(top)

	// Five skill suggestions plus the two fixed generic entries.
	require.Len(t, suggestions, 7)

	byName := map[string]Suggestion{}
	for _, s := range suggestions {
		byName[s.Skill] = s
	}

	assert.InDelta(t, 30, byName["React"].EstimatedImprovement, 0.001)
	assert.Contains(t, byName["React"].Resources, "FreeCodeCamp React Course")
	assert.InDelta(t, 25, byName["Python"].EstimatedImprovement, 0.001)
	assert.InDelta(t, 35, byName["AWS"].EstimatedImprovement, 0.001)
	assert.InDelta(t, 20, byName["SQL"].EstimatedImprovement, 0.001)
	assert.InDelta(t, 15, byName["Gardening"].EstimatedImprovement, 0.001)
	assert.Contains(t, byName["Gardening"].Resources, "LinkedIn Learning")

	multi, ok := byName["Multiple Skills"]
	require.True(t, ok)
	assert.InDelta(t, 25, multi.ImpactScore, 0.001)
	soft, ok := byName["Soft Skills"]
	require.True(t, ok)
	assert.InDelta(t, 15, soft.ImpactScore, 0.001)
}

func TestBuildSuggestions_SortedByImpactDescending(t *testing.T) {
	top := []MissingSkill{
		{Skill: "Gardening", ImpactScore: 10},
	}

	suggestions := buildSuggestions(top)

	require.Len(t, suggestions, 3)
	for i := 1; i < len(suggestions); i++ {
		assert.GreaterOrEqual(t, suggestions[i-1].ImpactScore, suggestions[i].ImpactScore)
	}
	assert.Equal(t, "Multiple Skills", suggestions[0].Skill)
}

func TestBuildSuggestions_LowImpactUncapped(t *testing.T) {
	// Below the cap the multiplier applies directly.
	top := []MissingSkill{{Skill: "SQL", ImpactScore: 10}}

	suggestions := buildSuggestions(top)

	var sql Suggestion
	for _, s := range suggestions {
		if s.Skill == "SQL" {
			sql = s
		}
	}
	assert.InDelta(t, 12, sql.EstimatedImprovement, 0.001)
}
