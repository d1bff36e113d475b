// internal/recommend/service.go

// Package recommend implements the interactive recommendation flow: fetch
// recent postings for a searched title, score them against the candidate's
// full profile, persist the best matches, and serve the stored batch when
// the provider is unavailable.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"jobmatch-pipeline/internal/adzuna"
	"jobmatch-pipeline/internal/common/config"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/matching"
	"jobmatch-pipeline/internal/models"
)

// RecommendationSink is the slice of the recommendation store this service
// writes to and falls back on.
type RecommendationSink interface {
	SaveBatch(ctx context.Context, userID string, cvID int64, jobs []models.ScoredJob) error
	ListScoredForUser(ctx context.Context, userID string, limit int) ([]models.ScoredJob, error)
	UpsertSavedSearch(ctx context.Context, userID, jobTitle, location string, remote bool) error
}

// Request carries one interactive search.
type Request struct {
	UserID   string
	CVID     int64
	Profile  models.CandidateProfile
	JobTitle string
	Location string
	Remote   bool
}

// Service runs the fetch-score-persist pipeline for one request.
type Service struct {
	fetcher adzuna.Fetcher
	engine  *matching.Engine
	sink    RecommendationSink
	cfg     config.RecommendConfig
	logger  logger.Logger
}

func NewService(fetcher adzuna.Fetcher, engine *matching.Engine, sink RecommendationSink, cfg config.RecommendConfig, log logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		engine:  engine,
		sink:    sink,
		cfg:     cfg,
		logger:  log.WithFields(map[string]interface{}{"component": "recommend_service"}),
	}
}

// Recommend fetches recent postings, scores them against the candidate's
// profile and returns the top matches, newest batch persisted. A candidate
// with no skills and no search criteria gets an empty result without the
// scoring engine ever running.
func (s *Service) Recommend(ctx context.Context, req Request) ([]models.ScoredJob, error) {
	criteria := matching.CriteriaFromProfile(req.Profile, req.JobTitle)
	if criteria.IsEmpty() {
		s.logger.Info("Empty profile and criteria, skipping scoring", map[string]interface{}{
			"user_id": req.UserID,
		})
		return []models.ScoredJob{}, nil
	}

	query := buildQuery(req)
	postings, err := s.fetcher.SearchRecent(ctx, query, req.Location, req.Remote, s.cfg.MaxDaysOld, s.cfg.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("fetch recent postings: %w", err)
	}

	if len(postings) == 0 {
		// Provider down or genuinely no matches. Serve the last stored
		// batch so the user still sees something.
		stored, err := s.sink.ListScoredForUser(ctx, req.UserID, s.cfg.TopJobs)
		if err != nil {
			return nil, fmt.Errorf("load stored recommendations: %w", err)
		}
		s.logger.Info("No fresh postings, serving stored batch", map[string]interface{}{
			"user_id": req.UserID,
			"count":   len(stored),
		})
		return stored, nil
	}

	scored := make([]matching.ScoredPosting, 0, len(postings))
	for _, posting := range postings {
		scored = append(scored, matching.ScoredPosting{
			Posting: posting,
			Result:  s.engine.Score(criteria, posting),
		})
	}
	matching.Rank(scored)

	ranked := scored
	if len(ranked) > s.cfg.TopJobs {
		ranked = ranked[:s.cfg.TopJobs]
	}

	jobs := make([]models.ScoredJob, 0, len(ranked))
	for _, sp := range ranked {
		jobs = append(jobs, toScoredJob(req, sp))
	}

	if err := s.sink.SaveBatch(ctx, req.UserID, req.CVID, jobs); err != nil {
		// Persisting is best-effort: the user still gets the fresh batch.
		s.logger.Warn("Failed to persist recommendation batch", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
	}

	// Only a titled search is worth pre-filling next time.
	if req.JobTitle != "" {
		if err := s.sink.UpsertSavedSearch(ctx, req.UserID, req.JobTitle, req.Location, req.Remote); err != nil {
			s.logger.Warn("Failed to save search criteria", map[string]interface{}{
				"user_id": req.UserID,
				"error":   err.Error(),
			})
		}
	}

	return jobs, nil
}

// buildQuery joins the searched title with up to three profile skills, the
// same shape the alert path sends.
func buildQuery(req Request) string {
	query := req.JobTitle
	skills := req.Profile.Skills
	if len(skills) > 3 {
		skills = skills[:3]
	}
	if len(skills) > 0 {
		query += " " + strings.Join(skills, " ")
	}
	return strings.TrimSpace(query)
}

func toScoredJob(req Request, sp matching.ScoredPosting) models.ScoredJob {
	posting := sp.Posting

	salary := "Competitive"
	if posting.SalaryMin != nil {
		salary = fmt.Sprintf("£%.0f", *posting.SalaryMin)
	}
	contractType := posting.ContractType
	if contractType == "" {
		contractType = "Full-time"
	}
	description := posting.Description
	if description == "" {
		description = "No description available"
	}

	postedDate := ""
	if !posting.Created.IsZero() {
		postedDate = posting.Created.Format("2006-01-02")
	}

	return models.ScoredJob{
		UserID:            req.UserID,
		CVID:              req.CVID,
		JobID:             posting.ProviderID,
		Title:             posting.Title,
		Company:           posting.Company,
		Location:          posting.Location,
		URL:               posting.RedirectURL,
		Description:       description,
		Score:             sp.Result.Score,
		MatchedSkills:     sp.Result.MatchedSkills,
		MissingSkills:     sp.Result.MissingSkills,
		MatchedExperience: sp.Result.MatchedExperience,
		EducationMatch:    sp.Result.EducationMatch,
		PostedDate:        postedDate,
		Salary:            salary,
		ContractType:      contractType,
		Breakdown:         sp.Result.Breakdown,
	}
}
