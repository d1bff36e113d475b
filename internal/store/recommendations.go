// internal/store/recommendations.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"jobmatch-pipeline/internal/common/database"
	apperrors "jobmatch-pipeline/internal/common/errors"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/models"
)

// RecommendationStore persists scored postings produced by the interactive
// recommendation flow. These rows are the skill gap aggregator's input and
// the fallback result set when the provider is unavailable.
type RecommendationStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewRecommendationStore(db *database.PostgresClient, log logger.Logger) *RecommendationStore {
	return &RecommendationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "recommendation_store"}),
	}
}

// SaveBatch replaces the stored recommendations for one CV in a single
// transaction: the previous batch is deleted, then the new one inserted.
func (s *RecommendationStore) SaveBatch(ctx context.Context, userID string, cvID int64, jobs []models.ScoredJob) error {
	tx, err := s.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewRecommendationSaveError(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM job_recommendations WHERE user_id = $1 AND cv_id = $2`,
		userID, cvID); err != nil {
		return apperrors.NewRecommendationSaveError(err)
	}

	for i := range jobs {
		job := &jobs[i]
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		job.UserID = userID
		job.CVID = cvID

		breakdown, err := json.Marshal(job.Breakdown)
		if err != nil {
			return apperrors.NewRecommendationSaveError(err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_recommendations (id, user_id, cv_id, job_id, title,
				company, location, url, description, score, matched_skills,
				missing_skills, matched_experience, education_match, posted_date,
				salary, contract_type, breakdown, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
				$15, $16, $17, $18, $19)`,
			job.ID, job.UserID, job.CVID, job.JobID, job.Title, job.Company,
			job.Location, job.URL, job.Description, job.Score,
			pq.Array(job.MatchedSkills), pq.Array(job.MissingSkills),
			pq.Array(job.MatchedExperience), job.EducationMatch, job.PostedDate,
			job.Salary, job.ContractType, breakdown, time.Now().UTC()); err != nil {
			return apperrors.NewRecommendationSaveError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewRecommendationSaveError(err)
	}

	s.logger.Debug("Saved recommendation batch", map[string]interface{}{
		"user_id": userID,
		"cv_id":   cvID,
		"count":   len(jobs),
	})
	return nil
}

// ListScoredForUser returns a user's stored recommendations, best match
// first.
func (s *RecommendationStore) ListScoredForUser(ctx context.Context, userID string, limit int) ([]models.ScoredJob, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, cv_id, job_id, title, company, location, url,
			description, score, matched_skills, missing_skills,
			matched_experience, education_match, posted_date, salary,
			contract_type, breakdown
		FROM job_recommendations
		WHERE user_id = $1
		ORDER BY score DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	jobs := []models.ScoredJob{}
	for rows.Next() {
		var job models.ScoredJob
		var matched, missing, experience pq.StringArray
		var breakdown []byte

		if err := rows.Scan(&job.ID, &job.UserID, &job.CVID, &job.JobID,
			&job.Title, &job.Company, &job.Location, &job.URL, &job.Description,
			&job.Score, &matched, &missing, &experience, &job.EducationMatch,
			&job.PostedDate, &job.Salary, &job.ContractType, &breakdown); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}

		job.MatchedSkills = []string(matched)
		job.MissingSkills = []string(missing)
		job.MatchedExperience = []string(experience)
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &job.Breakdown); err != nil {
				return nil, fmt.Errorf("decode breakdown: %w", err)
			}
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return jobs, nil
}

// DeleteForCV removes the stored batch for one CV.
func (s *RecommendationStore) DeleteForCV(ctx context.Context, userID string, cvID int64) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM job_recommendations WHERE user_id = $1 AND cv_id = $2`,
		userID, cvID)
	if err != nil {
		return fmt.Errorf("delete recommendations: %w", err)
	}
	return nil
}

// CleanupStale removes batches older than the retention window and returns
// the number of rows deleted.
func (s *RecommendationStore) CleanupStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.Exec(ctx,
		`DELETE FROM job_recommendations WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("cleanup recommendations: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup recommendations row count: %w", err)
	}
	if n > 0 {
		s.logger.Info("Removed stale recommendations", map[string]interface{}{"rows": n})
	}
	return n, nil
}

// UpsertSavedSearch records the user's latest interactive search criteria
// so the next visit can pre-fill the form.
func (s *RecommendationStore) UpsertSavedSearch(ctx context.Context, userID, jobTitle, location string, remote bool) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO saved_searches (user_id, job_title, location, is_remote, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET job_title = $2, location = $3, is_remote = $4, updated_at = $5`,
		userID, jobTitle, location, remote, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert saved search: %w", err)
	}
	return nil
}
