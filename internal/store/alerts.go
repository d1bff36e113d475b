// internal/store/alerts.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"jobmatch-pipeline/internal/common/database"
	apperrors "jobmatch-pipeline/internal/common/errors"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/models"
)

const alertColumns = `id, user_id, name, job_title, location, is_remote, skills,
	frequency, telegram_target, is_active, last_sent_at, created_at, updated_at`

// AlertStore is the alert record store. The scheduler reads due alerts and
// writes back last_sent_at; everything else serves the user-facing CRUD
// flow.
type AlertStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewAlertStore(db *database.PostgresClient, log logger.Logger) *AlertStore {
	return &AlertStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "alert_store"}),
	}
}

// ListDue returns every active alert of the given frequency that has a
// notification target configured. Alerts without a target are excluded
// here, silently, rather than failing downstream.
func (s *AlertStore) ListDue(ctx context.Context, frequency models.Frequency) ([]models.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM job_alerts
		WHERE is_active = true AND frequency = $1 AND telegram_target <> ''
		ORDER BY created_at`, alertColumns)

	rows, err := s.db.Query(ctx, query, string(frequency))
	if err != nil {
		return nil, apperrors.NewAlertQueryFailedError(err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetByID loads one alert. A missing row returns (nil, nil).
func (s *AlertStore) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM job_alerts WHERE id = $1`, alertColumns)

	alert, err := scanAlert(s.db.QueryRow(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewAlertQueryFailedError(err)
	}
	return alert, nil
}

// ListByUser returns all of a user's alerts, newest first.
func (s *AlertStore) ListByUser(ctx context.Context, userID string) ([]models.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM job_alerts WHERE user_id = $1
		ORDER BY created_at DESC`, alertColumns)

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAlertQueryFailedError(err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// MarkDispatched persists the last-sent timestamp after a successful
// dispatch. It is the only field the scheduler ever writes.
func (s *AlertStore) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.Exec(ctx,
		`UPDATE job_alerts SET last_sent_at = $1, updated_at = $1 WHERE id = $2`,
		at, id)
	if err != nil {
		return &apperrors.StandardError{
			Code:      apperrors.ErrCodeAlertUpdateFailed,
			Message:   "Database error updating alert dispatch timestamp",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		s.logger.Warn("Dispatch timestamp update matched no alert", map[string]interface{}{
			"alert_id": id,
		})
	}
	return nil
}

// Create inserts a new alert, assigning an id when the caller left it
// blank.
func (s *AlertStore) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	alert.CreatedAt = now
	alert.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO job_alerts (id, user_id, name, job_title, location, is_remote,
			skills, frequency, telegram_target, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		alert.ID, alert.UserID, alert.Name, alert.JobTitle, alert.Location,
		alert.IsRemote, pq.Array(alert.Skills), string(alert.Frequency),
		alert.TelegramTarget, alert.IsActive, alert.CreatedAt, alert.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// Update rewrites a user's alert. Ownership is enforced in the WHERE
// clause.
func (s *AlertStore) Update(ctx context.Context, alert *models.Alert) error {
	alert.UpdatedAt = time.Now().UTC()

	result, err := s.db.Exec(ctx,
		`UPDATE job_alerts SET name = $1, job_title = $2, location = $3,
			is_remote = $4, skills = $5, frequency = $6, telegram_target = $7,
			is_active = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11`,
		alert.Name, alert.JobTitle, alert.Location, alert.IsRemote,
		pq.Array(alert.Skills), string(alert.Frequency), alert.TelegramTarget,
		alert.IsActive, alert.UpdatedAt, alert.ID, alert.UserID)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a user's alert.
func (s *AlertStore) Delete(ctx context.Context, id, userID string) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM job_alerts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var alert models.Alert
	var location, target sql.NullString
	var lastSent sql.NullTime
	var skills pq.StringArray

	err := row.Scan(&alert.ID, &alert.UserID, &alert.Name, &alert.JobTitle,
		&location, &alert.IsRemote, &skills, &alert.Frequency, &target,
		&alert.IsActive, &lastSent, &alert.CreatedAt, &alert.UpdatedAt)
	if err != nil {
		return nil, err
	}

	alert.Location = location.String
	alert.TelegramTarget = target.String
	alert.Skills = []string(skills)
	if lastSent.Valid {
		t := lastSent.Time
		alert.LastSentAt = &t
	}
	return &alert, nil
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	alerts := []models.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, apperrors.NewAlertQueryFailedError(err)
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAlertQueryFailedError(err)
	}
	return alerts, nil
}
