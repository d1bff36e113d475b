// internal/scheduler/runner.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"jobmatch-pipeline/internal/adzuna"
	"jobmatch-pipeline/internal/common/config"
	"jobmatch-pipeline/internal/common/database"
	apperrors "jobmatch-pipeline/internal/common/errors"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/matching"
	"jobmatch-pipeline/internal/models"
	"jobmatch-pipeline/internal/telegram"
)

// Outcome is the terminal state of one per-alert unit.
type Outcome string

const (
	OutcomeSent           Outcome = "sent"
	OutcomeNoJobs         Outcome = "no_jobs"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
	OutcomeSkipped        Outcome = "skipped"
)

// Result is the typed outcome of one alert-processing unit, aggregated by
// the batch runner into a summary instead of relying on swallowed errors.
type Result struct {
	AlertID  string
	Outcome  Outcome
	Category apperrors.DispatchCategory
	Jobs     int
}

// AlertSource is the slice of the alert store the runner needs.
type AlertSource interface {
	ListDue(ctx context.Context, frequency models.Frequency) ([]models.Alert, error)
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	MarkDispatched(ctx context.Context, id string, at time.Time) error
}

// Runner executes one alert's fetch-score-notify unit. Failures inside a
// unit never escape to the batch; they come back as a Result.
type Runner struct {
	alerts     AlertSource
	fetcher    adzuna.Fetcher
	dispatcher telegram.Dispatcher
	formatter  *telegram.Formatter
	engine     *matching.Engine
	redis      *database.RedisClient
	cfg        config.SchedulerConfig
	logger     logger.Logger

	now func() time.Time
}

func NewRunner(alerts AlertSource, fetcher adzuna.Fetcher, dispatcher telegram.Dispatcher, formatter *telegram.Formatter, redis *database.RedisClient, cfg config.SchedulerConfig, log logger.Logger) *Runner {
	return &Runner{
		alerts:     alerts,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		formatter:  formatter,
		engine:     matching.NewEngine(),
		redis:      redis,
		cfg:        cfg,
		logger:     log.WithFields(map[string]interface{}{"component": "alert_runner"}),
		now:        time.Now,
	}
}

// Process runs one alert unit end to end and returns its Result. The unit
// is leased in redis first so two scheduler instances never double-send;
// if redis is down the lease is skipped rather than blocking the run.
func (r *Runner) Process(ctx context.Context, alert *models.Alert) Result {
	log := r.logger.WithFields(map[string]interface{}{
		"alert_id": alert.ID,
		"user_id":  alert.UserID,
	})

	release, acquired := r.acquireLease(ctx, alert.ID)
	if !acquired {
		log.Info("Alert already being processed elsewhere, skipping", nil)
		return Result{AlertID: alert.ID, Outcome: OutcomeSkipped}
	}
	defer release()

	postings, err := r.fetcher.SearchForAlert(ctx, alert)
	if err != nil {
		// The fetcher is fail-open; an error here is unexpected but still
		// must not abort the batch.
		log.Error("Posting fetch failed", map[string]interface{}{"error": err.Error()})
		return Result{AlertID: alert.ID, Outcome: OutcomeNoJobs}
	}

	postings = r.filterAlreadySent(ctx, alert.ID, postings)
	if len(postings) == 0 {
		log.Info("No new postings for alert", nil)
		return Result{AlertID: alert.ID, Outcome: OutcomeNoJobs}
	}

	top := r.scoreAndRank(alert, postings)
	if len(top) == 0 {
		return Result{AlertID: alert.ID, Outcome: OutcomeNoJobs}
	}

	msg := r.formatter.FormatJobAlert(alert.TelegramTarget, alert.Name, top)
	ok, category := r.dispatcher.Send(ctx, msg)
	if !ok {
		log.Error("Notification dispatch failed", map[string]interface{}{
			"category": string(category),
		})
		return Result{AlertID: alert.ID, Outcome: OutcomeDispatchFailed, Category: category, Jobs: len(top)}
	}

	r.rememberSent(ctx, alert.ID, top)

	if err := r.alerts.MarkDispatched(ctx, alert.ID, r.now().UTC()); err != nil {
		// The notification went out; a failed timestamp write means at
		// worst a duplicate on the next trigger.
		log.Warn("Failed to persist dispatch timestamp", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Alert notification sent", map[string]interface{}{"jobs": len(top)})
	return Result{AlertID: alert.ID, Outcome: OutcomeSent, Jobs: len(top)}
}

// Trigger runs one alert on demand, outside the fixed schedule. It reports
// true when the alert was processed cleanly, whether or not any postings
// matched; delivery failures and unknown ids report false.
func (r *Runner) Trigger(ctx context.Context, alertID string) bool {
	alert, err := r.alerts.GetByID(ctx, alertID)
	if err != nil {
		r.logger.Error("Failed to load alert for manual trigger", map[string]interface{}{
			"alert_id": alertID,
			"error":    err.Error(),
		})
		return false
	}
	if alert == nil {
		r.logger.Warn("Manual trigger for unknown alert", map[string]interface{}{
			"alert_id": alertID,
		})
		return false
	}
	if !alert.HasTarget() {
		r.logger.Warn("Manual trigger for alert without a target", map[string]interface{}{
			"alert_id": alertID,
		})
		return false
	}

	result := r.Process(ctx, alert)
	return result.Outcome == OutcomeSent || result.Outcome == OutcomeNoJobs
}

func (r *Runner) scoreAndRank(alert *models.Alert, postings []models.JobPosting) []matching.ScoredPosting {
	criteria := matching.CriteriaFromAlert(*alert)
	if criteria.IsEmpty() {
		return nil
	}

	scored := make([]matching.ScoredPosting, 0, len(postings))
	for _, posting := range postings {
		scored = append(scored, matching.ScoredPosting{
			Posting: posting,
			Result:  r.engine.Score(criteria, posting),
		})
	}
	matching.Rank(scored)

	if r.cfg.TopJobs > 0 && len(scored) > r.cfg.TopJobs {
		scored = scored[:r.cfg.TopJobs]
	}
	return scored
}

// acquireLease takes the per-alert processing lease. Redis being down
// degrades to single-instance behavior instead of stopping the run.
func (r *Runner) acquireLease(ctx context.Context, alertID string) (release func(), acquired bool) {
	noop := func() {}
	if r.redis == nil {
		return noop, true
	}

	key := leaseKey(alertID)
	ttl := time.Duration(r.cfg.LockTTL) * time.Second
	ok, err := r.redis.SetNX(ctx, key, r.now().Unix(), ttl)
	if err != nil {
		r.logger.Warn("Lease acquisition failed, proceeding without it", map[string]interface{}{
			"alert_id": alertID,
			"error":    err.Error(),
		})
		return noop, true
	}
	if !ok {
		return noop, false
	}
	return func() {
		if err := r.redis.Del(context.Background(), key); err != nil {
			r.logger.Debug("Lease release failed, key will expire", map[string]interface{}{
				"alert_id": alertID,
			})
		}
	}, true
}

// filterAlreadySent drops postings this alert has already notified about.
// Dedup state lives in redis with a bounded TTL; errors fail open so a
// redis outage can only cause a duplicate, never a missed notification.
func (r *Runner) filterAlreadySent(ctx context.Context, alertID string, postings []models.JobPosting) []models.JobPosting {
	if r.redis == nil {
		return postings
	}

	key := dedupKey(alertID)
	fresh := make([]models.JobPosting, 0, len(postings))
	for _, posting := range postings {
		if posting.ProviderID == "" {
			fresh = append(fresh, posting)
			continue
		}
		seen, err := r.redis.SIsMember(ctx, key, posting.ProviderID)
		if err != nil {
			return postings
		}
		if !seen {
			fresh = append(fresh, posting)
		}
	}
	return fresh
}

func (r *Runner) rememberSent(ctx context.Context, alertID string, sent []matching.ScoredPosting) {
	if r.redis == nil {
		return
	}

	key := dedupKey(alertID)
	ids := make([]interface{}, 0, len(sent))
	for _, sp := range sent {
		if sp.Posting.ProviderID != "" {
			ids = append(ids, sp.Posting.ProviderID)
		}
	}
	if len(ids) == 0 {
		return
	}

	if err := r.redis.SAdd(ctx, key, ids...); err != nil {
		r.logger.Debug("Dedup record failed", map[string]interface{}{"alert_id": alertID})
		return
	}
	if err := r.redis.Expire(ctx, key, time.Duration(r.cfg.DedupTTL)*time.Second); err != nil {
		r.logger.Debug("Dedup TTL refresh failed", map[string]interface{}{"alert_id": alertID})
	}
}

func leaseKey(alertID string) string {
	return fmt.Sprintf("alerts:lease:%s", alertID)
}

func dedupKey(alertID string) string {
	return fmt.Sprintf("alerts:sent:%s", alertID)
}
