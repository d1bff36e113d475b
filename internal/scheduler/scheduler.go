// internal/scheduler/scheduler.go

// Package scheduler owns the two fixed-time alert triggers and the batch
// runner that fans due alerts out to per-alert processing units.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"jobmatch-pipeline/internal/common/config"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/common/metrics"
	"jobmatch-pipeline/internal/models"
)

// RunRecorder receives one measurement per finished batch run.
// *observability.Observability satisfies it.
type RunRecorder interface {
	RecordRun(ctx context.Context, outcome string)
	RecordRunDuration(ctx context.Context, duration time.Duration, outcome string)
}

// Scheduler is the process-scoped owner of the daily and weekly triggers.
// Both fire in a single configured time zone. Stop halts the timers but
// lets an in-flight batch drain.
type Scheduler struct {
	cron     *cron.Cron
	runner   *Runner
	alerts   AlertSource
	recorder RunRecorder
	cfg      config.SchedulerConfig
	logger   logger.Logger

	running sync.WaitGroup
}

func New(runner *Runner, alerts AlertSource, recorder RunRecorder, cfg config.SchedulerConfig, log logger.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		runner:   runner,
		alerts:   alerts,
		recorder: recorder,
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "alert_scheduler"}),
	}, nil
}

// Start registers both triggers and starts the timers.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.DailySpec, func() {
		s.RunBatch(ctx, models.FrequencyDaily)
	}); err != nil {
		return fmt.Errorf("register daily trigger %q: %w", s.cfg.DailySpec, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.WeeklySpec, func() {
		s.RunBatch(ctx, models.FrequencyWeekly)
	}); err != nil {
		return fmt.Errorf("register weekly trigger %q: %w", s.cfg.WeeklySpec, err)
	}

	s.cron.Start()
	s.logger.Info("Alert scheduler started", map[string]interface{}{
		"daily_spec":  s.cfg.DailySpec,
		"weekly_spec": s.cfg.WeeklySpec,
		"timezone":    s.cfg.Timezone,
	})
	return nil
}

// Stop halts both timers and waits for in-flight batches to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.running.Wait()
	s.logger.Info("Alert scheduler stopped", nil)
}

// TriggerAlert runs one alert on demand, used for user-initiated tests.
func (s *Scheduler) TriggerAlert(ctx context.Context, alertID string) bool {
	return s.runner.Trigger(ctx, alertID)
}

// RunBatch processes every due alert of one frequency with bounded
// concurrency and logs an aggregated summary. Per-alert failures stay
// inside their unit; a batch never aborts part-way.
func (s *Scheduler) RunBatch(ctx context.Context, frequency models.Frequency) BatchSummary {
	s.running.Add(1)
	defer s.running.Done()

	runID := uuid.NewString()
	log := s.logger.WithFields(map[string]interface{}{
		"run_id":    runID,
		"frequency": string(frequency),
	})
	started := time.Now()
	log.Info("Alert batch started", nil)

	alerts, err := s.alerts.ListDue(ctx, frequency)
	if err != nil {
		log.Error("Failed to load due alerts", map[string]interface{}{"error": err.Error()})
		s.recordRun(ctx, started, "load_failed")
		return BatchSummary{RunID: runID, Frequency: frequency}
	}
	if len(alerts) == 0 {
		log.Info("No due alerts", nil)
		s.recordRun(ctx, started, "empty")
		return BatchSummary{RunID: runID, Frequency: frequency}
	}

	concurrency := s.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(alerts))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range alerts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.runner.Process(ctx, &alerts[i])
		}(i)
	}
	wg.Wait()

	summary := summarize(runID, frequency, results)
	for _, result := range results {
		metrics.AlertsProcessed.WithLabelValues(string(frequency), string(result.Outcome)).Inc()
	}

	log.Info("Alert batch finished", map[string]interface{}{
		"alerts":          len(alerts),
		"sent":            summary.Sent,
		"no_jobs":         summary.NoJobs,
		"dispatch_failed": summary.DispatchFailed,
		"skipped":         summary.Skipped,
		"duration_ms":     time.Since(started).Milliseconds(),
	})
	s.recordRun(ctx, started, batchOutcome(summary))
	return summary
}

func (s *Scheduler) recordRun(ctx context.Context, started time.Time, outcome string) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordRun(ctx, outcome)
	s.recorder.RecordRunDuration(ctx, time.Since(started), outcome)
}

// batchOutcome collapses a summary into one label for the run metrics.
func batchOutcome(summary BatchSummary) string {
	if summary.DispatchFailed > 0 {
		return "partial_failure"
	}
	return "completed"
}

// BatchSummary aggregates the per-alert results of one batch run.
type BatchSummary struct {
	RunID          string
	Frequency      models.Frequency
	Sent           int
	NoJobs         int
	DispatchFailed int
	Skipped        int
	Results        []Result
}

func summarize(runID string, frequency models.Frequency, results []Result) BatchSummary {
	summary := BatchSummary{RunID: runID, Frequency: frequency, Results: results}
	for _, result := range results {
		switch result.Outcome {
		case OutcomeSent:
			summary.Sent++
		case OutcomeNoJobs:
			summary.NoJobs++
		case OutcomeDispatchFailed:
			summary.DispatchFailed++
		case OutcomeSkipped:
			summary.Skipped++
		}
	}
	return summary
}
