// internal/scheduler/runner_test.go
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmatch-pipeline/internal/common/config"
	"jobmatch-pipeline/internal/common/database"
	apperrors "jobmatch-pipeline/internal/common/errors"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/models"
	"jobmatch-pipeline/internal/telegram"
)

type fakeAlertSource struct {
	mu         sync.Mutex
	due        []models.Alert
	byID       map[string]*models.Alert
	dispatched map[string]time.Time
	listErr    error
}

func newFakeAlertSource(alerts ...models.Alert) *fakeAlertSource {
	src := &fakeAlertSource{
		due:        alerts,
		byID:       map[string]*models.Alert{},
		dispatched: map[string]time.Time{},
	}
	for i := range alerts {
		src.byID[alerts[i].ID] = &alerts[i]
	}
	return src
}

func (f *fakeAlertSource) ListDue(ctx context.Context, frequency models.Frequency) ([]models.Alert, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	due := []models.Alert{}
	for _, alert := range f.due {
		if alert.Frequency == frequency {
			due = append(due, alert)
		}
	}
	return due, nil
}

func (f *fakeAlertSource) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	return f.byID[id], nil
}

func (f *fakeAlertSource) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched[id] = at
	return nil
}

type fakeFetcher struct {
	mu       sync.Mutex
	postings []models.JobPosting
	calls    int
}

func (f *fakeFetcher) SearchForAlert(ctx context.Context, alert *models.Alert) ([]models.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.postings, nil
}

func (f *fakeFetcher) SearchRecent(ctx context.Context, query, location string, remote bool, maxDaysOld, maxResults int) ([]models.JobPosting, error) {
	return f.postings, nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	ok       bool
	category apperrors.DispatchCategory
	sent     []telegram.Message
}

func (f *fakeDispatcher) Send(ctx context.Context, msg telegram.Message) (bool, apperrors.DispatchCategory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.ok, f.category
}

func (f *fakeDispatcher) SendConnectionTest(ctx context.Context, target string) bool {
	return f.ok
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		DailySpec:   "0 9 * * *",
		WeeklySpec:  "0 9 * * 1",
		Timezone:    "Europe/London",
		Concurrency: 2,
		TopJobs:     5,
		LockTTL:     300,
		DedupTTL:    7 * 24 * 3600,
	}
}

func testRedis(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return &database.RedisClient{Client: client}, mr
}

func dailyAlert(id string) models.Alert {
	return models.Alert{
		ID:             id,
		UserID:         "user-1",
		Name:           "Go Jobs",
		JobTitle:       "Go Developer",
		Skills:         []string{"go", "docker"},
		Frequency:      models.FrequencyDaily,
		TelegramTarget: "@alice",
		IsActive:       true,
	}
}

func goPostings(n int) []models.JobPosting {
	postings := make([]models.JobPosting, n)
	for i := range postings {
		postings[i] = models.JobPosting{
			ProviderID:  fmt.Sprintf("job-%d", i),
			Title:       "Go Developer",
			Company:     "Acme",
			Description: "go docker services",
			RedirectURL: fmt.Sprintf("https://example.com/%d", i),
		}
	}
	return postings
}

func newTestRunner(t *testing.T, alerts AlertSource, fetcher *fakeFetcher, dispatcher *fakeDispatcher, redis *database.RedisClient) *Runner {
	t.Helper()
	formatter := telegram.NewFormatter("Job Matcher", "jobmatch.example.com/alerts")
	return NewRunner(alerts, fetcher, dispatcher, formatter, redis, testSchedulerConfig(), logger.NewTestLogger(t))
}

func TestProcess_SendsAndMarksDispatched(t *testing.T) {
	alert := dailyAlert("alert-1")
	source := newFakeAlertSource(alert)
	fetcher := &fakeFetcher{postings: goPostings(3)}
	dispatcher := &fakeDispatcher{ok: true}
	redis, mr := testRedis(t)
	runner := newTestRunner(t, source, fetcher, dispatcher, redis)

	result := runner.Process(context.Background(), &alert)

	assert.Equal(t, OutcomeSent, result.Outcome)
	assert.Equal(t, 3, result.Jobs)
	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, "@alice", dispatcher.sent[0].Target)
	assert.Contains(t, dispatcher.sent[0].Text, "Go Jobs")

	_, marked := source.dispatched["alert-1"]
	assert.True(t, marked)

	// Dedup set recorded, lease released.
	seen, err := redis.SIsMember(context.Background(), dedupKey("alert-1"), "job-0")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.False(t, mr.Exists(leaseKey("alert-1")))
}

func TestProcess_EmptyFetchSendsNothing(t *testing.T) {
	alert := dailyAlert("alert-1")
	source := newFakeAlertSource(alert)
	dispatcher := &fakeDispatcher{ok: true}
	redis, _ := testRedis(t)
	runner := newTestRunner(t, source, &fakeFetcher{}, dispatcher, redis)

	result := runner.Process(context.Background(), &alert)

	assert.Equal(t, OutcomeNoJobs, result.Outcome)
	assert.Empty(t, dispatcher.sent)
	assert.Empty(t, source.dispatched)
}

func TestProcess_DispatchFailureSkipsTimestamp(t *testing.T) {
	alert := dailyAlert("alert-1")
	source := newFakeAlertSource(alert)
	fetcher := &fakeFetcher{postings: goPostings(2)}
	dispatcher := &fakeDispatcher{ok: false, category: apperrors.CategoryBotBlocked}
	redis, _ := testRedis(t)
	runner := newTestRunner(t, source, fetcher, dispatcher, redis)

	result := runner.Process(context.Background(), &alert)

	assert.Equal(t, OutcomeDispatchFailed, result.Outcome)
	assert.Equal(t, apperrors.CategoryBotBlocked, result.Category)
	assert.Empty(t, source.dispatched)

	// Nothing was delivered, so nothing may enter the dedup set.
	seen, err := redis.SIsMember(context.Background(), dedupKey("alert-1"), "job-0")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestProcess_TopJobsCap(t *testing.T) {
	alert := dailyAlert("alert-1")
	fetcher := &fakeFetcher{postings: goPostings(12)}
	dispatcher := &fakeDispatcher{ok: true}
	redis, _ := testRedis(t)
	runner := newTestRunner(t, newFakeAlertSource(alert), fetcher, dispatcher, redis)

	result := runner.Process(context.Background(), &alert)

	assert.Equal(t, OutcomeSent, result.Outcome)
	assert.Equal(t, 5, result.Jobs)
}

func TestProcess_LeaseHeldElsewhereSkips(t *testing.T) {
	alert := dailyAlert("alert-1")
	fetcher := &fakeFetcher{postings: goPostings(1)}
	redis, mr := testRedis(t)
	mr.Set(leaseKey("alert-1"), "other-instance")
	runner := newTestRunner(t, newFakeAlertSource(alert), fetcher, &fakeDispatcher{ok: true}, redis)

	result := runner.Process(context.Background(), &alert)

	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Zero(t, fetcher.calls)
}

func TestProcess_DedupFiltersAlreadySentPostings(t *testing.T) {
	alert := dailyAlert("alert-1")
	fetcher := &fakeFetcher{postings: goPostings(2)}
	dispatcher := &fakeDispatcher{ok: true}
	redis, _ := testRedis(t)
	require.NoError(t, redis.SAdd(context.Background(), dedupKey("alert-1"), "job-0", "job-1"))
	runner := newTestRunner(t, newFakeAlertSource(alert), fetcher, dispatcher, redis)

	result := runner.Process(context.Background(), &alert)

	assert.Equal(t, OutcomeNoJobs, result.Outcome)
	assert.Empty(t, dispatcher.sent)
}

func TestProcess_WithoutRedisStillWorks(t *testing.T) {
	alert := dailyAlert("alert-1")
	fetcher := &fakeFetcher{postings: goPostings(1)}
	dispatcher := &fakeDispatcher{ok: true}
	runner := newTestRunner(t, newFakeAlertSource(alert), fetcher, dispatcher, nil)

	result := runner.Process(context.Background(), &alert)

	assert.Equal(t, OutcomeSent, result.Outcome)
}

func TestTrigger(t *testing.T) {
	sent := dailyAlert("alert-sent")
	noTarget := dailyAlert("alert-no-target")
	noTarget.TelegramTarget = ""
	source := newFakeAlertSource(sent, noTarget)
	fetcher := &fakeFetcher{postings: goPostings(1)}
	dispatcher := &fakeDispatcher{ok: true}
	runner := newTestRunner(t, source, fetcher, dispatcher, nil)
	ctx := context.Background()

	assert.True(t, runner.Trigger(ctx, "alert-sent"))
	assert.False(t, runner.Trigger(ctx, "alert-no-target"))
	assert.False(t, runner.Trigger(ctx, "missing-alert"))
}

func TestTrigger_NoJobsIsStillSuccess(t *testing.T) {
	alert := dailyAlert("alert-1")
	runner := newTestRunner(t, newFakeAlertSource(alert), &fakeFetcher{}, &fakeDispatcher{ok: true}, nil)

	assert.True(t, runner.Trigger(context.Background(), "alert-1"))
}

func TestTrigger_DispatchFailureIsFailure(t *testing.T) {
	alert := dailyAlert("alert-1")
	fetcher := &fakeFetcher{postings: goPostings(1)}
	dispatcher := &fakeDispatcher{ok: false, category: apperrors.CategoryChatNotFound}
	runner := newTestRunner(t, newFakeAlertSource(alert), fetcher, dispatcher, nil)

	assert.False(t, runner.Trigger(context.Background(), "alert-1"))
}
