// internal/adzuna/client.go
package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobmatch-pipeline/internal/common/config"
	"jobmatch-pipeline/internal/common/httpclient"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/common/metrics"
	"jobmatch-pipeline/internal/models"
)

const (
	alertResultsPerPage     = 20
	alertMaxDaysOld         = 1
	detailsURLPattern       = "https://www.adzuna.%s/jobs/details"
	defaultDetailsCountryTL = "co.uk"
)

// Fetcher retrieves job postings matching a search. Satisfied by Client and
// by scheduler test fakes.
type Fetcher interface {
	SearchForAlert(ctx context.Context, alert *models.Alert) ([]models.JobPosting, error)
	SearchRecent(ctx context.Context, query, location string, remote bool, maxDaysOld, maxResults int) ([]models.JobPosting, error)
}

// Client is the job-search provider adapter. Fetch failures are fail-open:
// a non-2xx status or transport error yields an empty posting list so one
// flaky provider response never hard-fails an alert run.
type Client struct {
	cfg        config.AdzunaConfig
	httpClient *httpclient.Client
	logger     logger.Logger
	detailsURL string
}

func NewClient(cfg config.AdzunaConfig, log logger.Logger) *Client {
	tld := defaultDetailsCountryTL
	if cfg.Country != "" && cfg.Country != "gb" {
		tld = cfg.Country
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		logger:     log.WithFields(map[string]interface{}{"component": "adzuna_client"}),
		detailsURL: fmt.Sprintf(detailsURLPattern, tld),
	}
}

// SearchForAlert fetches postings for one alert: title plus the first three
// skills as the free-text query, restricted to the last day, newest first.
func (c *Client) SearchForAlert(ctx context.Context, alert *models.Alert) ([]models.JobPosting, error) {
	query := buildAlertQuery(alert)

	params := url.Values{}
	params.Set("what", query)
	params.Set("results_per_page", strconv.Itoa(alertResultsPerPage))
	params.Set("max_days_old", strconv.Itoa(alertMaxDaysOld))
	params.Set("sort_by", "date")
	if alert.Location != "" {
		params.Set("where", alert.Location)
	}
	if alert.IsRemote {
		params.Set("remote", "true")
	}

	return c.search(ctx, "alert", params)
}

// SearchRecent is the interactive recommendation query: a wider posting
// window and a smaller page, ranked by the provider's default relevance.
func (c *Client) SearchRecent(ctx context.Context, query, location string, remote bool, maxDaysOld, maxResults int) ([]models.JobPosting, error) {
	params := url.Values{}
	params.Set("what", query)
	params.Set("results_per_page", strconv.Itoa(maxResults))
	params.Set("max_days_old", strconv.Itoa(maxDaysOld))
	if location != "" {
		params.Set("where", location)
	}
	if remote {
		params.Set("remote", "true")
	}

	return c.search(ctx, "recommend", params)
}

func (c *Client) search(ctx context.Context, mode string, params url.Values) ([]models.JobPosting, error) {
	params.Set("app_id", c.cfg.AppID)
	params.Set("app_key", c.cfg.AppKey)

	endpoint := fmt.Sprintf("%s/jobs/%s/search/1?%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Country, params.Encode())

	start := time.Now()
	postings, err := c.doSearch(ctx, endpoint)
	metrics.FetchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("Provider search failed, returning empty result set", map[string]interface{}{
			"mode":  mode,
			"error": err.Error(),
		})
		return []models.JobPosting{}, nil
	}

	metrics.PostingsFetched.WithLabelValues(mode).Add(float64(len(postings)))
	c.logger.Debug("Provider search completed", map[string]interface{}{
		"mode":  mode,
		"count": len(postings),
	})
	return postings, nil
}

func (c *Client) doSearch(ctx context.Context, endpoint string) ([]models.JobPosting, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(envelope.Results))
	for i := range envelope.Results {
		postings = append(postings, envelope.Results[i].toPosting(c.detailsURL))
	}
	return postings, nil
}

// buildAlertQuery joins the alert's job title with up to three of its
// skills.
func buildAlertQuery(alert *models.Alert) string {
	query := alert.JobTitle
	if len(alert.Skills) > 0 {
		skills := alert.Skills
		if len(skills) > 3 {
			skills = skills[:3]
		}
		query += " " + strings.Join(skills, " ")
	}
	return strings.TrimSpace(query)
}
