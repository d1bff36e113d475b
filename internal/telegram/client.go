// internal/telegram/client.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobmatch-pipeline/internal/common/config"
	apperrors "jobmatch-pipeline/internal/common/errors"
	"jobmatch-pipeline/internal/common/httpclient"
	"jobmatch-pipeline/internal/common/logger"
	"jobmatch-pipeline/internal/common/metrics"
)

// Dispatcher delivers a formatted message. Satisfied by Client and by
// scheduler test fakes.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (bool, apperrors.DispatchCategory)
	SendConnectionTest(ctx context.Context, target string) bool
}

// Client is the messaging-provider adapter. A send is one HTTP POST;
// failure envelopes are classified and drive at most one bounded retry
// with a different encoding or target normalization.
type Client struct {
	cfg        config.TelegramConfig
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg config.TelegramConfig, log logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		logger:     log.WithFields(map[string]interface{}{"component": "telegram_client"}),
	}
}

// Send delivers one message. It returns true only on a provider-acknowledged
// success; every other outcome returns false with its failure category.
//
// Recoverable classifications get exactly one follow-up attempt: a rich-mode
// parse rejection re-renders in plain encoding, an empty-chat-id rejection
// retries with an @-prefixed target. Permanent classifications and timeouts
// return immediately.
func (c *Client) Send(ctx context.Context, msg Message) (bool, apperrors.DispatchCategory) {
	if msg.Target == "" {
		c.logger.Warn("Dropping message with no target", nil)
		metrics.DispatchFailures.WithLabelValues(string(apperrors.CategoryEmptyChatID)).Inc()
		return false, apperrors.CategoryEmptyChatID
	}

	category := c.attempt(ctx, msg)
	if category == apperrors.CategoryNone {
		return true, apperrors.CategoryNone
	}

	switch category {
	case apperrors.CategoryParseEntities:
		if msg.Mode == EncodingRich {
			c.logger.Warn("Rich-mode parse rejected, retrying in plain encoding", map[string]interface{}{
				"target": msg.Target,
			})
			if retryCat := c.attempt(ctx, AsPlain(msg)); retryCat == apperrors.CategoryNone {
				return true, apperrors.CategoryNone
			}
		}
	case apperrors.CategoryEmptyChatID:
		if alt, ok := alternateTarget(msg.Target); ok {
			c.logger.Warn("Empty chat id rejected, retrying with prefixed target", map[string]interface{}{
				"target": alt,
			})
			retryMsg := msg
			retryMsg.Target = alt
			if retryCat := c.attempt(ctx, retryMsg); retryCat == apperrors.CategoryNone {
				return true, apperrors.CategoryNone
			}
		}
	}

	metrics.DispatchFailures.WithLabelValues(string(category)).Inc()
	c.logger.Error("Notification delivery failed", map[string]interface{}{
		"target":   msg.Target,
		"category": string(category),
	})
	return false, category
}

// SendConnectionTest verifies that the target's channel is reachable.
func (c *Client) SendConnectionTest(ctx context.Context, target string) bool {
	ok, _ := c.Send(ctx, ConnectionTestMessage(target))
	return ok
}

// attempt performs one POST and returns CategoryNone on acknowledged
// success.
func (c *Client) attempt(ctx context.Context, msg Message) apperrors.DispatchCategory {
	payload := sendRequest{
		ChatID:                msg.Target,
		Text:                  msg.Text,
		ParseMode:             string(msg.Mode),
		DisableWebPagePreview: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.CategoryUnknown
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(c.cfg.APIURL, "/"), c.cfg.BotToken)
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.CategoryUnknown
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		// Transport and timeout failures are terminal for this attempt.
		c.logger.Warn("Provider request failed", map[string]interface{}{"error": err.Error()})
		return apperrors.CategoryTimeout
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apperrors.CategoryUnknown
	}

	if envelope.OK {
		metrics.NotificationsSent.WithLabelValues(encodingLabel(msg.Mode)).Inc()
		return apperrors.CategoryNone
	}

	return apperrors.ClassifyDispatchError(envelope.Description)
}

// alternateTarget returns the @-prefixed form of a bare username. Numeric
// chat ids and already-prefixed handles have no alternate form.
func alternateTarget(target string) (string, bool) {
	if strings.HasPrefix(target, "@") || isNumeric(target) {
		return "", false
	}
	return "@" + target, true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func encodingLabel(mode Encoding) string {
	if mode == EncodingPlain {
		return "plain"
	}
	return "rich"
}
