// Package errors provides standardized error handling for the alert pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Upstream job-search provider
	ErrCodeFetchFailed  ErrorCode = "ADZUNA_FETCH_FAILED"
	ErrCodeFetchTimeout ErrorCode = "ADZUNA_FETCH_TIMEOUT"

	// Messaging provider delivery failures (see DispatchCategory)
	ErrCodeChatNotFound  ErrorCode = "CHAT_NOT_FOUND"
	ErrCodeBotBlocked    ErrorCode = "BOT_BLOCKED"
	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeParseEntities ErrorCode = "PARSE_ENTITIES"
	ErrCodeEmptyChatID   ErrorCode = "EMPTY_CHAT_ID"
	ErrCodeSendTimeout   ErrorCode = "SEND_TIMEOUT"
	ErrCodeSendFailed    ErrorCode = "SEND_FAILED"

	// Record store
	ErrCodeAlertQueryFailed       ErrorCode = "ALERT_STORE_QUERY_FAILED"
	ErrCodeAlertUpdateFailed      ErrorCode = "ALERT_STORE_UPDATE_FAILED"
	ErrCodeRecommendationSaveFail ErrorCode = "RECOMMENDATION_SAVE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Dispatch Failure Classification
// ==========================

// DispatchCategory classifies a messaging-provider failure response. The
// category decides whether the dispatcher retries, and how.
type DispatchCategory string

const (
	// Permanent: the channel must be re-established by the user.
	CategoryChatNotFound DispatchCategory = "chat_not_found"
	CategoryBotBlocked   DispatchCategory = "bot_blocked"
	CategoryUserNotFound DispatchCategory = "user_not_found"

	// Recoverable: one bounded retry with different encoding/target.
	CategoryParseEntities DispatchCategory = "parse_entities"
	CategoryEmptyChatID   DispatchCategory = "empty_chat_id"

	// Terminal for this attempt, no classification from the provider.
	CategoryTimeout DispatchCategory = "timeout"
	CategoryUnknown DispatchCategory = "unknown"

	CategoryNone DispatchCategory = ""
)

// ClassifyDispatchError maps a provider error description string to a
// dispatch category. The description strings are the machine-readable part
// of the provider's error envelope.
func ClassifyDispatchError(description string) DispatchCategory {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "chat not found"):
		return CategoryChatNotFound
	case strings.Contains(desc, "bot was blocked"):
		return CategoryBotBlocked
	case strings.Contains(desc, "user not found"):
		return CategoryUserNotFound
	case strings.Contains(desc, "can't parse entities"):
		return CategoryParseEntities
	case strings.Contains(desc, "chat_id is empty"):
		return CategoryEmptyChatID
	default:
		return CategoryUnknown
	}
}

// IsPermanent reports whether the category rules out any retry.
func (c DispatchCategory) IsPermanent() bool {
	switch c {
	case CategoryChatNotFound, CategoryBotBlocked, CategoryUserNotFound:
		return true
	}
	return false
}

// ==========================
// 3. Error Constructors
// ==========================

// NewFetchFailedError wraps a non-2xx or transport error from the job-search
// provider. Not retryable within a run: the fetcher is fail-open.
func NewFetchFailedError(status int, err error) *StandardError {
	details := fmt.Sprintf("status=%d", status)
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   "Job-search provider request failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchTimeoutError creates a timeout error for a provider fetch.
func NewFetchTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchTimeout,
		Message:   "Job-search provider request timed out",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSendFailedError creates a delivery error carrying its category.
func NewSendFailedError(category DispatchCategory, description string) *StandardError {
	code := ErrCodeSendFailed
	switch category {
	case CategoryChatNotFound:
		code = ErrCodeChatNotFound
	case CategoryBotBlocked:
		code = ErrCodeBotBlocked
	case CategoryUserNotFound:
		code = ErrCodeUserNotFound
	case CategoryParseEntities:
		code = ErrCodeParseEntities
	case CategoryEmptyChatID:
		code = ErrCodeEmptyChatID
	case CategoryTimeout:
		code = ErrCodeSendTimeout
	}
	return &StandardError{
		Code:      code,
		Message:   "Notification delivery failed",
		Details:   description,
		Retryable: !category.IsPermanent(),
		Metadata:  map[string]interface{}{"category": string(category)},
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertQueryFailedError creates a retryable record-store error.
func NewAlertQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertQueryFailed,
		Message:   "Database error loading alerts",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecommendationSaveError creates a retryable record-store error.
func NewRecommendationSaveError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecommendationSaveFail,
		Message:   "Database error saving recommendations",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Helpers
// ==========================

// IsRetryableErrorCode reports whether the code is worth retrying at all.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeAlertQueryFailed, ErrCodeAlertUpdateFailed, ErrCodeRecommendationSaveFail, ErrCodeParseEntities, ErrCodeEmptyChatID:
		return true
	}
	return false
}

// GetErrorCategory groups error codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeFetchFailed, ErrCodeFetchTimeout:
		return "provider"
	case ErrCodeChatNotFound, ErrCodeBotBlocked, ErrCodeUserNotFound, ErrCodeParseEntities, ErrCodeEmptyChatID, ErrCodeSendTimeout, ErrCodeSendFailed:
		return "delivery"
	case ErrCodeAlertQueryFailed, ErrCodeAlertUpdateFailed, ErrCodeRecommendationSaveFail:
		return "store"
	default:
		return "internal"
	}
}
