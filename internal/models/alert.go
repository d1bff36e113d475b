// internal/models/alert.go
package models

import "time"

// Frequency is how often an alert is evaluated by the scheduler.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Alert is a saved, recurring search-and-notify criterion owned by a user.
// The scheduler only reads alerts and writes back LastSentAt after a
// successful dispatch; everything else is owned by the user-facing flow.
type Alert struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	JobTitle       string     `json:"jobTitle"`
	Location       string     `json:"location,omitempty"`
	IsRemote       bool       `json:"isRemote"`
	Skills         []string   `json:"skills"`
	Frequency      Frequency  `json:"frequency"`
	TelegramTarget string     `json:"telegramTarget,omitempty"`
	IsActive       bool       `json:"isActive"`
	LastSentAt     *time.Time `json:"lastSentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HasTarget reports whether a notification target is configured. Alerts
// without one are silently excluded from scheduled runs.
func (a *Alert) HasTarget() bool {
	return a.TelegramTarget != ""
}
