// internal/telegram/format_test.go
package telegram

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobmatch-pipeline/internal/matching"
	"jobmatch-pipeline/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
}

func newTestFormatter() *Formatter {
	f := NewFormatter("Job Matcher", "jobmatch.example.com/dashboard/alerts")
	f.now = fixedNow
	return f
}

func scored(posting models.JobPosting, score int) matching.ScoredPosting {
	return matching.ScoredPosting{
		Posting: posting,
		Result:  matching.MatchResult{Score: score},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestFormatJobAlert_RendersHeaderBodyAndFooter(t *testing.T) {
	jobs := []matching.ScoredPosting{
		scored(models.JobPosting{
			Title:       "Senior Go Developer",
			Company:     "Acme Ltd",
			Location:    "London",
			RedirectURL: "https://example.com/job/1",
			SalaryMin:   floatPtr(60000),
			SalaryMax:   floatPtr(85000),
			Created:     fixedNow().Add(-2 * time.Hour),
		}, 85),
	}

	msg := newTestFormatter().FormatJobAlert("@alice", "Go Jobs", jobs)

	assert.Equal(t, "@alice", msg.Target)
	assert.Equal(t, EncodingRich, msg.Mode)
	assert.Contains(t, msg.Text, "🚀 *Go Jobs*")
	assert.Contains(t, msg.Text, "Found 1 new job\\!")
	assert.Contains(t, msg.Text, "*1\\. Senior Go Developer*")
	assert.Contains(t, msg.Text, "🏢 Acme Ltd")
	assert.Contains(t, msg.Text, "📍 London")
	assert.Contains(t, msg.Text, `💰 £60,000 \- £85,000`)
	assert.Contains(t, msg.Text, "📅 Today")
	assert.Contains(t, msg.Text, "🎯 Match: 85%")
	assert.Contains(t, msg.Text, "🔗 [Apply Now](https://example.com/job/1)")
	assert.Contains(t, msg.Text, "_✨ Powered by Job Matcher_")
	assert.Contains(t, msg.Text, `_Configure alerts at: jobmatch\.example\.com/dashboard/alerts_`)
}

func TestFormatJobAlert_PluralCount(t *testing.T) {
	jobs := []matching.ScoredPosting{
		scored(models.JobPosting{Title: "A"}, 50),
		scored(models.JobPosting{Title: "B"}, 40),
	}

	msg := newTestFormatter().FormatJobAlert("@alice", "Go Jobs", jobs)

	assert.Contains(t, msg.Text, "Found 2 new jobs\\!")
	assert.Contains(t, msg.Text, "*2\\. B*")
}

func TestFormatJobAlert_FallbacksForMissingFields(t *testing.T) {
	msg := newTestFormatter().FormatJobAlert("@alice", "Any", []matching.ScoredPosting{
		scored(models.JobPosting{}, 50),
	})

	assert.Contains(t, msg.Text, "No title")
	assert.Contains(t, msg.Text, "🏢 Unknown Company")
	assert.Contains(t, msg.Text, "📍 Remote")
	assert.Contains(t, msg.Text, "📅 Recently")
	assert.NotContains(t, msg.Text, "💰")
	assert.Contains(t, msg.Text, "🔗 [Apply Now](#)")
}

func TestFormatJobAlert_EscapesFreeTextFields(t *testing.T) {
	msg := newTestFormatter().FormatJobAlert("@alice", "C# & .NET Alerts!", []matching.ScoredPosting{
		scored(models.JobPosting{
			Title:   "C++ Developer (Contract)",
			Company: "Smith & Sons Ltd.",
		}, 50),
	})

	assert.Contains(t, msg.Text, `C\# & \.NET Alerts\!`)
	assert.Contains(t, msg.Text, `C\+\+ Developer \(Contract\)`)
	assert.Contains(t, msg.Text, `Smith & Sons Ltd\.`)
}

func TestFormatJobAlert_EscapesURLParenthesisOnly(t *testing.T) {
	msg := newTestFormatter().FormatJobAlert("@alice", "Any", []matching.ScoredPosting{
		scored(models.JobPosting{Title: "Dev", RedirectURL: "https://example.com/job_(north)"}, 50),
	})

	assert.Contains(t, msg.Text, `🔗 [Apply Now](https://example.com/job_(north\))`)
}

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		name    string
		posting models.JobPosting
		want    string
	}{
		{"range", models.JobPosting{SalaryMin: floatPtr(40000), SalaryMax: floatPtr(55000)}, "£40,000 - £55,000"},
		{"only min", models.JobPosting{SalaryMin: floatPtr(40000)}, "From £40,000"},
		{"only max", models.JobPosting{SalaryMax: floatPtr(55000)}, "Up to £55,000"},
		{"absent", models.JobPosting{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSalary(&tt.posting))
		})
	}
}

func TestFormatPostedDate(t *testing.T) {
	f := newTestFormatter()

	tests := []struct {
		name    string
		created time.Time
		want    string
	}{
		{"same day", fixedNow().Add(-3 * time.Hour), "Today"},
		{"yesterday", fixedNow().Add(-30 * time.Hour), "Yesterday"},
		{"four days", fixedNow().Add(-4 * 24 * time.Hour), "4 days ago"},
		{"beyond a week", time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), "10 Aug 2026"},
		{"zero value", time.Time{}, "Recently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.formatPostedDate(tt.created))
		})
	}
}

func TestScoreFlooredAtFive(t *testing.T) {
	msg := newTestFormatter().FormatJobAlert("@alice", "Any", []matching.ScoredPosting{
		scored(models.JobPosting{Title: "Dev"}, 2),
	})

	assert.Contains(t, msg.Text, "📝 Match: 5%")
	assert.NotContains(t, msg.Text, "2%")
}

func TestScoreEmojiThresholds(t *testing.T) {
	assert.Equal(t, "🎯", scoreEmoji(80))
	assert.Equal(t, "👍", scoreEmoji(79))
	assert.Equal(t, "👍", scoreEmoji(60))
	assert.Equal(t, "🤔", scoreEmoji(59))
	assert.Equal(t, "🤔", scoreEmoji(40))
	assert.Equal(t, "📝", scoreEmoji(39))
}

func TestFormatJobAlert_EmptyJobList(t *testing.T) {
	msg := newTestFormatter().FormatJobAlert("@alice", "Go Jobs", nil)

	assert.Contains(t, msg.Text, "📭 *Go Jobs*")
	assert.Contains(t, msg.Text, `No new job matches found today\.`)
	assert.Equal(t, EncodingRich, msg.Mode)
}

func TestFormatJobAlert_TruncatesLongBody(t *testing.T) {
	longDescription := strings.Repeat("x", 300)
	jobs := make([]matching.ScoredPosting, 20)
	for i := range jobs {
		jobs[i] = scored(models.JobPosting{
			Title:       fmt.Sprintf("Position %d %s", i, longDescription),
			Company:     "Acme",
			RedirectURL: "https://example.com/job",
		}, 50)
	}

	msg := newTestFormatter().FormatJobAlert("@alice", "Big Batch", jobs)

	assert.True(t, strings.HasSuffix(msg.Text, truncationMarker))
	assert.LessOrEqual(t, len(msg.Text), maxBodyLength+len(truncationMarker))
}

func TestTruncate_TrimsDanglingEscapeBackslash(t *testing.T) {
	body := strings.Repeat("a", maxBodyLength-1) + `\.` + strings.Repeat("b", 100)

	out := truncate(body)

	assert.True(t, strings.HasSuffix(out, truncationMarker))
	cut := strings.TrimSuffix(out, truncationMarker)
	assert.Equal(t, strings.Repeat("a", maxBodyLength-1), cut)
}

func TestTruncate_ShortBodyUntouched(t *testing.T) {
	body := strings.Repeat("a", maxBodyLength)
	assert.Equal(t, body, truncate(body))
}

func TestAsPlain_StripsMarkupAndEscapes(t *testing.T) {
	rich := newTestFormatter().FormatJobAlert("@alice", "Go Jobs!", []matching.ScoredPosting{
		scored(models.JobPosting{
			Title:       "Senior Dev (Remote)",
			Company:     "Acme Ltd.",
			RedirectURL: "https://example.com/job/1",
		}, 70),
	})

	plain := AsPlain(rich)

	assert.Equal(t, EncodingPlain, plain.Mode)
	assert.Equal(t, rich.Target, plain.Target)
	assert.NotContains(t, plain.Text, `\`)
	assert.NotContains(t, plain.Text, "*")
	assert.Contains(t, plain.Text, "Go Jobs!")
	assert.Contains(t, plain.Text, "Senior Dev (Remote)")
	assert.Contains(t, plain.Text, "Apply Now")
	assert.NotContains(t, plain.Text, "https://example.com/job/1")
}
