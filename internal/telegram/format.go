// internal/telegram/format.go
package telegram

import (
	"fmt"
	"strings"
	"time"

	"jobmatch-pipeline/internal/matching"
	"jobmatch-pipeline/internal/models"
)

const (
	// maxBodyLength is the rendered-body cap, under the provider's 4096
	// hard limit with room for the truncation marker.
	maxBodyLength    = 4000
	truncationMarker = "\n\n_\\[Message truncated due to length\\]_"

	minDisplayedScore = 5
)

// Formatter renders ranked job lists into protocol-safe message bodies.
type Formatter struct {
	brandName    string
	dashboardURL string

	// now is swappable for date-label tests.
	now func() time.Time
}

func NewFormatter(brandName, dashboardURL string) *Formatter {
	if brandName == "" {
		brandName = "Job Matcher"
	}
	return &Formatter{
		brandName:    brandName,
		dashboardURL: dashboardURL,
		now:          time.Now,
	}
}

// FormatJobAlert renders the rich-encoded notification for one alert run.
// Escaping happens field by field before insertion; the length cap applies
// to the final escaped body.
func (f *Formatter) FormatJobAlert(target, alertName string, jobs []matching.ScoredPosting) Message {
	if len(jobs) == 0 {
		return Message{
			Text:   fmt.Sprintf("📭 *%s*\n\nNo new job matches found today\\.", EscapeMarkdownV2(alertName)),
			Target: target,
			Mode:   EncodingRich,
		}
	}

	var b strings.Builder
	plural := ""
	if len(jobs) > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "🚀 *%s*\n", EscapeMarkdownV2(alertName))
	fmt.Fprintf(&b, "Found %d new job%s\\!\n\n", len(jobs), plural)

	for i, job := range jobs {
		f.writeJob(&b, i+1, job)
	}

	fmt.Fprintf(&b, "_✨ Powered by %s_\n", EscapeMarkdownV2(f.brandName))
	fmt.Fprintf(&b, "_Configure alerts at: %s_", EscapeMarkdownV2(f.dashboardURL))

	return Message{
		Text:   truncate(b.String()),
		Target: target,
		Mode:   EncodingRich,
	}
}

// AsPlain re-renders a rich message in the plain fallback encoding.
func AsPlain(msg Message) Message {
	return Message{
		Text:   StripMarkdownV2(msg.Text),
		Target: msg.Target,
		Mode:   EncodingPlain,
	}
}

// ConnectionTestMessage is the body sent when verifying a user's channel.
func ConnectionTestMessage(target string) Message {
	return Message{
		Text:   "👋 *Connection Test*\n\nThis is a test message to verify that our bot can send you notifications\\.",
		Target: target,
		Mode:   EncodingRich,
	}
}

func (f *Formatter) writeJob(b *strings.Builder, rank int, job matching.ScoredPosting) {
	posting := job.Posting

	title := posting.Title
	if title == "" {
		title = "No title"
	}
	company := posting.Company
	if company == "" {
		company = "Unknown Company"
	}
	location := posting.Location
	if location == "" {
		location = "Remote"
	}

	fmt.Fprintf(b, "*%d\\. %s*\n", rank, EscapeMarkdownV2(title))
	fmt.Fprintf(b, "🏢 %s\n", EscapeMarkdownV2(company))
	fmt.Fprintf(b, "📍 %s\n", EscapeMarkdownV2(location))

	if salary := formatSalary(&posting); salary != "" {
		fmt.Fprintf(b, "💰 %s\n", EscapeMarkdownV2(salary))
	}

	fmt.Fprintf(b, "📅 %s\n", EscapeMarkdownV2(f.formatPostedDate(posting.Created)))

	score := job.Result.Score
	displayed := score
	if displayed < minDisplayedScore {
		displayed = minDisplayedScore
	}
	fmt.Fprintf(b, "%s Match: %s\n", scoreEmoji(score), EscapeMarkdownV2(fmt.Sprintf("%d%%", displayed)))

	url := posting.RedirectURL
	if url == "" {
		url = "#"
	}
	fmt.Fprintf(b, "🔗 [Apply Now](%s)\n\n", EscapeURL(url))
}

// formatSalary renders the compensation range, or "" when the posting
// carries no salary fields at all.
func formatSalary(p *models.JobPosting) string {
	if !p.HasSalary() {
		return ""
	}
	switch {
	case p.SalaryMin != nil && p.SalaryMax != nil:
		return fmt.Sprintf("£%s - £%s", formatThousands(*p.SalaryMin), formatThousands(*p.SalaryMax))
	case p.SalaryMin != nil:
		return fmt.Sprintf("From £%s", formatThousands(*p.SalaryMin))
	case p.SalaryMax != nil:
		return fmt.Sprintf("Up to £%s", formatThousands(*p.SalaryMax))
	}
	return "Competitive"
}

// formatThousands renders 60000 as "60,000".
func formatThousands(v float64) string {
	whole := fmt.Sprintf("%.0f", v)
	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}
	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// formatPostedDate renders a relative label for recent dates and an
// absolute en-GB date beyond six days.
func (f *Formatter) formatPostedDate(created time.Time) string {
	if created.IsZero() {
		return "Recently"
	}
	diffDays := int(f.now().Sub(created).Hours() / 24)
	switch {
	case diffDays <= 0:
		return "Today"
	case diffDays == 1:
		return "Yesterday"
	case diffDays < 7:
		return fmt.Sprintf("%d days ago", diffDays)
	default:
		return created.Format("2 Jan 2006")
	}
}

func scoreEmoji(score int) string {
	switch {
	case score >= 80:
		return "🎯"
	case score >= 60:
		return "👍"
	case score >= 40:
		return "🤔"
	default:
		return "📝"
	}
}

// truncate caps the escaped body and appends the truncation marker. The cut
// point backs off past a dangling escape backslash so the rich parser never
// sees a broken escape sequence at the boundary.
func truncate(body string) string {
	if len(body) <= maxBodyLength {
		return body
	}
	cut := body[:maxBodyLength]
	trailing := 0
	for i := len(cut) - 1; i >= 0 && cut[i] == '\\'; i-- {
		trailing++
	}
	if trailing%2 == 1 {
		cut = cut[:len(cut)-1]
	}
	return cut + truncationMarker
}
