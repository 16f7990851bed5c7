package report

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"jobwatch-engine/internal/domain"
)

const (
	DefaultTitle = "Naukri Job Alert"

	// en-IN style, e.g. "19/10/2026, 2:05:07 pm".
	timestampLayout = "2/1/2006, 3:04:05 pm"
)

// Builder renders run results into a single Telegram Markdown message.
type Builder struct {
	Title    string
	Location *time.Location
}

func New(title string, loc *time.Location) Builder {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	if loc == nil {
		loc = time.UTC
	}
	return Builder{Title: title, Location: loc}
}

// Build is pure: the same inputs always yield the same message.
func (b Builder) Build(results []domain.SourceResult, totalNew int, now time.Time) string {
	title := b.Title
	if title == "" {
		title = DefaultTitle
	}
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}

	var lines []string
	if totalNew > 0 {
		lines = append(lines, fmt.Sprintf("🔔 *%s* - %d new job(s) found!", title, totalNew))
	} else {
		lines = append(lines, fmt.Sprintf("✅ *%s* - No new jobs found", title))
	}
	lines = append(lines, fmt.Sprintf("⏰ _%s_", now.In(loc).Format(timestampLayout)))
	lines = append(lines, "")

	for _, res := range results {
		switch {
		case res.Failed:
			lines = append(lines, ErrorLine(res.Place))
		case len(res.Jobs) == 0:
			lines = append(lines, EmptyLine(res.Place))
		default:
			lines = append(lines, fmt.Sprintf("*%s* -", res.Place))
			for i, job := range res.Jobs {
				lines = append(lines, fmt.Sprintf("%d) [%s](%s)", i+1, job.Title, job.URL))
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// ErrorLine marks a source that failed during the run.
func ErrorLine(place string) string {
	return fmt.Sprintf("*%s* - ERROR NAUKRI ⚠️", place)
}

// EmptyLine marks a source that returned nothing new.
func EmptyLine(place string) string {
	return fmt.Sprintf("*%s* - No New Jobs Found 📉", place)
}
