package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobwatch-engine/internal/domain"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestBuildWithNewJobs(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 35, 7, 0, time.UTC)
	b := New("", kolkata(t))

	msg := b.Build([]domain.SourceResult{
		{Place: "Delhi", Jobs: []domain.JobPosting{
			{Title: "React Dev", URL: "https://x/1"},
			{Title: "Next.js Dev", URL: "https://x/2"},
		}},
		{Place: "Pune", Failed: true, Err: errors.New("timeout")},
		{Place: "Naukri"},
	}, 2, now)

	want := strings.Join([]string{
		"🔔 *Naukri Job Alert* - 2 new job(s) found!",
		"⏰ _19/10/2026, 2:05:07 pm_",
		"",
		"*Delhi* -",
		"1) [React Dev](https://x/1)",
		"2) [Next.js Dev](https://x/2)",
		"",
		"*Pune* - ERROR NAUKRI ⚠️",
		"",
		"*Naukri* - No New Jobs Found 📉",
		"",
	}, "\n")
	assert.Equal(t, want, msg)
}

func TestBuildNoNewJobs(t *testing.T) {
	now := time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)
	b := New("Job Watch", kolkata(t))

	msg := b.Build([]domain.SourceResult{
		{Place: "Unknown", Failed: true},
	}, 0, now)

	lines := strings.Split(msg, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "✅ *Job Watch* - No new jobs found", lines[0])
	assert.Equal(t, "⏰ _6/1/2026, 1:30:00 am_", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, ErrorLine("Unknown"), lines[3])
}

func TestNumberingIsPerSource(t *testing.T) {
	b := New("", time.UTC)
	msg := b.Build([]domain.SourceResult{
		{Place: "A", Jobs: []domain.JobPosting{{Title: "a1", URL: "u1"}}},
		{Place: "B", Jobs: []domain.JobPosting{{Title: "b1", URL: "u2"}, {Title: "b2", URL: "u3"}}},
	}, 3, time.Unix(0, 0))

	assert.Contains(t, msg, "*A* -\n1) [a1](u1)\n\n*B* -\n1) [b1](u2)\n2) [b2](u3)\n")
}

func TestZeroValueBuilder(t *testing.T) {
	var b Builder
	msg := b.Build(nil, 0, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "✅ *Naukri Job Alert* - No new jobs found\n⏰ _1/3/2026, 12:00:00 pm_\n", msg)
}
