package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobwatch-engine/internal/domain"
)

const (
	// DefaultPlace labels a successful target configured without a place.
	DefaultPlace = "Naukri"
	// UnknownPlace labels a failed target configured without a place.
	UnknownPlace = "Unknown"

	DefaultMinDelay = 5 * time.Second
	DefaultMaxDelay = 15 * time.Second
)

// ErrRunInProgress is returned when another run holds the run lock.
var ErrRunInProgress = errors.New("another run is in progress")

// Source fetches raw postings for one search url. Implementations must not
// retry internally and own any timeout.
type Source interface {
	Fetch(ctx context.Context, url string) ([]domain.JobPosting, error)
}

// SeenStore records which postings were already reported.
type SeenStore interface {
	Init(ctx context.Context) error
	SeenJobs(ctx context.Context) ([]domain.SeenRecord, error)
	AddSeenJobs(ctx context.Context, jobs []domain.JobPosting) error
}

// Notifier delivers a text message to a destination.
type Notifier interface {
	Send(ctx context.Context, destination, text string) error
}

// Locker guards against overlapping runs. *flock.Flock satisfies it.
type Locker interface {
	TryLock() (bool, error)
	Unlock() error
}

// Publisher receives run lifecycle events as JSON. *events.Hub satisfies it.
type Publisher interface {
	Publish(evt string)
}

// Config is built once at startup and never re-read during a run.
type Config struct {
	SearchConfig string
	Destination  string

	MinDelay time.Duration
	MaxDelay time.Duration
}

// Result describes one completed (or partially completed) run.
type Result struct {
	Results   []domain.SourceResult
	NewJobs   []domain.JobPosting
	Message   string
	Delivered bool
	Persisted bool
}

// Failed counts targets whose fetch failed.
func (r Result) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed {
			n++
		}
	}
	return n
}

// SourceFetchError is a failure local to one target.
type SourceFetchError struct {
	URL   string
	Place string
	Err   error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch %q (place=%q): %v", e.URL, e.Place, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }
