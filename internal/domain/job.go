package domain

import "time"

// SearchTarget is one configured search endpoint. Place is a display label;
// empty means none was configured and the default is applied at render time.
type SearchTarget struct {
	URL   string
	Place string
}

// Label returns the place, or def when none was configured.
func (t SearchTarget) Label(def string) string {
	if t.Place == "" {
		return def
	}
	return t.Place
}

// JobPosting is a single listing. URL is its identity.
type JobPosting struct {
	Title string
	URL   string
	Place string
}

// WithPlace returns a copy of the posting attributed to place.
func (j JobPosting) WithPlace(place string) JobPosting {
	j.Place = place
	return j
}

// SeenRecord is a posting url that has already been reported.
type SeenRecord struct {
	URL       string
	Title     string
	Place     string
	FirstSeen time.Time
}

// SourceResult is the outcome of processing one target within a run.
type SourceResult struct {
	Place  string
	Jobs   []JobPosting
	Failed bool
	Err    error
}
