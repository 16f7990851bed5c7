package httpapi

import (
	"time"

	"jobwatch-engine/internal/poll"
)

// StatusView is poll.Status plus human-friendly renderings.
type StatusView struct {
	poll.Status
	LastRunAgo string `json:"last_run_ago,omitempty"`
	LastOkAgo  string `json:"last_ok_ago,omitempty"`
	SeenTotal  int    `json:"seen_total"`
	SeenHuman  string `json:"seen_total_human"`
}

type SeenView struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Place        string    `json:"place,omitempty"`
	FirstSeen    time.Time `json:"first_seen"`
	FirstSeenAgo string    `json:"first_seen_ago"`
}
