package poll

import (
	"sync/atomic"
	"time"
)

type Status struct {
	LastRunAt    time.Time `json:"last_run_at"`
	LastOkAt     time.Time `json:"last_ok_at"`
	LastError    string    `json:"last_error"`
	LastNew      int       `json:"last_new"`
	LastFailed   int       `json:"last_failed"`
	LastDuration string    `json:"last_duration"`
	Running      bool      `json:"running"`
	Runs         int       `json:"runs"`
}

// StatusBoard holds the latest Status; safe for concurrent readers.
type StatusBoard struct {
	v atomic.Value // stores Status
}

func NewStatusBoard() *StatusBoard {
	b := &StatusBoard{}
	b.v.Store(Status{})
	return b
}

func (b *StatusBoard) Load() Status {
	if b == nil {
		return Status{}
	}
	st, _ := b.v.Load().(Status)
	return st
}

func (b *StatusBoard) begin(at time.Time) {
	st := b.Load()
	st.Running = true
	st.LastRunAt = at
	b.v.Store(st)
}

func (b *StatusBoard) finish(at time.Time, res Result, err error) {
	st := b.Load()
	st.Running = false
	st.Runs++
	st.LastNew = len(res.NewJobs)
	st.LastFailed = res.Failed()
	if !st.LastRunAt.IsZero() {
		st.LastDuration = at.Sub(st.LastRunAt).Round(time.Millisecond).String()
	}
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = at
	}
	b.v.Store(st)
}
