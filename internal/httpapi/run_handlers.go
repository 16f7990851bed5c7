package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"jobwatch-engine/internal/poll"
	logx "jobwatch-engine/pkg/logx"
)

type RunHandler struct {
	Status  *poll.StatusBoard
	Seen    SeenReader
	RunOnce func(ctx context.Context) error
	BaseCtx context.Context
	Log     logx.Logger
	Now     func() time.Time
}

func (h RunHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := h.Status.Load()
	now := h.Now()
	v := StatusView{
		Status:     st,
		LastRunAgo: ago(st.LastRunAt, now),
		LastOkAgo:  ago(st.LastOkAt, now),
	}
	if h.Seen != nil {
		if n, err := h.Seen.Count(r.Context()); err == nil {
			v.SeenTotal = n
		}
	}
	v.SeenHuman = humanize.Comma(int64(v.SeenTotal))
	WriteJSON(w, http.StatusOK, v)
}

// Run starts a poll in the background. Overlap with a scheduled run is
// also caught by the run lock; this check only gives a faster answer.
func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Status.Load().Running {
		WriteError(w, r, http.StatusConflict, "already_running", "a run is already in progress")
		return
	}

	reqID := RequestIDFrom(r.Context())
	go func() {
		if err := h.RunOnce(h.BaseCtx); err != nil {
			h.Log.Warn("triggered run failed", logx.String("request_id", reqID), logx.Err(err))
		}
	}()
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "request_id": reqID})
}
