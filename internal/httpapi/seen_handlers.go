package httpapi

import (
	"net/http"
	"strconv"
	"time"
)

const maxSeenLimit = 500

type SeenHandler struct {
	Seen SeenReader
	Now  func() time.Time
}

// List returns the most recently recorded postings, newest first.
func (h SeenHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxSeenLimit)
	}

	recs, err := h.Seen.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	now := h.Now()
	out := make([]SeenView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, SeenView{
			URL:          rec.URL,
			Title:        rec.Title,
			Place:        rec.Place,
			FirstSeen:    rec.FirstSeen,
			FirstSeenAgo: ago(rec.FirstSeen, now),
		})
	}
	WriteJSON(w, http.StatusOK, out)
}
