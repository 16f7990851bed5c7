package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Now func() time.Time
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": h.Now().Format(time.RFC3339),
	})
}
