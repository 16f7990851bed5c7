package httpapi

import (
	"net/http"
)

type DBHandler struct {
	Seen SeenReader
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if err := h.Seen.Checkpoint(r.Context()); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
