package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"jobwatch-engine/internal/config"
)

type ConfigHandler struct {
	Config config.Config
}

// Get returns the startup config with the bot token redacted.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.Config
	if cur.Telegram.Token != "" {
		cur.Telegram.Token = "[redacted]"
	}
	WriteJSON(w, http.StatusOK, cur)
}

// Validate checks the posted config, or the running one when the body is
// empty. Invalid settings are reported in the body, not as a status code.
func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	candidate := h.Config

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var incoming config.Config
	switch err := dec.Decode(&incoming); {
	case errors.Is(err, io.EOF):
	case err != nil:
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json: "+err.Error())
		return
	case dec.More():
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json: trailing data")
		return
	default:
		candidate = incoming
	}

	_, vr := config.NormalizeAndValidate(candidate)
	WriteJSON(w, http.StatusOK, vr)
}
