package httpapi

import (
	"encoding/json"
	"net/http"
)

type SecretsHandler struct {
	SetToken func(token string) error
}

type setTokenReq struct {
	Token string `json:"token"`
}

// SetTelegramToken stores the bot token in the OS keyring. It takes effect
// on the next start.
func (h SecretsHandler) SetTelegramToken(w http.ResponseWriter, r *http.Request) {
	var req setTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := h.SetToken(req.Token); err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_failed", "failed to store token: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
