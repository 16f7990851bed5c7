package httpapi

import (
	"context"
	"net/http"
	"time"

	logx "jobwatch-engine/pkg/logx"
)

// NewMux registers every route on a fresh mux.
func NewMux(d Deps) *http.ServeMux {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.BaseCtx == nil {
		d.BaseCtx = context.Background()
	}
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}

	mux := http.NewServeMux()

	hh := HealthHandler{Now: d.Now}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	rh := RunHandler{Status: d.Status, Seen: d.Seen, RunOnce: d.RunOnce, BaseCtx: d.BaseCtx, Log: d.Log, Now: d.Now}
	mux.HandleFunc("/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.GetStatus,
	}))
	if d.RunOnce != nil {
		mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: rh.Run,
		}))
	}

	if d.Seen != nil {
		sh := SeenHandler{Seen: d.Seen, Now: d.Now}
		mux.HandleFunc("/seen", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: sh.List,
		}))
		dh := DBHandler{Seen: d.Seen}
		mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: localOnly(dh.Checkpoint),
		}))
	}

	ch := ConfigHandler{Config: d.Config}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.Validate,
	}))

	if d.SetToken != nil {
		sec := SecretsHandler{SetToken: d.SetToken}
		mux.HandleFunc("/secrets/telegram", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: localOnly(sec.SetTelegramToken),
		}))
	}

	if d.Hub != nil {
		eh := EventsHandler{Hub: d.Hub}
		mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: eh.ServeSSE,
		}))
	}

	return mux
}

// NewHandler is NewMux wrapped in the standard middleware chain.
func NewHandler(d Deps) http.Handler {
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.Component("http")
	d.Log = log
	return Chain(NewMux(d), RequestID, Recover(log), AccessLog(log), Cors)
}
