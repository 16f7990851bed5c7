package httpapi

import (
	"context"
	"time"

	"jobwatch-engine/internal/config"
	"jobwatch-engine/internal/domain"
	"jobwatch-engine/internal/events"
	"jobwatch-engine/internal/poll"
	logx "jobwatch-engine/pkg/logx"
)

// SeenReader is the read side of the seen store. *store.SeenStore
// satisfies it.
type SeenReader interface {
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]domain.SeenRecord, error)
	Checkpoint(ctx context.Context) error
}

type Deps struct {
	Hub    *events.Hub
	Status *poll.StatusBoard
	Seen   SeenReader

	// Config is the startup snapshot; it is shown, never changed.
	Config config.Config

	// RunOnce performs one poll. Runs triggered over HTTP use BaseCtx so
	// they outlive the request.
	RunOnce func(ctx context.Context) error
	BaseCtx context.Context

	// SetToken stores a bot token for the configured chat (keyring).
	SetToken func(token string) error

	Log logx.Logger
	Now func() time.Time
}
