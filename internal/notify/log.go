package notify

import (
	"context"

	logx "jobwatch-engine/pkg/logx"
)

// LogNotifier writes reports to the log instead of sending them. Used for
// dry runs.
type LogNotifier struct {
	log logx.Logger
}

func NewLogNotifier(log logx.Logger) *LogNotifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &LogNotifier{log: log.Component("notify")}
}

func (n *LogNotifier) Send(_ context.Context, destination, text string) error {
	n.log.Info("dry run report", logx.String("chat", destination), logx.String("text", text))
	return nil
}
