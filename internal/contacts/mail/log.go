package mail

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// LogTransport writes messages to the log instead of sending them. It is
// the development default; the link is logged so flows can be completed by
// hand.
type LogTransport struct {
	Logger *slog.Logger // falls back to the request logger when nil
}

func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	l := t.Logger
	if l == nil {
		l = slogx.FromContext(ctx)
	}
	l.Info("email not sent (log transport)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("link", msg.Link),
	)
	return nil
}
