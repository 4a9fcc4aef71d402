package session

import (
	"context"
	"log/slog"

	"github.com/jwebster45206/cell-commander/pkg/engine"
)

// notifier forwards one engine's signals to the publisher and refreshes the
// session record after every mutation.
type notifier struct {
	session  *Session
	registry *Registry
	logger   *slog.Logger
}

func (n *notifier) Notify(sig engine.Signal) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	id := n.session.ID
	pub := n.registry.publisher
	if pub != nil {
		if err := pub.PublishSignal(ctx, id, sig); err != nil {
			n.logger.Warn("Failed to publish signal", "signal", sig.Type, "error", err)
		}
	}
	if sig.Type != engine.SignalStateUpdated {
		return
	}

	if pub != nil {
		if err := pub.PublishSnapshot(ctx, id, n.session.Engine.View()); err != nil {
			n.logger.Warn("Failed to publish snapshot", "error", err)
		}
	}
	n.registry.save(ctx, n.session, "")
}
