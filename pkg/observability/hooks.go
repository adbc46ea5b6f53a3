package observability

import (
	"log/slog"

	"github.com/aretw0/joist/pkg/domain"
)

// LoggingHooks reports tree activity to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(c *domain.Change) {
			logger.Debug("mutation", "action", c.Action, "nodes", len(c.NodeIDs))
		},
		OnDropRejected: func(e *domain.DropEvent) {
			logger.Info("drop rejected",
				"node_id", e.NodeID,
				"target", e.Target,
				"reason", domain.ReasonOf(e.Err),
				"err", e.Err,
			)
		},
	}
}

// Chain combines hooks. Each callback runs the non-nil callbacks of hooks in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	var mutation []func(*domain.Change)
	var rejected []func(*domain.DropEvent)
	for _, h := range hooks {
		if h.OnMutation != nil {
			mutation = append(mutation, h.OnMutation)
		}
		if h.OnDropRejected != nil {
			rejected = append(rejected, h.OnDropRejected)
		}
	}

	if len(mutation) > 0 {
		out.OnMutation = func(c *domain.Change) {
			for _, fn := range mutation {
				fn(c)
			}
		}
	}
	if len(rejected) > 0 {
		out.OnDropRejected = func(e *domain.DropEvent) {
			for _, fn := range rejected {
				fn(e)
			}
		}
	}
	return out
}
