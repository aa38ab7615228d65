package session

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// NegotiatorBuilderOption is a functional option for configuring a Negotiator.
type NegotiatorBuilderOption func(*negotiator)

// WithSettings sets the xr settings the negotiator reads buttons, canvas, origin and features from.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - NegotiatorBuilderOption: option function to apply
func WithSettings(s xr.Settings) NegotiatorBuilderOption {
	return func(n *negotiator) {
		n.settings = s
	}
}

// WithBinder replaces the binder built from the platform document.
//
// Parameters:
//   - b: the binder
//
// Returns:
//   - NegotiatorBuilderOption: option function to apply
func WithBinder(b Binder) NegotiatorBuilderOption {
	return func(n *negotiator) {
		n.binder = b
	}
}

// WithWorkers sets the number of pool workers activation requests run on.
//
// Parameters:
//   - count: the worker count, at least one
//
// Returns:
//   - NegotiatorBuilderOption: option function to apply
func WithWorkers(count int) NegotiatorBuilderOption {
	return func(n *negotiator) {
		n.workers = max(count, 1)
	}
}

// WithContext sets the context activation requests run under until Start replaces it.
func WithContext(ctx context.Context) NegotiatorBuilderOption {
	return func(n *negotiator) {
		if ctx != nil {
			n.ctx = ctx
		}
	}
}

// WithNegotiatorLogger sets the logger for the negotiator and the binder and drivers it creates.
func WithNegotiatorLogger(l *logrus.Logger) NegotiatorBuilderOption {
	return func(n *negotiator) {
		if l != nil {
			n.logger = l
		}
	}
}
