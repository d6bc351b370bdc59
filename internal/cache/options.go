package cache

import (
	"log/slog"
	"time"

	"github.com/mmcdole/tiercache/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultLifetimeHours is used when no lifetime is configured.
const DefaultLifetimeHours = 72

// Option configures a TieredCache.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	notifier        domain.Notifier
	now             func() time.Time
	defaultLifetime int
	registerer      prometheus.Registerer
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNotifier sets where the one-time unreadable file message goes.
func WithNotifier(n domain.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDefaultLifetime sets the lifetime, in hours, used by Set.
// Zero means entries never expire; negative values are ignored.
func WithDefaultLifetime(hours int) Option {
	return func(o *options) {
		if hours >= 0 {
			o.defaultLifetime = hours
		}
	}
}

// WithMetrics registers cache counters with reg. A nil registerer is ignored.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		logger:          slog.Default(),
		notifier:        domain.NoOpNotifier{},
		now:             time.Now,
		defaultLifetime: DefaultLifetimeHours,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
