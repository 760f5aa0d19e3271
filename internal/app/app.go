// Package app wires the engines over a store so the server, the admin CLI
// and tests assemble them the same way.
package app

import (
	"time"

	"github.com/mmynk/mutualaid/internal/clock"
	"github.com/mmynk/mutualaid/internal/membership"
	"github.com/mmynk/mutualaid/internal/metrics"
	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/notify"
	"github.com/mmynk/mutualaid/internal/quota"
	"github.com/mmynk/mutualaid/internal/requests"
	"github.com/mmynk/mutualaid/internal/storage"
	"github.com/mmynk/mutualaid/internal/sweeper"
	"github.com/mmynk/mutualaid/internal/token"
)

// Options tune the engines. Zero values fall back to defaults.
type Options struct {
	DefaultLimits models.LimitValues
	Clock         clock.Clock
	Notifier      notify.Notifier
	Metrics       *metrics.Metrics
	Tokens        token.Generator
}

// App holds the engines built over one store.
type App struct {
	Store    storage.Store
	Quota    *quota.Evaluator
	Members  *membership.Manager
	Requests *requests.Engine
	Metrics  *metrics.Metrics
}

// New builds the quota evaluator, membership manager and request engine.
func New(store storage.Store, opts Options) *App {
	if opts.DefaultLimits == (models.LimitValues{}) {
		opts.DefaultLimits = models.DefaultLimitValues()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLogNotifier(nil)
	}
	if opts.Tokens == nil {
		opts.Tokens = token.NewRandom()
	}

	q := quota.New(store,
		quota.WithDefaults(opts.DefaultLimits),
		quota.WithClock(opts.Clock),
		quota.WithMetrics(opts.Metrics),
	)
	members := membership.New(store, q,
		membership.WithClock(opts.Clock),
		membership.WithNotifier(opts.Notifier),
		membership.WithTokens(opts.Tokens),
	)
	engine := requests.New(store, q, members,
		requests.WithClock(opts.Clock),
		requests.WithNotifier(opts.Notifier),
		requests.WithMetrics(opts.Metrics),
	)

	return &App{
		Store:    store,
		Quota:    q,
		Members:  members,
		Requests: engine,
		Metrics:  opts.Metrics,
	}
}

// Sweeper returns an expiry sweeper over the request engine.
func (a *App) Sweeper(interval time.Duration) *sweeper.Sweeper {
	return sweeper.New(a.Requests, interval)
}
