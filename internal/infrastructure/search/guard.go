package search

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

const defaultRequestsPerMinute = 60

var errNotConfigured = errors.New("provider is not configured")

// CallObserver receives one observation per provider call.
type CallObserver interface {
	ObserveProviderCall(provider, status string, duration time.Duration)
}

type GuardOptions struct {
	RequestsPerMinute int
	Executor          *resilience.Executor
	Observer          CallObserver
}

// GuardedProvider spaces calls to one provider and runs them through the resilience executor.
// A single instance is shared by all discovery runs so the spacing holds process-wide.
type GuardedProvider struct {
	inner    ports.SearchProvider
	limiter  *rate.Limiter
	executor *resilience.Executor
	observer CallObserver
}

func Guard(inner ports.SearchProvider, options GuardOptions) *GuardedProvider {
	return &GuardedProvider{
		inner:    inner,
		limiter:  NewLimiter(options.RequestsPerMinute),
		executor: options.Executor,
		observer: options.Observer,
	}
}

// NewLimiter allows one call per 60s/rpm with no burst.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

func (g *GuardedProvider) Name() string { return g.inner.Name() }

func (g *GuardedProvider) Configured() bool { return g.inner.Configured() }

func (g *GuardedProvider) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if !g.inner.Configured() {
		g.observe("unavailable", 0)
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "search "+g.inner.Name(), errNotConfigured)
	}

	started := time.Now()
	rows, err := resilience.Call(ctx, g.executor, "search."+g.inner.Name(), func(callCtx context.Context) ([]domain.SearchResult, error) {
		if err := g.limiter.Wait(callCtx); err != nil {
			return nil, err
		}
		return g.inner.Search(callCtx, query, limit)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		status := "error"
		if resilience.IsCircuitOpen(err) {
			status = "circuit_open"
		}
		g.observe(status, time.Since(started))
		return nil, resilience.WrapTemporaryIfNeeded("search "+g.inner.Name(), err, resilience.ClassifyHTTPError)
	}
	g.observe("ok", time.Since(started))
	return rows, nil
}

func (g *GuardedProvider) observe(status string, duration time.Duration) {
	if g.observer != nil {
		g.observer.ObserveProviderCall(g.inner.Name(), status, duration)
	}
}
