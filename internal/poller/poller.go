// Package poller keeps the device registry in step with the controllers by
// re-reading every device's status on a fixed interval and on demand.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/debounce"
	"github.com/jmylchreest/ledsyncd/internal/events"
)

// Fetcher is the registry side of a refresh.
type Fetcher interface {
	Addresses() []string
	FetchDeviceStatus(ctx context.Context, address string) bool
}

// Result summarises one refresh batch.
type Result struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Coalesced bool          `json:"coalesced"`
	Duration  time.Duration `json:"duration"`
	At        time.Time     `json:"at"`
}

// Poller refreshes every registered device. A batch fans out one status
// fetch per device, each bounded by its own timeout, so a dead controller
// cannot hold up the others.
type Poller struct {
	fetcher   Fetcher
	interval  time.Duration
	timeout   time.Duration
	debouncer *debounce.Leading
	logger    *slog.Logger
	bus       *events.Bus

	mu   sync.Mutex
	last Result

	running atomic.Bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the polling period. Values below the configured minimum are raised to it.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = config.ValidatePollInterval(d) }
}

// WithTimeout bounds each device's fetch within a batch.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithDebounce sets the window in which repeated refresh requests collapse into one.
func WithDebounce(d time.Duration) Option {
	return func(p *Poller) { p.debouncer = debounce.NewLeading(d) }
}

// WithEventBus publishes a RefreshCompleted event after each batch.
func WithEventBus(bus *events.Bus) Option {
	return func(p *Poller) { p.bus = bus }
}

// New creates a poller over fetcher.
func New(fetcher Fetcher, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		fetcher:   fetcher,
		interval:  config.DefaultPollInterval,
		timeout:   config.DefaultRefreshTimeout,
		debouncer: debounce.NewLeading(config.DefaultRefreshDebounce),
		logger:    logger.With("component", "poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the polling period.
func (p *Poller) Interval() time.Duration { return p.interval }

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Warn("poller already running")
		return
	}
	defer p.running.Store(false)

	p.logger.Info("poller started", "interval", p.interval, "timeout", p.timeout)
	p.RequestRefresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.RequestRefresh(ctx)
		}
	}
}

// RequestRefresh refreshes all devices unless a refresh started within the
// debounce window, in which case it returns at once with Coalesced set.
func (p *Poller) RequestRefresh(ctx context.Context) Result {
	var res Result
	if !p.debouncer.Do(func() { res = p.Refresh(ctx) }) {
		p.logger.Debug("refresh coalesced")
		return Result{Coalesced: true, At: time.Now()}
	}
	return res
}

// Refresh fetches every device's status concurrently and waits for all of
// them. Partial failure is reported, never returned as an error.
func (p *Poller) Refresh(ctx context.Context) Result {
	start := time.Now()
	addrs := p.fetcher.Addresses()

	var ok atomic.Int32
	var wg sync.WaitGroup
	for _, addr := range addrs {
		wg.Go(func() {
			fctx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			if p.fetcher.FetchDeviceStatus(fctx, addr) {
				ok.Add(1)
			} else {
				p.logger.Debug("device did not answer refresh", "address", addr)
			}
		})
	}
	wg.Wait()

	res := Result{
		Total:     len(addrs),
		Succeeded: int(ok.Load()),
		Duration:  time.Since(start),
		At:        start,
	}
	res.Failed = res.Total - res.Succeeded

	p.mu.Lock()
	p.last = res
	p.mu.Unlock()

	level := slog.LevelDebug
	if res.Failed > 0 {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "refresh complete",
		"total", res.Total, "succeeded", res.Succeeded, "failed", res.Failed, "duration", res.Duration)
	p.bus.Emit(events.RefreshCompleted, res)
	return res
}

// LastResult returns the outcome of the most recent completed batch.
func (p *Poller) LastResult() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
