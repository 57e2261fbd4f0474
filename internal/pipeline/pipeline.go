package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/aareguru-monitor/internal/domain"
	"github.com/couchcryptid/aareguru-monitor/internal/observability"
	"github.com/couchcryptid/aareguru-monitor/internal/settings"
)

// DefaultPollInterval applies when the store holds no positive interval.
const DefaultPollInterval = 5 * time.Minute

// Fetcher retrieves one telemetry snapshot for a location.
type Fetcher interface {
	Fetch(ctx context.Context, locationID string) (domain.Snapshot, error)
}

// Renderer receives every projected display state together with the location
// it was fetched for. Implementations must not modify the state.
type Renderer interface {
	Render(ctx context.Context, locationID string, state domain.DisplayState) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces the clock driving the poll timer.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// Pipeline polls the fetcher on a timer, projects each result and hands it to
// the renderer. All poll state is owned by the Run goroutine.
type Pipeline struct {
	fetcher   Fetcher
	renderer  Renderer
	store     settings.Store
	projector *domain.Projector
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	ready atomic.Bool
	state atomic.Pointer[domain.DisplayState]
}

// New creates a Pipeline with the given collaborators and observability.
func New(f Fetcher, r Renderer, store settings.Store, projector *domain.Projector, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	if projector == nil {
		projector = domain.NewProjector(nil)
	}
	p := &Pipeline{
		fetcher:   f,
		renderer:  r,
		store:     store,
		projector: projector,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a display state (data or error) has been
// rendered, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no display state rendered yet")
	}
	return nil
}

// DisplayState returns a copy of the latest projected state, or nil before
// the first render.
func (p *Pipeline) DisplayState() domain.DisplayState {
	s := p.state.Load()
	if s == nil {
		return nil
	}
	return s.Clone()
}

type fetchResult struct {
	attempt  uint64
	location string
	snap     domain.Snapshot
	err      error
}

// poll is the state owned by one Run call.
type poll struct {
	cfg       domain.PollConfig
	timer     clockwork.Timer
	attempts  uint64
	hasResult bool
	location  string
	snap      domain.Snapshot
	err       error
}

// Run fetches immediately, then on every timer tick and location change,
// until ctx is cancelled. Fetch and render failures never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	fetchCtx, cancelFetches := context.WithCancel(ctx)
	results := make(chan fetchResult)
	changes := make(chan settings.Change, 16)
	var inflight sync.WaitGroup

	unsubscribe := p.store.Subscribe(func(c settings.Change) {
		select {
		case changes <- c:
		case <-fetchCtx.Done():
		}
	})

	st := &poll{cfg: p.store.Current()}
	interval := pollInterval(st.cfg)
	st.timer = p.clock.NewTimer(interval)

	p.logger.Info("poller started", "location", st.cfg.LocationID, "interval", interval)
	p.metrics.PollerRunning.Set(1)
	p.metrics.PollIntervalSeconds.Set(interval.Seconds())

	defer func() {
		unsubscribe()
		st.timer.Stop()
		cancelFetches()
		inflight.Wait()
		p.metrics.PollerRunning.Set(0)
	}()

	start := func() {
		st.attempts++
		attempt, location := st.attempts, st.cfg.LocationID
		p.logger.Debug("fetch started", "attempt", attempt, "location", location)
		inflight.Go(func() {
			snap, err := p.fetcher.Fetch(fetchCtx, location)
			select {
			case results <- fetchResult{attempt: attempt, location: location, snap: snap, err: err}:
			case <-fetchCtx.Done():
			}
		})
	}

	start()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil

		case <-st.timer.Chan():
			start()
			st.timer.Reset(pollInterval(st.cfg))

		case c := <-changes:
			p.applyChange(ctx, st, c, start)

		case r := <-results:
			if r.location != st.cfg.LocationID {
				p.logger.Debug("discarding result for previous location",
					"attempt", r.attempt, "location", r.location, "current", st.cfg.LocationID)
				continue
			}
			p.record(st, r)
			p.render(ctx, st)
		}
	}
}

func (p *Pipeline) applyChange(ctx context.Context, st *poll, c settings.Change, start func()) {
	switch c.Key {
	case settings.KeyUpdateInterval:
		st.cfg.PollInterval = c.Config.PollInterval
		interval := pollInterval(st.cfg)
		st.timer.Stop()
		st.timer.Reset(interval)
		p.metrics.PollIntervalSeconds.Set(interval.Seconds())
		p.logger.Info("poll interval changed", "interval", interval)

	case settings.KeyCity:
		st.cfg.LocationID = c.Config.LocationID
		st.timer.Stop()
		st.timer.Reset(pollInterval(st.cfg))
		p.logger.Info("location changed", "location", st.cfg.LocationID)
		start()

	default:
		if _, ok := c.Key.Section(); !ok {
			p.logger.Warn("ignoring unknown setting", "key", string(c.Key))
			return
		}
		st.cfg.Visible = c.Config.Visible.Clone()
		if st.hasResult {
			p.render(ctx, st)
		}
	}
}

func (p *Pipeline) record(st *poll, r fetchResult) {
	st.hasResult = true
	st.location = r.location
	st.snap, st.err = r.snap, r.err

	if r.err != nil {
		p.logger.Warn("fetch failed",
			"attempt", r.attempt,
			"location", r.location,
			"kind", domain.ErrorKind(r.err).String(),
			"error", r.err,
		)
		return
	}

	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	if v := r.snap.WaterTemperatureC; v != nil {
		p.metrics.WaterTemperature.Set(*v)
	}
	if v := r.snap.FlowCubicMetersPerSecond; v != nil {
		p.metrics.Flow.Set(*v)
	}
	p.logger.Debug("fetch succeeded", "attempt", r.attempt, "location", r.location)
}

// render projects the last-known result under the current visibility and
// publishes it.
func (p *Pipeline) render(ctx context.Context, st *poll) {
	state := p.projector.Project(st.snap, st.err, st.cfg.Visible)
	p.state.Store(&state)
	p.ready.Store(true)

	kind := "data"
	if st.err != nil {
		kind = "error"
	}
	p.metrics.Renders.WithLabelValues(kind).Inc()

	if err := p.renderer.Render(ctx, st.location, state); err != nil {
		p.logger.Warn("render failed", "error", err)
	}
}

func pollInterval(cfg domain.PollConfig) time.Duration {
	if cfg.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return cfg.PollInterval
}
