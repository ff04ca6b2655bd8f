package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

// Ticker abstracts the wall clock so tests drive poll cycles explicitly.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a ticker for the poller's interval.
type TickerFactory func(time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewTicker is the production TickerFactory.
func NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// PollFunc fetches the source and returns its structural change hash.
type PollFunc func(ctx context.Context) (string, error)

// TriggerFunc fires a full reconciliation pass for the named source.
type TriggerFunc func(source string)

// SourcePollerConfig groups constructor dependencies.
type SourcePollerConfig struct {
	Source   string
	Interval time.Duration
	Poll     PollFunc
	Trigger  TriggerFunc
	Tickers  TickerFactory
	Logger   *zap.Logger
}

// SourcePoller runs one source's polling loop: fetch, hash, and trigger a
// reconciliation pass only when the hash changed. Each source's timeline is
// strictly sequential; a tick is skipped while a cycle is still in flight.
// Fetch failures are swallowed and treated as hash-unchanged so a transient
// outage neither crashes the loop nor causes a refresh storm.
type SourcePoller struct {
	source   string
	interval time.Duration
	poll     PollFunc
	trigger  TriggerFunc
	tickers  TickerFactory
	logger   *zap.Logger

	mu       sync.Mutex
	status   models.PollSourceStatus
	inflight bool

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewSourcePoller constructs a poller with sane defaults.
func NewSourcePoller(cfg SourcePollerConfig) *SourcePoller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Tickers == nil {
		cfg.Tickers = NewTicker
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &SourcePoller{
		source:   cfg.Source,
		interval: cfg.Interval,
		poll:     cfg.Poll,
		trigger:  cfg.Trigger,
		tickers:  cfg.Tickers,
		logger:   cfg.Logger,
		status: models.PollSourceStatus{
			Source: cfg.Source,
			State:  models.PollStateIdle,
		},
	}
}

// Start launches the polling loop. An immediate first cycle seeds the hash
// and fires the initial reconciliation pass. Safe to call once.
func (p *SourcePoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop()
	p.logger.Sugar().Infow("source poller started", "source", p.source, "interval", p.interval)
}

// Stop cancels the loop and waits for it to exit.
func (p *SourcePoller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("source poller stopped", "source", p.source)
}

// Poke runs a cycle outside the timer, used by manual refresh triggers.
func (p *SourcePoller) Poke() {
	p.mu.Lock()
	ctx := p.ctx
	started := p.started
	p.mu.Unlock()
	if !started {
		return
	}
	p.cycle(ctx)
}

// Status returns a snapshot of the loop state.
func (p *SourcePoller) Status() models.PollSourceStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *SourcePoller) loop() {
	defer p.wg.Done()

	p.cycle(p.ctx)

	ticker := p.tickers(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C():
			p.cycle(p.ctx)
		}
	}
}

func (p *SourcePoller) cycle(ctx context.Context) {
	p.mu.Lock()
	if p.inflight {
		p.mu.Unlock()
		p.logger.Debug("poll tick skipped, previous cycle in flight", zap.String("source", p.source))
		return
	}
	p.inflight = true
	p.status.State = models.PollStateFetching
	p.mu.Unlock()

	hash, err := p.poll(ctx)

	now := time.Now().UTC()
	p.mu.Lock()
	p.status.Cycles++
	p.status.LastPoll = &now

	if err != nil {
		// Treated as hash-unchanged: previous state stays, no trigger.
		p.status.Failures++
		p.status.State = models.PollStateIdle
		p.inflight = false
		p.mu.Unlock()
		p.logger.Warn("source poll failed, keeping previous state",
			zap.String("source", p.source), zap.Error(err))
		return
	}

	changed := hash != p.status.LastHash
	if changed {
		p.status.LastHash = hash
		p.status.LastChange = &now
		p.status.State = models.PollStateTriggering
	}
	p.mu.Unlock()

	if changed && p.trigger != nil {
		p.trigger(p.source)
	}

	p.mu.Lock()
	p.status.State = models.PollStateIdle
	p.inflight = false
	p.mu.Unlock()
}
