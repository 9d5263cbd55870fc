// Package engine drives the simulation pipeline. The Engine is a
// single-writer actor: one loop owns the history store and the ledger, and
// every mutation, scheduled ticks and manual orders alike, enters through
// one ordered queue. Ticks never overlap because the clock goroutine waits
// for each tick to finish before scheduling the next.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"paperdesk/internal/broadcast"
	"paperdesk/internal/logger"
	"paperdesk/internal/market"
	"paperdesk/internal/portfolio"
	"paperdesk/internal/strategy"
)

// PriceSource produces the next round of candles and appends them to the
// history store. The seeded simulator is the production source; tests drive
// the pipeline with scripted sources.
type PriceSource interface {
	Tick() ([]market.TickCandle, error)
}

type Config struct {
	Registry     *market.Registry
	History      *market.History
	Source       PriceSource
	Ledger       *portfolio.Ledger
	Hub          *broadcast.Hub
	Strategy     strategy.Settings
	FeeRate      float64
	TickInterval time.Duration // 0 selects manual mode
}

type Engine struct {
	registry *market.Registry
	history  *market.History
	source   PriceSource
	ledger   *portfolio.Ledger
	hub      *broadcast.Hub
	strat    strategy.Settings
	feeRate  float64
	interval time.Duration

	msgCh    chan EventEnvelope
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	failed   atomic.Bool

	snapshot         atomic.Value // PortfolioView
	snapshotThrottle time.Duration
	lastSnapshot     time.Time
}

func New(cfg Config) (*Engine, error) {
	if cfg.Registry == nil || cfg.History == nil || cfg.Source == nil {
		return nil, fmt.Errorf("engine: registry, history and source are required")
	}
	if cfg.Ledger == nil || cfg.Hub == nil {
		return nil, fmt.Errorf("engine: ledger and hub are required")
	}
	e := &Engine{
		registry:         cfg.Registry,
		history:          cfg.History,
		source:           cfg.Source,
		ledger:           cfg.Ledger,
		hub:              cfg.Hub,
		strat:            cfg.Strategy,
		feeRate:          cfg.FeeRate,
		interval:         cfg.TickInterval,
		msgCh:            make(chan EventEnvelope, 64),
		stopCh:           make(chan struct{}),
		snapshotThrottle: 50 * time.Millisecond,
	}
	e.refreshSnapshot(true)
	return e, nil
}

// Start launches the mutation loop and, unless in manual mode, the clock.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.runLoop()
	if e.interval > 0 {
		e.wg.Add(1)
		go e.clockLoop()
	}
}

// Shutdown stops the clock, drains the loop and closes every subscriber
// stream. The engine is unusable afterwards; all entry points return
// ErrStopped.
func (e *Engine) Shutdown() {
	e.stop()
	e.wg.Wait()
	e.hub.Close()
}

// Failed reports whether the engine halted on an integrity violation.
func (e *Engine) Failed() bool { return e.failed.Load() }

func (e *Engine) stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

func (e *Engine) fail(err error) {
	e.failed.Store(true)
	logger.Errorf("engine halted: %v", err)
	e.stop()
}

// Instruments returns the static seed list; the registry is immutable so no
// queue round-trip is needed.
func (e *Engine) Instruments() []market.Instrument {
	return e.registry.List()
}

// Tick advances the simulation by one step. Used directly in manual mode and
// by the internal clock.
func (e *Engine) Tick(ctx context.Context) error {
	reply, err := e.sendSync(ctx, EventEnvelope{
		ID:        newEventID("tick"),
		Type:      EvtTick,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return reply.Err
}

// SubmitOrder routes a manual order through the mutation queue. Positive
// quantity buys, negative sells, at the latest close.
func (e *Engine) SubmitOrder(ctx context.Context, symbol string, quantity float64) (portfolio.Trade, error) {
	reply, err := e.sendSync(ctx, EventEnvelope{
		ID:        newEventID("order"),
		Type:      EvtOrder,
		Payload:   OrderPayload{Symbol: symbol, Quantity: quantity},
		CreatedAt: time.Now(),
	})
	if err != nil {
		return portfolio.Trade{}, err
	}
	if reply.Err != nil {
		return portfolio.Trade{}, reply.Err
	}
	if reply.Trade == nil {
		return portfolio.Trade{}, fmt.Errorf("engine: order produced no trade")
	}
	return *reply.Trade, nil
}

// History reads a candle window through the queue, so the view is always a
// fully applied tick.
func (e *Engine) History(ctx context.Context, symbol string, lookback int) ([]market.Candle, error) {
	reply, err := e.sendSync(ctx, EventEnvelope{
		ID:        newEventID("history"),
		Type:      EvtHistory,
		Payload:   HistoryPayload{Symbol: symbol, Lookback: lookback},
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return reply.Candles, reply.Err
}

// Snapshot returns the latest published portfolio view without touching the
// queue.
func (e *Engine) Snapshot() PortfolioView {
	if v := e.snapshot.Load(); v != nil {
		return v.(PortfolioView)
	}
	return PortfolioView{}
}

func (e *Engine) send(evt EventEnvelope) error {
	select {
	case e.msgCh <- evt:
		return nil
	case <-e.stopCh:
		return ErrStopped
	}
}

func (e *Engine) sendSync(ctx context.Context, evt EventEnvelope) (Reply, error) {
	if evt.ReplyCh == nil {
		evt.ReplyCh = make(chan Reply, 1)
	}
	if err := e.send(evt); err != nil {
		return Reply{}, err
	}
	select {
	case reply := <-evt.ReplyCh:
		return reply, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-e.stopCh:
		return Reply{}, ErrStopped
	}
}

func (e *Engine) runLoop() {
	defer e.wg.Done()
	logger.Infof("engine loop started (%d instruments)", len(e.registry.Symbols()))
	for {
		select {
		case evt := <-e.msgCh:
			e.handleEvent(evt)
		case <-e.stopCh:
			logger.Infof("engine loop stopping")
			return
		}
	}
}

func (e *Engine) clockLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			// Synchronous send: the next tick cannot fire until this one's
			// whole mutation path has completed.
			if err := e.Tick(context.Background()); err != nil {
				if err == ErrStopped {
					return
				}
				logger.Warnf("scheduled tick failed: %v", err)
			}
		}
	}
}

func (e *Engine) handleEvent(evt EventEnvelope) {
	var reply Reply
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("engine panic handling %s: %v", evt.Type, r)
			debug.PrintStack()
			reply = Reply{Err: fmt.Errorf("panic: %v", r)}
		}
		if evt.ReplyCh != nil {
			evt.ReplyCh <- reply
			close(evt.ReplyCh)
		}
		if dur := time.Since(start); dur > 100*time.Millisecond {
			logger.Warnf("slow event %s took %v", evt.Type, dur)
		}
	}()

	switch evt.Type {
	case EvtTick:
		reply.Err = e.handleTick()
	case EvtOrder:
		payload, ok := evt.Payload.(OrderPayload)
		if !ok {
			reply.Err = fmt.Errorf("%w: malformed order payload", ErrValidation)
			return
		}
		reply.Trade, reply.Err = e.handleOrder(payload)
	case EvtHistory:
		payload, ok := evt.Payload.(HistoryPayload)
		if !ok {
			reply.Err = fmt.Errorf("%w: malformed history payload", ErrValidation)
			return
		}
		reply.Candles, reply.Err = e.handleHistory(payload)
	default:
		reply.Err = fmt.Errorf("no handler for event type %s", evt.Type)
	}
}

// handleTick runs the whole per-tick pipeline: generate candles, evaluate
// the strategy per instrument, apply any resulting trade and publish the
// state transitions. Integrity violations halt the engine.
func (e *Engine) handleTick() error {
	candles, err := e.source.Tick()
	if err != nil {
		e.fail(err)
		return err
	}
	e.hub.Publish(broadcast.ChannelMarket, candles)

	traded := false
	for _, inst := range e.registry.List() {
		if e.evaluateInstrument(inst) {
			traded = true
		}
	}

	if err := e.ledger.CheckIdentity(e.history.LastCloses()); err != nil {
		e.fail(err)
		return err
	}
	e.refreshSnapshot(traded)
	if traded {
		e.hub.Publish(broadcast.ChannelPortfolio, e.Snapshot())
	}
	return nil
}

func (e *Engine) evaluateInstrument(inst market.Instrument) bool {
	candles := e.history.Recent(inst.Symbol, 0)
	var posPtr *portfolio.Position
	if pos, ok := e.ledger.Position(inst.Symbol); ok {
		posPtr = &pos
	}
	prop := strategy.Evaluate(inst, candles, posPtr, e.ledger.Cash(), e.strat)
	if prop == nil {
		return false
	}

	at := time.UnixMilli(candles[len(candles)-1].CloseTime).UTC()
	fee := prop.Quantity * prop.Price * e.feeRate
	var trade portfolio.Trade
	var err error
	switch prop.Side {
	case portfolio.SideBuy:
		trade, err = e.ledger.ApplyBuy(prop.Symbol, prop.Quantity, prop.Price, fee, at)
	case portfolio.SideSell:
		trade, err = e.ledger.ApplySell(prop.Symbol, prop.Quantity, prop.Price, fee, at)
	}
	if err != nil {
		// Recoverable precondition failure: the signal is skipped, the
		// simulation keeps running.
		logger.Warnf("strategy %s %s skipped: %v", prop.Side, prop.Symbol, err)
		return false
	}
	logger.Infof("strategy %s %s qty=%.6f price=%.4f", trade.Side, trade.Symbol, trade.Quantity, trade.Price)
	e.hub.Publish(broadcast.ChannelTrade, trade)
	return true
}

func (e *Engine) handleOrder(p OrderPayload) (*portfolio.Trade, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	if _, ok := e.registry.Get(symbol); !ok {
		return nil, fmt.Errorf("%w: unknown symbol %q", ErrValidation, p.Symbol)
	}
	if p.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be non-zero", ErrValidation)
	}
	price, ok := e.history.LastClose(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: no market data for %s yet", ErrValidation, symbol)
	}

	qty := p.Quantity
	side := portfolio.SideBuy
	if qty < 0 {
		side = portfolio.SideSell
		qty = -qty
	}
	fee := qty * price * e.feeRate
	now := time.Now().UTC()

	var trade portfolio.Trade
	var err error
	if side == portfolio.SideBuy {
		trade, err = e.ledger.ApplyBuy(symbol, qty, price, fee, now)
	} else {
		trade, err = e.ledger.ApplySell(symbol, qty, price, fee, now)
	}
	if err != nil {
		return nil, err
	}
	if err := e.ledger.CheckIdentity(e.history.LastCloses()); err != nil {
		e.fail(err)
		return nil, err
	}
	e.refreshSnapshot(true)
	e.hub.Publish(broadcast.ChannelTrade, trade)
	e.hub.Publish(broadcast.ChannelPortfolio, e.Snapshot())
	return &trade, nil
}

func (e *Engine) handleHistory(p HistoryPayload) ([]market.Candle, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	if _, ok := e.registry.Get(symbol); !ok {
		return nil, fmt.Errorf("%w: unknown symbol %q", ErrValidation, p.Symbol)
	}
	return e.history.Recent(symbol, p.Lookback), nil
}

func (e *Engine) refreshSnapshot(force bool) {
	if !force && e.snapshotThrottle > 0 && !e.lastSnapshot.IsZero() {
		if time.Since(e.lastSnapshot) < e.snapshotThrottle {
			return
		}
	}
	snap := e.ledger.Snapshot()
	closes := e.history.LastCloses()
	unrealized := 0.0
	for sym, pos := range snap.Positions {
		if price, ok := closes[sym]; ok {
			unrealized += pos.Quantity * (price - pos.AvgCost)
		}
	}
	view := PortfolioView{
		Snapshot:      snap,
		UnrealizedPnL: unrealized,
		Equity:        snap.Cash + e.ledger.MarketValue(closes),
		UpdatedAt:     time.Now().UTC(),
	}
	e.snapshot.Store(view)
	e.lastSnapshot = time.Now()
}
