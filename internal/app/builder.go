package app

import (
	"context"
	"fmt"

	"paperdesk/internal/broadcast"
	"paperdesk/internal/config"
	"paperdesk/internal/engine"
	"paperdesk/internal/logger"
	"paperdesk/internal/market"
	"paperdesk/internal/portfolio"
	"paperdesk/internal/recorder"
	"paperdesk/internal/scheduler"
	"paperdesk/internal/strategy"
	httpapi "paperdesk/internal/transport/http"
)

// AppBuilder assembles the dependency graph. Construction steps are held as
// function fields so tests can swap in fakes without touching the graph
// itself.
type AppBuilder struct {
	cfg *config.Config

	instrumentsFn func(string) ([]market.Instrument, error)
	recorderFn    func(config.JournalConfig) (recorder.Recorder, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:           cfg,
		instrumentsFn: market.LoadInstruments,
		recorderFn:    buildRecorder,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// WithInstruments bypasses the YAML seed file.
func WithInstruments(list []market.Instrument) AppBuilderOption {
	return func(b *AppBuilder) {
		b.instrumentsFn = func(string) ([]market.Instrument, error) {
			return market.NormalizeInstruments(list)
		}
	}
}

// WithRecorder overrides the journal sink.
func WithRecorder(rec recorder.Recorder) AppBuilderOption {
	return func(b *AppBuilder) {
		b.recorderFn = func(config.JournalConfig) (recorder.Recorder, error) {
			return rec, nil
		}
	}
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	instruments, err := b.instrumentsFn(cfg.Engine.InstrumentsPath)
	if err != nil {
		return nil, fmt.Errorf("load instruments: %w", err)
	}
	registry := market.NewRegistry(instruments)
	history := market.NewHistory(cfg.Engine.HistoryCapacity, registry.Symbols())
	simulator := market.NewSimulator(market.SimulatorConfig{Seed: cfg.Engine.Seed}, registry, history)
	ledger := portfolio.NewLedger(cfg.Engine.InitialCash, cfg.Engine.TradeLogDepth)
	hub := broadcast.NewHub(cfg.Stream.BufferSize)

	interval, ok := scheduler.ParseTickInterval(cfg.Engine.TickInterval)
	if !ok {
		return nil, fmt.Errorf("invalid tick_interval %q", cfg.Engine.TickInterval)
	}

	eng, err := engine.New(engine.Config{
		Registry:     registry,
		History:      history,
		Source:       simulator,
		Ledger:       ledger,
		Hub:          hub,
		Strategy:     strategySettings(cfg.Strategy),
		FeeRate:      cfg.Engine.FeeRate,
		TickInterval: interval,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	httpSrv, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:   cfg.App.HTTPAddr,
		Engine: eng,
		Hub:    hub,
	})
	if err != nil {
		return nil, fmt.Errorf("build http server: %w", err)
	}

	var journal *recorder.Journal
	if cfg.Journal.Enabled {
		rec, err := b.recorderFn(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("build trade journal: %w", err)
		}
		journal = recorder.NewJournal(hub, rec)
		logger.Infof("trade journal enabled path=%s", cfg.Journal.Path)
	}

	return &App{
		cfg:     cfg,
		engine:  eng,
		httpSrv: httpSrv,
		journal: journal,
	}, nil
}

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}

func provideAppFromBuilder(ctx context.Context, b *AppBuilder) (*App, error) {
	return b.Build(ctx)
}

func buildRecorder(cfg config.JournalConfig) (recorder.Recorder, error) {
	if cfg.Path == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(cfg.Path)
}

func strategySettings(cfg config.StrategyConfig) strategy.Settings {
	s := strategy.Settings{
		EntryRSI:      cfg.EntryRSI,
		ExitEpsilon:   cfg.ExitEpsilon,
		AllocationPct: cfg.AllocationPct,
	}
	s.Indicator.RSIPeriod = cfg.RSIPeriod
	s.Indicator.EMAFast = cfg.EMAFast
	s.Indicator.EMASlow = cfg.EMASlow
	s.Indicator.MACDSignal = cfg.MACDSignal
	s.Indicator.BollPeriod = cfg.BollPeriod
	s.Indicator.BollK = cfg.BollK
	return s
}
