package config

const (
	defaultAppEnv      = "dev"
	defaultAppLogLevel = "info"
	defaultAppHTTPAddr = ":9985"

	DefaultHistoryCapacity = 200
	DefaultInitialCash     = 100000.0
	DefaultFeeRate         = 0.0004 // 4bps, taker-style
	DefaultTradeLogDepth   = 30
	defaultTickInterval    = "2s"
	defaultInstrumentsPath = "configs/instruments.yaml"
	defaultSeed            = 42

	DefaultRSIPeriod     = 14
	DefaultEMAFast       = 12
	DefaultEMASlow       = 26
	DefaultMACDSignal    = 9
	DefaultBollPeriod    = 20
	DefaultBollK         = 2.0
	DefaultEntryRSI      = 70.0
	DefaultExitEpsilon   = 0.1
	DefaultAllocationPct = 0.2

	DefaultStreamBuffer = 64
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Engine.applyDefaults()
	c.Strategy.applyDefaults()
	c.Stream.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if a.Env == "" {
		a.Env = defaultAppEnv
	}
	if a.LogLevel == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if a.HTTPAddr == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
}

func (e *EngineConfig) applyDefaults() {
	if e.Seed == 0 {
		e.Seed = defaultSeed
	}
	if e.TickInterval == "" {
		e.TickInterval = defaultTickInterval
	}
	if e.HistoryCapacity <= 0 {
		e.HistoryCapacity = DefaultHistoryCapacity
	}
	if e.InitialCash <= 0 {
		e.InitialCash = DefaultInitialCash
	}
	if e.FeeRate < 0 {
		e.FeeRate = 0
	}
	if e.FeeRate == 0 {
		e.FeeRate = DefaultFeeRate
	}
	if e.TradeLogDepth <= 0 {
		e.TradeLogDepth = DefaultTradeLogDepth
	}
	if e.InstrumentsPath == "" {
		e.InstrumentsPath = defaultInstrumentsPath
	}
}

func (s *StrategyConfig) applyDefaults() {
	if s.RSIPeriod <= 0 {
		s.RSIPeriod = DefaultRSIPeriod
	}
	if s.EMAFast <= 0 {
		s.EMAFast = DefaultEMAFast
	}
	if s.EMASlow <= 0 {
		s.EMASlow = DefaultEMASlow
	}
	if s.MACDSignal <= 0 {
		s.MACDSignal = DefaultMACDSignal
	}
	if s.BollPeriod <= 0 {
		s.BollPeriod = DefaultBollPeriod
	}
	if s.BollK <= 0 {
		s.BollK = DefaultBollK
	}
	if s.EntryRSI <= 0 {
		s.EntryRSI = DefaultEntryRSI
	}
	if s.ExitEpsilon <= 0 {
		s.ExitEpsilon = DefaultExitEpsilon
	}
	if s.AllocationPct <= 0 || s.AllocationPct > 1 {
		s.AllocationPct = DefaultAllocationPct
	}
}

func (s *StreamConfig) applyDefaults() {
	if s.BufferSize <= 0 {
		s.BufferSize = DefaultStreamBuffer
	}
}
