package config

// Config is the top-level paperdesk configuration.
type Config struct {
	App      AppConfig      `toml:"app"`
	Engine   EngineConfig   `toml:"engine"`
	Strategy StrategyConfig `toml:"strategy"`
	Stream   StreamConfig   `toml:"stream"`
	Journal  JournalConfig  `toml:"journal"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// EngineConfig drives the simulator clock and the portfolio ledger.
type EngineConfig struct {
	Seed            int64   `toml:"seed"`
	TickInterval    string  `toml:"tick_interval"` // "250ms", "2s", ... or "manual"
	HistoryCapacity int     `toml:"history_capacity"`
	InitialCash     float64 `toml:"initial_cash"`
	FeeRate         float64 `toml:"fee_rate"`
	TradeLogDepth   int     `toml:"trade_log_depth"`
	InstrumentsPath string  `toml:"instruments_path"`
}

// StrategyConfig carries every indicator and signal constant the strategy
// honors. Values of zero fall back to the documented defaults.
type StrategyConfig struct {
	RSIPeriod     int     `toml:"rsi_period"`
	EMAFast       int     `toml:"ema_fast"`
	EMASlow       int     `toml:"ema_slow"`
	MACDSignal    int     `toml:"macd_signal"`
	BollPeriod    int     `toml:"boll_period"`
	BollK         float64 `toml:"boll_k"`
	EntryRSI      float64 `toml:"entry_rsi"`
	ExitEpsilon   float64 `toml:"exit_epsilon"`
	AllocationPct float64 `toml:"allocation_pct"`
}

// StreamConfig bounds the per-subscriber broadcast buffers.
type StreamConfig struct {
	BufferSize int `toml:"buffer_size"`
}

// JournalConfig enables the optional sqlite trade journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}
