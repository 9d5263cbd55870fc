package market

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	// Price clamp band around an instrument's reference magnitude; keeps a
	// long random walk from running away or going negative.
	clampFloor   = 0.4
	clampCeiling = 2.5
	// Pull factor of the mean reversion toward the reference price.
	reversion = 0.05
)

// SimulatorConfig fixes everything the candle sequence depends on, so one
// seed reproduces one sequence.
type SimulatorConfig struct {
	Seed           int64
	IntervalMillis int64 // candle width; defaults to 1s
	OriginMillis   int64 // open time of the first candle
}

// TickCandle pairs a generated candle with its instrument.
type TickCandle struct {
	Symbol string `json:"symbol"`
	Candle Candle `json:"candle"`
}

// Simulator produces one candle per instrument per tick via a bounded random
// walk around each instrument's reference price. All state mutation happens
// inside Tick, which the engine loop calls serially.
type Simulator struct {
	registry *Registry
	history  *History
	rng      *rand.Rand
	interval int64
	origin   int64
	tick     int64
	last     map[string]float64
}

func NewSimulator(cfg SimulatorConfig, registry *Registry, history *History) *Simulator {
	interval := cfg.IntervalMillis
	if interval <= 0 {
		interval = 1000
	}
	origin := cfg.OriginMillis
	if origin <= 0 {
		origin = 1_700_000_000_000
	}
	last := make(map[string]float64)
	for _, inst := range registry.List() {
		last[inst.Symbol] = inst.BasePrice
	}
	return &Simulator{
		registry: registry,
		history:  history,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		interval: interval,
		origin:   origin,
		last:     last,
	}
}

// Tick generates and appends one candle per instrument, in registry order.
// A candle failing its own OHLC check aborts the tick with ErrDataIntegrity.
func (s *Simulator) Tick() ([]TickCandle, error) {
	openTime := s.origin + s.tick*s.interval
	closeTime := openTime + s.interval - 1
	out := make([]TickCandle, 0, len(s.last))
	for _, inst := range s.registry.List() {
		candle := s.nextCandle(inst, openTime, closeTime)
		if err := candle.Validate(); err != nil {
			return nil, fmt.Errorf("simulator: %s at tick %d: %w", inst.Symbol, s.tick, err)
		}
		if err := s.history.Append(inst.Symbol, candle); err != nil {
			return nil, err
		}
		s.last[inst.Symbol] = candle.Close
		out = append(out, TickCandle{Symbol: inst.Symbol, Candle: candle})
	}
	s.tick++
	return out, nil
}

func (s *Simulator) nextCandle(inst Instrument, openTime, closeTime int64) Candle {
	prev := s.last[inst.Symbol]
	ref := inst.BasePrice

	// Drift + noise, with a pull back toward the reference price so the
	// deviation stays bounded in expectation.
	ret := inst.Drift + inst.Volatility*s.rng.NormFloat64()
	ret -= reversion * (prev - ref) / ref
	close := prev * (1 + ret)
	close = clamp(close, ref*clampFloor, ref*clampCeiling)

	open := prev
	upper := math.Max(open, close)
	lower := math.Min(open, close)
	wick := inst.Volatility * 0.5
	high := upper * (1 + wick*s.rng.Float64())
	low := lower * (1 - wick*s.rng.Float64())
	if low <= 0 {
		low = lower
	}
	volume := 500 + s.rng.Float64()*1500

	return Candle{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
