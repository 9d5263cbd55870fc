// Package indicator derives technical indicators from a close-price series.
// Every function is a pure mapping of (series, settings) to values; the
// numeric work is delegated to go-talib.
package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// NeutralRSI is reported while the series is too short for Wilder smoothing.
// The strategy's entry bound compares against this value, so it has to be an
// explicit constant rather than an accidental zero.
const NeutralRSI = 50.0

// Settings carries the indicator parameters. Zero values are invalid; the
// config layer guarantees they are filled in.
type Settings struct {
	RSIPeriod  int
	EMAFast    int
	EMASlow    int
	MACDSignal int
	BollPeriod int
	BollK      float64
}

// MACD is the value / signal / histogram triple.
type MACD struct {
	Value     float64 `json:"value"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bollinger is the band triple around the period SMA. The standard deviation
// is the population stddev (TA-Lib convention).
type Bollinger struct {
	Upper float64 `json:"upper"`
	Mid   float64 `json:"mid"`
	Lower float64 `json:"lower"`
}

// Snapshot bundles every indicator the strategy consumes at one evaluation
// point. It is recomputed from history on demand and never stored.
type Snapshot struct {
	RSI       float64   `json:"rsi"`
	EMAFast   float64   `json:"ema_fast"`
	EMASlow   float64   `json:"ema_slow"`
	MACD      MACD      `json:"macd"`
	Bollinger Bollinger `json:"bollinger"`
}

// Compute derives a Snapshot from the close series. Insufficient history is
// not an error; each indicator falls back to its documented neutral policy:
// EMA reports the latest close, RSI reports NeutralRSI, MACD and Bollinger
// report zero values.
func Compute(closes []float64, cfg Settings) Snapshot {
	return Snapshot{
		RSI:       RSI(closes, cfg.RSIPeriod),
		EMAFast:   EMA(closes, cfg.EMAFast),
		EMASlow:   EMA(closes, cfg.EMASlow),
		MACD:      MACDValues(closes, cfg.EMAFast, cfg.EMASlow, cfg.MACDSignal),
		Bollinger: BollingerBands(closes, cfg.BollPeriod, cfg.BollK),
	}
}

// EMA returns the latest exponential moving average, seeded by the simple
// average of the first period values. With fewer closes than the period it
// reports the most recent close.
func EMA(closes []float64, period int) float64 {
	if period <= 0 || len(closes) == 0 {
		return 0
	}
	if len(closes) < period {
		return closes[len(closes)-1]
	}
	return lastValid(talib.Ema(closes, period))
}

// RSI returns the latest Wilder-smoothed relative strength index. With fewer
// than period+1 closes it reports NeutralRSI.
func RSI(closes []float64, period int) float64 {
	if period <= 0 {
		return 0
	}
	if len(closes) < period+1 {
		return NeutralRSI
	}
	return lastValid(talib.Rsi(closes, period))
}

// MACDValues returns the latest MACD line, signal line and histogram. The
// underlying TA-Lib port indexes the warmup window unconditionally, so short
// series report zero values instead of being passed through.
func MACDValues(closes []float64, fast, slow, signal int) MACD {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(closes) < slow+signal {
		return MACD{}
	}
	macd, sig, hist := talib.Macd(closes, fast, slow, signal)
	return MACD{
		Value:     lastValid(macd),
		Signal:    lastValid(sig),
		Histogram: lastValid(hist),
	}
}

// BollingerBands returns the latest band values around the period SMA.
func BollingerBands(closes []float64, period int, k float64) Bollinger {
	if len(closes) < period || period <= 0 {
		return Bollinger{}
	}
	upper, mid, lower := talib.BBands(closes, period, k, k, talib.SMA)
	return Bollinger{
		Upper: lastValid(upper),
		Mid:   lastValid(mid),
		Lower: lastValid(lower),
	}
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return 0
}
