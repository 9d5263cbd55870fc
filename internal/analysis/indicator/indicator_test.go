package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings() Settings {
	return Settings{
		RSIPeriod:  14,
		EMAFast:    12,
		EMASlow:    26,
		MACDSignal: 9,
		BollPeriod: 20,
		BollK:      2.0,
	}
}

// zigzagUp builds a gently rising series: +1.0 then -0.5 alternating, so the
// RSI stays high but below a strict uptrend's 100.
func zigzagUp(start float64, n int) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		out[i] = v
		if i%2 == 0 {
			v += 1.0
		} else {
			v -= 0.5
		}
	}
	return out
}

func zigzagDown(start float64, n int) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		out[i] = v
		if i%2 == 0 {
			v -= 1.0
		} else {
			v += 0.5
		}
	}
	return out
}

func TestRSIBoundsAndDirection(t *testing.T) {
	t.Run("rising series scores above 50", func(t *testing.T) {
		rsi := RSI(zigzagUp(100, 60), 14)
		assert.Greater(t, rsi, 50.0)
		assert.LessOrEqual(t, rsi, 100.0)
	})

	t.Run("falling series scores below 50", func(t *testing.T) {
		rsi := RSI(zigzagDown(100, 60), 14)
		assert.Less(t, rsi, 50.0)
		assert.GreaterOrEqual(t, rsi, 0.0)
	})

	t.Run("strictly rising series saturates at 100", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		assert.InDelta(t, 100.0, RSI(closes, 14), 1e-9)
	})
}

func TestRSIInsufficientHistoryIsNeutral(t *testing.T) {
	closes := []float64{100, 101, 102}
	assert.Equal(t, NeutralRSI, RSI(closes, 14))
}

func TestEMAFallsBackToLatestClose(t *testing.T) {
	closes := []float64{100, 104, 102}
	assert.Equal(t, 102.0, EMA(closes, 12))
}

func TestEMATracksLevel(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 200.0
	}
	assert.InDelta(t, 200.0, EMA(closes, 12), 1e-9)

	// A rising series keeps the fast EMA above the slow one.
	rising := zigzagUp(100, 80)
	assert.Greater(t, EMA(rising, 12), EMA(rising, 26))
}

func TestMACDHistogramIdentity(t *testing.T) {
	for _, closes := range [][]float64{zigzagUp(100, 120), zigzagDown(300, 120)} {
		m := MACDValues(closes, 12, 26, 9)
		assert.InDelta(t, m.Value-m.Signal, m.Histogram, 1e-9)
	}
}

func TestMACDTrendSign(t *testing.T) {
	t.Run("sustained uptrend", func(t *testing.T) {
		m := MACDValues(zigzagUp(100, 120), 12, 26, 9)
		assert.Greater(t, m.Value, 0.0)
	})
	t.Run("sustained downtrend", func(t *testing.T) {
		m := MACDValues(zigzagDown(300, 120), 12, 26, 9)
		assert.Less(t, m.Value, 0.0)
	})
}

func TestBollingerBands(t *testing.T) {
	t.Run("flat series collapses to the level", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 50.0
		}
		b := BollingerBands(closes, 20, 2.0)
		assert.InDelta(t, 50.0, b.Mid, 1e-9)
		assert.InDelta(t, 50.0, b.Upper, 1e-9)
		assert.InDelta(t, 50.0, b.Lower, 1e-9)
	})

	t.Run("bands use population stddev around the SMA", func(t *testing.T) {
		// Last 20 values alternate 90/110: SMA 100, population stddev 10.
		closes := make([]float64, 20)
		for i := range closes {
			if i%2 == 0 {
				closes[i] = 90
			} else {
				closes[i] = 110
			}
		}
		b := BollingerBands(closes, 20, 2.0)
		assert.InDelta(t, 100.0, b.Mid, 1e-9)
		assert.InDelta(t, 120.0, b.Upper, 1e-9)
		assert.InDelta(t, 80.0, b.Lower, 1e-9)
	})

	t.Run("insufficient history reports zero bands", func(t *testing.T) {
		b := BollingerBands([]float64{1, 2, 3}, 20, 2.0)
		assert.Equal(t, Bollinger{}, b)
	})
}

func TestComputeSnapshot(t *testing.T) {
	closes := zigzagUp(100, 80)
	snap := Compute(closes, defaultSettings())

	assert.False(t, math.IsNaN(snap.RSI))
	assert.Greater(t, snap.EMAFast, snap.EMASlow)
	assert.InDelta(t, snap.MACD.Value-snap.MACD.Signal, snap.MACD.Histogram, 1e-9)
	require.Greater(t, snap.Bollinger.Upper, snap.Bollinger.Mid)
	require.Greater(t, snap.Bollinger.Mid, snap.Bollinger.Lower)
}

func TestComputeShortSeriesNeutralPolicy(t *testing.T) {
	snap := Compute([]float64{100, 101}, defaultSettings())
	assert.Equal(t, NeutralRSI, snap.RSI)
	assert.Equal(t, 101.0, snap.EMAFast)
	assert.Equal(t, 101.0, snap.EMASlow)
	assert.Equal(t, Bollinger{}, snap.Bollinger)
}
