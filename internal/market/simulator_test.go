package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	list, err := NormalizeInstruments([]Instrument{
		{Symbol: "acme", Name: "Acme Industrial", BasePrice: 50, Drift: 0.0004, Volatility: 0.02},
		{Symbol: "BOLT", Name: "Bolt Semi", BasePrice: 180, Drift: 0.001, Volatility: 0.03},
	})
	require.NoError(t, err)
	return NewRegistry(list)
}

func TestSimulatorDeterministicForSeed(t *testing.T) {
	run := func(seed int64, ticks int) [][]TickCandle {
		reg := testRegistry(t)
		hist := NewHistory(200, reg.Symbols())
		sim := NewSimulator(SimulatorConfig{Seed: seed}, reg, hist)
		out := make([][]TickCandle, 0, ticks)
		for i := 0; i < ticks; i++ {
			batch, err := sim.Tick()
			require.NoError(t, err)
			out = append(out, batch)
		}
		return out
	}

	a := run(42, 50)
	b := run(42, 50)
	assert.Equal(t, a, b, "same seed must reproduce the same candle sequence")

	c := run(43, 50)
	assert.NotEqual(t, a, c, "different seed should diverge")
}

func TestSimulatorCandleShape(t *testing.T) {
	reg := testRegistry(t)
	hist := NewHistory(500, reg.Symbols())
	sim := NewSimulator(SimulatorConfig{Seed: 7}, reg, hist)

	var prevClose = map[string]float64{}
	for i := 0; i < 300; i++ {
		batch, err := sim.Tick()
		require.NoError(t, err)
		require.Len(t, batch, 2)
		assert.Equal(t, "ACME", batch[0].Symbol)
		assert.Equal(t, "BOLT", batch[1].Symbol)

		for _, tc := range batch {
			c := tc.Candle
			require.NoError(t, c.Validate())
			assert.Greater(t, c.CloseTime, c.OpenTime)
			if prev, ok := prevClose[tc.Symbol]; ok {
				assert.Equal(t, prev, c.Open, "each candle opens at the previous close")
			}
			prevClose[tc.Symbol] = c.Close
		}
	}
}

func TestSimulatorClampsAroundReference(t *testing.T) {
	list, err := NormalizeInstruments([]Instrument{
		{Symbol: "WILD", Name: "Wild", BasePrice: 10, Drift: 0, Volatility: 0.5},
	})
	require.NoError(t, err)
	reg := NewRegistry(list)
	hist := NewHistory(2000, reg.Symbols())
	sim := NewSimulator(SimulatorConfig{Seed: 99}, reg, hist)

	for i := 0; i < 2000; i++ {
		batch, err := sim.Tick()
		require.NoError(t, err)
		close := batch[0].Candle.Close
		assert.GreaterOrEqual(t, close, 10*0.4)
		assert.LessOrEqual(t, close, 10*2.5)
	}
}

func TestSimulatorTimestampsAdvance(t *testing.T) {
	reg := testRegistry(t)
	hist := NewHistory(10, reg.Symbols())
	sim := NewSimulator(SimulatorConfig{Seed: 1, IntervalMillis: 250, OriginMillis: 1000}, reg, hist)

	first, err := sim.Tick()
	require.NoError(t, err)
	second, err := sim.Tick()
	require.NoError(t, err)

	assert.Equal(t, int64(1000), first[0].Candle.OpenTime)
	assert.Equal(t, int64(1249), first[0].Candle.CloseTime)
	assert.Equal(t, int64(1250), second[0].Candle.OpenTime)
}
