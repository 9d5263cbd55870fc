package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperdesk/internal/config"
	"paperdesk/internal/market"
)

func manualConfig() *config.Config {
	cfg := config.Default()
	cfg.Engine.TickInterval = "manual"
	return cfg
}

func seedInstruments() []market.Instrument {
	return []market.Instrument{
		{Symbol: "ACME", Name: "Acme Industrial", BasePrice: 52.4, Volatility: 0.012},
		{Symbol: "BOLT", Name: "Bolt Semiconductors", BasePrice: 187.1, Volatility: 0.021},
	}
}

func TestBuilderAssemblesApp(t *testing.T) {
	b := NewAppBuilder(manualConfig(), WithInstruments(seedInstruments()))
	a, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a.engine)
	require.NotNil(t, a.httpSrv)
	assert.Nil(t, a.journal, "journal stays off by default")

	instruments := a.Engine().Instruments()
	require.Len(t, instruments, 2)
	assert.Equal(t, "ACME", instruments[0].Symbol)

	// Manual mode: the engine only advances when told to.
	a.engine.Start()
	defer a.engine.Shutdown()
	require.NoError(t, a.engine.Tick(context.Background()))
	window, err := a.engine.History(context.Background(), "ACME", 0)
	require.NoError(t, err)
	assert.Len(t, window, 1)
}

func TestBuilderFailsOnMissingInstrumentsFile(t *testing.T) {
	cfg := manualConfig()
	cfg.Engine.InstrumentsPath = "does/not/exist.yaml"
	_, err := NewAppBuilder(cfg).Build(context.Background())
	assert.Error(t, err)
}

func TestBuilderRejectsBadTickInterval(t *testing.T) {
	cfg := manualConfig()
	cfg.Engine.TickInterval = "sometimes"
	_, err := NewAppBuilder(cfg, WithInstruments(seedInstruments())).Build(context.Background())
	assert.Error(t, err)
}

func TestNewAppNilConfig(t *testing.T) {
	_, err := NewApp(nil)
	assert.Error(t, err)
}
