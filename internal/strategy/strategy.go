// Package strategy holds the rule-based trade decision procedure. Evaluate
// is advisory only: it proposes a trade, the engine decides whether to apply
// it to the ledger. Keeping decision and effect apart makes the signal logic
// testable without a ledger.
package strategy

import (
	"paperdesk/internal/analysis/indicator"
	"paperdesk/internal/market"
	"paperdesk/internal/pkg/trading"
	"paperdesk/internal/portfolio"
)

// Settings bundles every tunable the decision procedure honors.
type Settings struct {
	Indicator     indicator.Settings
	EntryRSI      float64 // upper RSI bound gating entries
	ExitEpsilon   float64 // histogram hysteresis band around zero
	AllocationPct float64 // fraction of available cash per entry
}

// Proposal is a proposed trade. Quantity is always positive; Side carries
// the direction.
type Proposal struct {
	Symbol   string
	Side     portfolio.Side
	Quantity float64
	Price    float64
	Snapshot indicator.Snapshot
}

// Evaluate maps one instrument's history and current holding to a proposal,
// or nil when no signal fires. It is a pure function: same history, position
// and cash produce the same proposal.
//
// Entry (flat only): RSI <= EntryRSI, close above the fast EMA and a
// positive MACD histogram. Exit (held only): close below the fast EMA and a
// histogram at or below ExitEpsilon; the epsilon keeps the exit from
// flip-flopping with the entry rule at the zero crossing.
func Evaluate(inst market.Instrument, candles []market.Candle, position *portfolio.Position, cash float64, cfg Settings) *Proposal {
	if len(candles) == 0 {
		return nil
	}
	closes := market.Closes(candles)
	price := closes[len(closes)-1]
	snap := indicator.Compute(closes, cfg.Indicator)

	if position == nil {
		if snap.RSI <= cfg.EntryRSI && price > snap.EMAFast && snap.MACD.Histogram > 0 {
			qty := trading.OrderQuantity(cash*cfg.AllocationPct, price)
			if qty <= 0 {
				return nil
			}
			return &Proposal{
				Symbol:   inst.Symbol,
				Side:     portfolio.SideBuy,
				Quantity: qty,
				Price:    price,
				Snapshot: snap,
			}
		}
		return nil
	}

	if price < snap.EMAFast && snap.MACD.Histogram <= cfg.ExitEpsilon {
		return &Proposal{
			Symbol:   inst.Symbol,
			Side:     portfolio.SideSell,
			Quantity: position.Quantity,
			Price:    price,
			Snapshot: snap,
		}
	}
	return nil
}
