package portfolio

import (
	"time"

	"github.com/google/uuid"

	"paperdesk/internal/pkg/trading"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade is one executed transaction. Sells carry negative quantity so the
// trade log reads as a sequence of signed position deltas.
type Trade struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Fee       float64   `json:"fee"`
}

// Position is a long-only holding with a quantity-weighted average cost.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

// Snapshot is an immutable read of the ledger for external consumers; it
// shares no references with live state.
type Snapshot struct {
	InitialCash float64             `json:"initial_cash"`
	Cash        float64             `json:"cash"`
	Positions   map[string]Position `json:"positions"`
	RealizedPnL float64             `json:"realized_pnl"`
	TotalFees   float64             `json:"total_fees"`
	Trades      []Trade             `json:"trades"`
}

// Ledger is the authoritative owner of cash, positions and the trade log.
// Applies are all-or-nothing: every precondition is checked before the first
// field mutates. The ledger itself is not locked; the engine's single
// mutation loop is its only writer.
type Ledger struct {
	initialCash float64
	cash        float64
	positions   map[string]*Position
	realizedPnL float64
	totalFees   float64
	trades      []Trade
	tradeDepth  int
}

func NewLedger(initialCash float64, tradeDepth int) *Ledger {
	if tradeDepth <= 0 {
		tradeDepth = 30
	}
	return &Ledger{
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[string]*Position),
		tradeDepth:  tradeDepth,
	}
}

func (l *Ledger) Cash() float64        { return l.cash }
func (l *Ledger) RealizedPnL() float64 { return l.realizedPnL }

// Position returns a copy of the holding for symbol, or false when flat.
func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// ApplyBuy debits cash, creates or extends the position at a quantity-
// weighted average cost and records the trade.
func (l *Ledger) ApplyBuy(symbol string, quantity, price, fee float64, at time.Time) (Trade, error) {
	if quantity <= 0 || price <= 0 || fee < 0 {
		return Trade{}, ErrInvalidOrder
	}
	cost := trading.Cost(quantity, price, fee)
	if !trading.GTE(l.cash, cost) {
		return Trade{}, ErrInsufficientFunds
	}

	l.cash -= cost
	l.totalFees += fee
	if pos, ok := l.positions[symbol]; ok {
		pos.AvgCost = trading.WeightedAverage(pos.Quantity, pos.AvgCost, quantity, price)
		pos.Quantity += quantity
	} else {
		l.positions[symbol] = &Position{Symbol: symbol, Quantity: quantity, AvgCost: price}
	}
	return l.record(symbol, SideBuy, quantity, price, fee, at), nil
}

// ApplySell credits proceeds, realizes (price-avgCost)*quantity-fee and
// reduces or removes the position. The recorded trade quantity is negative.
func (l *Ledger) ApplySell(symbol string, quantity, price, fee float64, at time.Time) (Trade, error) {
	if quantity <= 0 || price <= 0 || fee < 0 {
		return Trade{}, ErrInvalidOrder
	}
	pos, ok := l.positions[symbol]
	if !ok || !trading.GTE(pos.Quantity, quantity) {
		return Trade{}, ErrInsufficientPosition
	}

	l.cash += trading.Proceeds(quantity, price, fee)
	l.totalFees += fee
	l.realizedPnL += trading.Proceeds(quantity, price-pos.AvgCost, fee)
	pos.Quantity -= quantity
	if trading.LTE(pos.Quantity, 0) {
		delete(l.positions, symbol)
	}
	return l.record(symbol, SideSell, -quantity, price, fee, at), nil
}

func (l *Ledger) record(symbol string, side Side, quantity, price, fee float64, at time.Time) Trade {
	trade := Trade{
		ID:        uuid.NewString(),
		Timestamp: at,
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Fee:       fee,
	}
	if len(l.trades) == l.tradeDepth {
		copy(l.trades, l.trades[1:])
		l.trades[len(l.trades)-1] = trade
	} else {
		l.trades = append(l.trades, trade)
	}
	return trade
}

// Snapshot deep-copies the ledger for read-only consumers.
func (l *Ledger) Snapshot() Snapshot {
	positions := make(map[string]Position, len(l.positions))
	for sym, pos := range l.positions {
		positions[sym] = *pos
	}
	trades := make([]Trade, len(l.trades))
	copy(trades, l.trades)
	return Snapshot{
		InitialCash: l.initialCash,
		Cash:        l.cash,
		Positions:   positions,
		RealizedPnL: l.realizedPnL,
		TotalFees:   l.totalFees,
		Trades:      trades,
	}
}

// MarketValue marks open positions against the given closes.
func (l *Ledger) MarketValue(lastCloses map[string]float64) float64 {
	total := 0.0
	for sym, pos := range l.positions {
		total += pos.Quantity * lastCloses[sym]
	}
	return total
}

// CheckIdentity verifies the accounting identity
//
//	cash + Σ(qty × lastClose) == initialCash + realizedPnL + unrealizedPnL − Σfees
//
// where unrealized PnL marks each open lot against the same closes. Positions
// fall back to their average cost when a close is missing, which can only
// happen before the first candle. A violation is a ledger defect, never an
// operational condition.
func (l *Ledger) CheckIdentity(lastCloses map[string]float64) error {
	lhs := l.cash
	rhs := l.initialCash + l.realizedPnL - l.totalFees
	for sym, pos := range l.positions {
		price, ok := lastCloses[sym]
		if !ok {
			price = pos.AvgCost
		}
		lhs += pos.Quantity * price
		rhs += pos.Quantity * (price - pos.AvgCost)
	}
	if !trading.IdentityHolds(lhs, rhs) {
		return ErrIntegrity
	}
	return nil
}
