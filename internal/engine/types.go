package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paperdesk/internal/market"
	"paperdesk/internal/portfolio"
)

var (
	// ErrStopped is returned once the engine reached its terminal state.
	ErrStopped = errors.New("engine: stopped")
	// ErrValidation rejects malformed order submissions before they reach
	// the ledger.
	ErrValidation = errors.New("engine: validation failed")
)

type EventType string

const (
	EvtTick    EventType = "tick"
	EvtOrder   EventType = "order"
	EvtHistory EventType = "history"
)

// Reply carries the outcome of a synchronously processed event back to the
// caller. Only the fields relevant to the event type are set.
type Reply struct {
	Trade   *portfolio.Trade
	Candles []market.Candle
	Err     error
}

// EventEnvelope is one request entering the engine's single mutation queue.
// Tick-driven and manually submitted work travel through the same channel,
// which is what serializes them against each other.
type EventEnvelope struct {
	ID        string
	Type      EventType
	Payload   any
	CreatedAt time.Time
	ReplyCh   chan Reply
}

// OrderPayload is a manual order: positive quantity buys, negative sells.
type OrderPayload struct {
	Symbol   string
	Quantity float64
}

// HistoryPayload requests a read-only history view through the queue, so
// readers never observe a partially applied tick.
type HistoryPayload struct {
	Symbol   string
	Lookback int
}

func newEventID(prefix string) string {
	if prefix == "" {
		prefix = "evt"
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// PortfolioView is the immutable portfolio read handed to the API and the
// broadcast hub: the ledger snapshot plus mark-to-market aggregates.
type PortfolioView struct {
	portfolio.Snapshot
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	Equity        float64   `json:"equity"`
	UpdatedAt     time.Time `json:"updated_at"`
}
