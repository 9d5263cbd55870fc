package market

import (
	"fmt"
	"strings"
)

// History keeps a bounded chronological candle sequence per instrument.
// Eviction is strictly FIFO: once a symbol holds capacity candles, every
// append drops the oldest. Instances are not safe for concurrent writers;
// the engine's single mutation loop is the only writer.
type History struct {
	capacity int
	bySymbol map[string][]Candle
}

func NewHistory(capacity int, symbols []string) *History {
	if capacity <= 0 {
		capacity = 1
	}
	h := &History{
		capacity: capacity,
		bySymbol: make(map[string][]Candle, len(symbols)),
	}
	for _, sym := range symbols {
		h.bySymbol[strings.ToUpper(sym)] = make([]Candle, 0, capacity)
	}
	return h
}

func (h *History) Capacity() int { return h.capacity }

// Append adds one candle for a registered symbol, evicting the oldest candle
// once the sequence exceeds capacity.
func (h *History) Append(symbol string, candle Candle) error {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	seq, ok := h.bySymbol[key]
	if !ok {
		return fmt.Errorf("history: unknown symbol %s", symbol)
	}
	if len(seq) == h.capacity {
		copy(seq, seq[1:])
		seq[len(seq)-1] = candle
	} else {
		seq = append(seq, candle)
	}
	h.bySymbol[key] = seq
	return nil
}

// Recent returns a defensive copy of the most recent lookback candles in
// chronological order; lookback <= 0 returns everything retained.
func (h *History) Recent(symbol string, lookback int) []Candle {
	seq, ok := h.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok || len(seq) == 0 {
		return nil
	}
	if lookback <= 0 || lookback > len(seq) {
		lookback = len(seq)
	}
	out := make([]Candle, lookback)
	copy(out, seq[len(seq)-lookback:])
	return out
}

// Len reports the retained candle count for a symbol.
func (h *History) Len(symbol string) int {
	return len(h.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))])
}

// LastClose returns the latest close for a symbol, or false before the first
// candle arrives.
func (h *History) LastClose(symbol string) (float64, bool) {
	seq := h.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if len(seq) == 0 {
		return 0, false
	}
	return seq[len(seq)-1].Close, true
}

// LastCloses snapshots the latest close per symbol, used by the accounting
// identity check and the portfolio view.
func (h *History) LastCloses() map[string]float64 {
	out := make(map[string]float64, len(h.bySymbol))
	for sym, seq := range h.bySymbol {
		if len(seq) > 0 {
			out[sym] = seq[len(seq)-1].Close
		}
	}
	return out
}
