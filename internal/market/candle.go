package market

import "errors"

// ErrDataIntegrity marks a generated candle that violates its own OHLC
// invariant. It is a programming defect, not an operational condition: the
// engine halts instead of simulating on corrupted data.
var ErrDataIntegrity = errors.New("market: candle violates OHLC invariant")

type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Validate checks high >= max(open, close), low <= min(open, close) and
// positive prices/volume.
func (c Candle) Validate() error {
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 || c.Volume <= 0 {
		return ErrDataIntegrity
	}
	upper := c.Open
	if c.Close > upper {
		upper = c.Close
	}
	lower := c.Open
	if c.Close < lower {
		lower = c.Close
	}
	if c.High < upper || c.Low > lower {
		return ErrDataIntegrity
	}
	return nil
}

// Closes extracts the close series from a candle slice.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
