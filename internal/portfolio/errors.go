package portfolio

import "errors"

var (
	// ErrInsufficientFunds rejects a buy whose cost exceeds available cash.
	ErrInsufficientFunds = errors.New("portfolio: insufficient funds")
	// ErrInsufficientPosition rejects a sell larger than the held quantity.
	ErrInsufficientPosition = errors.New("portfolio: insufficient position")
	// ErrInvalidOrder rejects non-positive quantities or prices before any
	// state is touched.
	ErrInvalidOrder = errors.New("portfolio: invalid order")
	// ErrIntegrity means the accounting identity no longer holds after an
	// apply. It indicates a defect and halts the engine.
	ErrIntegrity = errors.New("portfolio: accounting identity violated")
)
