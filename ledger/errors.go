package ledger

import "errors"

// Validation and lookup errors carry the exact strings the remote ledger
// reverts with, so callers can surface them verbatim.
var (
	ErrEmptyPortfolio = errors.New("Portfolio cannot be empty")
	ErrTooManyAssets  = errors.New("Too many assets (max 50)")
	ErrEmptySymbol    = errors.New("Symbol cannot be empty")
	ErrInvalidAmount  = errors.New("Amount must be greater than 0")
	ErrInvalidIndex   = errors.New("Invalid index")
	ErrNoPortfolio    = errors.New("No portfolio to delete")
)
