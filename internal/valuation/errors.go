package valuation

import "errors"

var (
	// ErrEmptyPortfolio is the pre-flight failure for pushing an empty
	// working set, reported before any remote round trip.
	ErrEmptyPortfolio = errors.New("cannot save empty portfolio")

	// ErrNothingToLoad is the distinguished pull outcome for an owner with
	// no ledger entry. It is not a failure.
	ErrNothingToLoad = errors.New("no portfolio stored on the ledger")
)
