package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/ranxi2001/Fluctuate-Portfolio/ledger"
	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/types"
)

// ledgerScale is the fixed-point exponent of the authoritative ledger:
// every amount and price travels as an integer scaled by 1e18.
const ledgerScale = 18

// toLedgerAsset rescales a working asset into the ledger's fixed-point
// shape. An absent buy price becomes the ledger's zero sentinel.
func toLedgerAsset(a types.WorkingAsset) ledger.Asset {
	amount := decimal.NewFromFloat(a.Amount).Shift(ledgerScale).BigInt()
	buyPrice := decimal.Zero.BigInt()
	if a.BuyPrice != nil {
		buyPrice = decimal.NewFromFloat(*a.BuyPrice).Shift(ledgerScale).BigInt()
	}
	return ledger.Asset{
		Symbol:   a.Symbol,
		Amount:   amount,
		BuyPrice: buyPrice,
	}
}

// fromLedgerAsset converts a fixed-point ledger asset back to a working
// asset. The symbol doubles as display name and the category defaults to
// custom; the caller assigns a fresh id when installing the result.
func fromLedgerAsset(a ledger.Asset, addedAt int64) types.WorkingAsset {
	out := types.WorkingAsset{
		Symbol:   a.Symbol,
		Name:     a.Symbol,
		Amount:   decimal.NewFromBigInt(a.Amount, -ledgerScale).InexactFloat64(),
		Category: types.CategoryCustom,
		AddedAt:  addedAt,
	}
	if a.BuyPrice != nil && a.BuyPrice.Sign() > 0 {
		bp := decimal.NewFromBigInt(a.BuyPrice, -ledgerScale).InexactFloat64()
		out.BuyPrice = &bp
	}
	return out
}
