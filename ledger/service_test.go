package ledger

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eth(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func asset(symbol string, amount, buyPrice *big.Int) Asset {
	return Asset{Symbol: symbol, Amount: amount, BuyPrice: buyPrice}
}

func TestReplaceAndFetch(t *testing.T) {
	svc := NewService()
	owner := Owner("0xabc")

	t.Run("replace then fetch returns the same list in order", func(t *testing.T) {
		assets := []Asset{
			asset("BTC", eth(1), eth(50000)),
			asset("ETH", eth(10), eth(3000)),
			asset("XAU", eth(5), eth(2000)),
		}
		require.NoError(t, svc.Replace(owner, assets))

		got, lastUpdated := svc.Fetch(owner)
		require.Len(t, got, 3)
		assert.Greater(t, lastUpdated, int64(0))
		for i, a := range assets {
			assert.Equal(t, a.Symbol, got[i].Symbol)
			assert.Zero(t, a.Amount.Cmp(got[i].Amount))
			assert.Zero(t, a.BuyPrice.Cmp(got[i].BuyPrice))
		}
	})

	t.Run("second replace overwrites, never merges", func(t *testing.T) {
		require.NoError(t, svc.Replace(owner, []Asset{asset("BTC", eth(1), eth(50000))}))
		require.NoError(t, svc.Replace(owner, []Asset{
			asset("ETH", eth(10), eth(3000)),
			asset("USDT", eth(1000), eth(1)),
		}))

		got, _ := svc.Fetch(owner)
		require.Len(t, got, 2)
		assert.Equal(t, "ETH", got[0].Symbol)
		assert.Equal(t, "USDT", got[1].Symbol)
	})

	t.Run("fetch for unknown owner returns empty state", func(t *testing.T) {
		got, lastUpdated := svc.Fetch(Owner("0xnobody"))
		assert.Empty(t, got)
		assert.Zero(t, lastUpdated)
	})

	t.Run("stored assets are isolated from caller mutations", func(t *testing.T) {
		in := []Asset{asset("BTC", eth(2), eth(40000))}
		require.NoError(t, svc.Replace(owner, in))
		in[0].Amount.SetInt64(0)

		got, _ := svc.Fetch(owner)
		assert.Zero(t, got[0].Amount.Cmp(eth(2)))
	})
}

func TestReplaceValidation(t *testing.T) {
	newOwnerWithEntry := func(t *testing.T, svc *Service) Owner {
		owner := Owner("0xheld")
		require.NoError(t, svc.Replace(owner, []Asset{asset("BTC", eth(1), eth(50000))}))
		return owner
	}

	cases := []struct {
		name   string
		assets []Asset
		err    error
	}{
		{"empty list", []Asset{}, ErrEmptyPortfolio},
		{"too many assets", make51(), ErrTooManyAssets},
		{"empty symbol", []Asset{asset("", eth(1), eth(1))}, ErrEmptySymbol},
		{"zero amount", []Asset{asset("BTC", big.NewInt(0), eth(1))}, ErrInvalidAmount},
		{"negative amount", []Asset{asset("BTC", big.NewInt(-5), eth(1))}, ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService()
			owner := newOwnerWithEntry(t, svc)

			err := svc.Replace(owner, tc.assets)
			require.ErrorIs(t, err, tc.err)

			// Prior entry must be untouched.
			got, _ := svc.Fetch(owner)
			require.Len(t, got, 1)
			assert.Equal(t, "BTC", got[0].Symbol)
		})
	}
}

func TestReplaceNilBuyPrice(t *testing.T) {
	svc := NewService()
	owner := Owner("0xabc")

	// A nil BuyPrice is the natural zero value for an absent cost basis;
	// it must store as the zero sentinel, not blow up.
	require.NoError(t, svc.Replace(owner, []Asset{{Symbol: "BTC", Amount: eth(1), BuyPrice: nil}}))

	got, _ := svc.Fetch(owner)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].BuyPrice)
	assert.Zero(t, got[0].BuyPrice.Sign())
}

func TestValidationMessages(t *testing.T) {
	// These strings are surfaced to callers verbatim.
	assert.EqualError(t, ErrEmptyPortfolio, "Portfolio cannot be empty")
	assert.EqualError(t, ErrTooManyAssets, "Too many assets (max 50)")
	assert.EqualError(t, ErrEmptySymbol, "Symbol cannot be empty")
	assert.EqualError(t, ErrInvalidAmount, "Amount must be greater than 0")
	assert.EqualError(t, ErrInvalidIndex, "Invalid index")
	assert.EqualError(t, ErrNoPortfolio, "No portfolio to delete")
}

func make51() []Asset {
	out := make([]Asset, 51)
	for i := range out {
		out[i] = asset(fmt.Sprintf("A%d", i), eth(1), eth(1))
	}
	return out
}

func TestMaxAssetsBoundary(t *testing.T) {
	svc := NewService()
	owner := Owner("0xabc")

	exactly50 := make51()[:50]
	require.NoError(t, svc.Replace(owner, exactly50))
	assert.Equal(t, 50, svc.Count(owner))
}

func TestDelete(t *testing.T) {
	svc := NewService()
	owner := Owner("0xabc")

	t.Run("delete without entry fails", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(owner), ErrNoPortfolio)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		require.NoError(t, svc.Replace(owner, []Asset{asset("BTC", eth(1), eth(50000))}))
		require.NoError(t, svc.Delete(owner))

		got, lastUpdated := svc.Fetch(owner)
		assert.Empty(t, got)
		assert.Zero(t, lastUpdated)
		assert.False(t, svc.Exists(owner))
	})

	t.Run("delete twice fails the second time", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(owner), ErrNoPortfolio)
	})
}

func TestGetAssetAndCount(t *testing.T) {
	svc := NewService()
	owner := Owner("0xabc")
	require.NoError(t, svc.Replace(owner, []Asset{
		asset("BTC", eth(1), eth(50000)),
		asset("ETH", eth(10), eth(3000)),
	}))

	a, err := svc.GetAsset(owner, 1)
	require.NoError(t, err)
	assert.Equal(t, "ETH", a.Symbol)

	_, err = svc.GetAsset(owner, 10)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = svc.GetAsset(owner, -1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = svc.GetAsset(Owner("0xnobody"), 0)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	assert.Equal(t, 2, svc.Count(owner))
	assert.Zero(t, svc.Count(Owner("0xnobody")))
}

func TestTotalOwnersMonotonic(t *testing.T) {
	svc := NewService()
	a, b := Owner("0xaaa"), Owner("0xbbb")

	assert.Zero(t, svc.TotalOwners())

	require.NoError(t, svc.Replace(a, []Asset{asset("BTC", eth(1), eth(1))}))
	assert.Equal(t, 1, svc.TotalOwners())

	// Same owner again: no increase.
	require.NoError(t, svc.Replace(a, []Asset{asset("ETH", eth(2), eth(1))}))
	assert.Equal(t, 1, svc.TotalOwners())

	require.NoError(t, svc.Replace(b, []Asset{asset("BTC", eth(1), eth(1))}))
	assert.Equal(t, 2, svc.TotalOwners())

	// Historical participation: delete does not decrement.
	require.NoError(t, svc.Delete(a))
	assert.Equal(t, 2, svc.TotalOwners())
}

func TestOwnerIsolation(t *testing.T) {
	svc := NewService()
	a, b := Owner("0xaaa"), Owner("0xbbb")

	require.NoError(t, svc.Replace(b, []Asset{asset("ETH", eth(7), eth(2500))}))
	before, beforeUpdated := svc.Fetch(b)

	require.NoError(t, svc.Replace(a, []Asset{asset("BTC", eth(3), eth(60000))}))
	require.NoError(t, svc.Delete(a))

	after, afterUpdated := svc.Fetch(b)
	assert.Equal(t, beforeUpdated, afterUpdated)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Symbol, after[i].Symbol)
		assert.Zero(t, before[i].Amount.Cmp(after[i].Amount))
		assert.Zero(t, before[i].BuyPrice.Cmp(after[i].BuyPrice))
	}
}

func TestOwnersPagination(t *testing.T) {
	svc := NewService()
	for i := 0; i < 5; i++ {
		owner := Owner(fmt.Sprintf("0x%d", i))
		require.NoError(t, svc.Replace(owner, []Asset{asset("BTC", eth(1), eth(1))}))
	}

	assert.Equal(t, []Owner{"0x0", "0x1"}, svc.Owners(0, 2))
	assert.Equal(t, []Owner{"0x3", "0x4"}, svc.Owners(3, 10))
	assert.Empty(t, svc.Owners(5, 2))
	assert.Empty(t, svc.Owners(-1, 2))
	assert.Empty(t, svc.Owners(0, 0))
}

func TestEvents(t *testing.T) {
	clock := int64(1700000000)
	svc := NewService(WithClock(func() int64 { return clock }))
	owner := Owner("0xabc")

	events, cancel := svc.Subscribe()
	defer cancel()

	require.NoError(t, svc.Replace(owner, []Asset{
		asset("BTC", eth(1), eth(50000)),
		asset("ETH", eth(2), eth(3000)),
	}))

	ev := <-events
	assert.Equal(t, EventPortfolioUpdated, ev.Kind)
	assert.Equal(t, owner, ev.Owner)
	assert.Equal(t, 2, ev.AssetCount)
	assert.Equal(t, clock, ev.Timestamp)

	require.NoError(t, svc.Delete(owner))
	ev = <-events
	assert.Equal(t, EventPortfolioDeleted, ev.Kind)
	assert.Equal(t, owner, ev.Owner)

	// Failed mutations emit nothing.
	require.Error(t, svc.Replace(owner, nil))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}
