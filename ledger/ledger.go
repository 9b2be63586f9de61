package ledger

import "math/big"

// Owner is the identity a ledger slot is keyed by.
type Owner string

// Asset is one holding as the authoritative ledger stores it. Amount and
// BuyPrice are fixed-point values scaled by 1e18; a zero BuyPrice means no
// cost basis was recorded.
type Asset struct {
	Symbol   string
	Amount   *big.Int
	BuyPrice *big.Int
}

// Clone returns a deep copy so callers can never alias stored big.Ints.
// A nil BuyPrice is normalized to the zero sentinel for an absent cost basis.
func (a Asset) Clone() Asset {
	buyPrice := new(big.Int)
	if a.BuyPrice != nil {
		buyPrice.Set(a.BuyPrice)
	}
	return Asset{
		Symbol:   a.Symbol,
		Amount:   new(big.Int).Set(a.Amount),
		BuyPrice: buyPrice,
	}
}

type entry struct {
	assets      []Asset
	lastUpdated int64
}

// store holds every owner slot plus the append-only owner registry. It is
// pure data: no locking, no clocks, no I/O. The Service layers those on top.
type store struct {
	entries map[Owner]*entry

	// owners records every identity that ever held an entry, in first-write
	// order. Deleting an entry does not unregister its owner.
	owners    []Owner
	ownerSeen map[Owner]bool
}

func newStore() *store {
	return &store{
		entries:   make(map[Owner]*entry),
		ownerSeen: make(map[Owner]bool),
	}
}

func (s *store) put(owner Owner, assets []Asset, now int64) {
	cloned := make([]Asset, len(assets))
	for i, a := range assets {
		cloned[i] = a.Clone()
	}
	s.entries[owner] = &entry{assets: cloned, lastUpdated: now}
	if !s.ownerSeen[owner] {
		s.ownerSeen[owner] = true
		s.owners = append(s.owners, owner)
	}
}

func (s *store) get(owner Owner) *entry {
	return s.entries[owner]
}

func (s *store) remove(owner Owner) {
	delete(s.entries, owner)
}
