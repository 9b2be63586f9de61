package ledger

import (
	"sync"
	"time"
)

// MaxAssets is the upper bound a single replace call accepts.
const MaxAssets = 50

const eventBuffer = 16

// Service is the authoritative per-owner asset ledger. Every mutation
// replaces the owner's whole slot; there is no merge. Owners are fully
// isolated from each other and mutations are caller-scoped, so the only
// shared state is the map itself, guarded by one RWMutex.
type Service struct {
	mu    sync.RWMutex
	store *store
	now   func() int64

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() int64) Option {
	return func(s *Service) { s.now = now }
}

func NewService(opts ...Option) *Service {
	s := &Service{
		store: newStore(),
		now:   func() int64 { return time.Now().Unix() },
		subs:  make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validate(assets []Asset) error {
	if len(assets) == 0 {
		return ErrEmptyPortfolio
	}
	if len(assets) > MaxAssets {
		return ErrTooManyAssets
	}
	for _, a := range assets {
		if a.Symbol == "" {
			return ErrEmptySymbol
		}
		if a.Amount == nil || a.Amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// Replace atomically overwrites owner's whole asset list, preserving the
// given order. A validation failure leaves any prior entry untouched.
func (s *Service) Replace(owner Owner, assets []Asset) error {
	if err := validate(assets); err != nil {
		return err
	}

	s.mu.Lock()
	now := s.now()
	s.store.put(owner, assets, now)
	s.mu.Unlock()

	s.publish(Event{
		Kind:       EventPortfolioUpdated,
		Owner:      owner,
		AssetCount: len(assets),
		Timestamp:  now,
	})
	return nil
}

// Fetch returns owner's assets and last-updated timestamp. An owner without
// an entry yields an empty list and zero timestamp; that is the defined
// empty state, not an error.
func (s *Service) Fetch(owner Owner) ([]Asset, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.get(owner)
	if e == nil {
		return []Asset{}, 0
	}
	out := make([]Asset, len(e.assets))
	for i, a := range e.assets {
		out[i] = a.Clone()
	}
	return out, e.lastUpdated
}

// Delete removes owner's entry. The owner stays in the historical registry.
func (s *Service) Delete(owner Owner) error {
	s.mu.Lock()
	e := s.store.get(owner)
	if e == nil {
		s.mu.Unlock()
		return ErrNoPortfolio
	}
	now := s.now()
	s.store.remove(owner)
	s.mu.Unlock()

	s.publish(Event{
		Kind:      EventPortfolioDeleted,
		Owner:     owner,
		Timestamp: now,
	})
	return nil
}

// GetAsset returns the asset at index in owner's list.
func (s *Service) GetAsset(owner Owner, index int) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.get(owner)
	if e == nil || index < 0 || index >= len(e.assets) {
		return Asset{}, ErrInvalidIndex
	}
	return e.assets[index].Clone(), nil
}

// Count returns the number of assets in owner's entry, zero if none.
func (s *Service) Count(owner Owner) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.get(owner)
	if e == nil {
		return 0
	}
	return len(e.assets)
}

// Exists reports whether owner currently has an entry.
func (s *Service) Exists(owner Owner) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.get(owner) != nil
}

// TotalOwners counts every owner that ever wrote an entry. The count is
// monotonic: Delete does not decrement it.
func (s *Service) TotalOwners() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store.owners)
}

// Owners returns a page of the historical owner registry in first-write
// order. Requests past the end yield an empty slice.
func (s *Service) Owners(offset, limit int) []Owner {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 || offset >= len(s.store.owners) || limit <= 0 {
		return []Owner{}
	}
	end := offset + limit
	if end > len(s.store.owners) {
		end = len(s.store.owners)
	}
	out := make([]Owner, end-offset)
	copy(out, s.store.owners[offset:end])
	return out
}

// Subscribe registers a listener for ledger events. The returned cancel
// func must be called to release the channel. Events are dropped rather
// than block on a slow subscriber.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, eventBuffer)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Service) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
