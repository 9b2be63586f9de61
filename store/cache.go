package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/types"
)

// Cache is the local mirror of one owner's working set and snapshot
// history. It is independent from the authoritative ledger until a push or
// pull explicitly synchronizes the two. Mutations take the cache mutex, so
// a concurrent reader always sees a fully applied list.
type Cache struct {
	owner   string
	backend Backend
	now     func() int64

	mu sync.Mutex

	watchMu   sync.Mutex
	watchers  map[string]map[int]chan struct{}
	nextWatch int
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() int64) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(owner string, backend Backend, opts ...CacheOption) *Cache {
	c := &Cache{
		owner:    owner,
		backend:  backend,
		now:      func() int64 { return time.Now().UnixMilli() },
		watchers: make(map[string]map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the stored working set, or the empty default when nothing
// has been stored yet.
func (c *Cache) Load(ctx context.Context) (types.Portfolio, error) {
	raw, ok, err := c.backend.Get(ctx, c.owner, KeyWorkingSet)
	if err != nil {
		return types.Portfolio{}, fmt.Errorf("load working set: %w", err)
	}
	if !ok {
		return types.Portfolio{Assets: []types.WorkingAsset{}, LastUpdated: c.now()}, nil
	}
	var p types.Portfolio
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Portfolio{}, fmt.Errorf("decode working set: %w", err)
	}
	if p.Assets == nil {
		p.Assets = []types.WorkingAsset{}
	}
	return p, nil
}

// Store overwrites the working set in full and notifies watchers.
func (c *Cache) Store(ctx context.Context, p types.Portfolio) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(ctx, p)
}

func (c *Cache) store(ctx context.Context, p types.Portfolio) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode working set: %w", err)
	}
	if err := c.backend.Put(ctx, c.owner, KeyWorkingSet, raw); err != nil {
		return fmt.Errorf("store working set: %w", err)
	}
	c.notify(KeyWorkingSet)
	return nil
}

// LoadHistory returns the snapshot history, oldest first.
func (c *Cache) LoadHistory(ctx context.Context) ([]types.Snapshot, error) {
	raw, ok, err := c.backend.Get(ctx, c.owner, KeyHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return []types.Snapshot{}, nil
	}
	var h []types.Snapshot
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return h, nil
}

// AppendSnapshot appends one snapshot to the history. Snapshots are never
// mutated or reordered after the fact.
func (c *Cache) AppendSnapshot(ctx context.Context, snap types.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	history, err := c.LoadHistory(ctx)
	if err != nil {
		return err
	}
	history = append(history, snap)

	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := c.backend.Put(ctx, c.owner, KeyHistory, raw); err != nil {
		return fmt.Errorf("store history: %w", err)
	}
	c.notify(KeyHistory)
	return nil
}

// Add appends a new asset with a fresh id and creation timestamp, and
// returns the stored record.
func (c *Cache) Add(ctx context.Context, asset types.WorkingAsset) (types.WorkingAsset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.Load(ctx)
	if err != nil {
		return types.WorkingAsset{}, err
	}

	asset.ID = uuid.NewString()
	asset.AddedAt = c.now()
	p.Assets = append(p.Assets, asset)
	p.LastUpdated = c.now()

	if err := c.store(ctx, p); err != nil {
		return types.WorkingAsset{}, err
	}
	return asset, nil
}

// Update merges the provided fields into the asset with the given id.
// An unknown id is a silent no-op: edits come from the UI and always
// target an id it just displayed.
func (c *Cache) Update(ctx context.Context, id string, upd types.AssetUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.Load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range p.Assets {
		if p.Assets[i].ID != id {
			continue
		}
		applyUpdate(&p.Assets[i], upd)
		changed = true
		break
	}
	if !changed {
		return nil
	}

	p.LastUpdated = c.now()
	return c.store(ctx, p)
}

func applyUpdate(a *types.WorkingAsset, upd types.AssetUpdate) {
	if upd.Symbol != nil {
		a.Symbol = *upd.Symbol
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Amount != nil {
		a.Amount = *upd.Amount
	}
	if upd.BuyPrice != nil {
		a.BuyPrice = upd.BuyPrice
	}
	if upd.Category != nil {
		a.Category = *upd.Category
	}
	if upd.CustomPrice != nil {
		a.CustomPrice = upd.CustomPrice
	}
}

// Remove filters out the asset with the given id.
func (c *Cache) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.Load(ctx)
	if err != nil {
		return err
	}

	kept := p.Assets[:0]
	for _, a := range p.Assets {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	p.Assets = kept
	p.LastUpdated = c.now()
	return c.store(ctx, p)
}

// ReplaceAll discards the prior working set entirely and installs the given
// assets, assigning fresh ids so they can never collide with ids handed out
// before. Used by pull-from-ledger; never a merge.
func (c *Cache) ReplaceAll(ctx context.Context, assets []types.WorkingAsset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	installed := make([]types.WorkingAsset, len(assets))
	for i, a := range assets {
		a.ID = uuid.NewString()
		if a.AddedAt == 0 {
			a.AddedAt = c.now()
		}
		installed[i] = a
	}

	return c.store(ctx, types.Portfolio{
		Assets:      installed,
		LastUpdated: c.now(),
	})
}

// Clear resets the working set to empty.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store(ctx, types.Portfolio{
		Assets:      []types.WorkingAsset{},
		LastUpdated: c.now(),
	})
}

// Watch returns a channel that receives a ping after every store to the
// given key, fanning out to every same-process watcher. The cancel func
// releases the channel.
func (c *Cache) Watch(key string) (<-chan struct{}, func()) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	id := c.nextWatch
	c.nextWatch++
	ch := make(chan struct{}, 1)
	if c.watchers[key] == nil {
		c.watchers[key] = make(map[int]chan struct{})
	}
	c.watchers[key][id] = ch

	cancel := func() {
		c.watchMu.Lock()
		defer c.watchMu.Unlock()
		if w, ok := c.watchers[key][id]; ok {
			delete(c.watchers[key], id)
			close(w)
		}
	}
	return ch, cancel
}

func (c *Cache) notify(key string) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	for _, ch := range c.watchers[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
