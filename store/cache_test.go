package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/types"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	clock := int64(1700000000000)
	return NewCache("0xabc", NewMemoryBackend(), WithClock(func() int64 { return clock }))
}

func ptr[T any](v T) *T { return &v }

func TestLoadDefault(t *testing.T) {
	c := newTestCache(t)

	p, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, p.Assets)
	assert.Empty(t, p.Assets)
	assert.NotZero(t, p.LastUpdated)
}

func TestAdd(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	first, err := c.Add(ctx, types.WorkingAsset{
		Symbol:   "BTC",
		Name:     "Bitcoin",
		Amount:   1.5,
		BuyPrice: ptr(50000.0),
		Category: types.CategoryCrypto,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.NotZero(t, first.AddedAt)

	second, err := c.Add(ctx, types.WorkingAsset{Symbol: "ETH", Amount: 10, Category: types.CategoryCrypto})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	p, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, p.Assets, 2)
	assert.Equal(t, "BTC", p.Assets[0].Symbol)
	assert.Equal(t, "ETH", p.Assets[1].Symbol)
}

func TestUpdate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	added, err := c.Add(ctx, types.WorkingAsset{Symbol: "BTC", Name: "Bitcoin", Amount: 1, Category: types.CategoryCrypto})
	require.NoError(t, err)

	t.Run("merges only provided fields", func(t *testing.T) {
		err := c.Update(ctx, added.ID, types.AssetUpdate{
			Amount:      ptr(2.5),
			CustomPrice: ptr(61000.0),
		})
		require.NoError(t, err)

		p, err := c.Load(ctx)
		require.NoError(t, err)
		got := p.Assets[0]
		assert.Equal(t, 2.5, got.Amount)
		require.NotNil(t, got.CustomPrice)
		assert.Equal(t, 61000.0, *got.CustomPrice)
		// Untouched fields survive.
		assert.Equal(t, "Bitcoin", got.Name)
		assert.Equal(t, types.CategoryCrypto, got.Category)
		assert.Nil(t, got.BuyPrice)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		before, err := c.Load(ctx)
		require.NoError(t, err)

		require.NoError(t, c.Update(ctx, "missing", types.AssetUpdate{Amount: ptr(99.0)}))

		after, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestRemove(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	btc, err := c.Add(ctx, types.WorkingAsset{Symbol: "BTC", Amount: 1, Category: types.CategoryCrypto})
	require.NoError(t, err)
	_, err = c.Add(ctx, types.WorkingAsset{Symbol: "ETH", Amount: 2, Category: types.CategoryCrypto})
	require.NoError(t, err)

	require.NoError(t, c.Remove(ctx, btc.ID))

	p, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, p.Assets, 1)
	assert.Equal(t, "ETH", p.Assets[0].Symbol)
}

func TestReplaceAll(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	old, err := c.Add(ctx, types.WorkingAsset{Symbol: "BTC", Amount: 1, Category: types.CategoryCrypto})
	require.NoError(t, err)

	incoming := []types.WorkingAsset{
		{ID: "stale-id", Symbol: "ETH", Name: "ETH", Amount: 10, Category: types.CategoryCustom},
		{ID: "stale-id", Symbol: "USDT", Name: "USDT", Amount: 1000, Category: types.CategoryCustom},
	}
	require.NoError(t, c.ReplaceAll(ctx, incoming))

	p, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, p.Assets, 2, "replace is a full substitution, not a merge")
	assert.Equal(t, "ETH", p.Assets[0].Symbol)
	assert.Equal(t, "USDT", p.Assets[1].Symbol)

	// Every installed record gets a fresh id.
	assert.NotEqual(t, "stale-id", p.Assets[0].ID)
	assert.NotEqual(t, "stale-id", p.Assets[1].ID)
	assert.NotEqual(t, p.Assets[0].ID, p.Assets[1].ID)
	assert.NotEqual(t, old.ID, p.Assets[0].ID)
}

func TestClear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Add(ctx, types.WorkingAsset{Symbol: "BTC", Amount: 1, Category: types.CategoryCrypto})
	require.NoError(t, err)
	require.NoError(t, c.Clear(ctx))

	p, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, p.Assets)
}

func TestHistory(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	history, err := c.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	snaps := []types.Snapshot{
		{Timestamp: 1, TotalValue: 100, AssetValues: map[string]float64{"BTC": 100}},
		{Timestamp: 2, TotalValue: 150, AssetValues: map[string]float64{"BTC": 150}},
	}
	for _, s := range snaps {
		require.NoError(t, c.AppendSnapshot(ctx, s))
	}

	history, err = c.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, snaps, history)
}

func TestWatch(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ch, cancel := c.Watch(KeyWorkingSet)
	defer cancel()

	_, err := c.Add(ctx, types.WorkingAsset{Symbol: "BTC", Amount: 1, Category: types.CategoryCrypto})
	require.NoError(t, err)

	select {
	case <-ch:
	default:
		t.Fatal("expected a change notification after Add")
	}

	// History writes do not ping working-set watchers.
	require.NoError(t, c.AppendSnapshot(ctx, types.Snapshot{Timestamp: 1}))
	select {
	case <-ch:
		t.Fatal("history write must not notify the working-set key")
	default:
	}
}

func TestOwnersAreIndependent(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()
	a := NewCache("0xaaa", backend)
	b := NewCache("0xbbb", backend)

	_, err := a.Add(ctx, types.WorkingAsset{Symbol: "BTC", Amount: 1, Category: types.CategoryCrypto})
	require.NoError(t, err)

	p, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, p.Assets)
}
