package valuation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ranxi2001/Fluctuate-Portfolio/internal/prices"
	"github.com/ranxi2001/Fluctuate-Portfolio/ledger"
	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/log"
	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/types"
	"github.com/ranxi2001/Fluctuate-Portfolio/store"
)

const (
	confirmPollInterval = 200 * time.Millisecond
	confirmMaxWait      = 2 * time.Minute
)

// Service derives the live-priced view of the working set and synchronizes
// it with the authoritative ledger. Reads recompute from the freshest cache
// and price snapshot on every call; only Push and Pull touch the network.
type Service struct {
	owner  ledger.Owner
	cache  *store.Cache
	prices *prices.Service
	client ledger.Client

	sync *syncTracker
	now  func() int64
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() int64) Option {
	return func(s *Service) { s.now = now }
}

func NewService(owner ledger.Owner, cache *store.Cache, priceSvc *prices.Service, client ledger.Client, opts ...Option) *Service {
	s := &Service{
		owner:  owner,
		cache:  cache,
		prices: priceSvc,
		client: client,
		sync:   newSyncTracker(),
		now:    func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PriceOf resolves one asset's USD price: an explicit custom price wins,
// then the live feed, then the catalog's fixed price, else zero. A missing
// price is a zero valuation, never an error.
func PriceOf(a types.WorkingAsset, priceMap map[string]float64) float64 {
	if a.CustomPrice != nil {
		return *a.CustomPrice
	}
	if p, ok := priceMap[a.Symbol]; ok && p > 0 {
		return p
	}
	if cfg, ok := types.LookupAsset(a.Symbol); ok && cfg.FixedPrice > 0 {
		return cfg.FixedPrice
	}
	return 0
}

// PriceAll attaches current prices and derived metrics to every asset.
// It is pure: same inputs, same output, no caching.
func PriceAll(assets []types.WorkingAsset, priceMap map[string]float64) []types.PricedAsset {
	out := make([]types.PricedAsset, len(assets))
	for i, a := range assets {
		price := PriceOf(a, priceMap)
		pa := types.PricedAsset{
			WorkingAsset: a,
			CurrentPrice: price,
			Value:        a.Amount * price,
		}
		if a.BuyPrice != nil {
			cost := a.Amount * *a.BuyPrice
			pl := pa.Value - cost
			pa.ProfitLoss = &pl
			if cost > 0 {
				plPct := pl / cost * 100
				pa.ProfitLossPercent = &plPct
			}
		}
		out[i] = pa
	}
	return out
}

// Summarize aggregates a priced set into portfolio totals and the
// allocation distribution. Totals are order-independent; distribution
// order is descending by value, stable for ties.
func Summarize(priced []types.PricedAsset) types.Summary {
	var totalValue, totalCost float64
	for _, a := range priced {
		totalValue += a.Value
		if a.BuyPrice != nil {
			totalCost += a.Amount * *a.BuyPrice
		}
	}

	profitLoss := totalValue - totalCost
	profitLossPercent := 0.0
	if totalCost > 0 {
		profitLossPercent = profitLoss / totalCost * 100
	}

	distribution := make([]types.DistributionSlice, 0, len(priced))
	for _, a := range priced {
		if a.Value <= 0 {
			continue
		}
		pct := 0.0
		if totalValue > 0 {
			pct = a.Value / totalValue * 100
		}
		distribution = append(distribution, types.DistributionSlice{
			Symbol:     a.Symbol,
			Name:       a.Name,
			Value:      a.Value,
			Percentage: pct,
		})
	}
	sort.SliceStable(distribution, func(i, j int) bool {
		return distribution[i].Value > distribution[j].Value
	})
	for i := range distribution {
		distribution[i].Color = types.ChartColors[i%len(types.ChartColors)]
	}

	return types.Summary{
		TotalValue:        totalValue,
		TotalCost:         totalCost,
		ProfitLoss:        profitLoss,
		ProfitLossPercent: profitLossPercent,
		Assets:            priced,
		Distribution:      distribution,
	}
}

// Summary prices the current working set and aggregates it.
func (s *Service) Summary(ctx context.Context) (types.Summary, error) {
	p, err := s.cache.Load(ctx)
	if err != nil {
		return types.Summary{}, err
	}
	return Summarize(PriceAll(p.Assets, s.prices.Prices())), nil
}

// SyncState reports the phase of the push in flight, if any.
func (s *Service) SyncState() SyncState {
	return s.sync.get()
}

// Push serializes the working set to the ledger's fixed-point shape and
// replaces the owner's slot. It returns once a terminal confirmation is
// observed, not merely once the request is submitted.
func (s *Service) Push(ctx context.Context) error {
	p, err := s.cache.Load(ctx)
	if err != nil {
		return err
	}
	if len(p.Assets) == 0 {
		// Mirror the ledger's own validation before the round trip.
		return ErrEmptyPortfolio
	}

	assets := make([]ledger.Asset, len(p.Assets))
	for i, a := range p.Assets {
		assets[i] = toLedgerAsset(a)
	}

	s.sync.set(StateSubmitting)
	receiptID, err := s.client.SubmitReplace(ctx, s.owner, assets)
	if err != nil {
		s.sync.set(StateFailed)
		return err
	}
	log.Infof("push submitted for %s, receipt %s", s.owner, receiptID)

	s.sync.set(StateConfirming)
	if err := s.awaitReceipt(ctx, receiptID); err != nil {
		s.sync.set(StateFailed)
		return err
	}

	s.sync.set(StateConfirmed)
	log.Infof("push confirmed for %s (%d assets)", s.owner, len(assets))
	return nil
}

// awaitReceipt polls the receipt until it reaches a terminal status. A wait
// that runs out before a terminal status appears is a transport-level
// failure: the push may still land, but re-submitting is safe, so the
// outcome is classified as a SubmissionError rather than a revert.
func (s *Service) awaitReceipt(ctx context.Context, id string) error {
	backoff := retry.WithMaxDuration(confirmMaxWait, retry.NewConstant(confirmPollInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, ok := s.client.Receipt(id)
		if !ok {
			return &ledger.SubmissionError{Err: fmt.Errorf("receipt %s unknown", id)}
		}
		switch r.Status {
		case ledger.StatusConfirmed:
			return nil
		case ledger.StatusReverted:
			return &ledger.RevertedError{Reason: r.RevertReason}
		default:
			return retry.RetryableError(fmt.Errorf("receipt %s still pending", id))
		}
	})
	if err == nil {
		return nil
	}
	var reverted *ledger.RevertedError
	var submission *ledger.SubmissionError
	if errors.As(err, &reverted) || errors.As(err, &submission) {
		return err
	}
	return &ledger.SubmissionError{Err: err}
}

// Pull fetches the owner's ledger entry and installs it as the working
// set, replacing it in full. An empty ledger entry yields ErrNothingToLoad
// and leaves the cache untouched.
func (s *Service) Pull(ctx context.Context) (int, error) {
	assets, _, err := s.client.Fetch(ctx, s.owner)
	if err != nil {
		return 0, err
	}
	if len(assets) == 0 {
		return 0, ErrNothingToLoad
	}

	working := make([]types.WorkingAsset, len(assets))
	now := s.now()
	for i, a := range assets {
		working[i] = fromLedgerAsset(a, now)
	}

	if err := s.cache.ReplaceAll(ctx, working); err != nil {
		return 0, err
	}
	log.Infof("pulled %d assets from ledger for %s", len(working), s.owner)
	return len(working), nil
}

// Snapshot appends the current valuation to the owner's history.
func (s *Service) Snapshot(ctx context.Context) (types.Snapshot, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return types.Snapshot{}, err
	}

	assetValues := make(map[string]float64, len(summary.Assets))
	for _, a := range summary.Assets {
		assetValues[a.Symbol] = a.Value
	}

	snap := types.Snapshot{
		Timestamp:   s.now(),
		TotalValue:  summary.TotalValue,
		AssetValues: assetValues,
	}
	if err := s.cache.AppendSnapshot(ctx, snap); err != nil {
		return types.Snapshot{}, err
	}
	return snap, nil
}

// History returns snapshots within the lookback window, oldest first.
// A zero lookback means unbounded.
func (s *Service) History(ctx context.Context, lookback time.Duration) ([]types.Snapshot, error) {
	history, err := s.cache.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}
	if lookback <= 0 {
		return history, nil
	}

	cutoff := s.now() - lookback.Milliseconds()
	out := make([]types.Snapshot, 0, len(history))
	for _, snap := range history {
		if snap.Timestamp >= cutoff {
			out = append(out, snap)
		}
	}
	return out, nil
}
