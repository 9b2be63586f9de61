package prices

import (
	"context"
	"sync"
	"time"

	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/log"
	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/types"
)

// DefaultRefreshInterval is how often a source is polled unless configured
// otherwise.
const DefaultRefreshInterval = 60 * time.Second

type sourceEntry struct {
	source   Source
	interval time.Duration
}

// Service aggregates every configured source into one symbol -> USD price
// mapping. Each source refreshes on its own ticker; a failed fetch keeps
// the previously known prices in place rather than zeroing them out.
// Reads return the latest completed snapshot and never wait on an
// in-flight refresh.
type Service struct {
	mu      sync.RWMutex
	current map[string]float64

	srcMu   sync.Mutex
	sources []sourceEntry

	stopOnce sync.Once
	stop     chan struct{}
	done     sync.WaitGroup
}

func NewService() *Service {
	s := &Service{
		current: make(map[string]float64),
		stop:    make(chan struct{}),
	}

	// Fixed-price symbols never hit a feed; seed them once from the catalog.
	for _, a := range types.SupportedAssets {
		if !a.HasPriceFeed && a.FixedPrice > 0 {
			s.current[a.Symbol] = a.FixedPrice
		}
	}
	return s
}

// AddSource registers a source with its own refresh cadence. A non-positive
// interval falls back to the default. Sources added after Start are picked
// up by Refresh but do not get their own ticker.
func (s *Service) AddSource(src Source, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s.srcMu.Lock()
	s.sources = append(s.sources, sourceEntry{source: src, interval: interval})
	s.srcMu.Unlock()
}

func (s *Service) sourceList() []sourceEntry {
	s.srcMu.Lock()
	defer s.srcMu.Unlock()
	out := make([]sourceEntry, len(s.sources))
	copy(out, s.sources)
	return out
}

// Start fetches every source once, then keeps each refreshing on its own
// ticker until Stop is called.
func (s *Service) Start(ctx context.Context) {
	for _, e := range s.sourceList() {
		s.fetchOne(ctx, e.source)

		s.done.Add(1)
		go func(e sourceEntry) {
			defer s.done.Done()
			ticker := time.NewTicker(e.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					s.fetchOne(ctx, e.source)
				case <-s.stop:
					return
				case <-ctx.Done():
					return
				}
			}
		}(e)
	}
}

// Refresh polls every source immediately, independent of the tickers.
func (s *Service) Refresh(ctx context.Context) {
	for _, e := range s.sourceList() {
		s.fetchOne(ctx, e.source)
	}
}

func (s *Service) fetchOne(ctx context.Context, src Source) {
	fetched, err := src.Fetch(ctx)
	if err != nil {
		// Stale-but-available beats missing: keep whatever we had.
		log.Warnf("price source %s failed, keeping previous prices: %v", src.Name(), err)
		return
	}

	s.mu.Lock()
	for symbol, price := range fetched {
		s.current[symbol] = price
	}
	s.mu.Unlock()
}

// Prices returns a copy of the latest completed mapping.
func (s *Service) Prices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.current))
	for k, v := range s.current {
		out[k] = v
	}
	return out
}

// Price returns the current quote for one symbol.
func (s *Service) Price(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.current[symbol]
	return p, ok
}

// Stop halts all refresh tickers and waits for them to exit.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.done.Wait()
}
