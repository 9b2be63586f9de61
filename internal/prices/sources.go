package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Source is one independent price feed. A Fetch returns USD prices for the
// symbols the source knows about; each source fails independently.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (map[string]float64, error)
}

const (
	cryptoCompareBaseURL = "https://min-api.cryptocompare.com"
	metalsBaseURL        = "https://api.metals.live"

	// Troy ounces to grams; gold quotes arrive per ounce but the catalog
	// tracks XAU per gram.
	troyOunceGrams = 31.1035

	// Rough gold price per gram used when the feed is unreachable.
	goldFallbackPrice = 85
)

var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}

// CryptoCompareSource quotes a set of crypto symbols against USD via the
// CryptoCompare multi-price endpoint.
type CryptoCompareSource struct {
	BaseURL string
	Symbols []string
	Client  *http.Client
}

func NewCryptoCompareSource(symbols ...string) *CryptoCompareSource {
	return &CryptoCompareSource{
		BaseURL: cryptoCompareBaseURL,
		Symbols: symbols,
		Client:  defaultHTTPClient,
	}
}

func (s *CryptoCompareSource) Name() string { return "cryptocompare" }

func (s *CryptoCompareSource) Fetch(ctx context.Context) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/data/pricemulti?fsyms=%s&tsyms=USD",
		s.BaseURL, url.QueryEscape(strings.Join(s.Symbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build cryptocompare request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cryptocompare prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cryptocompare status %d", resp.StatusCode)
	}

	// Response shape: { "BTC": { "USD": 123 }, "ETH": { "USD": 456 } }
	var data map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode cryptocompare response: %w", err)
	}

	out := make(map[string]float64, len(data))
	for symbol, rates := range data {
		if usd, ok := rates["USD"]; ok && usd > 0 {
			out[symbol] = usd
		}
	}
	return out, nil
}

// MetalsSource quotes spot gold from metals.live, converted from USD per
// troy ounce to USD per gram. On failure it reports the fallback price
// instead of an error so XAU never values to zero.
type MetalsSource struct {
	BaseURL string
	Client  *http.Client
}

func NewMetalsSource() *MetalsSource {
	return &MetalsSource{
		BaseURL: metalsBaseURL,
		Client:  defaultHTTPClient,
	}
}

func (s *MetalsSource) Name() string { return "metals" }

func (s *MetalsSource) Fetch(ctx context.Context) (map[string]float64, error) {
	endpoint := s.BaseURL + "/v1/spot/gold"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return map[string]float64{"XAU": goldFallbackPrice}, nil
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return map[string]float64{"XAU": goldFallbackPrice}, nil
	}
	defer resp.Body.Close()

	// Response shape: [ { "price": 2650.5, ... } ] in USD per troy ounce.
	var data []struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || len(data) == 0 || data[0].Price <= 0 {
		return map[string]float64{"XAU": goldFallbackPrice}, nil
	}

	return map[string]float64{"XAU": data[0].Price / troyOunceGrams}, nil
}

// StaticSource serves a fixed mapping, mainly for tests and local runs
// without network access.
type StaticSource struct {
	SourceName string
	Prices     map[string]float64
}

func (s *StaticSource) Name() string { return s.SourceName }

func (s *StaticSource) Fetch(ctx context.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(s.Prices))
	for k, v := range s.Prices {
		out[k] = v
	}
	return out, nil
}
