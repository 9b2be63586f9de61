package types

// AssetConfig describes one entry of the supported-asset catalog. Assets
// without a price feed resolve to FixedPrice instead of a live quote.
type AssetConfig struct {
	Symbol       string
	Name         string
	Category     AssetCategory
	Decimals     int
	HasPriceFeed bool
	FixedPrice   float64
}

// SupportedAssets is the built-in catalog. Stablecoins and fiat bypass the
// price feeds entirely.
var SupportedAssets = []AssetConfig{
	{Symbol: "BTC", Name: "Bitcoin", Category: CategoryCrypto, Decimals: 8, HasPriceFeed: true},
	{Symbol: "ETH", Name: "Ethereum", Category: CategoryCrypto, Decimals: 18, HasPriceFeed: true},
	{Symbol: "USDT", Name: "Tether USD", Category: CategoryStablecoin, Decimals: 6, FixedPrice: 1},
	{Symbol: "USDC", Name: "USD Coin", Category: CategoryStablecoin, Decimals: 6, FixedPrice: 1},
	{Symbol: "XAU", Name: "Gold", Category: CategoryRWA, Decimals: 8, HasPriceFeed: true},
	{Symbol: "USD", Name: "US Dollar", Category: CategoryFiat, Decimals: 2, FixedPrice: 1},
	{Symbol: "CNY", Name: "Chinese Yuan", Category: CategoryFiat, Decimals: 2, FixedPrice: 0.14},
}

// LookupAsset returns the catalog entry for a symbol, if any.
func LookupAsset(symbol string) (AssetConfig, bool) {
	for _, a := range SupportedAssets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return AssetConfig{}, false
}

// CategoryInfo is display metadata for an asset category.
type CategoryInfo struct {
	Label string
	Color string
}

var Categories = map[AssetCategory]CategoryInfo{
	CategoryCrypto:     {Label: "Cryptocurrency", Color: "#6366f1"},
	CategoryStablecoin: {Label: "Stablecoin", Color: "#22c55e"},
	CategoryRWA:        {Label: "Real World Asset", Color: "#f59e0b"},
	CategoryFiat:       {Label: "Fiat Currency", Color: "#64748b"},
	CategoryCustom:     {Label: "Custom Asset", Color: "#8b5cf6"},
}

// CategoryFor returns the display info for a category, falling back to
// the custom category for anything unknown.
func CategoryFor(category AssetCategory) CategoryInfo {
	if info, ok := Categories[category]; ok {
		return info
	}
	return Categories[CategoryCustom]
}

// ChartColors is the palette used for distribution slices, assigned by
// descending-value rank modulo the palette length.
var ChartColors = []string{
	"#6366f1",
	"#22c55e",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#06b6d4",
	"#ec4899",
	"#14b8a6",
}
