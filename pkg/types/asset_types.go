package types

// AssetCategory groups assets for display and fixed-price resolution.
type AssetCategory string

const (
	CategoryCrypto     AssetCategory = "crypto"
	CategoryStablecoin AssetCategory = "stablecoin"
	CategoryRWA        AssetCategory = "rwa"
	CategoryFiat       AssetCategory = "fiat"
	CategoryCustom     AssetCategory = "custom"
)

// WorkingAsset is the locally editable record. Its id is assigned once at
// creation and never derived from ledger position.
type WorkingAsset struct {
	ID          string        `json:"id"`
	Symbol      string        `json:"symbol"`
	Name        string        `json:"name"`
	Amount      float64       `json:"amount"`
	BuyPrice    *float64      `json:"buyPrice,omitempty"`
	Category    AssetCategory `json:"category"`
	CustomPrice *float64      `json:"customPrice,omitempty"`
	AddedAt     int64         `json:"addedAt"`
}

// AssetUpdate carries a partial edit: only non-nil fields are applied.
type AssetUpdate struct {
	Symbol      *string
	Name        *string
	Amount      *float64
	BuyPrice    *float64
	Category    *AssetCategory
	CustomPrice *float64
}

// PricedAsset is a WorkingAsset with the live valuation attached.
// ProfitLoss fields are nil when the asset has no buy price.
type PricedAsset struct {
	WorkingAsset
	CurrentPrice      float64  `json:"currentPrice"`
	Value             float64  `json:"value"`
	ProfitLoss        *float64 `json:"profitLoss,omitempty"`
	ProfitLossPercent *float64 `json:"profitLossPercent,omitempty"`
}

// Portfolio is the working set as persisted in the local cache.
type Portfolio struct {
	Assets      []WorkingAsset `json:"assets"`
	LastUpdated int64          `json:"lastUpdated"`
}

// Snapshot is an immutable point-in-time record of total valuation,
// appended to the per-owner history on demand.
type Snapshot struct {
	Timestamp   int64              `json:"timestamp"`
	TotalValue  float64            `json:"totalValue"`
	AssetValues map[string]float64 `json:"assetValues"`
}

// DistributionSlice is one segment of the allocation breakdown.
type DistributionSlice struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// Summary aggregates the priced working set.
type Summary struct {
	TotalValue        float64             `json:"totalValue"`
	TotalCost         float64             `json:"totalCost"`
	ProfitLoss        float64             `json:"profitLoss"`
	ProfitLossPercent float64             `json:"profitLossPercent"`
	Assets            []PricedAsset       `json:"assets"`
	Distribution      []DistributionSlice `json:"distribution"`
}
