package ledger

// EventKind discriminates ledger notifications.
type EventKind string

const (
	EventPortfolioUpdated EventKind = "PortfolioUpdated"
	EventPortfolioDeleted EventKind = "PortfolioDeleted"
)

// Event mirrors the notifications the authoritative ledger emits on every
// successful mutation. AssetCount is only set for updates.
type Event struct {
	Kind       EventKind
	Owner      Owner
	AssetCount int
	Timestamp  int64
}
