package valuation

import "sync"

// SyncState is the observable phase of the current push. Submission and
// confirmation are distinct: a push that has been accepted by the transport
// is still only Confirming until the ledger reports a terminal status.
type SyncState string

const (
	StateIdle       SyncState = "idle"
	StateSubmitting SyncState = "submitting"
	StateConfirming SyncState = "confirming"
	StateConfirmed  SyncState = "confirmed"
	StateFailed     SyncState = "failed"
)

type syncTracker struct {
	mu    sync.RWMutex
	state SyncState
}

func newSyncTracker() *syncTracker {
	return &syncTracker{state: StateIdle}
}

func (t *syncTracker) set(s SyncState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *syncTracker) get() SyncState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
