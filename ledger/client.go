package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReceiptStatus tracks a submitted mutation through the remote boundary.
// A submission acknowledgment is not a success signal: callers must poll
// until the receipt reaches a terminal status.
type ReceiptStatus string

const (
	StatusPending   ReceiptStatus = "pending"
	StatusConfirmed ReceiptStatus = "confirmed"
	StatusReverted  ReceiptStatus = "reverted"
)

// Terminal reports whether the status will no longer change.
func (s ReceiptStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusReverted
}

// Receipt is the observable state of one submitted mutation.
type Receipt struct {
	ID           string
	Status       ReceiptStatus
	RevertReason string
	Timestamp    int64
}

// SubmissionError means the transport failed before the mutation reached a
// terminal state; re-submitting is safe.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return fmt.Sprintf("ledger submission failed: %v", e.Err) }
func (e *SubmissionError) Unwrap() error { return e.Err }

// RevertedError means the mutation reached a terminal failed state on the
// authoritative side. Reason carries the remote-provided detail verbatim.
type RevertedError struct {
	Reason string
}

func (e *RevertedError) Error() string { return e.Reason }

// Client is the remote-procedure boundary to the authoritative ledger.
// Mutations are asynchronous: Submit* returns a receipt id once the request
// is accepted, and Receipt is polled until a terminal status appears.
// Reads are synchronous.
type Client interface {
	SubmitReplace(ctx context.Context, owner Owner, assets []Asset) (string, error)
	SubmitDelete(ctx context.Context, owner Owner) (string, error)
	Receipt(id string) (Receipt, bool)

	Fetch(ctx context.Context, owner Owner) ([]Asset, int64, error)
	Exists(ctx context.Context, owner Owner) (bool, error)
	Count(ctx context.Context, owner Owner) (int, error)
}

// InProcClient runs the ledger Service in-process while preserving the
// asynchronous submit/confirm shape of the remote contract. An optional
// delay holds receipts in the pending state, mimicking confirmation lag.
type InProcClient struct {
	svc   *Service
	delay time.Duration

	mu       sync.Mutex
	receipts map[string]*Receipt
}

// ClientOption configures an InProcClient.
type ClientOption func(*InProcClient)

// WithConfirmationDelay keeps submitted mutations pending for d before the
// terminal status is published.
func WithConfirmationDelay(d time.Duration) ClientOption {
	return func(c *InProcClient) { c.delay = d }
}

func NewInProcClient(svc *Service, opts ...ClientOption) *InProcClient {
	c := &InProcClient{
		svc:      svc,
		receipts: make(map[string]*Receipt),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *InProcClient) submit(apply func() error) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.receipts[id] = &Receipt{ID: id, Status: StatusPending}
	c.mu.Unlock()

	go func() {
		if c.delay > 0 {
			time.Sleep(c.delay)
		}
		err := apply()

		c.mu.Lock()
		defer c.mu.Unlock()
		r := c.receipts[id]
		r.Timestamp = time.Now().Unix()
		if err != nil {
			r.Status = StatusReverted
			r.RevertReason = err.Error()
			return
		}
		r.Status = StatusConfirmed
	}()

	return id
}

func (c *InProcClient) SubmitReplace(ctx context.Context, owner Owner, assets []Asset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &SubmissionError{Err: err}
	}
	return c.submit(func() error { return c.svc.Replace(owner, assets) }), nil
}

func (c *InProcClient) SubmitDelete(ctx context.Context, owner Owner) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &SubmissionError{Err: err}
	}
	return c.submit(func() error { return c.svc.Delete(owner) }), nil
}

// Receipt returns the current state of a submitted mutation.
func (c *InProcClient) Receipt(id string) (Receipt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[id]
	if !ok {
		return Receipt{}, false
	}
	return *r, true
}

func (c *InProcClient) Fetch(ctx context.Context, owner Owner) ([]Asset, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, &SubmissionError{Err: err}
	}
	assets, lastUpdated := c.svc.Fetch(owner)
	return assets, lastUpdated, nil
}

func (c *InProcClient) Exists(ctx context.Context, owner Owner) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &SubmissionError{Err: err}
	}
	return c.svc.Exists(owner), nil
}

func (c *InProcClient) Count(ctx context.Context, owner Owner) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, &SubmissionError{Err: err}
	}
	return c.svc.Count(owner), nil
}
