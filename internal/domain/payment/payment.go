package payment

import (
	"maps"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Payment is immutable after admission: only Status and Message may change
// later, and only through the repository's locking discipline.
type Payment struct {
	ID             string
	IdempotencyKey string
	OrderID        string
	AmountMinor    int64
	Currency       string
	Status         Status
	Message        string
	Metadata       map[string]string
	CreatedAt      time.Time
}

// Clone returns a defensive copy so callers can never alias the stored
// record or its metadata map.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Metadata = maps.Clone(p.Metadata)
	return &cp
}
