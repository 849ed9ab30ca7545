package metrics

import "sync/atomic"

type Counters struct {
	PaymentsAdmitted     uint64
	PaymentsReplayed     uint64
	IdempotencyConflicts uint64
}

func (c *Counters) IncAdmitted() {
	atomic.AddUint64(&c.PaymentsAdmitted, 1)
}

func (c *Counters) IncReplayed() {
	atomic.AddUint64(&c.PaymentsReplayed, 1)
}

func (c *Counters) IncConflicts() {
	atomic.AddUint64(&c.IdempotencyConflicts, 1)
}
