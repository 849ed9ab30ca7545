package payment

// Factory materializes a new Payment once the repository has established
// that the idempotency key is absent. It runs inside the repository's
// critical section and must not block.
type Factory func() (*Payment, error)

type Repository interface {
	FindByID(id string) (*Payment, error)
	FindByIdempotencyKey(key string) (*Payment, error)

	// InsertIfAbsent atomically checks the idempotency key and, only if no
	// payment exists for it, invokes factory and inserts the result. The
	// returned bool reports whether this call created the record. Concurrent
	// calls with the same key converge on one record.
	InsertIfAbsent(key string, factory Factory) (*Payment, bool, error)

	UpdateStatus(id string, status Status, message string) error
}
