package inmemory

import (
	"fmt"
	"sync"

	"github.com/rcarvalho-pb/payments_service-go/internal/domain/payment"
)

// PaymentRepository keeps two indices, id -> record and idempotency key ->
// id, guarded by one RWMutex. Both are always updated inside the same
// critical section so a reader can never observe a half-inserted payment.
type PaymentRepository struct {
	mu              sync.RWMutex
	payments        map[string]*payment.Payment
	idempotencyKeys map[string]string
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments:        make(map[string]*payment.Payment),
		idempotencyKeys: make(map[string]string),
	}
}

func (r *PaymentRepository) FindByID(id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}

	return p.Clone(), nil
}

func (r *PaymentRepository) FindByIdempotencyKey(key string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idempotencyKeys[key]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	p, ok := r.payments[id]
	if !ok {
		return nil, fmt.Errorf("%w: key %q indexed but record missing", payment.ErrInvariantViolation, key)
	}

	return p.Clone(), nil
}

// InsertIfAbsent holds the write lock across check, factory and dual insert,
// so concurrent calls with the same key serialize and exactly one creates.
// A factory failure leaves both indices untouched.
func (r *PaymentRepository) InsertIfAbsent(key string, factory payment.Factory) (*payment.Payment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.idempotencyKeys[key]; exists {
		p, ok := r.payments[id]
		if !ok {
			return nil, false, fmt.Errorf("%w: key %q indexed but record missing", payment.ErrInvariantViolation, key)
		}
		return p.Clone(), false, nil
	}

	p, err := factory()
	if err != nil {
		return nil, false, err
	}
	if p == nil || p.ID == "" {
		return nil, false, fmt.Errorf("%w: factory produced no payment id", payment.ErrInvariantViolation)
	}
	if p.IdempotencyKey != key {
		return nil, false, fmt.Errorf("%w: factory produced key %q for insert under %q",
			payment.ErrInvariantViolation, p.IdempotencyKey, key)
	}
	if _, taken := r.payments[p.ID]; taken {
		return nil, false, fmt.Errorf("%w: id %q", payment.ErrDuplicatePaymentID, p.ID)
	}

	stored := p.Clone()
	r.payments[stored.ID] = stored
	r.idempotencyKeys[key] = stored.ID

	return stored.Clone(), true, nil
}

func (r *PaymentRepository) UpdateStatus(id string, status payment.Status, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return payment.ErrPaymentNotFound
	}

	p.Status = status
	p.Message = message
	return nil
}

// Payments returns a snapshot of every stored record, keyed by id.
func (r *PaymentRepository) Payments() map[string]*payment.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*payment.Payment, len(r.payments))
	for id, p := range r.payments {
		out[id] = p.Clone()
	}
	return out
}
