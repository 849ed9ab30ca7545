package payment

import (
	"errors"
	"fmt"
	"maps"

	"github.com/rcarvalho-pb/payments_service-go/internal/domain/event"
	domainPayment "github.com/rcarvalho-pb/payments_service-go/internal/domain/payment"
	"github.com/rcarvalho-pb/payments_service-go/internal/infra/logging"
	"github.com/rcarvalho-pb/payments_service-go/internal/infra/metrics"
)

// ConflictPolicy decides what happens when a known idempotency key arrives
// with a payload that no longer matches the stored payment.
type ConflictPolicy string

const (
	ConflictReturnExisting ConflictPolicy = "return-existing"
	ConflictReject         ConflictPolicy = "reject"
)

type AdmissionInput struct {
	AmountMinor    int64
	Currency       string
	OrderID        string
	IdempotencyKey string
	Metadata       map[string]string
}

type EventRecorder interface {
	Record(event.Event) error
}

// Service is the idempotent admission algorithm. Inputs are assumed to have
// passed syntactic validation upstream; the service only re-checks the
// invariants it cannot survive being wrong about.
type Service struct {
	Repo      domainPayment.Repository
	Recorder  EventRecorder
	IDs       IDGenerator
	Clock     Clock
	Logger    logging.Logger
	Metrics   *metrics.Counters
	Conflicts ConflictPolicy
}

// RequestPayment admits a payment for the input's idempotency key, or
// returns the payment a previous request already created. The bool reports
// whether this call was the creator; replays receive an identical record.
func (s *Service) RequestPayment(input AdmissionInput) (*domainPayment.Payment, bool, error) {
	if input.AmountMinor <= 0 {
		return nil, false, fmt.Errorf("%w: non-positive amount %d reached admission",
			domainPayment.ErrInvariantViolation, input.AmountMinor)
	}
	if input.IdempotencyKey == "" {
		return nil, false, fmt.Errorf("%w: empty idempotency key reached admission",
			domainPayment.ErrInvariantViolation)
	}

	p, created, err := s.Repo.InsertIfAbsent(input.IdempotencyKey, func() (*domainPayment.Payment, error) {
		return &domainPayment.Payment{
			ID:             s.IDs.NewID(),
			IdempotencyKey: input.IdempotencyKey,
			OrderID:        input.OrderID,
			AmountMinor:    input.AmountMinor,
			Currency:       input.Currency,
			Status:         domainPayment.StatusPending,
			Message:        "Payment initiated",
			Metadata:       maps.Clone(input.Metadata),
			CreatedAt:      s.Clock.Now(),
		}, nil
	})
	if err != nil {
		s.Logger.Error("payment admission failed", map[string]any{
			"idempotency-key": input.IdempotencyKey,
			"order-id":        input.OrderID,
			"error":           err.Error(),
		})
		if errors.Is(err, domainPayment.ErrInvariantViolation) || errors.Is(err, domainPayment.ErrDuplicatePaymentID) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %v", domainPayment.ErrStorageFailure, err)
	}

	if !created {
		if s.payloadDiffers(p, input) {
			if s.Conflicts == ConflictReject {
				s.Metrics.IncConflicts()
				s.Logger.Error("idempotency conflict rejected", map[string]any{
					"payment-id":      p.ID,
					"idempotency-key": input.IdempotencyKey,
				})
				return nil, false, domainPayment.ErrIdempotencyConflict
			}
			s.Logger.Info("idempotency replay with changed payload, returning original", map[string]any{
				"payment-id":      p.ID,
				"idempotency-key": input.IdempotencyKey,
			})
		}
		s.Metrics.IncReplayed()
		s.Logger.Info("payment replayed", map[string]any{
			"payment-id":      p.ID,
			"idempotency-key": input.IdempotencyKey,
		})
		return p, false, nil
	}

	s.Metrics.IncAdmitted()
	s.Logger.Info("payment admitted", map[string]any{
		"payment-id":      p.ID,
		"order-id":        p.OrderID,
		"amount-minor":    p.AmountMinor,
		"currency":        p.Currency,
		"idempotency-key": p.IdempotencyKey,
	})

	s.recordAdmitted(p)

	return p, true, nil
}

// GetPayment is a pure read. A miss is ErrPaymentNotFound.
func (s *Service) GetPayment(id string) (*domainPayment.Payment, error) {
	p, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, domainPayment.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainPayment.ErrStorageFailure, err)
	}
	return p, nil
}

// payloadDiffers fingerprints the fields that identify the logical request.
// Metadata and message are opaque pass-through and excluded.
func (s *Service) payloadDiffers(existing *domainPayment.Payment, input AdmissionInput) bool {
	return existing.AmountMinor != input.AmountMinor ||
		existing.Currency != input.Currency ||
		existing.OrderID != input.OrderID
}

func (s *Service) recordAdmitted(p *domainPayment.Payment) {
	if s.Recorder == nil {
		return
	}

	evt := event.Event{
		Type: event.PaymentAdmitted,
		Payload: event.PaymentAdmittedPayload{
			PaymentID:      p.ID,
			OrderID:        p.OrderID,
			AmountMinor:    p.AmountMinor,
			Currency:       p.Currency,
			IdempotencyKey: p.IdempotencyKey,
			Metadata:       p.Metadata,
			CreatedAt:      p.CreatedAt,
		},
	}

	// The payment is already committed; losing the event must not fail the
	// admission.
	if err := s.Recorder.Record(evt); err != nil {
		s.Logger.Error("failed to record admitted event", map[string]any{
			"payment-id": p.ID,
			"error":      err.Error(),
		})
	}
}
