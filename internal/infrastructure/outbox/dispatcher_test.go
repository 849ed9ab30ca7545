package outbox_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rcarvalho-pb/payments_service-go/internal/domain/event"
	"github.com/rcarvalho-pb/payments_service-go/internal/infrastructure/outbox"
)

type fakeBus struct {
	published []event.Event
	fail      bool
}

func (f *fakeBus) Publish(evt event.Event) error {
	if f.fail {
		return errors.New("bus down")
	}
	f.published = append(f.published, evt)
	return nil
}

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Warn(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

func TestDispatcher_ShouldPublishAndMarkEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := outbox.NewSQLiteRepository(db)

	bus := &fakeBus{}

	dispatcher := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     bus,
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	payload := []byte(`{"payment_id":"pay-1","order_id":"order-123","amount_minor":1250,"currency":"USD","idempotency_key":"idem-key-0001"}`)

	err := repo.Save(outbox.OutboxEvent{
		ID:        "evt-1",
		Type:      event.PaymentAdmitted,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	dispatcher.DispatchOnce()

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event published, got %d", len(bus.published))
	}

	admitted, ok := bus.published[0].Payload.(event.PaymentAdmittedPayload)
	if !ok {
		t.Fatalf("expected typed PaymentAdmittedPayload, got %T", bus.published[0].Payload)
	}
	if admitted.PaymentID != "pay-1" || admitted.AmountMinor != 1250 {
		t.Errorf("payload fields lost in transit: %+v", admitted)
	}

	events, _ := repo.FindUnpublished(10)
	if len(events) != 0 {
		t.Fatalf("expected no unpublished events")
	}
}

func TestDispatcher_KeepsEventWhenPublishFails(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	bus := &fakeBus{fail: true}

	dispatcher := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     bus,
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	err := repo.Save(outbox.OutboxEvent{
		ID:        "evt-1",
		Type:      event.PaymentAdmitted,
		Payload:   []byte(`{"payment_id":"pay-1"}`),
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	dispatcher.DispatchOnce()

	events, err := repo.FindUnpublished(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected event to stay unpublished for retry, got %d", len(events))
	}

	// Bus recovers, next cycle drains it.
	bus.fail = false
	dispatcher.DispatchOnce()

	events, _ = repo.FindUnpublished(10)
	if len(events) != 0 {
		t.Fatalf("expected backlog drained after recovery, got %d", len(events))
	}
}

func TestRecorder_SerializesAdmittedPayload(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	recorder := &outbox.Recorder{Repo: repo}

	err := recorder.Record(event.Event{
		Type: event.PaymentAdmitted,
		Payload: event.PaymentAdmittedPayload{
			PaymentID:   "pay-1",
			OrderID:     "order-123",
			AmountMinor: 1250,
			Currency:    "USD",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := repo.FindUnpublished(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Error("expected recorder to assign an outbox id")
	}
	if events[0].Type != event.PaymentAdmitted {
		t.Errorf("expected PaymentAdmitted, got %s", events[0].Type)
	}
}
