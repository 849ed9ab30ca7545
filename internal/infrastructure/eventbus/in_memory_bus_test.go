package eventbus_test

import (
	"errors"
	"testing"

	"github.com/rcarvalho-pb/payments_service-go/internal/domain/event"
	"github.com/rcarvalho-pb/payments_service-go/internal/infrastructure/eventbus"
)

func TestPublish_DeliversToAllSubscribersEvenOnFailure(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	var delivered []string
	bus.Subscribe(event.PaymentAdmitted, func(event.Event) error {
		delivered = append(delivered, "first")
		return errors.New("first handler failed")
	})
	bus.Subscribe(event.PaymentAdmitted, func(event.Event) error {
		delivered = append(delivered, "second")
		return nil
	})

	err := bus.Publish(event.Event{Type: event.PaymentAdmitted})
	if err == nil {
		t.Fatal("expected joined handler error")
	}

	if len(delivered) != 2 {
		t.Fatalf("expected both handlers to run, got %v", delivered)
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	bus := eventbus.NewInMemoryBus()

	if err := bus.Publish(event.Event{Type: event.PaymentAdmitted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
