package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rcarvalho-pb/payments_service-go/internal/domain/event"
	"github.com/rcarvalho-pb/payments_service-go/internal/infra/logging"
)

type EventPublisher interface {
	Publish(event.Event) error
}

// Dispatcher polls the outbox and relays unpublished events to the bus.
// Rows are marked published only after a successful publish, so delivery is
// at-least-once.
type Dispatcher struct {
	Repo         Repository
	EventBus     EventPublisher
	Logger       logging.Logger
	PollInterval time.Duration
	BatchSize    int
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchOnce()
		}
	}
}

func (d *Dispatcher) DispatchOnce() {
	events, err := d.Repo.FindUnpublished(d.BatchSize)
	if err != nil {
		d.Logger.Error("outbox poll failed", map[string]any{"error": err.Error()})
		return
	}

	for _, evt := range events {
		decoded, err := decodePayload(evt)
		if err != nil {
			d.Logger.Error("skipping undecodable outbox event", map[string]any{
				"outbox-id": evt.ID,
				"type":      string(evt.Type),
				"error":     err.Error(),
			})
			continue
		}

		if err := d.EventBus.Publish(event.Event{Type: evt.Type, Payload: decoded}); err != nil {
			d.Logger.Error("outbox publish failed, will retry", map[string]any{
				"outbox-id": evt.ID,
				"error":     err.Error(),
			})
			continue
		}

		if err := d.Repo.MarkPublished(evt.ID); err != nil {
			d.Logger.Error("failed to mark outbox event published", map[string]any{
				"outbox-id": evt.ID,
				"error":     err.Error(),
			})
		}
	}
}

func decodePayload(evt OutboxEvent) (any, error) {
	switch evt.Type {
	case event.PaymentAdmitted:
		var p event.PaymentAdmittedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		var p any
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
}
