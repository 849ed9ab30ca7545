package outbox

import (
	"time"

	"github.com/rcarvalho-pb/payments_service-go/internal/domain/event"
)

type OutboxEvent struct {
	ID        string
	Type      event.Type
	Payload   []byte
	Published bool
	CreatedAt time.Time
}

type Repository interface {
	Save(OutboxEvent) error
	FindUnpublished(limit int) ([]OutboxEvent, error)
	MarkPublished(id string) error
}
