package outbox

import (
	"errors"
	"sync"
)

var ErrOutboxEventNotFound = errors.New("outbox event not found")

// InMemoryRepository backs the outbox when the service runs without sqlite.
type InMemoryRepository struct {
	mu     sync.Mutex
	events []OutboxEvent
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Save(evt OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, evt)
	return nil
}

func (r *InMemoryRepository) FindUnpublished(limit int) ([]OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []OutboxEvent
	for _, evt := range r.events {
		if evt.Published {
			continue
		}
		out = append(out, evt)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkPublished(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Published = true
			return nil
		}
	}
	return ErrOutboxEventNotFound
}
