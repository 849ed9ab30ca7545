package event

import "time"

type PaymentAdmittedPayload struct {
	PaymentID      string            `json:"payment_id"`
	OrderID        string            `json:"order_id"`
	AmountMinor    int64             `json:"amount_minor"`
	Currency       string            `json:"currency"`
	IdempotencyKey string            `json:"idempotency_key"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
