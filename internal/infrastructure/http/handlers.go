package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	paymentApplication "github.com/rcarvalho-pb/payments_service-go/internal/application/payment"
	"github.com/rcarvalho-pb/payments_service-go/internal/domain/payment"
	"github.com/rcarvalho-pb/payments_service-go/internal/infra/logging"
)

type PaymentHandler struct {
	Service *paymentApplication.Service
	Logger  logging.Logger
}

type RequestPaymentRequest struct {
	AmountMinor    int64             `json:"amount_minor"`
	Currency       string            `json:"currency"`
	OrderID        string            `json:"order_id"`
	IdempotencyKey string            `json:"idempotency_key"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type PaymentResponse struct {
	PaymentID      string            `json:"payment_id"`
	OrderID        string            `json:"order_id"`
	AmountMinor    int64             `json:"amount_minor"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Message        string            `json:"message"`
	IdempotencyKey string            `json:"idempotency_key"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *PaymentHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	var req RequestPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := payment.ValidateRequest(req.AmountMinor, req.Currency, req.OrderID, req.IdempotencyKey); err != nil {
		h.Logger.Warn("payment request rejected", map[string]any{
			"order-id": req.OrderID,
			"error":    err.Error(),
		})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, created, err := h.Service.RequestPayment(paymentApplication.AdmissionInput{
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency,
		OrderID:        req.OrderID,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
	})
	if err != nil {
		if errors.Is(err, payment.ErrIdempotencyConflict) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error processing payment request")
		return
	}

	// A replay answers 200 with the same payload the creator got.
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toResponse(p))
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, err := h.Service.GetPayment(id)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			writeError(w, http.StatusNotFound, "payment not found: "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error retrieving payment")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *PaymentHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:      p.ID,
		OrderID:        p.OrderID,
		AmountMinor:    p.AmountMinor,
		Currency:       p.Currency,
		Status:         string(p.Status),
		Message:        p.Message,
		IdempotencyKey: p.IdempotencyKey,
		Metadata:       p.Metadata,
		CreatedAt:      p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
