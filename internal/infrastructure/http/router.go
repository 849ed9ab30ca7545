package httpapi

import "net/http"

func NewRouter(handler *PaymentHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /payments", handler.RequestPayment)
	mux.HandleFunc("GET /payments/{id}", handler.GetPayment)
	mux.HandleFunc("GET /healthz", handler.Health)

	return mux
}
