package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	paymentApplication "github.com/rcarvalho-pb/payments_service-go/internal/application/payment"
	"github.com/rcarvalho-pb/payments_service-go/internal/domain/event"
	domainPayment "github.com/rcarvalho-pb/payments_service-go/internal/domain/payment"
	"github.com/rcarvalho-pb/payments_service-go/internal/infra/config"
	"github.com/rcarvalho-pb/payments_service-go/internal/infra/logging"
	"github.com/rcarvalho-pb/payments_service-go/internal/infra/metrics"
	"github.com/rcarvalho-pb/payments_service-go/internal/infrastructure/eventbus"
	httpapi "github.com/rcarvalho-pb/payments_service-go/internal/infrastructure/http"
	"github.com/rcarvalho-pb/payments_service-go/internal/infrastructure/outbox"
	"github.com/rcarvalho-pb/payments_service-go/internal/infrastructure/persistence/inmemory"
	"github.com/rcarvalho-pb/payments_service-go/internal/infrastructure/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := &logging.StdoutLogger{}
	counters := &metrics.Counters{}
	bus := eventbus.NewInMemoryBus()

	var paymentRepo domainPayment.Repository
	var outboxRepo outbox.Repository

	if cfg.SQLitePath != "" {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatal(err)
		}
		if err := sqlite.RunMigrations(db); err != nil {
			log.Fatal(err)
		}
		paymentRepo = sqlite.NewPaymentRepository(db)
		outboxRepo = outbox.NewSQLiteRepository(db)
	} else {
		paymentRepo = inmemory.NewPaymentRepository()
		outboxRepo = outbox.NewInMemoryRepository()
	}

	recorder := &outbox.Recorder{Repo: outboxRepo}

	dispatcher := &outbox.Dispatcher{
		Repo:         outboxRepo,
		EventBus:     bus,
		Logger:       logger,
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
	}

	admissionService := &paymentApplication.Service{
		Repo:      paymentRepo,
		Recorder:  recorder,
		IDs:       paymentApplication.UUIDGenerator{},
		Clock:     paymentApplication.UTCClock{},
		Logger:    logger,
		Metrics:   counters,
		Conflicts: paymentApplication.ConflictPolicy(cfg.ConflictPolicy),
	}

	bus.Subscribe(event.PaymentAdmitted, func(evt event.Event) error {
		payload, ok := evt.Payload.(event.PaymentAdmittedPayload)
		if !ok {
			return fmt.Errorf("invalid payload for PaymentAdmitted")
		}
		logger.Info("payment admitted event delivered", map[string]any{
			"payment-id": payload.PaymentID,
			"order-id":   payload.OrderID,
		})
		return nil
	})

	go dispatcher.Run(context.Background())

	paymentHandler := &httpapi.PaymentHandler{
		Service: admissionService,
		Logger:  logger,
	}

	router := httpapi.NewRouter(paymentHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("HTTP server running on port %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
