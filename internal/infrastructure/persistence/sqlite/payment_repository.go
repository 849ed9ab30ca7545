package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rcarvalho-pb/payments_service-go/internal/domain/payment"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) FindByID(id string) (*payment.Payment, error) {
	return r.findOne(`WHERE id = ?`, id)
}

func (r *PaymentRepository) FindByIdempotencyKey(key string) (*payment.Payment, error) {
	return r.findOne(`WHERE idempotency_key = ?`, key)
}

// InsertIfAbsent runs inside a transaction: check the key, materialize via
// factory only when absent, insert. The UNIQUE constraint on
// idempotency_key backs the same invariant at the schema level.
func (r *PaymentRepository) InsertIfAbsent(key string, factory payment.Factory) (*payment.Payment, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	existing, err := scanPayment(tx.QueryRow(selectColumns+`WHERE idempotency_key = ?`, key))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, false, err
	}

	p, err := factory()
	if err != nil {
		return nil, false, err
	}
	if p == nil || p.ID == "" {
		return nil, false, fmt.Errorf("%w: factory produced no payment id", payment.ErrInvariantViolation)
	}

	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}

	res, err := tx.Exec(
		`INSERT OR IGNORE INTO payments
		 (id, idempotency_key, order_id, amount_minor, currency, status, message, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.IdempotencyKey,
		p.OrderID,
		p.AmountMinor,
		p.Currency,
		string(p.Status),
		p.Message,
		string(metadata),
		p.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}
	if affected == 0 {
		// Lost the insert to a concurrent writer on another connection.
		winner, err := scanPayment(tx.QueryRow(selectColumns+`WHERE idempotency_key = ?`, key))
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
		}
		return winner, false, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}

	return p.Clone(), true, nil
}

func (r *PaymentRepository) UpdateStatus(id string, status payment.Status, message string) error {
	res, err := r.db.Exec(
		`UPDATE payments SET status = ?, message = ? WHERE id = ?`,
		string(status),
		message,
		id,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}
	if affected == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}

const selectColumns = `SELECT id, idempotency_key, order_id, amount_minor, currency, status, message, metadata, created_at
	 FROM payments `

func (r *PaymentRepository) findOne(where string, arg any) (*payment.Payment, error) {
	return scanPayment(r.db.QueryRow(selectColumns+where, arg))
}

func scanPayment(row *sql.Row) (*payment.Payment, error) {
	var p payment.Payment
	var status, metadata string
	var createdAt time.Time

	if err := row.Scan(
		&p.ID,
		&p.IdempotencyKey,
		&p.OrderID,
		&p.AmountMinor,
		&p.Currency,
		&status,
		&p.Message,
		&metadata,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrStorageFailure, err)
	}

	p.Status = payment.Status(status)
	p.CreatedAt = createdAt
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &p.Metadata); err != nil {
			return nil, fmt.Errorf("%w: corrupt metadata for payment %s", payment.ErrInvariantViolation, p.ID)
		}
	}

	return &p, nil
}
