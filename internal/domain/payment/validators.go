package payment

import (
	"errors"
	"fmt"
	"strings"
)

// MinIdempotencyKeyLength is the shortest key accepted for deduplication.
const MinIdempotencyKeyLength = 8

// AllowedCurrencies lists the supported ISO 4217 codes.
var AllowedCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"JPY": {},
	"CAD": {},
	"AUD": {},
}

var ErrValidation = errors.New("validation failed")

func ValidateAmount(amountMinor int64) error {
	if amountMinor <= 0 {
		return fmt.Errorf("%w: amount must be positive minor units, got %d", ErrValidation, amountMinor)
	}
	return nil
}

func ValidateCurrency(currency string) error {
	if currency == "" {
		return fmt.Errorf("%w: currency cannot be empty", ErrValidation)
	}
	if len(currency) != 3 || currency != strings.ToUpper(currency) {
		return fmt.Errorf("%w: currency must be a 3-letter uppercase ISO 4217 code, got %q", ErrValidation, currency)
	}
	if _, ok := AllowedCurrencies[currency]; !ok {
		return fmt.Errorf("%w: unsupported currency %q", ErrValidation, currency)
	}
	return nil
}

func ValidateOrderID(orderID string) error {
	if orderID == "" {
		return fmt.Errorf("%w: order id cannot be empty", ErrValidation)
	}
	return nil
}

func ValidateIdempotencyKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: idempotency key cannot be empty", ErrValidation)
	}
	if len(key) < MinIdempotencyKeyLength {
		return fmt.Errorf("%w: idempotency key must be at least %d characters, got %d",
			ErrValidation, MinIdempotencyKeyLength, len(key))
	}
	return nil
}

// ValidateRequest checks every syntactic precondition of a payment request.
func ValidateRequest(amountMinor int64, currency, orderID, idempotencyKey string) error {
	if err := ValidateAmount(amountMinor); err != nil {
		return err
	}
	if err := ValidateCurrency(currency); err != nil {
		return err
	}
	if err := ValidateOrderID(orderID); err != nil {
		return err
	}
	return ValidateIdempotencyKey(idempotencyKey)
}
