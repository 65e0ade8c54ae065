package ledger

import (
	"credit_ledger/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point amounts
)

// maxAmount bounds amounts to the 12 digits of the amount columns
var maxAmount = decimal.New(1, 12)

// ValidatePhoneNumber rejects numbers domain.ValidPhoneNumber does not accept
func ValidatePhoneNumber(phoneNumber string) error {
	if !domain.ValidPhoneNumber(phoneNumber) {
		return validationf("invalid phone number %q", phoneNumber)
	}
	return nil
}

// ValidateAmount requires a positive whole amount that fits the amount columns
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return validationf("amount must be positive, got %s", amount)
	case !amount.Equal(amount.Truncate(0)):
		return validationf("amount must be a whole number, got %s", amount)
	case amount.GreaterThanOrEqual(maxAmount):
		return validationf("amount %s exceeds 12 digits", amount)
	}
	return nil
}
