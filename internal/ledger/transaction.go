package ledger

import (
	"context" // Context for cancellation
	"errors"  // Error kinds and wrapping
	"fmt"     // Formatted errors

	"credit_ledger/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point amounts
	"github.com/sirupsen/logrus"    // Structured logging
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking clauses
)

// CreateTransaction transfers amount from a seller to a receiver.
//
// Validation, lookup and role failures are returned as errors and persist
// nothing. Once those pass, the transaction row, both balance changes and the
// terminal status commit together. A seller who cannot cover the amount is
// not an error: the transaction is returned FAILED with
// INSUFFICIENT_BALANCE and no balance moves.
func (l *Ledger) CreateTransaction(ctx context.Context, sellerPhone, receiverPhone string, amount decimal.Decimal) (*domain.UserTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := ValidatePhoneNumber(sellerPhone); err != nil {
		return nil, fmt.Errorf("seller: %w", err)
	}
	if err := ValidatePhoneNumber(receiverPhone); err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}
	if sellerPhone == receiverPhone {
		return nil, validationf("seller and receiver must differ")
	}

	seller, err := l.store.UserByPhone(ctx, sellerPhone)
	if errors.Is(err, ErrNotFound) {
		return nil, notFoundf("seller %s", sellerPhone)
	} else if err != nil {
		return nil, err
	}
	receiver, err := l.store.UserByPhone(ctx, receiverPhone)
	if errors.Is(err, ErrNotFound) {
		return nil, notFoundf("receiver %s", receiverPhone)
	} else if err != nil {
		return nil, err
	}
	if !seller.IsSeller {
		return nil, fmt.Errorf("%w: only sellers can create transactions", ErrPermissionDenied)
	}

	utx := &domain.UserTransaction{
		SellerID:       seller.ID,
		ReceiverUserID: receiver.ID,
		Amount:         amount,
		Status:         domain.StatusWaiting,
		TransactionID:  l.newID(),
	}
	var moveErr error // Outcome of the balance move, decides the status
	err = l.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx, seller.ID, receiver.ID)
		if err != nil {
			return err
		}
		// The role may have changed between lookup and lock
		if !users.get(seller.ID).IsSeller {
			return fmt.Errorf("%w: only sellers can create transactions", ErrPermissionDenied)
		}

		if err := tx.Omit(clause.Associations).Create(utx).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		// Both sides run in a savepoint: a failed credit undoes the debit
		moveErr = tx.Transaction(func(sp *gorm.DB) error {
			return users.transfer(sp, seller.ID, receiver.ID, amount)
		})

		next, extra := domain.StatusConfirmed, map[string]any(nil)
		switch {
		case moveErr == nil:
		case errors.Is(moveErr, ErrInvariantViolation):
			return l.invariant(moveErr, logrus.Fields{"transaction_id": utx.TransactionID})
		case errors.Is(moveErr, ErrInsufficientBalance):
			next, extra = domain.StatusFailed, map[string]any{"description": domain.DescriptionInsufficientBalance}
		default:
			next, extra = domain.StatusFailed, map[string]any{"description": domain.DescriptionOtherReasons}
		}
		if err := transition(tx, &domain.UserTransaction{}, utx.ID, domain.StatusWaiting, next, extra); err != nil {
			return err
		}

		utx.Status = next // Mirror the committed status
		if d, ok := extra["description"].(domain.Description); ok {
			utx.Description = descriptionPtr(d)
		}
		utx.Seller = *users.get(seller.ID)
		utx.ReceiverUser = *users.get(receiver.ID)
		return nil
	})
	if err != nil {
		l.log.WithFields(logrus.Fields{
			"seller":   sellerPhone,
			"receiver": receiverPhone,
			"amount":   amount.String(),
		}).WithError(err).Error("Transaction aborted")
		return nil, err
	}

	entry := l.log.WithFields(logrus.Fields{
		"seller":         sellerPhone,
		"receiver":       receiverPhone,
		"amount":         amount.String(),
		"transaction_id": utx.TransactionID,
		"status":         utx.Status,
	})
	switch {
	case moveErr == nil:
		entry.Info("Transaction confirmed")
	case errors.Is(moveErr, ErrInsufficientBalance):
		entry.WithError(moveErr).Warn("Transaction failed")
	default:
		entry.WithError(moveErr).Error("Transaction failed")
	}
	return utx, nil
}
