package ledger

import (
	"context" // Context for cancellation
	"errors"  // Error kinds and wrapping
	"fmt"     // Formatted errors

	"credit_ledger/internal/domain" // Importing domain models

	"github.com/google/uuid"        // Public transaction ids
	"github.com/shopspring/decimal" // Fixed-point amounts
	"github.com/sirupsen/logrus"    // Structured logging
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking clauses
)

// CreateCharge opens a WAITING top-up request owned by caller. Only sellers
// may create charges; the role is read from the stored user, not trusted
// from caller.
func (l *Ledger) CreateCharge(ctx context.Context, caller *domain.User, amount decimal.Decimal) (*domain.Charge, error) {
	if caller == nil {
		return nil, validationf("caller is required")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	user, err := l.store.UserByPhone(ctx, caller.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if !user.IsSeller {
		return nil, fmt.Errorf("%w: only sellers can create charges", ErrPermissionDenied)
	}

	charge := &domain.Charge{
		UserID:        user.ID,
		Amount:        amount,
		Status:        domain.StatusWaiting,
		TransactionID: l.newID(),
	}
	if err := l.store.db.WithContext(ctx).Omit(clause.Associations).Create(charge).Error; err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	charge.User = *user

	l.log.WithFields(logrus.Fields{
		"phone_number":   user.PhoneNumber,
		"amount":         amount.String(),
		"transaction_id": charge.TransactionID,
	}).Info("Charge created")
	return charge, nil
}

// ConfirmCharge confirms one WAITING charge and credits its owner
func (l *Ledger) ConfirmCharge(ctx context.Context, id uuid.UUID) (*domain.Charge, error) {
	charges, err := l.ConfirmCharges(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return &charges[0], nil
}

// RejectCharge fails one WAITING charge without touching any balance
func (l *Ledger) RejectCharge(ctx context.Context, id uuid.UUID) (*domain.Charge, error) {
	charges, err := l.RejectCharges(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return &charges[0], nil
}

// ConfirmCharges confirms a batch of charges all-or-nothing: if any charge is
// missing, no longer WAITING, or cannot be credited, the whole batch is
// rolled back and the error returned.
func (l *Ledger) ConfirmCharges(ctx context.Context, ids []uuid.UUID) ([]domain.Charge, error) {
	return l.settleCharges(ctx, ids, domain.StatusConfirmed)
}

// RejectCharges fails a batch of charges all-or-nothing
func (l *Ledger) RejectCharges(ctx context.Context, ids []uuid.UUID) ([]domain.Charge, error) {
	return l.settleCharges(ctx, ids, domain.StatusFailed)
}

func (l *Ledger) settleCharges(ctx context.Context, ids []uuid.UUID, next domain.Status) ([]domain.Charge, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, validationf("no charges selected")
	}

	var settled []domain.Charge
	err := l.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Charges first, then their owners; transfers only ever lock users,
		// so the two paths cannot wait on each other in a cycle.
		var charges []domain.Charge
		if err := lockChargesQuery(tx, ids, &charges).Error; err != nil {
			return fmt.Errorf("lock charges: %w", err)
		}
		if len(charges) != len(ids) {
			return notFoundf("charges %v", missingCharges(ids, charges))
		}

		userIDs := make([]uint, 0, len(charges))
		for _, c := range charges {
			userIDs = append(userIDs, c.UserID)
		}
		users, err := lockUsers(tx, userIDs...)
		if err != nil {
			return err
		}

		for i := range charges {
			charge := &charges[i]
			previous := charge.Status
			if !previous.CanTransition(next) {
				return fmt.Errorf("%w: charge %s is %s", ErrInvalidTransition, charge.TransactionID, previous)
			}
			if next == domain.StatusConfirmed {
				if err := users.adjust(tx, charge.UserID, charge.Amount); err != nil {
					if errors.Is(err, ErrInsufficientBalance) {
						// A deposit can never take a balance below zero
						return l.invariant(fmt.Errorf("%w: %v", ErrInvariantViolation, err), logrus.Fields{
							"transaction_id": charge.TransactionID,
						})
					}
					return err
				}
			}
			if err := transition(tx, &domain.Charge{}, charge.ID, previous, next, nil); err != nil {
				return fmt.Errorf("charge %s: %w", charge.TransactionID, err)
			}
			charge.Status = next // Mirror the committed status
		}

		for i := range charges {
			charges[i].User = *users.get(charges[i].UserID)
		}
		settled = charges
		return nil
	})
	if err != nil {
		l.log.WithFields(logrus.Fields{
			"status": next,
			"count":  len(ids),
		}).WithError(err).Warn("Charge batch rolled back")
		return nil, err
	}

	for _, c := range settled {
		l.log.WithFields(logrus.Fields{
			"phone_number":   c.User.PhoneNumber,
			"amount":         c.Amount.String(),
			"transaction_id": c.TransactionID,
			"status":         c.Status,
		}).Info("Charge settled")
	}
	return settled, nil
}

// lockChargesQuery locks the selected charges, ascending by id
func lockChargesQuery(tx *gorm.DB, ids []uuid.UUID, dest *[]domain.Charge) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id IN ?", ids).
		Order("id").
		Find(dest)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingCharges(ids []uuid.UUID, found []domain.Charge) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, c := range found {
		present[c.TransactionID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
