package ledger

import (
	"context" // Context for cancellation
	"errors"  // Error kinds and wrapping
	"time"    // Time durations

	"credit_ledger/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point amounts
	"github.com/sirupsen/logrus"    // Structured logging
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking clauses
)

const auditBatchSize = 200

// ExpectedBalance recomputes a user's balance from confirmed history:
// charges credited plus transfers received minus transfers sent.
func (l *Ledger) ExpectedBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	return expectedBalance(l.store.db.WithContext(ctx), userID)
}

func expectedBalance(db *gorm.DB, userID uint) (decimal.Decimal, error) {
	charged, err := sumAmounts(db.Model(&domain.Charge{}).
		Where("user_id = ? AND status = ?", userID, domain.StatusConfirmed))
	if err != nil {
		return decimal.Zero, err
	}
	sent, err := sumAmounts(db.Model(&domain.UserTransaction{}).
		Where("seller_id = ? AND status = ?", userID, domain.StatusConfirmed))
	if err != nil {
		return decimal.Zero, err
	}
	received, err := sumAmounts(db.Model(&domain.UserTransaction{}).
		Where("receiver_user_id = ? AND status = ?", userID, domain.StatusConfirmed))
	if err != nil {
		return decimal.Zero, err
	}
	return charged.Sub(sent).Add(received), nil
}

// CheckUserBalance compares the stored balance of phoneNumber with its
// confirmed history and returns *BalanceMismatchError when they differ.
// The user row is share-locked for the whole check, so no settlement touching
// the user can commit between reading the balance and summing the history.
// It only reports; balances are never corrected here.
func (l *Ledger) CheckUserBalance(ctx context.Context, phoneNumber string) error {
	return l.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		err := auditUserQuery(tx, phoneNumber, &user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("user %s", phoneNumber)
		}
		if err != nil {
			return err
		}
		return checkUser(tx, &user)
	})
}

// auditUserQuery reads a user under a shared row lock. Settlements take the
// exclusive lock on the same row, so they wait until the audit ends.
func auditUserQuery(tx *gorm.DB, phoneNumber string, dest *domain.User) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Where("phone_number = ?", phoneNumber).
		First(dest)
}

func checkUser(tx *gorm.DB, user *domain.User) error {
	expected, err := expectedBalance(tx, user.ID)
	if err != nil {
		return err
	}
	if !expected.Equal(user.Balance) {
		return &BalanceMismatchError{PhoneNumber: user.PhoneNumber, Balance: user.Balance, Expected: expected}
	}
	return nil
}

// AuditAll reconciles every user in batches and returns the mismatches found.
// Each mismatch is logged at error level.
func (l *Ledger) AuditAll(ctx context.Context) ([]*BalanceMismatchError, error) {
	var mismatches []*BalanceMismatchError
	var users []domain.User
	res := l.store.db.WithContext(ctx).FindInBatches(&users, auditBatchSize, func(_ *gorm.DB, _ int) error {
		for i := range users {
			if err := l.CheckUserBalance(ctx, users[i].PhoneNumber); err != nil {
				var mismatch *BalanceMismatchError
				if !errors.As(err, &mismatch) {
					return err
				}
				l.log.WithFields(logrus.Fields{
					"phone_number": mismatch.PhoneNumber,
					"balance":      mismatch.Balance.String(),
					"expected":     mismatch.Expected.String(),
					"diff":         mismatch.Diff().String(),
				}).Error("Balance mismatch")
				mismatches = append(mismatches, mismatch)
			}
		}
		return nil
	})
	if res.Error != nil {
		return mismatches, res.Error
	}
	return mismatches, nil
}

// RunAuditor runs AuditAll every interval until ctx is done
func (l *Ledger) RunAuditor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mismatches, err := l.AuditAll(ctx)
			if err != nil {
				l.log.WithError(err).Error("Balance audit failed")
				continue
			}
			l.log.WithField("mismatches", len(mismatches)).Info("Balance audit completed")
		}
	}
}
