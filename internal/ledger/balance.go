package ledger

import (
	"errors" // Error kinds and wrapping
	"fmt"    // Formatted errors
	"slices" // Lock key ordering

	"credit_ledger/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point amounts
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking clauses
)

// lockedUsers holds user rows under an exclusive row lock for the life of
// the database transaction that acquired them. It is the only way to change
// a balance: read, check and write all happen while the lock is held.
type lockedUsers struct {
	byID map[uint]*domain.User
}

// lockUsers locks every given user with a single SELECT ... FOR UPDATE.
// Rows are requested in ascending id order so that two transactions locking
// overlapping sets always acquire them in the same order.
func lockUsers(tx *gorm.DB, ids ...uint) (*lockedUsers, error) {
	ids = lockOrder(ids)

	var users []domain.User
	if err := lockUsersQuery(tx, ids, &users).Error; err != nil {
		return nil, fmt.Errorf("lock users: %w", err)
	}
	if len(users) != len(ids) {
		return nil, notFoundf("%d of %d users disappeared before locking", len(ids)-len(users), len(ids))
	}

	locked := &lockedUsers{byID: make(map[uint]*domain.User, len(users))}
	for i := range users {
		locked.byID[users[i].ID] = &users[i]
	}
	return locked, nil
}

// lockOrder sorts and dedups ids into the order every lock holder uses
func lockOrder(ids []uint) []uint {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// lockUsersQuery is the exclusive row lock taken on users, ascending by id
func lockUsersQuery(tx *gorm.DB, ids []uint, dest *[]domain.User) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(dest)
}

func (l *lockedUsers) get(id uint) *domain.User {
	return l.byID[id]
}

// adjust applies delta to the balance of a locked user. A result below zero
// is rejected with *InsufficientBalanceError and nothing is written. tx must
// be the transaction that holds the lock, or a savepoint nested in it.
func (l *lockedUsers) adjust(tx *gorm.DB, id uint, delta decimal.Decimal) error {
	user, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: balance change on unlocked user %d", ErrInvariantViolation, id)
	}

	current := user.Balance    // Read under the row lock
	next := current.Add(delta) // Candidate balance
	if next.IsNegative() {
		return &InsufficientBalanceError{PhoneNumber: user.PhoneNumber, Balance: current, Delta: delta}
	}

	res := tx.Model(&domain.User{}).Where("id = ?", id).Update("balance", next)
	if res.Error != nil {
		return fmt.Errorf("update balance of %s: %w", user.PhoneNumber, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: balance update of %s touched %d rows", ErrInvariantViolation, user.PhoneNumber, res.RowsAffected)
	}
	user.Balance = next // Keep the locked copy in step with the row
	return nil
}

// transfer debits amount from one locked user and credits it to another.
// On error neither in-memory balance is changed; the caller rolls the
// savepoint back so neither stored balance is either.
func (l *lockedUsers) transfer(tx *gorm.DB, fromID, toID uint, amount decimal.Decimal) error {
	from, to := l.get(fromID), l.get(toID)
	if from == nil || to == nil {
		return fmt.Errorf("%w: transfer between unlocked users", ErrInvariantViolation)
	}
	fromBefore, toBefore := from.Balance, to.Balance // Restored if the credit fails

	if err := l.adjust(tx, fromID, amount.Neg()); err != nil {
		return err
	}
	if err := l.adjust(tx, toID, amount); err != nil {
		from.Balance, to.Balance = fromBefore, toBefore
		if errors.Is(err, ErrInsufficientBalance) {
			return fmt.Errorf("%w: credit of %s rejected: %v", ErrInvariantViolation, amount, err)
		}
		return err
	}
	return nil
}
