package ledger

import (
	"context" // Context for cancellation
	"errors"  // Error kinds and wrapping
	"fmt"     // Formatted errors

	"credit_ledger/internal/domain" // Importing domain models

	"github.com/google/uuid"        // Public transaction ids
	"github.com/shopspring/decimal" // Fixed-point amounts
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking clauses
)

// Pagination defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a listing, 1-based
type Page struct {
	Page     int
	PageSize int
}

// Normalize applies the defaults to out of range values
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.PageSize
}

// ChargeFilter narrows ListCharges
type ChargeFilter struct {
	Page
	PhoneNumber string        // Owner, empty for all
	Status      domain.Status // Empty for all
}

// TransactionFilter narrows ListTransactions
type TransactionFilter struct {
	Page
	SellerPhoneNumber   string
	ReceiverPhoneNumber string
	Status              domain.Status
}

// Store is the durable record of users, charges and transactions.
// It never writes User.Balance; only lockedUsers does.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open, migrated database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a new user with a zero balance
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ValidatePhoneNumber(user.PhoneNumber); err != nil {
		return err
	}
	user.Balance = decimal.Zero
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: user %s", ErrDuplicate, user.PhoneNumber)
	}
	return err
}

// UserByPhone looks a user up by phone number
func (s *Store) UserByPhone(ctx context.Context, phoneNumber string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user %s", phoneNumber)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChargeByTransactionID looks a charge up by its external identifier
func (s *Store) ChargeByTransactionID(ctx context.Context, id uuid.UUID) (*domain.Charge, error) {
	var charge domain.Charge
	err := s.db.WithContext(ctx).Preload("User").Where("transaction_id = ?", id).First(&charge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("charge %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

// TransactionByTransactionID looks a transfer up by its external identifier
func (s *Store) TransactionByTransactionID(ctx context.Context, id uuid.UUID) (*domain.UserTransaction, error) {
	var utx domain.UserTransaction
	err := s.db.WithContext(ctx).
		Preload("Seller").
		Preload("ReceiverUser").
		Where("transaction_id = ?", id).
		First(&utx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("transaction %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &utx, nil
}

// ListUsers returns a page of users, newest first, and the total count
func (s *Store) ListUsers(ctx context.Context, page Page) ([]domain.User, int64, error) {
	page = page.Normalize()
	query := s.db.WithContext(ctx).Model(&domain.User{})
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := query.Order("created_at desc, id desc").Offset(page.offset()).Limit(page.PageSize).Find(&users).Error
	return users, total, err
}

// ListCharges returns a filtered page of charges, newest first, and the total count
func (s *Store) ListCharges(ctx context.Context, filter ChargeFilter) ([]domain.Charge, int64, error) {
	page := filter.Page.Normalize()
	db := s.db.WithContext(ctx)
	query := db.Model(&domain.Charge{})
	if filter.PhoneNumber != "" {
		query = query.Where("user_id IN (?)", s.userIDs(db, filter.PhoneNumber))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var charges []domain.Charge
	err := query.Preload("User").
		Order("created_at desc, id desc").
		Offset(page.offset()).
		Limit(page.PageSize).
		Find(&charges).Error
	return charges, total, err
}

// ListTransactions returns a filtered page of transfers, newest first, and the total count
func (s *Store) ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.UserTransaction, int64, error) {
	page := filter.Page.Normalize()
	db := s.db.WithContext(ctx)
	query := db.Model(&domain.UserTransaction{})
	if filter.SellerPhoneNumber != "" {
		query = query.Where("seller_id IN (?)", s.userIDs(db, filter.SellerPhoneNumber))
	}
	if filter.ReceiverPhoneNumber != "" {
		query = query.Where("receiver_user_id IN (?)", s.userIDs(db, filter.ReceiverPhoneNumber))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []domain.UserTransaction
	err := query.Preload("Seller").
		Preload("ReceiverUser").
		Order("created_at desc, id desc").
		Offset(page.offset()).
		Limit(page.PageSize).
		Find(&txs).Error
	return txs, total, err
}

// DeleteUser removes a user that no charge or transaction references.
// Ledger history is never orphaned: referenced users yield ErrUserReferenced.
func (s *Store) DeleteUser(ctx context.Context, phoneNumber string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("phone_number = ?", phoneNumber).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("user %s", phoneNumber)
		}
		if err != nil {
			return err
		}

		var charges, transfers int64
		if err := tx.Model(&domain.Charge{}).Where("user_id = ?", user.ID).Count(&charges).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.UserTransaction{}).
			Where("seller_id = ? OR receiver_user_id = ?", user.ID, user.ID).
			Count(&transfers).Error; err != nil {
			return err
		}
		if charges+transfers > 0 {
			return fmt.Errorf("%w: %s has %d charges and %d transactions", ErrUserReferenced, phoneNumber, charges, transfers)
		}

		err = tx.Delete(&user).Error
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: %s", ErrUserReferenced, phoneNumber)
		}
		return err
	})
}

func (s *Store) userIDs(db *gorm.DB, phoneNumber string) *gorm.DB {
	return db.Model(&domain.User{}).Select("id").Where("phone_number = ?", phoneNumber)
}

// sumAmounts totals the amount column of the rows selected by query
func sumAmounts(query *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := query.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
