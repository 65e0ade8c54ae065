package ledger

import (
	"context"
	"io"
	"testing"

	"credit_ledger/internal/config"
	"credit_ledger/internal/db"
	"credit_ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()
	gdb, err := db.Open(&config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(gdb, log), gdb
}

func amt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func createUser(t *testing.T, l *Ledger, phone string, isSeller bool) *domain.User {
	t.Helper()
	user := &domain.User{PhoneNumber: phone, Password: "hash", IsSeller: isSeller}
	require.NoError(t, l.Store().CreateUser(context.Background(), user))
	return user
}

// fund tops a seller up through the charge lifecycle
func fund(t *testing.T, l *Ledger, user *domain.User, amount int64) {
	t.Helper()
	ctx := context.Background()
	charge, err := l.CreateCharge(ctx, user, amt(amount))
	require.NoError(t, err)
	_, err = l.ConfirmCharge(ctx, charge.TransactionID)
	require.NoError(t, err)
}

func requireBalance(t *testing.T, l *Ledger, phone string, want int64) {
	t.Helper()
	user, err := l.Store().UserByPhone(context.Background(), phone)
	require.NoError(t, err)
	require.True(t, amt(want).Equal(user.Balance), "balance of %s: want %d, got %s", phone, want, user.Balance)
}
