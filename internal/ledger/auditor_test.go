package ledger

import (
	"context"
	"testing"
	"time"

	"credit_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckUserBalanceAfterHistory(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	seller := createUser(t, l, "+989125000001", true)
	other := createUser(t, l, "+989125000002", true)
	receiver := createUser(t, l, "+989125000003", false)
	fund(t, l, seller, 500)
	fund(t, l, other, 50)

	pending, err := l.CreateCharge(ctx, seller, amt(999))
	require.NoError(t, err)
	rejected, err := l.CreateCharge(ctx, seller, amt(777))
	require.NoError(t, err)
	_, err = l.RejectCharge(ctx, rejected.TransactionID)
	require.NoError(t, err)

	_, err = l.CreateTransaction(ctx, seller.PhoneNumber, receiver.PhoneNumber, amt(200))
	require.NoError(t, err)
	_, err = l.CreateTransaction(ctx, seller.PhoneNumber, other.PhoneNumber, amt(100))
	require.NoError(t, err)
	failed, err := l.CreateTransaction(ctx, other.PhoneNumber, receiver.PhoneNumber, amt(1000))
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed, failed.Status)

	for _, u := range []*domain.User{seller, other, receiver} {
		assert.NoError(t, l.CheckUserBalance(ctx, u.PhoneNumber), u.PhoneNumber)
	}

	expected, err := l.ExpectedBalance(ctx, seller.ID)
	require.NoError(t, err)
	assert.True(t, amt(200).Equal(expected))

	// Confirming the pending charge keeps the books balanced
	_, err = l.ConfirmCharge(ctx, pending.TransactionID)
	require.NoError(t, err)
	assert.NoError(t, l.CheckUserBalance(ctx, seller.PhoneNumber))

	mismatches, err := l.AuditAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestCheckUserBalanceDetectsTampering(t *testing.T) {
	l, gdb := newTestLedger(t)
	ctx := context.Background()
	seller := createUser(t, l, "+989125000004", true)
	fund(t, l, seller, 300)

	// Bypass the balance mutator
	require.NoError(t, gdb.Model(&domain.User{}).Where("id = ?", seller.ID).Update("balance", amt(1300)).Error)

	err := l.CheckUserBalance(ctx, seller.PhoneNumber)
	require.ErrorIs(t, err, ErrBalanceMismatch)
	var mismatch *BalanceMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, amt(1300).Equal(mismatch.Balance))
	assert.True(t, amt(300).Equal(mismatch.Expected))
	assert.True(t, amt(1000).Equal(mismatch.Diff()))

	// Reporting never corrects the stored balance
	requireBalance(t, l, seller.PhoneNumber, 1300)

	mismatches, err := l.AuditAll(ctx)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, seller.PhoneNumber, mismatches[0].PhoneNumber)
}

func TestCheckUserBalanceUnknownUser(t *testing.T) {
	l, _ := newTestLedger(t)
	assert.ErrorIs(t, l.CheckUserBalance(context.Background(), "+989125999999"), ErrNotFound)
}

func TestRunAuditorStopsWithContext(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunAuditor(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	<-done

	// A zero interval disables the job
	l.RunAuditor(context.Background(), 0)
}
