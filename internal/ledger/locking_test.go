package ledger

import (
	"testing"

	"credit_ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// serverDialects opens mysql and postgres handles that never connect; they
// are only used to render SQL. SQLite drops locking clauses, so the lock
// statements are checked against the dialects that honour them.
func serverDialects(t *testing.T) map[string]*gorm.DB {
	t.Helper()
	dialectors := map[string]gorm.Dialector{
		"mysql": mysql.New(mysql.Config{
			DSN:                       "ledger:ledger@tcp(127.0.0.1:3306)/ledger?parseTime=true",
			SkipInitializeWithVersion: true,
		}),
		"postgres": postgres.New(postgres.Config{
			DSN: "host=127.0.0.1 user=ledger password=ledger dbname=ledger port=5432 sslmode=disable",
		}),
	}
	dbs := make(map[string]*gorm.DB, len(dialectors))
	for name, d := range dialectors {
		gdb, err := gorm.Open(d, &gorm.Config{DisableAutomaticPing: true})
		require.NoError(t, err, name)
		dbs[name] = gdb
	}
	return dbs
}

func TestLockOrder(t *testing.T) {
	assert.Equal(t, []uint{3, 7, 9}, lockOrder([]uint{9, 3, 7, 3}))

	ids := []uint{2, 1}
	lockOrder(ids)
	assert.Equal(t, []uint{2, 1}, ids, "caller's slice must not be reordered")
}

func TestLockUsersQueryTakesOrderedExclusiveLock(t *testing.T) {
	for name, gdb := range serverDialects(t) {
		t.Run(name, func(t *testing.T) {
			sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var users []domain.User
				return lockUsersQuery(tx, lockOrder([]uint{7, 3, 7}), &users)
			})
			assert.Contains(t, sql, "WHERE id IN (3,7) ORDER BY id FOR UPDATE")
		})
	}
}

func TestLockChargesQueryTakesOrderedExclusiveLock(t *testing.T) {
	id := uuid.MustParse("6f1c2d8e-8a4b-4c7e-9f0a-1b2c3d4e5f60")
	for name, gdb := range serverDialects(t) {
		t.Run(name, func(t *testing.T) {
			sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var charges []domain.Charge
				return lockChargesQuery(tx, []uuid.UUID{id}, &charges)
			})
			assert.Contains(t, sql, "WHERE transaction_id IN ('"+id.String()+"') ORDER BY id FOR UPDATE")
		})
	}
}

func TestAuditUserQueryTakesSharedLock(t *testing.T) {
	for name, gdb := range serverDialects(t) {
		t.Run(name, func(t *testing.T) {
			sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var user domain.User
				return auditUserQuery(tx, "+989121234567", &user)
			})
			assert.Contains(t, sql, "WHERE phone_number = '+989121234567'")
			assert.Contains(t, sql, "FOR SHARE")
		})
	}
}
