package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserTransaction Model, a transfer from a seller to a receiver.
// Both user references are protected from deletion.
type UserTransaction struct {
	ID             uint            `gorm:"primaryKey" json:"-"`
	SellerID       uint            `gorm:"not null;index" json:"-"`
	Seller         User            `gorm:"foreignKey:SellerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"seller"`
	ReceiverUserID uint            `gorm:"not null;index" json:"-"`
	ReceiverUser   User            `gorm:"foreignKey:ReceiverUserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"receiver_user"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"amount"`
	Status         Status          `gorm:"size:16;not null;default:WAITING;index" json:"status"`
	TransactionID  uuid.UUID       `gorm:"type:varchar(36);uniqueIndex;not null" json:"transaction_id"`
	Description    *Description    `gorm:"size:32" json:"description"` // Set only when FAILED
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for UserTransaction
func (UserTransaction) TableName() string {
	return "user_transactions"
}
