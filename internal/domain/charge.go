package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Charge Model, a top-up request confirmed or rejected by staff
type Charge struct {
	ID            uint            `gorm:"primaryKey" json:"-"`                                         // Primary key
	UserID        uint            `gorm:"not null;index" json:"-"`                                     // Foreign key to the owning User
	User          User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user"`  // Owner, protected from deletion
	Amount        decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"amount"`                   // Positive integer amount
	Status        Status          `gorm:"size:16;not null;default:WAITING;index" json:"status"`        // Lifecycle state
	TransactionID uuid.UUID       `gorm:"type:varchar(36);uniqueIndex;not null" json:"transaction_id"` // External lookup key
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Charge
func (Charge) TableName() string {
	return "charges"
}
