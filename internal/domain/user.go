package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var phoneNumberPattern = regexp.MustCompile(`^(?:\+[0-9]{7,15}|[0-9]{7,15})$`)

// ValidPhoneNumber accepts international (+98912...) and local (0912...) numbers
func ValidPhoneNumber(phoneNumber string) bool {
	return phoneNumberPattern.MatchString(phoneNumber)
}

// User Model
type User struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	PhoneNumber string          `gorm:"size:16;uniqueIndex;not null" json:"phone_number"`     // Unique identity
	Password    string          `gorm:"not null" json:"-"`                                    // Hashed password
	Balance     decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0" json:"balance"` // Integer currency units, never negative
	IsSeller    bool            `gorm:"not null;default:false" json:"is_seller"`              // May create charges and transfers
	IsStaff     bool            `gorm:"not null;default:false" json:"is_staff"`               // May use admin endpoints
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
