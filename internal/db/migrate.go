package db

import (
	"errors"
	"fmt"

	"credit_ledger/internal/domain" // Importing domain models
	"credit_ledger/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Migrate creates tables, foreign keys, constraints, columns and indexes
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Charge{}, &domain.UserTransaction{})
}

// EnsureAdmin creates the bootstrap staff user, or resets its password if it
// already exists. Empty credentials skip the step.
func EnsureAdmin(db *gorm.DB, phoneNumber, password string) error {
	if phoneNumber == "" || password == "" {
		logrus.Info("Admin bootstrap skipped, credentials not configured")
		return nil
	}
	if !domain.ValidPhoneNumber(phoneNumber) {
		return fmt.Errorf("invalid admin phone number %q", phoneNumber) // Same rule as registration
	}

	var admin domain.User
	err := db.Where("phone_number = ?", phoneNumber).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		admin = domain.User{PhoneNumber: phoneNumber, Password: hash, IsStaff: true}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		logrus.WithField("phone_number", phoneNumber).Info("Admin user created")
		return nil
	case err != nil:
		return err
	}

	if utils.CheckPassword(admin.Password, password) && admin.IsStaff {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	// Only credentials and role are touched; balance belongs to the ledger
	if err := db.Model(&admin).Updates(map[string]any{"password": hash, "is_staff": true}).Error; err != nil {
		return err
	}
	logrus.WithField("phone_number", phoneNumber).Info("Admin user updated")
	return nil
}
