// Package ledger is the balance-consistency core: it owns every change to a
// user's balance and the charge and transaction lifecycles that cause them.
package ledger

import (
	"credit_ledger/internal/domain" // Importing domain models

	"github.com/google/uuid"     // Public transaction ids
	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Ledger settles charges and transfers against the Store
type Ledger struct {
	store *Store             // Durable records
	log   logrus.FieldLogger // Structured logger
	newID func() uuid.UUID   // Public transaction id generator
}

// New builds a Ledger over a migrated database. A nil logger uses the logrus
// standard logger.
func New(db *gorm.DB, log logrus.FieldLogger) *Ledger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{
		store: NewStore(db),
		log:   log,
		newID: uuid.New,
	}
}

// Store exposes the lookups and listings used by the transport layer
func (l *Ledger) Store() *Store {
	return l.store
}

// invariant logs a broken invariant loudly and returns it as an error
func (l *Ledger) invariant(err error, fields logrus.Fields) error {
	l.log.WithFields(fields).WithError(err).Error("Ledger invariant violated")
	return err
}

func descriptionPtr(d domain.Description) *domain.Description {
	return &d
}
