package ledger

import (
	"fmt" // Formatted errors

	"credit_ledger/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// transition moves one charge or transaction row from its previous status to
// next. The previous status is captured by the caller at the start of the
// transition; the conditional UPDATE rejects the change if the stored row has
// already left it, so a terminal status is written at most once.
func transition(tx *gorm.DB, model any, id uint, previous, next domain.Status, extra map[string]any) error {
	if !previous.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, previous, next)
	}

	updates := map[string]any{"status": next} // Status plus any extra columns
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(model).Where("id = ? AND status = ?", id, previous).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update status: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: row %d is no longer %s", ErrInvalidTransition, id, previous)
	}
	return nil
}
