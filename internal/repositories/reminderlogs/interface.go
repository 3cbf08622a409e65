package reminderlogs

import (
	"context"
	"time"

	"github.com/zhongxul/birthkeeper/internal/models"
)

// Repository is the reminder lifecycle store: one row per
// (person, target date, offset) occurrence with a monotonic status.
type Repository interface {
	// EnsureLog returns the log for the given natural key, creating it in
	// PLANNED state when absent. Idempotent: concurrent callers racing on the
	// same key observe the same single row.
	EnsureLog(ctx context.Context, personID int64, targetDate time.Time, offsetDay int) (*models.ReminderLog, error)

	// Transition moves a log to newStatus. Only the legal lifecycle edges
	// are accepted (PLANNED->SENT, SENT->CLICKED, CLICKED->DONE and the
	// DONE->CLICKED reopen); anything else returns
	// common.ErrIllegalTransition. Setting the current status again is a
	// no-op.
	Transition(ctx context.Context, logID int64, newStatus models.Status) error

	// FindByKey returns the log for the natural key, or common.ErrNotFound.
	FindByKey(ctx context.Context, personID int64, targetDate time.Time, offsetDay int) (*models.ReminderLog, error)

	// ListAll returns every log ordered by creation time descending.
	ListAll(ctx context.Context) ([]models.ReminderLog, error)

	// DeleteAll wipes the table. Used only by bulk operations (overwrite
	// import, account reset).
	DeleteAll(ctx context.Context) error
}
