package persons

import (
	"context"

	"github.com/zhongxul/birthkeeper/internal/models"
)

// Repository describes persistence for people and their 1:1 reminder
// configuration. Implementations are backed by the local SQLite database.
type Repository interface {
	// Upsert inserts a new person (ID 0) or updates an existing one together
	// with its reminder configuration, in one transaction. CreatedAt is
	// preserved on update; UpdatedAt is always refreshed. Returns the
	// persisted id.
	Upsert(ctx context.Context, p *models.Person) (int64, error)

	// GetByID returns a non-deleted person with its reminder configuration.
	// Returns common.ErrNotFound when there is no such person.
	GetByID(ctx context.Context, id int64) (*models.Person, error)

	// ListActive returns all non-deleted people with their reminder
	// configuration, ordered by upcoming birthday date.
	ListActive(ctx context.Context) ([]models.Person, error)

	// SoftDelete flags a person as deleted and removes its reminder
	// configuration. People are never hard-deleted outside a bulk wipe.
	SoftDelete(ctx context.Context, id int64) error
}
