package outline

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the outline snapshot data-access contract. The outline
// body is stored as JSONB; themes are mirrored into a text array for
// filtering.
type Repository interface {
	Create(ctx context.Context, s *Snapshot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Snapshot, error)
	Update(ctx context.Context, s *Snapshot) error
	Delete(ctx context.Context, id uuid.UUID) error
}
