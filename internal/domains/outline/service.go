package outline

import (
	"context"

	"github.com/google/uuid"

	"powerwrite-backend/internal/shared"
)

// Service is the outline snapshot business-logic contract.
type Service interface {
	SaveSnapshot(ctx context.Context, actor shared.Actor, req SaveSnapshotRequest) (*Snapshot, error)
	ListSnapshots(ctx context.Context, actor shared.Actor) ([]SnapshotSummary, error)
	GetSnapshot(ctx context.Context, actor shared.Actor, id uuid.UUID) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, actor shared.Actor, id uuid.UUID) error

	// Mutate applies one chapter/theme/character operation and persists
	// the result. Chapter numbering stays contiguous afterwards.
	Mutate(ctx context.Context, actor shared.Actor, id uuid.UUID, req MutateRequest) (*Snapshot, error)
}
