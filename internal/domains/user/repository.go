package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the user data-access contract.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetDemoUser(ctx context.Context) (*User, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier Tier) error

	// DebitCredits atomically subtracts amount when the balance covers
	// it. Returns ErrInsufficientCredits otherwise.
	DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}
