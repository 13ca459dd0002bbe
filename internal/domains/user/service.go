package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"powerwrite-backend/internal/shared"
)

// Service is the user business-logic contract.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpgradeTier(ctx context.Context, id uuid.UUID, tier Tier) error
	DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// Actor resolution for the middleware layer.
	ResolveActor(ctx context.Context, userID string) (shared.Actor, error)
	DemoActor(ctx context.Context) (shared.Actor, error)

	// EnsureDemoUser seeds the shared demo account at startup.
	EnsureDemoUser(ctx context.Context, email string) (*User, error)
}
