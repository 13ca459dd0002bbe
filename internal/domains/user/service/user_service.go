package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"powerwrite-backend/internal/domains/user"
	"powerwrite-backend/internal/shared"
	"powerwrite-backend/pkg/jwt"
)

// UserService implements user.Service.
type UserService struct {
	repo       user.Repository
	jwtManager *jwt.Manager
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager) user.Service {
	return &UserService{
		repo:       repo,
		jwtManager: jwtManager,
	}
}

// starterCredits is the balance granted on registration. One credit
// covers roughly one chapter generation.
var starterCredits = decimal.NewFromInt(50)

func (s *UserService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, user.ErrEmailAlreadyExists
	}

	// bcrypt cost 12 balances security against login latency.
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		DisplayName:  req.DisplayName,
		Tier:         user.TierFree,
		Credits:      starterCredits,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	dto := u.ToDTO()
	return &dto, nil
}

func (s *UserService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, user.ErrInvalidCredentials
	}

	// Constant-time comparison.
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID.String(), u.Email, string(u.Tier))
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &user.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		User:         u.ToDTO(),
	}, nil
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

func (s *UserService) UpgradeTier(ctx context.Context, id uuid.UUID, tier user.Tier) error {
	if !tier.IsValid() {
		return fmt.Errorf("invalid tier %q", tier)
	}
	return s.repo.UpdateTier(ctx, id, tier)
}

func (s *UserService) DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	return s.repo.DebitCredits(ctx, id, amount)
}

func (s *UserService) ResolveActor(ctx context.Context, userID string) (shared.Actor, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return shared.Actor{}, fmt.Errorf("invalid user id: %w", err)
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return shared.Actor{}, err
	}

	return shared.Actor{
		ID:     u.ID.String(),
		Email:  u.Email,
		Tier:   string(u.Tier),
		IsDemo: u.IsDemo,
	}, nil
}

// EnsureDemoUser creates the shared demo account by the configured
// email if no demo row exists yet. The account has no password, so it
// is unreachable through login; the actor middleware is its only
// entry point.
func (s *UserService) EnsureDemoUser(ctx context.Context, email string) (*user.User, error) {
	if u, err := s.repo.GetDemoUser(ctx); err == nil {
		return u, nil
	} else if !errors.Is(err, user.ErrDemoUserMissing) {
		return nil, err
	}

	u := &user.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Demo",
		Tier:        user.TierFree,
		Credits:     decimal.Zero,
		IsDemo:      true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// Two instances racing at startup: the other one won.
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return s.repo.GetDemoUser(ctx)
		}
		return nil, err
	}

	log.Printf("[User] Demo account seeded (%s)", email)
	return u, nil
}

func (s *UserService) DemoActor(ctx context.Context) (shared.Actor, error) {
	u, err := s.repo.GetDemoUser(ctx)
	if err != nil {
		return shared.Actor{}, err
	}

	return shared.Actor{
		ID:     u.ID.String(),
		Email:  u.Email,
		Tier:   string(u.Tier),
		IsDemo: true,
	}, nil
}
