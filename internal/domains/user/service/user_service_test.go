package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/user"
	"powerwrite-backend/pkg/jwt"
)

type memUserRepo struct {
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
	debits  []decimal.Decimal
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error {
	copied := *u
	r.byID[u.ID] = &copied
	r.byEmail[u.Email] = &copied
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetDemoUser(ctx context.Context) (*user.User, error) {
	for _, u := range r.byID {
		if u.IsDemo {
			return u, nil
		}
	}
	return nil, user.ErrDemoUserMissing
}

func (r *memUserRepo) UpdateTier(ctx context.Context, id uuid.UUID, tier user.Tier) error {
	u, ok := r.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Tier = tier
	return nil
}

func (r *memUserRepo) DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	u, ok := r.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	if u.Credits.LessThan(amount) {
		return user.ErrInsufficientCredits
	}
	u.Credits = u.Credits.Sub(amount)
	r.debits = append(r.debits, amount)
	return nil
}

func newTestService(repo user.Repository) user.Service {
	return NewUserService(repo, jwt.NewManager("test-secret"))
}

func registerReq() user.RegisterRequest {
	return user.RegisterRequest{
		Email:       "writer@example.com",
		Password:    "correct-horse",
		DisplayName: "A. Writer",
	}
}

func TestRegister(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)

	dto, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.Equal(t, "writer@example.com", dto.Email)
	assert.Equal(t, user.TierFree, dto.Tier)
	// New accounts start with a credit grant.
	assert.True(t, dto.Credits.Equal(decimal.NewFromInt(50)))

	// The password is stored hashed.
	stored := repo.byEmail["writer@example.com"]
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(context.Background(), registerReq())
		assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
	})

	t.Run("invalid email", func(t *testing.T) {
		req := registerReq()
		req.Email = "not-an-email"
		_, err := svc.Register(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		res, err := svc.Login(context.Background(), user.LoginRequest{
			Email:    "writer@example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, "writer@example.com", res.User.Email)

		// The access token round-trips through the validator.
		claims, err := jwt.NewManager("test-secret").ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID.String(), claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), user.LoginRequest{
			Email:    "writer@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), user.LoginRequest{
			Email:    "ghost@example.com",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestDebitCredits(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)
	dto, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	t.Run("zero and negative amounts are no-ops", func(t *testing.T) {
		require.NoError(t, svc.DebitCredits(context.Background(), dto.ID, decimal.Zero))
		require.NoError(t, svc.DebitCredits(context.Background(), dto.ID, decimal.NewFromInt(-3)))
		assert.Empty(t, repo.debits)
	})

	t.Run("positive amount is charged", func(t *testing.T) {
		require.NoError(t, svc.DebitCredits(context.Background(), dto.ID, decimal.NewFromInt(2)))
		assert.True(t, repo.byID[dto.ID].Credits.Equal(decimal.NewFromInt(48)))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		err := svc.DebitCredits(context.Background(), dto.ID, decimal.NewFromInt(1000))
		assert.ErrorIs(t, err, user.ErrInsufficientCredits)
	})
}

func TestResolveActor(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)

	demo := &user.User{ID: uuid.New(), Email: "demo@powerwrite.app", Tier: user.TierFree, IsDemo: true}
	require.NoError(t, repo.Create(context.Background(), demo))

	dto, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	actor, err := svc.ResolveActor(context.Background(), dto.ID.String())
	require.NoError(t, err)
	assert.Equal(t, dto.ID.String(), actor.ID)
	assert.False(t, actor.IsDemo)

	demoActor, err := svc.DemoActor(context.Background())
	require.NoError(t, err)
	assert.True(t, demoActor.IsDemo)
	assert.Equal(t, demo.ID.String(), demoActor.ID)

	_, err = svc.ResolveActor(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}

func TestEnsureDemoUser(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)

	seeded, err := svc.EnsureDemoUser(context.Background(), "demo@powerwrite.app")
	require.NoError(t, err)
	assert.Equal(t, "demo@powerwrite.app", seeded.Email)
	assert.True(t, seeded.IsDemo)
	assert.Empty(t, seeded.PasswordHash, "demo account must not be loginable")
	assert.True(t, seeded.Credits.IsZero())

	// Idempotent: a second call finds the existing row.
	again, err := svc.EnsureDemoUser(context.Background(), "demo@powerwrite.app")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, again.ID)

	// The middleware fallback resolves to the seeded account.
	demoActor, err := svc.DemoActor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seeded.ID.String(), demoActor.ID)

	// No password means no login.
	_, err = svc.Login(context.Background(), user.LoginRequest{
		Email: "demo@powerwrite.app", Password: "anything-at-all",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}
