package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"powerwrite-backend/internal/domains/user"
)

// PostgresRepository implements user.Repository on pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, display_name, tier, credits, is_demo, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.Tier, &u.Credits, &u.IsDemo, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, display_name, tier, credits, is_demo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.DisplayName,
		u.Tier, u.Credits, u.IsDemo, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetDemoUser(ctx context.Context) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_demo = true LIMIT 1`

	u, err := scanUser(r.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrDemoUserMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get demo user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) UpdateTier(ctx context.Context, id uuid.UUID, tier user.Tier) error {
	query := `UPDATE users SET tier = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, tier, time.Now())
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// DebitCredits uses a conditional UPDATE so the balance check and the
// subtraction are one statement; no read-modify-write race.
func (r *PostgresRepository) DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET credits = credits - $2, updated_at = $3
		WHERE id = $1 AND credits >= $2`

	tag, err := r.pool.Exec(ctx, query, id, amount, time.Now())
	if err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the user is gone or the balance is short; disambiguate.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return user.ErrInsufficientCredits
	}
	return nil
}
