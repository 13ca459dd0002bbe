package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"powerwrite-backend/internal/domains/outline"
)

// PostgresRepository stores snapshots with the outline body as JSONB.
// Themes are mirrored into a text[] column so list filters never have
// to unpack the blob.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) outline.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, s *outline.Snapshot) error {
	body, err := json.Marshal(s.Outline)
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}

	query := `
		INSERT INTO outline_snapshots (id, user_id, name, outline, themes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.Name, body, pq.StringArray(s.Outline.Themes))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*outline.Snapshot, error) {
	query := `
		SELECT id, user_id, name, outline, created_at, updated_at
		FROM outline_snapshots WHERE id = $1
	`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outline.ErrOutlineNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]outline.Snapshot, error) {
	query := `
		SELECT id, user_id, name, outline, created_at, updated_at
		FROM outline_snapshots WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []outline.Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, s *outline.Snapshot) error {
	body, err := json.Marshal(s.Outline)
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}

	query := `
		UPDATE outline_snapshots
		SET name = $2, outline = $3, themes = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, s.ID, s.Name, body, pq.StringArray(s.Outline.Themes))
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outline.ErrOutlineNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM outline_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outline.ErrOutlineNotFound
	}
	return nil
}

func scanSnapshot(row pgx.Row) (*outline.Snapshot, error) {
	var (
		s    outline.Snapshot
		body []byte
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &body, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &s.Outline); err != nil {
		return nil, fmt.Errorf("unmarshal outline body: %w", err)
	}
	return &s, nil
}
