package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"powerwrite-backend/internal/domains/generation"
)

// PostgresRepository implements generation.Repository on pgxpool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) generation.Repository {
	return &PostgresRepository{db: db}
}

const jobColumns = `id, book_id, user_id, kind, status, progress,
	current_chapter, total_chapters, current_frame, total_frames,
	output_url, error, created_at, started_at, completed_at`

func scanJob(row pgx.Row) (*generation.GenerationJob, error) {
	var job generation.GenerationJob
	err := row.Scan(
		&job.ID, &job.BookID, &job.UserID, &job.Kind, &job.Status,
		&job.Progress, &job.CurrentChapter, &job.TotalChapters,
		&job.CurrentFrame, &job.TotalFrames, &job.OutputURL, &job.Error,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *PostgresRepository) Create(ctx context.Context, job *generation.GenerationJob) error {
	query := `
		INSERT INTO generation_jobs (
			id, book_id, user_id, kind, status, progress,
			current_chapter, total_chapters, current_frame, total_frames,
			output_url, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		job.ID, job.BookID, job.UserID, job.Kind, job.Status, job.Progress,
		job.CurrentChapter, job.TotalChapters, job.CurrentFrame, job.TotalFrames,
		job.OutputURL, job.Error,
	)
	if err != nil {
		return fmt.Errorf("insert generation job: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*generation.GenerationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM generation_jobs WHERE id = $1`

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, generation.ErrJobNotFound
		}
		return nil, fmt.Errorf("get generation job: %w", err)
	}
	return job, nil
}

// UpdateStatusIf is the compare-and-set transition write. The WHERE
// clause carries the expected status; zero rows affected means the
// job moved under us (typically a cancellation won the race).
func (r *PostgresRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to generation.JobStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("illegal transition %s -> %s", from, to)
	}

	query := `
		UPDATE generation_jobs
		SET status = $3,
		    started_at = CASE WHEN $3 = 'rendering' AND started_at IS NULL THEN NOW() ELSE started_at END,
		    completed_at = CASE WHEN $3 IN ('completed', 'failed', 'cancelled') THEN NOW() ELSE completed_at END
		WHERE id = $1 AND status = $2
	`

	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Disambiguate missing row from a lost race.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return generation.ErrStatusConflict
	}
	return nil
}

func (r *PostgresRepository) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE generation_jobs
		SET status = 'cancelled', completed_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'failed', 'cancelled')
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("cancel job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) UpdateProgress(ctx context.Context, id uuid.UUID, p generation.ProgressUpdate) error {
	query := `
		UPDATE generation_jobs
		SET progress = $2,
		    current_chapter = CASE WHEN $3 >= 0 THEN $3 ELSE current_chapter END,
		    total_chapters  = CASE WHEN $4 >= 0 THEN $4 ELSE total_chapters END,
		    current_frame   = CASE WHEN $5 >= 0 THEN $5 ELSE current_frame END,
		    total_frames    = CASE WHEN $6 >= 0 THEN $6 ELSE total_frames END
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id, generation.ClampProgress(p.Progress),
		p.CurrentChapter, p.TotalChapters, p.CurrentFrame, p.TotalFrames)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetOutput(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.db.Exec(ctx, `UPDATE generation_jobs SET output_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("set job output: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE generation_jobs
		SET status = 'failed', error = $2, completed_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'failed', 'cancelled')
	`

	_, err := r.db.Exec(ctx, query, id, message)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM generation_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return generation.ErrJobNotFound
	}
	return nil
}

func (r *PostgresRepository) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM generation_jobs
		WHERE status IN ('completed', 'failed', 'cancelled')
		  AND completed_at < $1
	`

	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge terminal jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) ListStuckPending(ctx context.Context, olderThan time.Duration) ([]generation.GenerationJob, error) {
	query := `SELECT ` + jobColumns + `
		FROM generation_jobs
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, time.Now().Add(-olderThan))
	if err != nil {
		return nil, fmt.Errorf("list stuck jobs: %w", err)
	}
	defer rows.Close()

	var jobs []generation.GenerationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stuck job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}
