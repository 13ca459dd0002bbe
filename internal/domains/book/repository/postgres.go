package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"powerwrite-backend/internal/domains/book/model"
	"powerwrite-backend/pkg/database"
)

// postgresRepository - Raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const bookColumns = `id, user_id, title, author, summary, genre, status,
	production_status, is_showcased, created_at, updated_at`

const chapterColumns = `id, book_id, number, title, content, word_count,
	status, audio_url, audio_duration, created_at, updated_at`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &b.Summary, &b.Genre,
		&b.Status, &b.ProductionStatus, &b.IsShowcased,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanChapter(row pgx.Row) (*model.Chapter, error) {
	var ch model.Chapter
	err := row.Scan(
		&ch.ID, &ch.BookID, &ch.Number, &ch.Title, &ch.Content,
		&ch.WordCount, &ch.Status, &ch.AudioURL, &ch.AudioDuration,
		&ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (id, user_id, title, author, summary, genre,
			status, production_status, is_showcased, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.UserID, b.Title, b.Author, b.Summary, b.Genre,
		b.Status, b.ProductionStatus, b.IsShowcased,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateWithChapters(ctx context.Context, b *model.Book, chapters []model.Chapter) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO books (id, user_id, title, author, summary, genre,
				status, production_status, is_showcased, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
			b.ID, b.UserID, b.Title, b.Author, b.Summary, b.Genre,
			b.Status, b.ProductionStatus, b.IsShowcased,
		)
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}

		for _, ch := range chapters {
			if err := insertChapter(ctx, tx, ch); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertChapter(ctx context.Context, tx pgx.Tx, ch model.Chapter) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO chapters (id, book_id, number, title, content,
			word_count, status, audio_url, audio_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
		ch.ID, ch.BookID, ch.Number, ch.Title, ch.Content,
		ch.WordCount, ch.Status, ch.AudioURL, ch.AudioDuration,
	)
	if err != nil {
		return fmt.Errorf("insert chapter %d: %w", ch.Number, err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.BookDetail, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE book_id = $1 ORDER BY number`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	detail := &model.BookDetail{Book: *b, Chapters: []model.Chapter{}}
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		detail.Chapters = append(detail.Chapters, *ch)
	}
	return detail, rows.Err()
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, summary = $4, genre = $5,
		    status = $6, production_status = $7, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		b.ID, b.Title, b.Author, b.Summary, b.Genre, b.Status, b.ProductionStatus,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chapters WHERE book_id = $1`, id); err != nil {
			return fmt.Errorf("delete chapters: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrBookNotFound
		}
		return nil
	})
}

// ReplaceChapters drops and reinserts the chapter set atomically so a
// failed write never leaves a half-reordered book.
func (r *postgresRepository) ReplaceChapters(ctx context.Context, bookID uuid.UUID, chapters []model.Chapter) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chapters WHERE book_id = $1`, bookID); err != nil {
			return fmt.Errorf("clear chapters: %w", err)
		}

		for _, ch := range chapters {
			if err := insertChapter(ctx, tx, ch); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `UPDATE books SET updated_at = NOW() WHERE id = $1`, bookID); err != nil {
			return fmt.Errorf("touch book: %w", err)
		}
		return nil
	})
}

func (r *postgresRepository) SaveChapterContent(ctx context.Context, chapterID uuid.UUID, content string, wordCount int) error {
	query := `
		UPDATE chapters
		SET content = $2, word_count = $3, status = 'completed', updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, chapterID, content, wordCount)
	if err != nil {
		return fmt.Errorf("save chapter content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrChapterNotFound
	}
	return nil
}

func (r *postgresRepository) SetStatus(ctx context.Context, bookID uuid.UUID, status model.BookStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books SET status = $2, updated_at = NOW() WHERE id = $1`, bookID, status)
	if err != nil {
		return fmt.Errorf("set book status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) SetShowcase(ctx context.Context, bookID uuid.UUID, showcased bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books SET is_showcased = $2, updated_at = NOW() WHERE id = $1`, bookID, showcased)
	if err != nil {
		return fmt.Errorf("set showcase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) ListShowcased(ctx context.Context) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE is_showcased = true ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list showcased books: %w", err)
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *postgresRepository) ListReportRows(ctx context.Context) ([]model.ReportRow, error) {
	query := `
		SELECT b.id, b.title, b.author, u.email, b.status,
		       COUNT(c.id), COALESCE(SUM(c.word_count), 0), b.created_at
		FROM books b
		JOIN users u ON u.id = b.user_id
		LEFT JOIN chapters c ON c.book_id = b.id
		GROUP BY b.id, u.email
		ORDER BY b.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list report rows: %w", err)
	}
	defer rows.Close()

	var report []model.ReportRow
	for rows.Next() {
		var row model.ReportRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Author, &row.OwnerEmail,
			&row.Status, &row.ChapterCount, &row.WordCount, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
