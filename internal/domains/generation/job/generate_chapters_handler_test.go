package job

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared"
)

// memJobRepo is an in-memory generation.Repository for worker tests.
type memJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*generation.GenerationJob
}

func newMemJobRepo(jobs ...*generation.GenerationJob) *memJobRepo {
	m := make(map[uuid.UUID]*generation.GenerationJob)
	for _, j := range jobs {
		m[j.ID] = j
	}
	return &memJobRepo{jobs: m}
}

func (r *memJobRepo) get(id uuid.UUID) (*generation.GenerationJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	return j, ok
}

func (r *memJobRepo) Create(ctx context.Context, job *generation.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *memJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*generation.GenerationJob, error) {
	j, ok := r.get(id)
	if !ok {
		return nil, generation.ErrJobNotFound
	}
	copied := *j
	return &copied, nil
}

func (r *memJobRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to generation.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return generation.ErrJobNotFound
	}
	if j.Status != from {
		return generation.ErrStatusConflict
	}
	j.Status = to
	return nil
}

func (r *memJobRepo) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return false, generation.ErrJobNotFound
	}
	if j.Status.IsTerminal() {
		return false, nil
	}
	j.Status = generation.StatusCancelled
	return true, nil
}

func (r *memJobRepo) UpdateProgress(ctx context.Context, id uuid.UUID, p generation.ProgressUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return generation.ErrJobNotFound
	}
	j.Progress = generation.ClampProgress(p.Progress)
	if p.CurrentChapter >= 0 {
		j.CurrentChapter = p.CurrentChapter
	}
	if p.TotalChapters >= 0 {
		j.TotalChapters = p.TotalChapters
	}
	return nil
}

func (r *memJobRepo) SetOutput(ctx context.Context, id uuid.UUID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		j.OutputURL = url
	}
	return nil
}

func (r *memJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return generation.ErrJobNotFound
	}
	if !j.Status.IsTerminal() {
		j.Status = generation.StatusFailed
		j.Error = message
	}
	return nil
}

func (r *memJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

func (r *memJobRepo) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *memJobRepo) ListStuckPending(ctx context.Context, olderThan time.Duration) ([]generation.GenerationJob, error) {
	return nil, nil
}

// memWriter records persisted chapters.
type memWriter struct {
	mu        sync.Mutex
	saved     map[uuid.UUID]string
	completed []uuid.UUID
}

func newMemWriter() *memWriter {
	return &memWriter{saved: make(map[uuid.UUID]string)}
}

func (w *memWriter) SaveChapterContent(ctx context.Context, chapterID uuid.UUID, content string, wordCount int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saved[chapterID] = content
	return nil
}

func (w *memWriter) MarkBookCompleted(ctx context.Context, bookID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.completed = append(w.completed, bookID)
	return nil
}

// scriptedProvider returns canned prose and can run a hook per call.
type scriptedProvider struct {
	mu     sync.Mutex
	calls  int
	err    error
	onCall func(n int)
}

func (p *scriptedProvider) GenerateChapter(ctx context.Context, modelID, prompt string) (string, string, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	hook := p.onCall
	p.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if p.err != nil {
		return "", "", p.err
	}
	return "Generated prose for the chapter.", "gpt-4o-mini", nil
}

type noopCredits struct {
	mu      sync.Mutex
	debited decimal.Decimal
}

func (c *noopCredits) DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debited = c.debited.Add(amount)
	return nil
}

func chaptersPayload(t *testing.T, job *generation.GenerationJob, n int) ([]byte, []uuid.UUID) {
	t.Helper()

	chapterIDs := make([]uuid.UUID, n)
	ids := make([]string, n)
	refs := make([]generation.OutlineChapterRef, n)
	for i := range chapterIDs {
		chapterIDs[i] = uuid.New()
		ids[i] = chapterIDs[i].String()
		refs[i] = generation.OutlineChapterRef{Number: i + 1, Title: "Chapter"}
	}

	raw, err := json.Marshal(generation.ChapterBatchPayload{
		JobID:  job.ID.String(),
		BookID: job.BookID.String(),
		UserID: job.UserID.String(),
		Mode:   string(generation.ModeParallel),
		Outline: generation.OutlineInput{
			Title:    "The Salt Road",
			Author:   "A. Writer",
			Chapters: refs,
		},
		ChapterIDs: ids,
	})
	require.NoError(t, err)
	return raw, chapterIDs
}

func pendingChaptersJob() *generation.GenerationJob {
	return &generation.GenerationJob{
		ID:     uuid.New(),
		BookID: uuid.New(),
		UserID: uuid.New(),
		Kind:   generation.KindChapters,
		Status: generation.StatusPending,
	}
}

func TestGenerateChaptersHappyPath(t *testing.T) {
	job := pendingChaptersJob()
	repo := newMemJobRepo(job)
	writer := newMemWriter()
	provider := &scriptedProvider{}
	credits := &noopCredits{}
	h := NewGenerateChaptersHandler(repo, writer, provider, credits, 2)

	raw, chapterIDs := chaptersPayload(t, job, 3)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeGenerateChapters, raw))
	require.NoError(t, err)

	stored, _ := repo.get(job.ID)
	assert.Equal(t, generation.StatusCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, 3, stored.TotalChapters)

	// Every chapter was written and the book flipped to completed.
	for _, id := range chapterIDs {
		assert.Contains(t, writer.saved, id)
	}
	assert.Equal(t, []uuid.UUID{job.BookID}, writer.completed)

	// One credit per chapter.
	assert.True(t, credits.debited.Equal(decimal.NewFromInt(3)),
		"debited %s credits", credits.debited)
}

func TestGenerateChaptersCancelledBetweenBatches(t *testing.T) {
	job := pendingChaptersJob()
	repo := newMemJobRepo(job)
	writer := newMemWriter()
	credits := &noopCredits{}

	// Cancel the job while the first batch is in flight.
	provider := &scriptedProvider{}
	provider.onCall = func(n int) {
		if n == 1 {
			_, _ = repo.Cancel(context.Background(), job.ID)
		}
	}
	h := NewGenerateChaptersHandler(repo, writer, provider, credits, 1)

	raw, _ := chaptersPayload(t, job, 3)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeGenerateChapters, raw))
	require.NoError(t, err)

	stored, _ := repo.get(job.ID)
	assert.Equal(t, generation.StatusCancelled, stored.Status)
	// Only the first batch ran.
	assert.Equal(t, 1, provider.calls)
	assert.Empty(t, writer.completed)
}

func TestGenerateChaptersProviderFailure(t *testing.T) {
	job := pendingChaptersJob()
	repo := newMemJobRepo(job)
	h := NewGenerateChaptersHandler(repo, newMemWriter(), &scriptedProvider{err: assert.AnError}, &noopCredits{}, 2)

	raw, _ := chaptersPayload(t, job, 2)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeGenerateChapters, raw))
	// A failed job must not be retried: the row already says failed.
	require.ErrorIs(t, err, asynq.SkipRetry)

	stored, _ := repo.get(job.ID)
	assert.Equal(t, generation.StatusFailed, stored.Status)
	assert.NotEmpty(t, stored.Error)
}

func TestGenerateChaptersPayloadMismatch(t *testing.T) {
	job := pendingChaptersJob()
	repo := newMemJobRepo(job)
	h := NewGenerateChaptersHandler(repo, newMemWriter(), &scriptedProvider{}, &noopCredits{}, 2)

	raw, err := json.Marshal(generation.ChapterBatchPayload{
		JobID:  job.ID.String(),
		BookID: job.BookID.String(),
		Outline: generation.OutlineInput{
			Title:    "Mismatch",
			Chapters: []generation.OutlineChapterRef{{Number: 1, Title: "Only"}},
		},
		ChapterIDs: nil, // outline has a chapter, ids are empty
	})
	require.NoError(t, err)

	procErr := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeGenerateChapters, raw))
	require.ErrorIs(t, procErr, asynq.SkipRetry)

	stored, _ := repo.get(job.ID)
	assert.Equal(t, generation.StatusFailed, stored.Status)
}

func TestGenerateChaptersSkipsTerminalJob(t *testing.T) {
	job := pendingChaptersJob()
	job.Status = generation.StatusCancelled
	repo := newMemJobRepo(job)
	provider := &scriptedProvider{}
	h := NewGenerateChaptersHandler(repo, newMemWriter(), provider, &noopCredits{}, 2)

	raw, _ := chaptersPayload(t, job, 2)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeGenerateChapters, raw))
	require.NoError(t, err)
	assert.Equal(t, 0, provider.calls)
}
