package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/domains/user"
	"powerwrite-backend/internal/shared"
)

type fakeJobRepo struct {
	jobs      map[uuid.UUID]*generation.GenerationJob
	cancelled []uuid.UUID
	deleted   []uuid.UUID
}

func newFakeJobRepo(jobs ...*generation.GenerationJob) *fakeJobRepo {
	m := make(map[uuid.UUID]*generation.GenerationJob)
	for _, j := range jobs {
		m[j.ID] = j
	}
	return &fakeJobRepo{jobs: m}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *generation.GenerationJob) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*generation.GenerationJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, generation.ErrJobNotFound
	}
	return j, nil
}

func (f *fakeJobRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to generation.JobStatus) error {
	j, ok := f.jobs[id]
	if !ok {
		return generation.ErrJobNotFound
	}
	if j.Status != from {
		return generation.ErrStatusConflict
	}
	j.Status = to
	return nil
}

func (f *fakeJobRepo) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	j, ok := f.jobs[id]
	if !ok {
		return false, generation.ErrJobNotFound
	}
	if j.Status.IsTerminal() {
		return false, nil
	}
	j.Status = generation.StatusCancelled
	f.cancelled = append(f.cancelled, id)
	return true, nil
}

func (f *fakeJobRepo) UpdateProgress(ctx context.Context, id uuid.UUID, p generation.ProgressUpdate) error {
	return nil
}

func (f *fakeJobRepo) SetOutput(ctx context.Context, id uuid.UUID, url string) error { return nil }

func (f *fakeJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return nil
}

func (f *fakeJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.jobs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeJobRepo) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeJobRepo) ListStuckPending(ctx context.Context, olderThan time.Duration) ([]generation.GenerationJob, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*user.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}
func (f *fakeUserRepo) GetDemoUser(ctx context.Context) (*user.User, error) {
	return nil, user.ErrUserNotFound
}
func (f *fakeUserRepo) UpdateTier(ctx context.Context, id uuid.UUID, tier user.Tier) error {
	return nil
}
func (f *fakeUserRepo) DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type fakeCleaner struct {
	deleted  []string
	prefixes []string
}

func (f *fakeCleaner) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeCleaner) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	return nil
}

func newTestJob(ownerID uuid.UUID, status generation.JobStatus) *generation.GenerationJob {
	return &generation.GenerationJob{
		ID:     uuid.New(),
		BookID: uuid.New(),
		UserID: ownerID,
		Kind:   generation.KindVideo,
		Status: status,
	}
}

func TestJobServiceAuthorization(t *testing.T) {
	ownerID := uuid.New()
	demoID := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*user.User{
		ownerID: {ID: ownerID, Tier: user.TierFree},
		demoID:  {ID: demoID, Tier: user.TierFree, IsDemo: true},
	}}

	ownJob := newTestJob(ownerID, generation.StatusRendering)
	demoJob := newTestJob(demoID, generation.StatusRendering)
	repo := newFakeJobRepo(ownJob, demoJob)
	svc := NewJobService(repo, users, &fakeEnqueuer{}, &fakeCleaner{})

	tests := []struct {
		name    string
		actor   shared.Actor
		jobID   uuid.UUID
		wantErr error
	}{
		{"owner reads own job", shared.Actor{ID: ownerID.String(), Tier: "free"}, ownJob.ID, nil},
		{"pro reads any job", shared.Actor{ID: uuid.NewString(), Tier: "pro"}, ownJob.ID, nil},
		{"free stranger is denied", shared.Actor{ID: uuid.NewString(), Tier: "free"}, ownJob.ID, generation.ErrJobAccessDenied},
		{"anyone reads a demo-owned job", shared.Actor{ID: uuid.NewString(), Tier: "free"}, demoJob.ID, nil},
		{"unknown job", shared.Actor{ID: ownerID.String(), Tier: "free"}, uuid.New(), generation.ErrJobNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetJob(context.Background(), tt.actor, tt.jobID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelOrDelete(t *testing.T) {
	ownerID := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*user.User{
		ownerID: {ID: ownerID, Tier: user.TierFree},
	}}
	actor := shared.Actor{ID: ownerID.String(), Tier: "free"}

	t.Run("running job is cancelled, not deleted", func(t *testing.T) {
		job := newTestJob(ownerID, generation.StatusRendering)
		repo := newFakeJobRepo(job)
		enq := &fakeEnqueuer{}
		svc := NewJobService(repo, users, enq, &fakeCleaner{})

		msg, err := svc.CancelOrDelete(context.Background(), actor, job.ID)
		require.NoError(t, err)

		assert.Equal(t, "Job cancelled", msg)
		assert.Equal(t, generation.StatusCancelled, job.Status)
		assert.Empty(t, repo.deleted)
		// The worker was notified.
		require.Len(t, enq.tasks, 1)
		assert.Equal(t, shared.TypeCancelJob, enq.tasks[0].Type())
	})

	t.Run("terminal job is deleted outright", func(t *testing.T) {
		job := newTestJob(ownerID, generation.StatusCompleted)
		repo := newFakeJobRepo(job)
		enq := &fakeEnqueuer{}
		cleaner := &fakeCleaner{}
		svc := NewJobService(repo, users, enq, cleaner)

		msg, err := svc.CancelOrDelete(context.Background(), actor, job.ID)
		require.NoError(t, err)

		assert.Equal(t, "Job deleted", msg)
		assert.Equal(t, []uuid.UUID{job.ID}, repo.deleted)
		assert.Empty(t, enq.tasks)
		// The stored artifact goes with the row.
		assert.Equal(t, []string{"exports/video/" + job.ID.String() + ".vtt"}, cleaner.deleted)
	})

	t.Run("enqueue failure does not block cancellation", func(t *testing.T) {
		job := newTestJob(ownerID, generation.StatusPending)
		repo := newFakeJobRepo(job)
		svc := NewJobService(repo, users, &fakeEnqueuer{err: assert.AnError}, &fakeCleaner{})

		msg, err := svc.CancelOrDelete(context.Background(), actor, job.ID)
		require.NoError(t, err)

		assert.Equal(t, "Job cancelled", msg)
		assert.Equal(t, generation.StatusCancelled, job.Status)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		job := newTestJob(ownerID, generation.StatusRendering)
		repo := newFakeJobRepo(job)
		svc := NewJobService(repo, users, &fakeEnqueuer{}, &fakeCleaner{})

		stranger := shared.Actor{ID: uuid.NewString(), Tier: "free"}
		_, err := svc.CancelOrDelete(context.Background(), stranger, job.ID)
		assert.ErrorIs(t, err, generation.ErrJobAccessDenied)
	})
}
