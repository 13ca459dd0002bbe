package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/domains/user"
	"powerwrite-backend/internal/shared"
)

// Enqueuer is the slice of asynq.Client the services need. Kept as an
// interface so tests can fake the queue.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService implements generation.JobService.
type JobService struct {
	jobs      generation.Repository
	users     user.Repository
	enqueuer  Enqueuer
	artifacts generation.ArtifactCleaner
}

func NewJobService(jobs generation.Repository, users user.Repository, enqueuer Enqueuer, artifacts generation.ArtifactCleaner) generation.JobService {
	return &JobService{
		jobs:      jobs,
		users:     users,
		enqueuer:  enqueuer,
		artifacts: artifacts,
	}
}

func (s *JobService) GetJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*generation.GenerationJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, actor, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) CancelOrDelete(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (string, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}

	if err := s.authorize(ctx, actor, job); err != nil {
		return "", err
	}

	// Terminal jobs are removed outright; running jobs are cancelled.
	if job.Status.IsTerminal() {
		if err := s.jobs.Delete(ctx, jobID); err != nil {
			return "", err
		}
		// Drop the stored artifact with the row. Best-effort: an orphan
		// object is harmless.
		if key := job.ArtifactKey(); key != "" {
			if err := s.artifacts.Delete(ctx, key); err != nil {
				log.Printf("[JobService] Artifact cleanup failed for job %s: %v", jobID, err)
			}
		}
		return "Job deleted", nil
	}

	// Tell the worker first so it stops between stages. Best-effort:
	// the status row is the authoritative cancellation signal.
	payload, _ := json.Marshal(shared.CancelJobPayload{JobID: jobID.String(), Reason: "user requested"})
	task := asynq.NewTask(shared.TypeCancelJob, payload)
	if _, err := s.enqueuer.EnqueueContext(ctx, task, asynq.Queue(shared.QueueDefault)); err != nil {
		log.Printf("[JobService] Failed to enqueue cancel notification for job %s: %v", jobID, err)
	}

	if _, err := s.jobs.Cancel(ctx, jobID); err != nil {
		return "", err
	}
	return "Job cancelled", nil
}

// authorize applies the job visibility policy: the owner always, any
// pro actor, and everyone for jobs owned by the demo account. The demo
// exception is a deliberate shared-playground policy.
func (s *JobService) authorize(ctx context.Context, actor shared.Actor, job *generation.GenerationJob) error {
	if actor.ID == job.UserID.String() {
		return nil
	}
	if actor.IsPro() {
		return nil
	}

	owner, err := s.users.GetByID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("resolve job owner: %w", err)
	}
	if owner.IsDemo {
		return nil
	}

	return generation.ErrJobAccessDenied
}
