package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"powerwrite-backend/internal/config"
	"powerwrite-backend/internal/shared"
	"powerwrite-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	if err := s.registerPurgeTerminalJobsJob(); err != nil {
		return err
	}

	if err := s.registerSweepStuckJobsJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Purge Terminal Jobs (Daily at 3 AM)
// ================================================
// Low traffic time. Terminal jobs older than the retention window are
// dead weight: the client stops polling minutes after completion.
func (s *Scheduler) registerPurgeTerminalJobsJob() error {
	payload, err := json.Marshal(shared.PurgeJobsPayload{
		RetentionDays: s.jobConfig.TerminalRetentionDays,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePurgeJobs, payload)

	_, err = s.scheduler.Register(
		"0 3 * * *", // Daily at 3 AM
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register PurgeTerminalJobs job", err)
		return err
	}

	logger.Info("✓ Registered PurgeTerminalJobs: daily at 3 AM", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Sweep Stuck Jobs (Hourly)
// ================================================
// A pending job whose queue task vanished (worker crash, Redis flush)
// would stay pending forever. The hourly sweep fails it so the client
// sees a terminal answer.
func (s *Scheduler) registerSweepStuckJobsJob() error {
	task := asynq.NewTask(shared.TypeSweepStuckJobs, nil)

	_, err := s.scheduler.Register(
		"0 * * * *", // Hourly at minute 0
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register SweepStuckJobs job", err)
		return err
	}

	logger.Info("✓ Registered SweepStuckJobs: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
