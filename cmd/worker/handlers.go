package main

import (
	"github.com/hibiken/asynq"

	genJob "powerwrite-backend/internal/domains/generation/job"
	"powerwrite-backend/internal/shared"
	"powerwrite-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Export handlers
	exportVideo *genJob.ExportVideoHandler
	exportAudio *genJob.ExportAudioHandler

	// Generation handlers
	generateChapters *genJob.GenerateChaptersHandler
	cancelJob        *genJob.CancelJobHandler

	// Maintenance handlers
	purgeJobs *genJob.PurgeJobsHandler
	sweepJobs *genJob.SweepStuckJobsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		// Export handlers
		exportVideo: genJob.NewExportVideoHandler(c.JobRepo, c.BookService, c.Storage),
		exportAudio: genJob.NewExportAudioHandler(c.JobRepo, c.BookService, c.Storage),

		// Generation handlers
		generateChapters: genJob.NewGenerateChaptersHandler(
			c.JobRepo,
			c.BookService, // ChapterWriter
			c.AIService,   // ChapterProvider
			c.UserService, // CreditDebiter
			c.Config.Jobs.ChapterBatchSize,
		),
		cancelJob: genJob.NewCancelJobHandler(c.JobRepo),

		// Maintenance handlers
		purgeJobs: genJob.NewPurgeJobsHandler(c.JobRepo),
		sweepJobs: genJob.NewSweepStuckJobsHandler(c.JobRepo),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Export tasks
	mux.HandleFunc(shared.TypeExportVideo, h.exportVideo.ProcessTask)
	mux.HandleFunc(shared.TypeExportAudio, h.exportAudio.ProcessTask)

	// Generation tasks
	mux.HandleFunc(shared.TypeGenerateChapters, h.generateChapters.ProcessTask)
	mux.HandleFunc(shared.TypeCancelJob, h.cancelJob.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypePurgeJobs, h.purgeJobs.ProcessTask)
	mux.HandleFunc(shared.TypeSweepStuckJobs, h.sweepJobs.ProcessTask)
}
