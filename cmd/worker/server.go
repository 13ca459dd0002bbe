package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"powerwrite-backend/internal/shared"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(cfg *Config, handlers *HandlerRegistry) *asynqServer {
	// Create ServeMux
	mux := asynq.NewServeMux()

	// Register all handlers
	handlers.RegisterHandlers(mux)

	// Create server with configuration. Exports are heavy and get the
	// most slots; maintenance work never starves generation.
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueExports:    6,
				shared.QueueGeneration: 3,
				shared.QueueDefault:    1,
			},
			Concurrency: cfg.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] ❌ Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	// Start server in goroutine
	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown gracefully shuts down the server with timeout
func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down (waiting max 30s)...")

	if shutdownWithTimeout(s.Server.Shutdown, 30*time.Second) {
		log.Println("[Worker] ✓ Gracefully stopped")
	} else {
		log.Println("[Worker] ⚠️ Shutdown timeout exceeded")
	}
}

// shutdownWithTimeout runs stop and reports whether it returned within d.
// asynq's Shutdown blocks until in-flight tasks finish, which can be a
// long time with long task timeouts.
func shutdownWithTimeout(stop func(), d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
