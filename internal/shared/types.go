package shared

// Asynq task types. Namespaced by domain: <domain>:<action>.
const (
	TypeExportVideo      = "export:video"
	TypeExportAudio      = "export:audio"
	TypeGenerateChapters = "generate:chapters"
	TypeCancelJob        = "job:cancel"
	TypePurgeJobs        = "job:purge_terminal"
	TypeSweepStuckJobs   = "job:sweep_stuck"
)

// Queue names. Export work is heavy and isolated from quick tasks.
const (
	QueueExports    = "exports"
	QueueGeneration = "generation"
	QueueDefault    = "default"
)

// JobTaskPayload is the common payload for job-scoped tasks.
type JobTaskPayload struct {
	JobID string `json:"job_id"`
}

// CancelJobPayload asks the worker to stop a running job. Best-effort:
// the authoritative cancellation is the status row update.
type CancelJobPayload struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason,omitempty"`
}

// PurgeJobsPayload drives the scheduled terminal-job purge.
type PurgeJobsPayload struct {
	RetentionDays int `json:"retention_days"`
}

// Actor is the resolved acting user for a request: either the
// authenticated user or the shared demo account. Passed explicitly
// through handlers and services, never read from a global.
type Actor struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Tier   string `json:"tier"`
	IsDemo bool   `json:"is_demo"`
}

// IsPro reports whether the actor has the pro entitlement.
func (a Actor) IsPro() bool {
	return a.Tier == "pro"
}
