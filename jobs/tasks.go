package jobs

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueImports carries GRC CSV imports so large files do not starve warmups.
	QueueImports = "imports"

	// TaskDashboardWarmup rebuilds the cached dashboard feed.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskGRCImport applies a GRC CSV file the same way the upload page does.
	TaskGRCImport = "grc:import"
	// TaskIdempotencyCleanup prunes expired Idempotency-Key records.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// ErrEmptyImport is returned when an import task carries no CSV content.
var ErrEmptyImport = errors.New("jobs: grc import has no content")

// DashboardWarmupPayload describes a warmup request.
type DashboardWarmupPayload struct {
	Reason string `json:"reason"`
}

// GRCImportPayload carries a GRC CSV file. Content travels inline so the
// worker does not need access to the submitter's filesystem.
type GRCImportPayload struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
	ActorID  int64  `json:"actor_id"`
}

// NewDashboardWarmupTask constructs a warmup task.
func NewDashboardWarmupTask(reason string) (*asynq.Task, error) {
	if reason == "" {
		reason = "scheduled"
	}
	data, err := json.Marshal(DashboardWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data, asynq.Timeout(2*time.Minute)), nil
}

// IdempotencyCleanupPayload sets how long keys are retained.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: int(retention / time.Hour)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// NewGRCImportTask constructs an import task.
func NewGRCImportTask(payload GRCImportPayload) (*asynq.Task, error) {
	if len(payload.Content) == 0 {
		return nil, ErrEmptyImport
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGRCImport, data, asynq.Queue(QueueImports), asynq.MaxRetry(1), asynq.Timeout(10*time.Minute)), nil
}
