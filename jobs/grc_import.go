package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/servicedesk/servicedesk/internal/grc"
	jobmetrics "github.com/servicedesk/servicedesk/internal/jobs"
)

// GRCImporter applies an uploaded GRC CSV.
type GRCImporter interface {
	Upload(ctx context.Context, r io.Reader, actorID int64) (grc.UploadResult, error)
}

// GRCImportJob runs GRC CSV imports submitted through the queue.
type GRCImportJob struct {
	Importer GRCImporter
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewGRCImportJob wires dependencies for the import handler.
func NewGRCImportJob(importer GRCImporter, logger *slog.Logger, metrics *jobmetrics.Metrics) *GRCImportJob {
	return &GRCImportJob{Importer: importer, Logger: logger, Metrics: metrics}
}

// Handle processes GRC import tasks. Malformed files are not retried.
func (j *GRCImportJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Importer == nil {
		return errors.New("grc import: handler not configured")
	}
	var payload GRCImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Content) == 0 {
		return fmt.Errorf("%w: %w", ErrEmptyImport, asynq.SkipRetry)
	}

	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskGRCImport)
	defer func() {
		err = tracker.End(err)
	}()

	logger := jobLogger(j.Logger, TaskGRCImport).With(
		slog.String("filename", payload.Filename),
		slog.Int64("actor_id", payload.ActorID),
	)

	result, err := j.Importer.Upload(ctx, bytes.NewReader(payload.Content), payload.ActorID)
	if err != nil {
		var uploadErr *grc.UploadError
		if errors.As(err, &uploadErr) || errors.Is(err, grc.ErrEmptyUpload) {
			logger.Warn("grc import rejected", slog.Any("error", err))
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		logger.Error("grc import", slog.Any("error", err))
		return err
	}
	metrics.AddRows(TaskGRCImport, "inserted", result.Inserted)
	metrics.AddRows(TaskGRCImport, "updated", result.Updated)
	logger.Info("grc import applied",
		slog.String("batch_id", result.BatchID),
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
	)
	return nil
}
