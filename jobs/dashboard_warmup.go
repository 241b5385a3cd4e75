package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/servicedesk/servicedesk/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardWarmer refreshes the cached dashboard feed.
type DashboardWarmer interface {
	Warm(ctx context.Context) error
}

// DashboardWarmupJob pre-populates the dashboard cache so the first visitor
// of the day does not pay for the aggregate queries.
type DashboardWarmupJob struct {
	Dashboard DashboardWarmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboard DashboardWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: dashboard,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskDashboardWarmup)
	defer func() {
		err = tracker.End(err)
	}()

	logger := jobLogger(j.Logger, TaskDashboardWarmup).With(slog.String("reason", payload.Reason))
	start := j.now()

	warmCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err = j.Dashboard.Warm(warmCtx); err != nil {
		logger.Error("warm dashboard", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard warmed", slog.Duration("duration", j.now().Sub(start)))
	return nil
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger != nil {
		return logger.With(slog.String("job", job))
	}
	return slog.Default().With(slog.String("job", job))
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
