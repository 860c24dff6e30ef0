package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/metrics"
	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// RewardApplier applies a reward or penalty job to user stats.
type RewardApplier interface {
	Apply(ctx context.Context, job models.RewardJob) error
}

// RewardWorker applies stats updates off the request path from a bounded queue.
type RewardWorker struct {
	applier RewardApplier
	jobs    chan models.RewardJob
	timeout time.Duration
}

// NewRewardWorker constructs a RewardWorker holding up to queueSize pending jobs.
func NewRewardWorker(applier RewardApplier, queueSize int, timeout time.Duration) *RewardWorker {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &RewardWorker{
		applier: applier,
		jobs:    make(chan models.RewardJob, queueSize),
		timeout: timeout,
	}
}

// Enqueue queues job without blocking. It returns false and drops the job when the queue is full.
func (w *RewardWorker) Enqueue(job models.RewardJob) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		metrics.RewardJobsTotal.WithLabelValues(string(job.Kind), "dropped").Inc()
		log.Warn().
			Str("kind", string(job.Kind)).
			Str("user_id", job.UserID).
			Msg("Reward queue full, dropping job")
		return false
	}
}

// Start processes jobs until ctx is cancelled. Jobs still queued at that point are discarded.
func (w *RewardWorker) Start(ctx context.Context) {
	log.Info().Int("queue_size", cap(w.jobs)).Msg("Starting reward worker")

	for {
		select {
		case <-ctx.Done():
			log.Info().Int("discarded", len(w.jobs)).Msg("Reward worker stopped")
			return
		case job := <-w.jobs:
			w.run(ctx, job)
		}
	}
}

func (w *RewardWorker) run(ctx context.Context, job models.RewardJob) {
	jobCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.RewardJobsTotal.WithLabelValues(string(job.Kind), "failed").Inc()
			log.Error().Interface("panic", r).Str("user_id", job.UserID).Msg("Reward job panicked")
		}
	}()

	if err := w.applier.Apply(jobCtx, job); err != nil {
		metrics.RewardJobsTotal.WithLabelValues(string(job.Kind), "failed").Inc()
		log.Error().
			Err(err).
			Str("kind", string(job.Kind)).
			Str("user_id", job.UserID).
			Msg("Failed to apply reward job")
		return
	}
	metrics.RewardJobsTotal.WithLabelValues(string(job.Kind), "success").Inc()
	log.Debug().Str("kind", string(job.Kind)).Str("user_id", job.UserID).Msg("Reward job applied")
}
