package worker

// retry_cron.go
// Background goroutine that moves dead email jobs back onto their queue once
// the SMTP circuit breaker is no longer open. Each job is redelivered at most
// MaxRedeliveries times; after that it stays parked for manual inspection.

import (
	"context"
	"errors"
	"time"

	"voicechallan/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MaxRedeliveries   = 3
	retryTickInterval = time.Minute
	retryBatchSize    = 20
)

// RetryCronConfig holds all dependencies for the redelivery goroutine.
type RetryCronConfig struct {
	RDB      *redis.Client
	DLQ      *DeadLetters
	CB       *infra.CircuitBreaker
	Queue    string
	Interval time.Duration
}

// StartRetryCron launches the redelivery loop. It respects the context for
// graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = retryTickInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Str("queue", cfg.Queue).Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				if n := redeliver(ctx, cfg); n > 0 {
					log.Info().Int("count", n).Str("queue", cfg.Queue).Msg("retry_cron: jobs redelivered")
				}
			}
		}
	}()
}

// redeliver requeues up to one batch of eligible entries and returns how many
// were moved. Ineligible entries are parked again.
func redeliver(ctx context.Context, cfg RetryCronConfig) int {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}

	pending, err := cfg.DLQ.Len(ctx, cfg.Queue)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to read DLQ length")
		return 0
	}
	if pending > retryBatchSize {
		pending = retryBatchSize
	}

	moved := 0
	for i := int64(0); i < pending; i++ {
		entry, err := cfg.DLQ.pop(ctx, cfg.Queue)
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: unreadable DLQ entry dropped")
			continue
		}

		if entry.Permanent || entry.Job.Redeliveries >= MaxRedeliveries {
			if err := cfg.DLQ.park(ctx, entry); err != nil {
				log.Error().Err(err).Msg("retry_cron: failed to re-park entry")
			}
			continue
		}

		job := entry.Job
		job.Redeliveries++
		if err := pushJob(ctx, cfg.RDB, entry.OriginalQueue, job); err != nil {
			log.Error().Err(err).Msg("retry_cron: requeue failed")
			_ = cfg.DLQ.park(ctx, entry)
			continue
		}
		moved++
	}
	return moved
}
