package worker

// dlq.go: dead letter queue
// Jobs whose handler gave up are parked here for inspection and later
// redelivery. One Redis list per source queue: dlq:{original_queue}

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string `json:"original_queue"`
	Job           Job    `json:"job"`
	Reason        string `json:"reason"`
	// Permanent entries are never redelivered.
	Permanent bool   `json:"permanent,omitempty"`
	FailedAt  string `json:"failed_at"` // RFC 3339
}

type DeadLetters struct {
	rdb *redis.Client
	now func() time.Time
}

func NewDeadLetters(rdb *redis.Client) *DeadLetters {
	return &DeadLetters{rdb: rdb, now: time.Now}
}

// Push parks a failed job. Errors are logged; a lost DLQ entry must not
// crash the worker.
func (d *DeadLetters) Push(ctx context.Context, queue string, job Job, cause error) {
	entry := DLQEntry{
		OriginalQueue: queue,
		Job:           job,
		Reason:        cause.Error(),
		Permanent:     errors.Is(cause, ErrPermanent),
		FailedAt:      d.now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := d.rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", entry.Reason).
		Bool("permanent", entry.Permanent).
		Int("redeliveries", job.Redeliveries).
		Msg("dlq: job moved to dead letter queue")
}

// Len returns the number of parked entries for monitoring.
func (d *DeadLetters) Len(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// pop removes the oldest parked entry, or returns redis.Nil when empty.
func (d *DeadLetters) pop(ctx context.Context, queue string) (*DLQEntry, error) {
	raw, err := d.rdb.RPop(ctx, DLQPrefix+queue).Bytes()
	if err != nil {
		return nil, err
	}
	var entry DLQEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// park puts an entry back at the head of the DLQ without touching it.
func (d *DeadLetters) park(ctx context.Context, entry *DLQEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, DLQPrefix+entry.OriginalQueue, data).Err()
}
