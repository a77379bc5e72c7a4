package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobTypeEmail = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	// Redeliveries counts how often the job came back from the DLQ.
	Redeliveries int `json:"redeliveries,omitempty"`
}

// Handler processes one job payload. A returned error moves the job to the
// dead letter queue; handlers retry transient failures themselves.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobTypeEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// DeadLetterSink receives jobs whose handler gave up.
type DeadLetterSink interface {
	Push(ctx context.Context, queue string, job Job, cause error)
}

// Pool consumes the job queues with a fixed number of goroutines. Each one
// blocks on BRPOP, so an idle pool costs no CPU.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	dlq      DeadLetterSink
	queues   []string
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, dlq DeadLetterSink) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]Handler), dlq: dlq}
}

// Register routes jobs of jobType, read from queue, to h.
func (p *Pool) Register(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches numWorkers goroutines; they exit when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if len(p.queues) == 0 {
		log.Warn().Msg("worker pool started without handlers")
		return
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
		}

		// waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.handle(ctx, result[0], result[1])
	}
}

func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: failed to unmarshal job")
		p.dlq.Push(ctx, queue, Job{Type: "unknown", Payload: mustQuote(raw)}, fmt.Errorf("%w: malformed job: %v", ErrPermanent, err))
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		p.dlq.Push(ctx, queue, job, fmt.Errorf("%w: no handler for job type %q", ErrPermanent, job.Type))
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("type", job.Type).Str("queue", queue).Msg("worker: job failed")
		p.dlq.Push(ctx, queue, job, err)
	}
}

// ErrPermanent marks failures that retrying cannot fix, such as a malformed
// payload. Such jobs stay in the DLQ.
var ErrPermanent = errors.New("permanent job failure")

func mustQuote(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}
