package worker

// email_worker.go
// Processes jobs from QueueEmail: loads the challan PDF and mails it to the
// customer through the SMTP relay, behind the circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"voicechallan/internal/dto"
	"voicechallan/internal/infra"
	"voicechallan/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const emailMaxAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail   string `json:"to_email"`
	ChallanID string `json:"challan_id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// PDFSource loads the rendered document for a challan.
type PDFSource interface {
	PDF(ctx context.Context, id uuid.UUID) (*dto.File, error)
}

// MailSender delivers a single message with one attachment.
type MailSender interface {
	Enabled() bool
	SendChallan(to, subject, body, filename string, pdf []byte) error
}

type EmailWorker struct {
	pdfs    PDFSource
	mailer  MailSender
	cb      *infra.CircuitBreaker
	metrics *metrics.Registry
	backoff func(attempt int) time.Duration
}

// NewEmailWorker wires the email worker. reg may be nil.
func NewEmailWorker(pdfs PDFSource, mailer MailSender, cb *infra.CircuitBreaker, reg *metrics.Registry) *EmailWorker {
	return &EmailWorker{pdfs: pdfs, mailer: mailer, cb: cb, metrics: reg, backoff: exponentialBackoff}
}

// Process sends the challan PDF as an attachment. Transient SMTP failures are
// retried with backoff; an open breaker fails the job straight away.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", ErrPermanent, err)
	}
	if payload.ToEmail == "" {
		log.Warn().Str("challan_id", payload.ChallanID).Msg("email_worker: empty to_email, skipping")
		return nil
	}
	if !w.mailer.Enabled() {
		log.Warn().Str("challan_id", payload.ChallanID).Msg("email_worker: SMTP not configured, dropping job")
		return nil
	}

	id, err := uuid.Parse(payload.ChallanID)
	if err != nil {
		return fmt.Errorf("%w: invalid challan_id %q", ErrPermanent, payload.ChallanID)
	}
	file, err := w.pdfs.PDF(ctx, id)
	if err != nil {
		return fmt.Errorf("load challan pdf: %w", err)
	}

	err = withRetry(ctx, emailMaxAttempts, w.backoff, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.mailer.SendChallan(payload.ToEmail, payload.Subject, payload.Body, file.Filename, file.Data)
		})
		if errors.Is(err, infra.ErrCircuitOpen) {
			return errStopRetry{err}
		}
		if err != nil {
			w.count("retried")
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("challan_id", payload.ChallanID).
				Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		w.count("dead")
		return fmt.Errorf("send challan email: %w", err)
	}

	w.count("sent")
	log.Info().Str("challan_id", payload.ChallanID).Str("to", payload.ToEmail).Msg("email_worker: challan sent")
	return nil
}

func (w *EmailWorker) count(result string) {
	if w.metrics != nil {
		w.metrics.EmailJobs.WithLabelValues(result).Inc()
	}
}

// errStopRetry ends withRetry early and unwraps to the cause.
type errStopRetry struct{ err error }

func (e errStopRetry) Error() string { return e.err.Error() }
func (e errStopRetry) Unwrap() error { return e.err }

// exponentialBackoff: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// withRetry calls fn up to maxAttempts times, sleeping backoff(i) before
// attempt i > 0. Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, backoff func(int) time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(i)):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		var stop errStopRetry
		if errors.As(err, &stop) {
			return stop.err
		}
		lastErr = err
	}
	return lastErr
}
