package app

import (
	"context"
	"errors"
	"time"

	"payment_reminder_bot/internal/domain/messaging"
	"payment_reminder_bot/internal/domain/reminder"
	"payment_reminder_bot/internal/domain/settings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var errBatchCancelled = errors.New("batch cancelled")

// DispatcherConfig holds the pacing of a bulk run.
type DispatcherConfig struct {
	InterMessageDelay time.Duration // wait before every target except the first
	RateLimitCooldown time.Duration // wait before re-sending a rate-limited target
	RateLimitRetries  int           // re-sends of a rate-limited target
	TransientCooldown time.Duration // wait after a non-fatal failure
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		InterMessageDelay: 15 * time.Second,
		RateLimitCooldown: 60 * time.Second,
		RateLimitRetries:  1,
		TransientCooldown: 2 * time.Second,
	}
}

// Dispatcher sends reminder targets one at a time through a messaging.Sender.
type Dispatcher struct {
	sender messaging.Sender
	cfg    DispatcherConfig
	logger *logrus.Entry
	now    func() time.Time
	wait   func(ctx context.Context, token *reminder.CancelToken, d time.Duration) error
}

func NewDispatcher(sender messaging.Sender, cfg DispatcherConfig, logger *logrus.Entry) *Dispatcher {
	if cfg.RateLimitRetries < 0 {
		cfg.RateLimitRetries = 0
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		wait:   waitOrCancel,
	}
}

// DispatchBatch sends every target in order, never two at once. The settings
// snapshot is validated first; a validation error means nothing was sent.
// The token is checked between targets only, so a send already in flight
// completes and is counted. An empty batchID gets a generated one.
func (d *Dispatcher) DispatchBatch(ctx context.Context, batchID string, targets []reminder.Target, s settings.Settings, token *reminder.CancelToken) (reminder.BatchResult, error) {
	if batchID == "" {
		batchID = uuid.NewString()
	}
	result := reminder.BatchResult{
		ID:        batchID,
		Total:     len(targets),
		State:     reminder.StateIdle,
		StartedAt: d.now(),
	}
	if err := s.Validate(); err != nil {
		result.FinishedAt = result.StartedAt
		return result, messaging.NewValidationError(err)
	}

	log := d.logger.WithFields(logrus.Fields{"batch_id": batchID, "targets": len(targets)})
	log.Info("Batch started")
	result.State = reminder.StateRunning

	for i, t := range targets {
		if i > 0 {
			if err := d.wait(ctx, token, d.cfg.InterMessageDelay); err != nil {
				result.State = reminder.StateCancelled
				break
			}
		}
		if token.Cancelled() || ctx.Err() != nil {
			result.State = reminder.StateCancelled
			break
		}

		targetLog := log.WithFields(logrus.Fields{
			"target":        i + 1,
			"obligation_id": t.Obligation.ID,
			"customer":      t.Obligation.CustomerName,
		})
		err := d.deliver(ctx, t, s, token, targetLog)
		if err == nil {
			result.Succeeded++
			targetLog.Info("Reminder sent")
			continue
		}

		result.Failed++
		result.Failures = append(result.Failures, reminder.Failure{Target: t, Reason: err.Error()})
		if messaging.IsFatal(err) {
			targetLog.WithError(err).Error("Fatal gateway error, aborting batch")
			result.State = reminder.StateAbortedFatal
			break
		}
		targetLog.WithError(err).Warn("Reminder failed, continuing with next target")
		if i < len(targets)-1 {
			if err := d.wait(ctx, token, d.cfg.TransientCooldown); err != nil {
				result.State = reminder.StateCancelled
				break
			}
		}
	}

	if result.State == reminder.StateRunning {
		result.State = reminder.StateCompleted
	}
	result.FinishedAt = d.now()
	log.WithFields(logrus.Fields{
		"state":     result.State,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"skipped":   result.Skipped(),
	}).Info("Batch finished")
	return result, nil
}

// SendOne delivers a single target with the same rate-limit handling as a batch.
func (d *Dispatcher) SendOne(ctx context.Context, t reminder.Target, s settings.Settings) error {
	if err := s.Validate(); err != nil {
		return messaging.NewValidationError(err)
	}
	log := d.logger.WithFields(logrus.Fields{
		"obligation_id": t.Obligation.ID,
		"customer":      t.Obligation.CustomerName,
	})
	if err := d.deliver(ctx, t, s, nil, log); err != nil {
		log.WithError(err).Warn("Single reminder failed")
		return err
	}
	log.Info("Single reminder sent")
	return nil
}

// deliver sends one target, re-sending it after a cooldown while the gateway
// keeps answering with a rate limit.
func (d *Dispatcher) deliver(ctx context.Context, t reminder.Target, s settings.Settings, token *reminder.CancelToken, log *logrus.Entry) error {
	text := t.Text(s.Language)
	for attempt := 0; ; attempt++ {
		err := d.sender.Send(ctx, s, t.Recipient, text)
		if err == nil || !messaging.IsRateLimited(err) || attempt >= d.cfg.RateLimitRetries {
			return err
		}
		log.WithFields(logrus.Fields{
			"attempt":  attempt + 1,
			"cooldown": d.cfg.RateLimitCooldown.String(),
		}).Warn("Gateway rate limited, cooling down before retrying target")
		if werr := d.wait(ctx, token, d.cfg.RateLimitCooldown); werr != nil {
			return err
		}
	}
}

// waitOrCancel sleeps for dur unless ctx ends or the token fires first.
func waitOrCancel(ctx context.Context, token *reminder.CancelToken, dur time.Duration) error {
	if token.Cancelled() {
		return errBatchCancelled
	}
	if dur <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return errBatchCancelled
	case <-timer.C:
		return nil
	}
}
