package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment_reminder_bot/internal/app"
	"payment_reminder_bot/internal/domain/reminder"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// BulkRunner runs one bulk reminder batch to completion.
type BulkRunner interface {
	RunBulk(ctx context.Context) (reminder.BatchResult, error)
}

// ReminderScheduler triggers the daily bulk reminder run.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	runner     BulkRunner
	logger     *logrus.Entry
	cronSpec   string
	jobTimeout time.Duration
	baseCtx    context.Context
}

func NewReminderScheduler(
	baseCtx context.Context,
	runner BulkRunner,
	logger *logrus.Entry,
	loc *time.Location,
	cronSpec string, // e.g. "0 10 * * *" (10:00 daily)
	jobTimeout time.Duration,
) *ReminderScheduler {
	if loc == nil {
		loc = time.Local
	}
	cronLogger := cron.PrintfLogger(logger)
	return &ReminderScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner:     runner,
		logger:     logger,
		cronSpec:   cronSpec,
		jobTimeout: jobTimeout,
		baseCtx:    baseCtx,
	}
}

// Start registers the daily job and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.runDaily); err != nil {
		return fmt.Errorf("could not add daily reminder cron job %q: %w", s.cronSpec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderScheduler) runDaily() {
	s.logger.Info("Cron job triggered for daily reminders")
	ctx := s.baseCtx
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	res, err := s.runner.RunBulk(ctx)
	switch {
	case errors.Is(err, app.ErrNoTargets):
		s.logger.Info("No eligible reminders today")
	case errors.Is(err, app.ErrBatchAlreadyRunning):
		s.logger.Warn("Skipping scheduled run, a batch is already running")
	case err != nil:
		s.logger.WithError(err).Error("Scheduled reminder run failed")
	default:
		s.logger.WithFields(logrus.Fields{
			"batch_id":  res.ID,
			"state":     res.State,
			"succeeded": res.Succeeded,
			"failed":    res.Failed,
		}).Info("Scheduled reminder run finished")
	}
}

// Stop stops the engine and waits for a running job to return.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
