package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"payment_reminder_bot/internal/domain/customer"
	"payment_reminder_bot/internal/domain/obligation"
	"payment_reminder_bot/internal/domain/reminder"
	"payment_reminder_bot/internal/domain/settings"
	domainTelegram "payment_reminder_bot/internal/domain/telegram"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrBatchAlreadyRunning = errors.New("a reminder batch is already running")
	ErrNoBatchRunning      = errors.New("no reminder batch is running")
	ErrNoTargets           = errors.New("no eligible reminders to send")
	ErrObligationNotFound  = errors.New("obligation is not eligible for a reminder")
	ErrNoRecipient         = errors.New("no recipient phone number")
)

// TestMessage is sent by TestGateway.
const TestMessage = "Test message from the payment reminder bot. If you received this, the gateway settings work."

// gatewayKeys are the settings keys whose absence means the table was never initialized.
var gatewayKeys = []string{settings.KeyGatewayEnabled, settings.KeyGatewayURL, settings.KeyAPIKey, settings.KeySenderNumber}

type runningBatch struct {
	id        string
	token     *reminder.CancelToken
	startedAt time.Time
}

// ReminderService is the operator-facing entry point: it resolves eligible
// obligations, runs at most one bulk batch at a time and manages settings.
type ReminderService struct {
	resolver     *ObligationResolver
	dispatcher   *Dispatcher
	customerRepo customer.Repository
	settingsRepo settings.Repository
	notifier     domainTelegram.Client
	operatorIDs  []int64
	logger       *logrus.Entry
	now          func() time.Time

	mu      sync.Mutex
	running *runningBatch
	last    *reminder.BatchResult
	done    chan struct{} // closed when the running batch finishes
}

func NewReminderService(
	resolver *ObligationResolver,
	dispatcher *Dispatcher,
	customerRepo customer.Repository,
	settingsRepo settings.Repository,
	notifier domainTelegram.Client,
	operatorIDs []int64,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		resolver:     resolver,
		dispatcher:   dispatcher,
		customerRepo: customerRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
		operatorIDs:  operatorIDs,
		logger:       logger,
		now:          time.Now,
	}
}

// LoadSettings reads the settings table. When none of the gateway keys exist
// yet the defaults are written first.
func (s *ReminderService) LoadSettings(ctx context.Context) (settings.Settings, error) {
	values, err := s.settingsRepo.Get(ctx, settings.Keys)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	initialized := false
	for _, k := range gatewayKeys {
		if _, ok := values[k]; ok {
			initialized = true
			break
		}
	}
	if !initialized {
		s.logger.Info("Settings table has no gateway keys, writing defaults")
		if err := s.settingsRepo.Upsert(ctx, settings.Defaults().ToMap()); err != nil {
			return settings.Settings{}, fmt.Errorf("failed to write default settings: %w", err)
		}
	}
	return settings.FromMap(values), nil
}

func (s *ReminderService) SaveSettings(ctx context.Context, st settings.Settings) error {
	if err := s.settingsRepo.Upsert(ctx, st.ToMap()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"enabled":     st.Enabled,
		"gateway_url": st.GatewayURL,
		"window_days": st.ReminderWindowDays,
		"language":    st.Language,
	}).Info("Settings saved")
	return nil
}

// UpdateSetting changes one key and saves the result.
func (s *ReminderService) UpdateSetting(ctx context.Context, key, value string) (settings.Settings, error) {
	current, err := s.LoadSettings(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	updated, err := current.With(key, value)
	if err != nil {
		return current, err
	}
	if err := s.SaveSettings(ctx, updated); err != nil {
		return current, err
	}
	return updated, nil
}

// ListEligible returns the obligations a bulk run would remind right now.
func (s *ReminderService) ListEligible(ctx context.Context) ([]obligation.Obligation, error) {
	st, err := s.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	return s.eligible(ctx, st)
}

func (s *ReminderService) eligible(ctx context.Context, st settings.Settings) ([]obligation.Obligation, error) {
	obs, err := s.resolver.Resolve(ctx, s.now(), st.ReminderWindowDays)
	if err != nil {
		return nil, err
	}
	for i := range obs {
		if obs[i].Currency == "" {
			obs[i].Currency = st.Currency
		}
	}
	return obs, nil
}

func (s *ReminderService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// PreviewMessage renders the default text for one eligible obligation.
func (s *ReminderService) PreviewMessage(ctx context.Context, obligationID string) (reminder.Target, string, error) {
	st, err := s.LoadSettings(ctx)
	if err != nil {
		return reminder.Target{}, "", err
	}
	t, err := s.findTarget(ctx, st, obligationID)
	if err != nil {
		return reminder.Target{}, "", err
	}
	return t, t.Text(st.Language), nil
}

// SendReminder sends the reminder for one eligible obligation. A non-empty
// text replaces the rendered template.
func (s *ReminderService) SendReminder(ctx context.Context, obligationID, text string) (reminder.Target, error) {
	st, err := s.LoadSettings(ctx)
	if err != nil {
		return reminder.Target{}, err
	}
	t, err := s.findTarget(ctx, st, obligationID)
	if err != nil {
		return reminder.Target{}, err
	}
	t.MessageOverride = strings.TrimSpace(text)
	return t, s.dispatcher.SendOne(ctx, t, st)
}

// SendSingle sends one prepared target with the current settings.
func (s *ReminderService) SendSingle(ctx context.Context, t reminder.Target) error {
	st, err := s.LoadSettings(ctx)
	if err != nil {
		return err
	}
	return s.dispatcher.SendOne(ctx, t, st)
}

// SendToCustomer sends free-form text to a stored customer, or to number when
// customerID is empty.
func (s *ReminderService) SendToCustomer(ctx context.Context, customerID, number, text string) error {
	recipient := strings.TrimSpace(number)
	t := reminder.Target{MessageOverride: strings.TrimSpace(text)}
	if customerID != "" {
		c, err := s.customerRepo.GetByID(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to get customer %s: %w", customerID, err)
		}
		recipient = c.ContactNumber()
		t.Obligation = obligation.Obligation{CustomerID: c.ID, CustomerName: c.Name, CustomerPhone: recipient}
	}
	if recipient == "" {
		return ErrNoRecipient
	}
	t.Recipient = recipient
	return s.SendSingle(ctx, t)
}

// TestGateway sends TestMessage to recipient with the stored settings.
func (s *ReminderService) TestGateway(ctx context.Context, recipient string) error {
	if strings.TrimSpace(recipient) == "" {
		return ErrNoRecipient
	}
	return s.SendSingle(ctx, reminder.Target{Recipient: recipient, MessageOverride: TestMessage})
}

// StartBulk resolves the eligible obligations and dispatches them in the
// background. The batch lives as long as ctx. It returns the batch id.
func (s *ReminderService) StartBulk(ctx context.Context) (string, error) {
	run, st, targets, err := s.prepareBulk(ctx)
	if err != nil {
		return "", err
	}
	go s.executeBulk(ctx, run, st, targets)
	return run.id, nil
}

// RunBulk is the synchronous form of StartBulk.
func (s *ReminderService) RunBulk(ctx context.Context) (reminder.BatchResult, error) {
	run, st, targets, err := s.prepareBulk(ctx)
	if err != nil {
		return reminder.BatchResult{}, err
	}
	return s.executeBulk(ctx, run, st, targets), nil
}

// CancelBulk asks the running batch to stop before its next target.
func (s *ReminderService) CancelBulk() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		return "", ErrNoBatchRunning
	}
	s.running.token.Cancel()
	s.logger.WithField("batch_id", s.running.id).Info("Batch cancellation requested")
	return s.running.id, nil
}

// Running returns the id and start time of the running batch.
func (s *ReminderService) Running() (string, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		return "", time.Time{}, false
	}
	return s.running.id, s.running.startedAt, true
}

// LastResult returns the result of the most recently finished batch.
func (s *ReminderService) LastResult() (reminder.BatchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return reminder.BatchResult{}, false
	}
	return *s.last, true
}

// Wait blocks until the running batch, if any, has finished or ctx ends.
func (s *ReminderService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReminderService) prepareBulk(ctx context.Context) (*runningBatch, settings.Settings, []reminder.Target, error) {
	s.mu.Lock()
	if s.running != nil {
		s.mu.Unlock()
		return nil, settings.Settings{}, nil, ErrBatchAlreadyRunning
	}
	run := &runningBatch{id: uuid.NewString(), token: reminder.NewCancelToken(), startedAt: s.now()}
	s.running = run
	s.done = make(chan struct{})
	s.mu.Unlock()

	st, targets, err := s.bulkTargets(ctx)
	if err != nil {
		s.finish(run, nil)
		return nil, settings.Settings{}, nil, err
	}
	return run, st, targets, nil
}

func (s *ReminderService) bulkTargets(ctx context.Context) (settings.Settings, []reminder.Target, error) {
	st, err := s.LoadSettings(ctx)
	if err != nil {
		return st, nil, err
	}
	if err := st.Validate(); err != nil {
		return st, nil, fmt.Errorf("settings are incomplete: %w", err)
	}
	obs, err := s.eligible(ctx, st)
	if err != nil {
		return st, nil, err
	}
	targets := make([]reminder.Target, 0, len(obs))
	for _, ob := range obs {
		if ob.CustomerPhone == "" {
			s.logger.WithFields(logrus.Fields{
				"obligation_id": ob.ID,
				"customer":      ob.CustomerName,
			}).Warn("Skipping obligation without a phone number")
			continue
		}
		targets = append(targets, reminder.Target{Recipient: ob.CustomerPhone, Obligation: ob})
	}
	if len(targets) == 0 {
		return st, nil, ErrNoTargets
	}
	return st, targets, nil
}

func (s *ReminderService) executeBulk(ctx context.Context, run *runningBatch, st settings.Settings, targets []reminder.Target) reminder.BatchResult {
	result, err := s.dispatcher.DispatchBatch(ctx, run.id, targets, st, run.token)
	if err != nil {
		s.logger.WithError(err).WithField("batch_id", run.id).Error("Batch did not start")
	}
	s.finish(run, &result)
	s.notifyOperators(FormatBatchSummary(result))
	return result
}

func (s *ReminderService) finish(run *runningBatch, result *reminder.BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running != run {
		return
	}
	if result != nil {
		s.last = result
	}
	s.running = nil
	close(s.done)
	s.done = nil
}

func (s *ReminderService) notifyOperators(text string) {
	if s.notifier == nil {
		return
	}
	for _, id := range s.operatorIDs {
		if err := s.notifier.SendMessage(id, text, nil); err != nil {
			s.logger.WithError(err).WithField("operator_id", id).Error("Failed to send batch summary to operator")
		}
	}
}

func (s *ReminderService) findTarget(ctx context.Context, st settings.Settings, obligationID string) (reminder.Target, error) {
	obs, err := s.eligible(ctx, st)
	if err != nil {
		return reminder.Target{}, err
	}
	for _, ob := range obs {
		if ob.ID == obligationID {
			return reminder.Target{Recipient: ob.CustomerPhone, Obligation: ob}, nil
		}
	}
	return reminder.Target{}, fmt.Errorf("%w: %s", ErrObligationNotFound, obligationID)
}
