package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"time"

	"payment_reminder_bot/internal/domain/customer"
	"payment_reminder_bot/internal/domain/obligation"
	"payment_reminder_bot/internal/domain/settings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// day returns a UTC midnight date, the form lib/pq returns for DATE columns.
func day(y int, m time.Month, d int) sql.NullTime {
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func testCustomer(id, name, phone string) customer.Customer {
	return customer.Customer{ID: id, Name: name, Phone: sql.NullString{String: phone, Valid: phone != ""}}
}

type fakeObligationRepo struct {
	installments []obligation.InstallmentRecord
	debts        []obligation.DebtRecord
	installErr   error
	debtErr      error

	installmentStatuses []string
	settledStatuses     []string
}

func (r *fakeObligationRepo) ListInstallments(_ context.Context, statuses []string) ([]obligation.InstallmentRecord, error) {
	r.installmentStatuses = statuses
	if r.installErr != nil {
		return nil, r.installErr
	}
	return r.installments, nil
}

func (r *fakeObligationRepo) ListUnsettledDebts(_ context.Context, settled []string) ([]obligation.DebtRecord, error) {
	r.settledStatuses = settled
	if r.debtErr != nil {
		return nil, r.debtErr
	}
	return r.debts, nil
}

var errFakeNotFound = errors.New("customer not found")

type fakeCustomerRepo struct {
	customers []*customer.Customer
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errFakeNotFound
}

func (r *fakeCustomerRepo) ListAll(context.Context) ([]*customer.Customer, error) {
	return r.customers, nil
}

type fakeSettingsRepo struct {
	mu      sync.Mutex
	values  map[string]string
	upserts int
}

func (r *fakeSettingsRepo) Get(_ context.Context, keys []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := r.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = make(map[string]string)
	}
	for k, v := range values {
		r.values[k] = v
	}
	r.upserts++
	return nil
}

type sentMessage struct {
	Recipient string
	Text      string
}

// fakeSender answers each send with respond(index, recipient).
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	respond func(n int, recipient string) error
}

func (s *fakeSender) Send(_ context.Context, _ settings.Settings, recipient, text string) error {
	s.mu.Lock()
	n := len(s.sent)
	s.sent = append(s.sent, sentMessage{Recipient: recipient, Text: text})
	respond := s.respond
	s.mu.Unlock()
	if respond == nil {
		return nil
	}
	return respond(n, recipient)
}

func (s *fakeSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (n *fakeNotifier) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[int64][]string)
	}
	n.sent[chatID] = append(n.sent[chatID], text)
	return nil
}

func (n *fakeNotifier) messages(chatID int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent[chatID]...)
}

func validSettings() settings.Settings {
	return settings.Settings{
		Enabled:            true,
		GatewayURL:         "https://gateway.example/send",
		APIKey:             "key",
		SenderNumber:       "9647800000000",
		ReminderWindowDays: 3,
		Language:           "ar",
		Currency:           "IQD",
	}
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
