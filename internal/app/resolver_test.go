package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"payment_reminder_bot/internal/domain/obligation"
)

var resolveNow = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func ids(obs []obligation.Obligation) []string {
	out := make([]string, len(obs))
	for i, ob := range obs {
		out[i] = ob.ID
	}
	return out
}

func equalIDs(got []obligation.Obligation, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestResolveInstallmentWindow(t *testing.T) {
	t.Parallel()

	ahmed := testCustomer("c1", "Ahmed", "07701234567")
	repo := &fakeObligationRepo{installments: []obligation.InstallmentRecord{
		{ID: "in-4", Status: "active", NextPaymentDate: day(2026, 10, 23), Customer: ahmed},
		{ID: "in-3", Status: "active", NextPaymentDate: day(2026, 10, 22), Customer: ahmed, ProductName: "Fridge", MonthlyAmount: amount(250000)},
		{ID: "in-0", Status: "نشط", NextPaymentDate: day(2026, 10, 19), Customer: ahmed},
		{ID: "in-past", Status: "active", NextPaymentDate: day(2026, 10, 18), Customer: ahmed},
		{ID: "in-late", Status: "overdue", NextPaymentDate: day(2026, 9, 1), Customer: ahmed},
		{ID: "in-done", Status: "completed", NextPaymentDate: day(2026, 10, 20), Customer: ahmed},
		{ID: "in-nodate", Status: "active", Customer: ahmed},
	}}
	r := NewObligationResolver(repo, time.UTC, discardLogger())

	got, err := r.Resolve(context.Background(), resolveNow, 3)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if !equalIDs(got, "in-late", "in-0", "in-3") {
		t.Fatalf("resolved = %v, want [in-late in-0 in-3]", ids(got))
	}

	three := got[2]
	if three.Kind != obligation.KindInstallmentDue || three.DaysUntilDue() != 3 {
		t.Fatalf("in-3 = kind %s, days until due %d, want installment due in 3", three.Kind, three.DaysUntilDue())
	}
	if three.Description != "Fridge" || !three.Amount.Equal(amount(250000)) || three.CustomerPhone != "07701234567" {
		t.Fatalf("in-3 fields = %+v", three)
	}
	if late := got[0]; late.DaysOverdue() != 48 {
		t.Fatalf("in-late days overdue = %d, want 48", late.DaysOverdue())
	}

	if len(repo.installmentStatuses) != 4 {
		t.Fatalf("installment statuses = %v, want active and overdue in both spellings", repo.installmentStatuses)
	}
}

func TestResolveDebtsStrictlyOverdue(t *testing.T) {
	t.Parallel()

	sara := testCustomer("c2", "Sara", "07501112222")
	repo := &fakeObligationRepo{debts: []obligation.DebtRecord{
		{ID: "d-today", Status: "pending", DueDate: day(2026, 10, 19), Customer: sara},
		{ID: "d-1", Status: "pending", DueDate: day(2026, 10, 18), Customer: sara, Amount: amount(75000), Description: sql.NullString{String: "Phone case", Valid: true}},
		{ID: "d-10", Status: "", DueDate: day(2026, 10, 9), Customer: sara},
		{ID: "d-paid", Status: "مكتمل", DueDate: day(2026, 10, 1), Customer: sara},
		{ID: "d-nodate", Status: "pending", Customer: sara},
		{ID: "d-future", Status: "pending", DueDate: day(2026, 11, 1), Customer: sara},
	}}
	r := NewObligationResolver(repo, time.UTC, discardLogger())

	got, err := r.Resolve(context.Background(), resolveNow, 3)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if !equalIDs(got, "d-10", "d-1") {
		t.Fatalf("resolved = %v, want [d-10 d-1]", ids(got))
	}
	if got[1].DaysOverdue() != 1 || got[1].Kind != obligation.KindDebtOverdue || got[1].Description != "Phone case" {
		t.Fatalf("d-1 = %+v, want debt overdue by 1 day", got[1])
	}
	if got[0].DaysOverdue() != 10 {
		t.Fatalf("d-10 days overdue = %d, want 10", got[0].DaysOverdue())
	}
}

func TestResolveRespectsMessagingPreference(t *testing.T) {
	t.Parallel()

	optedOut := testCustomer("c1", "Out", "0770")
	optedOut.WhatsAppEnabled = sql.NullBool{Bool: false, Valid: true}
	optedIn := testCustomer("c2", "In", "0771")
	optedIn.WhatsAppEnabled = sql.NullBool{Bool: true, Valid: true}
	noPreference := testCustomer("c3", "Default", "0772")

	repo := &fakeObligationRepo{
		installments: []obligation.InstallmentRecord{
			{ID: "out", Status: "overdue", NextPaymentDate: day(2026, 10, 1), Customer: optedOut},
			{ID: "in", Status: "overdue", NextPaymentDate: day(2026, 10, 2), Customer: optedIn},
			{ID: "default", Status: "overdue", NextPaymentDate: day(2026, 10, 3), Customer: noPreference},
		},
		debts: []obligation.DebtRecord{
			{ID: "debt-out", Status: "pending", DueDate: day(2026, 10, 1), Customer: optedOut},
		},
	}
	got, err := NewObligationResolver(repo, time.UTC, discardLogger()).Resolve(context.Background(), resolveNow, 3)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if !equalIDs(got, "in", "default") {
		t.Fatalf("resolved = %v, want opted-out customer excluded", ids(got))
	}
	for _, ob := range got {
		if !ob.MessagingEnabled {
			t.Fatalf("%s materialized with messaging disabled", ob.ID)
		}
	}
}

func TestResolvePhonePrecedence(t *testing.T) {
	t.Parallel()

	c := testCustomer("c1", "Ali", "07700000001")
	c.WhatsAppNumber = sql.NullString{String: "07700000002", Valid: true}
	repo := &fakeObligationRepo{installments: []obligation.InstallmentRecord{
		{ID: "own", Status: "overdue", NextPaymentDate: day(2026, 10, 1), Customer: c, WhatsAppNumber: sql.NullString{String: "07700000003", Valid: true}},
		{ID: "customer", Status: "overdue", NextPaymentDate: day(2026, 10, 2), Customer: c, WhatsAppNumber: sql.NullString{String: " ", Valid: true}},
	}}
	got, err := NewObligationResolver(repo, time.UTC, discardLogger()).Resolve(context.Background(), resolveNow, 3)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if got[0].CustomerPhone != "07700000003" || got[1].CustomerPhone != "07700000002" {
		t.Fatalf("phones = %q, %q, want installment number then customer whatsapp", got[0].CustomerPhone, got[1].CustomerPhone)
	}
}

func TestResolveCountsDaysInConfiguredZone(t *testing.T) {
	t.Parallel()

	// 22:30 UTC is already the next day at UTC+3.
	now := time.Date(2026, time.October, 19, 22, 30, 0, 0, time.UTC)
	repo := &fakeObligationRepo{installments: []obligation.InstallmentRecord{
		{ID: "in", Status: "active", NextPaymentDate: day(2026, 10, 23), Customer: testCustomer("c1", "A", "0770")},
	}}

	utc, err := NewObligationResolver(repo, time.UTC, discardLogger()).Resolve(context.Background(), now, 3)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if len(utc) != 0 {
		t.Fatalf("UTC resolved = %v, want none (4 days left)", ids(utc))
	}

	baghdad := time.FixedZone("UTC+3", 3*60*60)
	local, err := NewObligationResolver(repo, baghdad, discardLogger()).Resolve(context.Background(), now, 3)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if len(local) != 1 || local[0].DaysUntilDue() != 3 {
		t.Fatalf("UTC+3 resolved = %+v, want one installment due in 3 days", local)
	}
}

func TestResolveStoreFailure(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection reset")
	repo := &fakeObligationRepo{
		installments: []obligation.InstallmentRecord{
			{ID: "in", Status: "overdue", NextPaymentDate: day(2026, 10, 1), Customer: testCustomer("c1", "A", "0770")},
		},
		debtErr: storeErr,
	}
	got, err := NewObligationResolver(repo, time.UTC, discardLogger()).Resolve(context.Background(), resolveNow, 3)

	var re *ResolutionError
	if !errors.As(err, &re) || re.Op != "list debts" {
		t.Fatalf("error = %v, want ResolutionError for debts", err)
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
	if got != nil {
		t.Fatalf("resolved = %v, want no partial result", ids(got))
	}
}
