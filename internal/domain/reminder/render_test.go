package reminder

import (
	"strings"
	"testing"
	"time"

	"payment_reminder_bot/internal/domain/obligation"

	"github.com/shopspring/decimal"
)

func installment() obligation.Obligation {
	return obligation.Obligation{
		ID:            "inst-1",
		Kind:          obligation.KindInstallmentDue,
		CustomerName:  "Ahmed",
		Description:   "Fridge",
		Amount:        decimal.NewFromInt(1250000),
		Currency:      "IQD",
		ReferenceDate: time.Date(2026, time.October, 22, 0, 0, 0, 0, time.UTC),
		DayOffset:     -3,
	}
}

func TestRenderSubstitutesEveryPlaceholder(t *testing.T) {
	t.Parallel()

	tmpl := "{customer_name}|{product_name}|{amount}|{currency}|{due_date}|{days_left}"
	got := Render(tmpl, installment(), LanguageArabic)
	want := "Ahmed|Fridge|1,250,000|د.ع|22/10/2026|3"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderKurdishDateFormat(t *testing.T) {
	t.Parallel()

	got := Render("{due_date}", installment(), LanguageKurdish)
	if got != "2026/10/22" {
		t.Fatalf("Render due date = %q, want %q", got, "2026/10/22")
	}
}

func TestRenderDebtUsesDaysOverdue(t *testing.T) {
	t.Parallel()

	debt := obligation.Obligation{
		Kind:         obligation.KindDebtOverdue,
		CustomerName: "Sara",
		Amount:       decimal.NewFromInt(500),
		Currency:     "USD",
		DayOffset:    4,
	}
	got := Render("{days_overdue}/{days_left}/{currency}{amount}/{due_date}", debt, LanguageArabic)
	if got != "4//$500/" {
		t.Fatalf("Render = %q, want %q", got, "4//$500/")
	}
}

func TestRenderIsTotalOverEmptyObligation(t *testing.T) {
	t.Parallel()

	got := Render("[{customer_name}][{product_name}][{due_date}][{unknown}]", obligation.Obligation{}, LanguageArabic)
	if got != "[][][][{unknown}]" {
		t.Fatalf("Render = %q, want empty substitutions", got)
	}
}

func TestTemplateSelectionByKindAndLanguage(t *testing.T) {
	t.Parallel()

	arInst := Template(obligation.KindInstallmentDue, LanguageArabic)
	arDebt := Template(obligation.KindDebtOverdue, LanguageArabic)
	kuInst := Template(obligation.KindInstallmentDue, LanguageKurdish)

	for name, tmpl := range map[string]string{"ar installment": arInst, "ar debt": arDebt, "ku installment": kuInst} {
		if !strings.Contains(tmpl, PlaceholderCustomerName) {
			t.Fatalf("%s template = %q, want customer placeholder", name, tmpl)
		}
	}
	if !strings.Contains(arInst, PlaceholderDaysLeft) || !strings.Contains(arDebt, PlaceholderDaysOverdue) {
		t.Fatal("templates must carry the day count placeholder for their kind")
	}
	if arInst == kuInst {
		t.Fatal("Kurdish template must differ from Arabic template")
	}
}

func TestRenderForFallsBackToArabic(t *testing.T) {
	t.Parallel()

	got := RenderFor(installment(), "fr")
	if !strings.HasPrefix(got, "مرحباً Ahmed") {
		t.Fatalf("RenderFor(fr) = %q, want Arabic template", got)
	}
	if !strings.Contains(got, "22/10/2026") {
		t.Fatalf("RenderFor(fr) = %q, want dd/MM/yyyy date", got)
	}
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	cases := map[string]Language{
		"ar":    LanguageArabic,
		"ku":    LanguageKurdish,
		"ckb":   LanguageKurdish,
		"ku-IQ": LanguageKurdish,
		"":      LanguageArabic,
		"en":    LanguageArabic,
	}
	for raw, want := range cases {
		if got := ParseLanguage(raw); got != want {
			t.Fatalf("ParseLanguage(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"0":       "0",
		"999":     "999",
		"1000":    "1,000",
		"2500000": "2,500,000",
		"1250.50": "1,250.5",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestTargetTextPrefersOverride(t *testing.T) {
	t.Parallel()

	target := Target{Obligation: installment(), MessageOverride: "custom"}
	if got := target.Text("ar"); got != "custom" {
		t.Fatalf("Text = %q, want override", got)
	}
	target.MessageOverride = ""
	if got := target.Text("ar"); !strings.Contains(got, "Ahmed") {
		t.Fatalf("Text = %q, want rendered template", got)
	}
}
