package reminder

import (
	"strconv"
	"strings"
	"time"

	"payment_reminder_bot/internal/domain/obligation"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Language is one of the supported message locales.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageKurdish Language = "ku"
)

const (
	keyInstallmentDue = "reminder.installment_due"
	keyDebtOverdue    = "reminder.debt_overdue"
)

// Placeholders substituted by Render.
const (
	PlaceholderCustomerName = "{customer_name}"
	PlaceholderProductName  = "{product_name}"
	PlaceholderAmount       = "{amount}"
	PlaceholderCurrency     = "{currency}"
	PlaceholderDueDate      = "{due_date}"
	PlaceholderDaysLeft     = "{days_left}"
	PlaceholderDaysOverdue  = "{days_overdue}"
)

var kurdishTag = language.Make("ku")

// ParseLanguage maps a stored language setting to a supported Language.
// Anything that is not Kurdish falls back to Arabic.
func ParseLanguage(raw string) Language {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return LanguageArabic
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ku", "ckb", "kmr":
		return LanguageKurdish
	default:
		return LanguageArabic
	}
}

func (l Language) tag() language.Tag {
	if l == LanguageKurdish {
		return kurdishTag
	}
	return language.Arabic
}

// Template returns the message template for an obligation kind.
func Template(kind obligation.Kind, lang Language) string {
	key := keyInstallmentDue
	if kind == obligation.KindDebtOverdue {
		key = keyDebtOverdue
	}
	tmpl := message.NewPrinter(lang.tag()).Sprintf(key)
	if tmpl == key {
		tmpl = message.NewPrinter(language.Arabic).Sprintf(key)
	}
	return tmpl
}

// Render fills template with the obligation's fields. It performs literal
// substitution only and never fails; missing values become empty strings.
func Render(template string, ob obligation.Obligation, lang Language) string {
	var daysLeft, daysOverdue string
	switch ob.Kind {
	case obligation.KindInstallmentDue:
		daysLeft = strconv.Itoa(ob.DaysUntilDue())
	case obligation.KindDebtOverdue:
		daysOverdue = strconv.Itoa(ob.DaysOverdue())
	}

	r := strings.NewReplacer(
		PlaceholderCustomerName, ob.CustomerName,
		PlaceholderProductName, ob.Description,
		PlaceholderAmount, FormatAmount(ob.Amount),
		PlaceholderCurrency, CurrencySymbol(ob.Currency),
		PlaceholderDueDate, FormatDate(ob.ReferenceDate, lang),
		PlaceholderDaysLeft, daysLeft,
		PlaceholderDaysOverdue, daysOverdue,
	)
	return r.Replace(template)
}

// RenderFor renders the default template for the obligation in the given language setting.
func RenderFor(ob obligation.Obligation, rawLanguage string) string {
	lang := ParseLanguage(rawLanguage)
	return Render(Template(ob.Kind, lang), ob, lang)
}

// FormatAmount groups digits and prints at most two fraction digits, none when
// the amount is whole.
func FormatAmount(d decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	if d.IsInteger() {
		return p.Sprintf("%d", d.IntPart())
	}
	f, _ := d.Round(2).Float64()
	return p.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// FormatDate formats a due date as dd/MM/yyyy for Arabic and yyyy/MM/dd for Kurdish.
func FormatDate(t time.Time, lang Language) string {
	if t.IsZero() {
		return ""
	}
	if lang == LanguageKurdish {
		return t.Format("2006/01/02")
	}
	return t.Format("02/01/2006")
}

// CurrencySymbol maps a currency code to its display symbol, defaulting to the dinar.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return "د.ع"
	}
}
