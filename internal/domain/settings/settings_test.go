package settings

import (
	"errors"
	"testing"
)

func TestFromMapAppliesDefaults(t *testing.T) {
	t.Parallel()

	s := FromMap(map[string]string{
		KeyGatewayEnabled: "TRUE",
		KeyGatewayURL:     " https://gw.example/send ",
		KeyReminderDays:   "not-a-number",
	})
	if !s.Enabled {
		t.Fatal("Enabled = false, want true")
	}
	if s.GatewayURL != "https://gw.example/send" {
		t.Fatalf("GatewayURL = %q, want trimmed URL", s.GatewayURL)
	}
	if s.ReminderWindowDays != DefaultReminderDays {
		t.Fatalf("ReminderWindowDays = %d, want %d", s.ReminderWindowDays, DefaultReminderDays)
	}
	if s.Language != DefaultLanguage || s.Currency != DefaultCurrency {
		t.Fatalf("Language/Currency = %q/%q, want defaults", s.Language, s.Currency)
	}
}

func TestToMapRoundTripsThroughFromMap(t *testing.T) {
	t.Parallel()

	in := Settings{
		Enabled:            true,
		GatewayURL:         "https://gw.example/send",
		APIKey:             "secret",
		SenderNumber:       "9647700000000",
		ReminderWindowDays: 5,
		Language:           "ku",
		Currency:           "USD",
	}
	if got := FromMap(in.ToMap()); got != in {
		t.Fatalf("FromMap(ToMap()) = %+v, want %+v", got, in)
	}
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	t.Parallel()

	err := Settings{}.Validate()
	for _, want := range []error{ErrGatewayDisabled, ErrMissingGatewayURL, ErrMissingAPIKey, ErrMissingSenderNumber} {
		if !errors.Is(err, want) {
			t.Fatalf("Validate() = %v, want it to include %v", err, want)
		}
	}

	ok := Settings{Enabled: true, GatewayURL: "u", APIKey: "k", SenderNumber: "s"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestWithRejectsBadValues(t *testing.T) {
	t.Parallel()

	s := Defaults()
	if _, err := s.With(KeyReminderDays, "-1"); err == nil {
		t.Fatal("With(reminder days -1) error = nil, want error")
	}
	if _, err := s.With("nope", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("With(unknown) error = %v, want ErrUnknownKey", err)
	}
	updated, err := s.With(KeyCurrency, "usd")
	if err != nil {
		t.Fatalf("With(currency) error = %v", err)
	}
	if updated.Currency != "USD" || s.Currency != DefaultCurrency {
		t.Fatalf("With mutated receiver or failed: updated=%q original=%q", updated.Currency, s.Currency)
	}
}

func TestMaskedAPIKey(t *testing.T) {
	t.Parallel()

	if got := (Settings{APIKey: "abcdef123456"}).MaskedAPIKey(); got != "********3456" {
		t.Fatalf("MaskedAPIKey() = %q", got)
	}
	if got := (Settings{APIKey: "abc"}).MaskedAPIKey(); got != "***" {
		t.Fatalf("MaskedAPIKey() = %q", got)
	}
}
