package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Keys of the flat settings table.
const (
	KeyGatewayEnabled = "whatsapp_enabled"
	KeyGatewayURL     = "whatsapp_api_url"
	KeyAPIKey         = "whatsapp_api_key"
	KeySenderNumber   = "whatsapp_sender_number"
	KeyReminderDays   = "whatsapp_reminder_days"
	KeyLanguage       = "message_language"
	KeyCurrency       = "currency"
)

const (
	DefaultReminderDays = 3
	DefaultLanguage     = "ar"
	DefaultCurrency     = "IQD"
)

var (
	ErrGatewayDisabled     = errors.New("messaging gateway is disabled")
	ErrMissingGatewayURL   = errors.New("gateway URL is not set")
	ErrMissingAPIKey       = errors.New("gateway API key is not set")
	ErrMissingSenderNumber = errors.New("sender number is not set")
	ErrUnknownKey          = errors.New("unknown settings key")
)

// Keys lists every key the dispatcher reads, in display order.
var Keys = []string{
	KeyGatewayEnabled,
	KeyGatewayURL,
	KeyAPIKey,
	KeySenderNumber,
	KeyReminderDays,
	KeyLanguage,
	KeyCurrency,
}

// Settings is the gateway and reminder configuration edited by the operator.
// It is passed by value so a running batch keeps its own snapshot.
type Settings struct {
	Enabled            bool
	GatewayURL         string
	APIKey             string
	SenderNumber       string
	ReminderWindowDays int
	Language           string
	Currency           string
}

// Defaults returns the settings written when the table is empty.
func Defaults() Settings {
	return Settings{
		ReminderWindowDays: DefaultReminderDays,
		Language:           DefaultLanguage,
		Currency:           DefaultCurrency,
	}
}

// FromMap builds Settings from raw key/value rows, applying defaults for absent
// or malformed values.
func FromMap(values map[string]string) Settings {
	s := Defaults()
	s.Enabled = strings.EqualFold(strings.TrimSpace(values[KeyGatewayEnabled]), "true")
	s.GatewayURL = strings.TrimSpace(values[KeyGatewayURL])
	s.APIKey = strings.TrimSpace(values[KeyAPIKey])
	s.SenderNumber = strings.TrimSpace(values[KeySenderNumber])
	if days, err := strconv.Atoi(strings.TrimSpace(values[KeyReminderDays])); err == nil && days >= 0 {
		s.ReminderWindowDays = days
	}
	if v := strings.TrimSpace(values[KeyLanguage]); v != "" {
		s.Language = v
	}
	if v := strings.TrimSpace(values[KeyCurrency]); v != "" {
		s.Currency = strings.ToUpper(v)
	}
	return s
}

// ToMap renders Settings as key/value rows.
func (s Settings) ToMap() map[string]string {
	return map[string]string{
		KeyGatewayEnabled: strconv.FormatBool(s.Enabled),
		KeyGatewayURL:     s.GatewayURL,
		KeyAPIKey:         s.APIKey,
		KeySenderNumber:   s.SenderNumber,
		KeyReminderDays:   strconv.Itoa(s.ReminderWindowDays),
		KeyLanguage:       s.Language,
		KeyCurrency:       s.Currency,
	}
}

// With returns a copy of s with one key replaced by a raw value.
func (s Settings) With(key, value string) (Settings, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyGatewayEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("invalid value %q for %s: %w", value, key, err)
		}
		s.Enabled = b
	case KeyGatewayURL:
		s.GatewayURL = value
	case KeyAPIKey:
		s.APIKey = value
	case KeySenderNumber:
		s.SenderNumber = value
	case KeyReminderDays:
		days, err := strconv.Atoi(value)
		if err != nil || days < 0 {
			return s, fmt.Errorf("invalid value %q for %s: must be a non-negative integer", value, key)
		}
		s.ReminderWindowDays = days
	case KeyLanguage:
		s.Language = value
	case KeyCurrency:
		s.Currency = strings.ToUpper(value)
	default:
		return s, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s, nil
}

// Validate checks that the gateway can be contacted with these settings.
func (s Settings) Validate() error {
	var errs []error
	if !s.Enabled {
		errs = append(errs, ErrGatewayDisabled)
	}
	if s.GatewayURL == "" {
		errs = append(errs, ErrMissingGatewayURL)
	}
	if s.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if s.SenderNumber == "" {
		errs = append(errs, ErrMissingSenderNumber)
	}
	return errors.Join(errs...)
}

// MaskedAPIKey returns the API key with all but the last four characters hidden.
func (s Settings) MaskedAPIKey() string {
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
}
