package gateway

import "strings"

// DefaultCountryCode is the dialing prefix applied to local numbers.
const DefaultCountryCode = "964"

// NormalizePhone strips every non-digit and rewrites the number to international
// form: numbers already carrying countryCode are kept, a leading trunk zero is
// replaced by countryCode, anything else gets countryCode prepended.
// An input without digits yields "".
func NormalizePhone(raw, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, countryCode):
		return digits
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	default:
		return countryCode + digits
	}
}
