package messaging

import (
	"regexp"
	"strings"
)

const (
	// HomeCountryCode is the Chilean calling code assumed for local numbers.
	HomeCountryCode = "56"

	// HomeMobilePrefix leads every Chilean mobile subscriber number.
	HomeMobilePrefix = "9"
)

var (
	nonDigits         = regexp.MustCompile(`\D`)
	internationalE164 = regexp.MustCompile(`^\d{10,15}$`)
)

// NormalizePhone converts a loosely formatted phone number into E.164.
// Rules are applied in order and the first match wins:
//
//	digits start with 56        -> +<digits>
//	9 digits starting with 9    -> +56<digits>
//	8 digits                    -> +569<digits>
//	10 to 15 digits             -> +<digits>
//
// Anything else is rejected with ok=false.
func NormalizePhone(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	d := nonDigits.ReplaceAllString(raw, "")
	switch {
	case strings.HasPrefix(d, HomeCountryCode):
		return "+" + d, true
	case len(d) == 9 && strings.HasPrefix(d, HomeMobilePrefix):
		return "+" + HomeCountryCode + d, true
	case len(d) == 8:
		return "+" + HomeCountryCode + HomeMobilePrefix + d, true
	case internationalE164.MatchString(d):
		return "+" + d, true
	}
	return "", false
}

// stripPlus drops the leading plus sign for APIs that want bare digits.
func stripPlus(phone string) string {
	return strings.Replace(phone, "+", "", 1)
}
