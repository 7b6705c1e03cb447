package intake

import (
	"regexp"
	"strings"
	"unicode"
)

// Validators are pure normalizers: validate(raw) returns the normalized
// value and whether the input was acceptable. Normalization is
// idempotent; re-validating a normalized value returns it unchanged.

const maxFreeTextLen = 1000

var (
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	innerSpaceRE = regexp.MustCompile(`\s+`)
)

// ValidateName accepts a non-empty human name containing at least one letter.
func ValidateName(raw string) (string, bool) {
	name := innerSpaceRE.ReplaceAllString(strings.TrimSpace(raw), " ")
	if name == "" || len(name) > 200 {
		return "", false
	}
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return "", false
	}
	return name, true
}

// ValidateEmail applies an RFC-lite pattern match and lowercases the address.
func ValidateEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailRE.MatchString(email) {
		return "", false
	}
	return email, true
}

// ValidatePhone strips formatting and accepts 10 to 15 digits.
// A bare 10-digit US number is normalized to its 11-digit form.
func ValidatePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 10 {
		d = "1" + d
	}
	if len(d) < 10 || len(d) > 15 {
		return "", false
	}
	return "+" + d, true
}

// ValidateFreeText accepts any non-empty text up to a length cap.
func ValidateFreeText(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}
	if len(text) > maxFreeTextLen {
		text = strings.TrimSpace(text[:maxFreeTextLen])
	}
	return text, true
}

// usStates maps lowercase full names to USPS codes.
var usStates = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

var usStateCodes = func() map[string]struct{} {
	codes := make(map[string]struct{}, len(usStates))
	for _, code := range usStates {
		codes[strings.ToLower(code)] = struct{}{}
	}
	return codes
}()

// ValidateUSState accepts a full state name or USPS code and normalizes
// to the two-letter code.
func ValidateUSState(raw string) (string, bool) {
	key := strings.ToLower(innerSpaceRE.ReplaceAllString(strings.TrimSpace(raw), " "))
	key = strings.TrimSuffix(key, ".")
	if code, ok := usStates[key]; ok {
		return code, true
	}
	if _, ok := usStateCodes[key]; ok {
		return strings.ToUpper(key), true
	}
	return "", false
}

// scanEmail finds an email address volunteered inside free text.
func scanEmail(text string) (string, bool) {
	for _, token := range strings.Fields(text) {
		token = strings.Trim(token, ".,;:!?()<>\"'")
		if email, ok := ValidateEmail(token); ok {
			return email, true
		}
	}
	return "", false
}

// scanPhone finds a phone number volunteered inside free text. It
// requires at least 10 digits in a row (ignoring separators) to avoid
// capturing street numbers or prices.
var phoneCandidateRE = regexp.MustCompile(`\+?\d[\d\s().\-]{8,}\d`)

func scanPhone(text string) (string, bool) {
	candidate := phoneCandidateRE.FindString(text)
	if candidate == "" {
		return "", false
	}
	return ValidatePhone(candidate)
}
