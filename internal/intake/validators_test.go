package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"John Doe", "John Doe", true},
		{"  John   Doe  ", "John Doe", true},
		{"jo", "jo", true},
		{"O'Brien-Smith", "O'Brien-Smith", true},
		{"", "", false},
		{"   ", "", false},
		{"12345", "", false},
		{"!!!", "", false},
	}
	for _, tt := range tests {
		got, ok := ValidateName(tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"john@example.com", "john@example.com", true},
		{"John.Doe@Example.COM", "john.doe@example.com", true},
		{" padded@example.com ", "padded@example.com", true},
		{"no-at-sign.com", "", false},
		{"missing@tld", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ValidateEmail(tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"(555) 123-4567", "+15551234567", true},
		{"555.123.4567", "+15551234567", true},
		{"+1 555 123 4567", "+15551234567", true},
		{"+442071234567", "+442071234567", true},
		{"12345", "", false},
		{"call me", "", false},
	}
	for _, tt := range tests {
		got, ok := ValidatePhone(tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestValidateUSState(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"Texas", "TX", true},
		{"texas", "TX", true},
		{"TX", "TX", true},
		{"tx", "TX", true},
		{"New   York", "NY", true},
		{"district of columbia", "DC", true},
		{"Narnia", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ValidateUSState(tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestValidateFreeTextCapsLength(t *testing.T) {
	long := make([]byte, maxFreeTextLen+500)
	for i := range long {
		long[i] = 'a'
	}
	got, ok := ValidateFreeText(string(long))
	assert.True(t, ok)
	assert.LessOrEqual(t, len(got), maxFreeTextLen)

	_, ok = ValidateFreeText("   ")
	assert.False(t, ok)
}

// Normalization must be idempotent: validating an already-normalized
// value returns it unchanged.
func TestValidatorsIdempotent(t *testing.T) {
	for _, raw := range []string{"John Doe", "  Jane   Roe "} {
		once, ok := ValidateName(raw)
		assert.True(t, ok)
		twice, ok := ValidateName(once)
		assert.True(t, ok)
		assert.Equal(t, once, twice)
	}

	email, _ := ValidateEmail("John@Example.com")
	email2, ok := ValidateEmail(email)
	assert.True(t, ok)
	assert.Equal(t, email, email2)

	phone, _ := ValidatePhone("(555) 123-4567")
	phone2, ok := ValidatePhone(phone)
	assert.True(t, ok)
	assert.Equal(t, phone, phone2)

	state, _ := ValidateUSState("texas")
	state2, ok := ValidateUSState(state)
	assert.True(t, ok)
	assert.Equal(t, state, state2)
}

func TestScanEmail(t *testing.T) {
	email, ok := scanEmail("sure, reach me at John@Example.com thanks")
	assert.True(t, ok)
	assert.Equal(t, "john@example.com", email)

	_, ok = scanEmail("no contact details here")
	assert.False(t, ok)
}

func TestScanPhone(t *testing.T) {
	phone, ok := scanPhone("my cell is (555) 123-4567, call anytime")
	assert.True(t, ok)
	assert.Equal(t, "+15551234567", phone)

	// Short digit runs like prices or street numbers must not match.
	_, ok = scanPhone("I live at 1234 Main St and my budget is $500")
	assert.False(t, ok)
}
