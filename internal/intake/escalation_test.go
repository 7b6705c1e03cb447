package intake

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpadhq/intake-platform/pkg/logging"
)

func newTestMatcher() *Matcher {
	return NewMatcher(logging.New("error"))
}

func TestMatchLicensedProfession(t *testing.T) {
	m := newTestMatcher()

	match, ok := m.Match(context.Background(), "I'm a dentist and want to open my own practice")
	require.True(t, ok)
	assert.Equal(t, TriggerLicensedProfession, match.Category)
	assert.Equal(t, "dentist", match.Profession)
}

func TestMatchCategories(t *testing.T) {
	m := newTestMatcher()
	tests := []struct {
		message string
		want    TriggerCategory
	}{
		{"should I be an s-corp or LLC?", TriggerTaxStructure},
		{"we plan to operate in multiple states", TriggerMultiState},
		{"starting this with my business partner", TriggerPartnership},
		{"we want to raise money from investors", TriggerFunding},
		{"I already have an existing business", TriggerExistingBusiness},
		{"I want to start a nonprofit", TriggerNonprofit},
		{"honestly I have no idea where to start", TriggerUncertainty},
	}
	for _, tt := range tests {
		match, ok := m.Match(context.Background(), tt.message)
		require.True(t, ok, "message %q", tt.message)
		assert.Equal(t, tt.want, match.Category, "message %q", tt.message)
	}
}

func TestMatchNothing(t *testing.T) {
	m := newTestMatcher()
	for _, msg := range []string{
		"a bakery in Austin",
		"John Doe",
		"john@example.com",
		"",
	} {
		_, ok := m.Match(context.Background(), msg)
		assert.False(t, ok, "message %q", msg)
	}
}

// When a message hits multiple categories the highest-priority rule
// wins; regulatory/legal-risk categories outrank general confusion.
func TestMatchPriorityOrder(t *testing.T) {
	m := newTestMatcher()

	match, ok := m.Match(context.Background(), "I'm a dentist but honestly not sure which structure to pick")
	require.True(t, ok)
	assert.Equal(t, TriggerLicensedProfession, match.Category)

	match, ok = m.Match(context.Background(), "not sure if an s-corp makes sense for us")
	require.True(t, ok)
	assert.Equal(t, TriggerTaxStructure, match.Category)

	match, ok = m.Match(context.Background(), "my partner and I are confused about all this")
	require.True(t, ok)
	assert.Equal(t, TriggerPartnership, match.Category)
}

func TestReplySubstitutesProfession(t *testing.T) {
	m := newTestMatcher()

	reply := m.Reply(TriggerMatch{Category: TriggerLicensedProfession, Profession: "dentist"})
	assert.Contains(t, reply, "dentist")
	assert.NotContains(t, reply, "{profession}")

	// No captured profession falls back to a generic phrase.
	reply = m.Reply(TriggerMatch{Category: TriggerLicensedProfession})
	assert.Contains(t, reply, "licensed professional")
	assert.NotContains(t, reply, "{profession}")
}

func TestReplyHasThreeParts(t *testing.T) {
	m := newTestMatcher()
	for category, tmpl := range m.templates {
		reply := m.Reply(TriggerMatch{Category: category})
		for _, part := range []string{tmpl.Acknowledge, tmpl.Explain} {
			part = strings.ReplaceAll(part, "{profession}", "licensed professional")
			assert.Contains(t, reply, part, "category %s", category)
		}
		assert.Contains(t, reply, "launchpadhq.com/consult", "category %s", category)
	}
}
