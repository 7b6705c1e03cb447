package scoring

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a lead's inquiry.
type Intent string

const (
	IntentSales    Intent = "sales"
	IntentBooking  Intent = "booking"
	IntentQuestion Intent = "question"
	IntentSupport  Intent = "support"
	IntentUnknown  Intent = "unknown"
)

// intentRule pairs an intent with its keyword patterns. Rules are
// evaluated in order; more specific categories are listed before the
// generic question fallback so they win ties.
type intentRule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

var intentRules = []intentRule{
	{IntentSupport, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(complaint|complain|frustrated|angry|upset|disappointed|not working|broken|problem with|issue with|refund|cancel my)\b`),
		regexp.MustCompile(`(?i)\b(wrong|mistake|error)\b.*\b(order|account|filing|paperwork)\b`),
	}},
	{IntentBooking, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(book|schedule|appointment|consultation|call me|set up a (?:call|meeting|time)|talk to (?:someone|a person|a human)|speak (?:to|with))\b`),
		regexp.MustCompile(`(?i)\b(available|availability|calendar)\b`),
	}},
	{IntentSales, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(how much|price|pricing|cost|costs|fee|fees|quote|package|plan|sign up|get started|ready to (?:start|buy|form)|purchase)\b`),
		regexp.MustCompile(`(?i)\b(start (?:my|an?) (?:llc|business|company|corporation)|form (?:my|an?) (?:llc|company|corporation))\b`),
	}},
	{IntentQuestion, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(what|how|why|when|where|which|can i|do i need|should i|is it)\b`),
		regexp.MustCompile(`\?`),
	}},
}

// ClassifyIntent scans user turns against the rule list, first match
// wins. Messages with no recognizable category classify as unknown.
func ClassifyIntent(transcript []Turn) Intent {
	text := joinUserTurns(transcript)
	if strings.TrimSpace(text) == "" {
		return IntentUnknown
	}

	for _, rule := range intentRules {
		for _, p := range rule.patterns {
			if p.MatchString(text) {
				return rule.intent
			}
		}
	}
	return IntentUnknown
}
