// Package scoring classifies completed intake records. Everything here
// is a pure function over the record plus injected tables; the same
// input always yields the same evaluation.
package scoring

import (
	"regexp"
	"strings"
)

// Hotness is the categorical urgency/quality bucket for a lead.
type Hotness string

const (
	HotnessHot  Hotness = "hot"
	HotnessWarm Hotness = "warm"
	HotnessCold Hotness = "cold"
)

// Turn is one transcript entry, decoupled from the intake package so
// the scorer stays a standalone function over plain data.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Input is the completed (or escalated) session record to evaluate.
type Input struct {
	Answers    map[string]string
	Transcript []Turn
	SourcePage string
	Referrer   string
	Escalated  bool
}

// Factor is one entry of the auditable scoring checklist. Every factor
// the scorer evaluated appears in the output, fired or not.
type Factor struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// Evaluation is the full scoring outcome.
type Evaluation struct {
	Hotness Hotness         `json:"hotness"`
	Factors []Factor        `json:"hotness_factors"`
	Intent  Intent          `json:"intent"`
	Action  SuggestedAction `json:"suggested_action"`
}

// Factor names, in checklist order.
const (
	FactorContactInfo    = "contact_info_provided"
	FactorUrgency        = "urgency_language"
	FactorPricingInquiry = "pricing_inquiry"
	FactorMultiState     = "multi_state_or_scaling"
	FactorBusinessType   = "business_type_provided"
	FactorEscalated      = "escalated_to_human"
	FactorEngagement     = "engaged_conversation"
)

// factorWeights are the chosen constants for the weighted checklist.
// Thresholds below bucket the sum: >= 6 hot, >= 3 warm, else cold.
var factorWeights = map[string]int{
	FactorContactInfo:    3,
	FactorUrgency:        3,
	FactorPricingInquiry: 2,
	FactorMultiState:     2,
	FactorBusinessType:   1,
	FactorEscalated:      2,
	FactorEngagement:     1,
}

const (
	hotThreshold  = 6
	warmThreshold = 3
)

// factorOrder fixes the checklist sequence in the output.
var factorOrder = []string{
	FactorContactInfo,
	FactorUrgency,
	FactorPricingInquiry,
	FactorMultiState,
	FactorBusinessType,
	FactorEscalated,
	FactorEngagement,
}

var (
	urgencyRE    = regexp.MustCompile(`(?i)\b(asap|urgent|urgently|right away|immediately|this week|today|as soon as|in a hurry|deadline)\b`)
	pricingRE    = regexp.MustCompile(`(?i)\b(how much|price|pricing|cost|costs|fee|fees|cheap|affordable|budget|quote)\b`)
	multiStateRE = regexp.MustCompile(`(?i)\b(multiple states|multi[\s-]?state|two states|several states|another state|other states|expand|expanding|scale|scaling|nationwide|grow into)\b`)
)

// Score evaluates the weighted factor checklist and derives hotness,
// intent, and the suggested next action. The returned error marks a gap
// in the action table, which is a defect surfaced loudly rather than
// defaulted around; the built-in tables are total and covered by an
// exhaustiveness test.
func Score(in Input) (Evaluation, error) {
	userText := joinUserTurns(in.Transcript)

	_, hasEmail := in.Answers["email"]
	_, hasPhone := in.Answers["phone"]
	businessType := strings.TrimSpace(in.Answers["business_type"])

	present := map[string]bool{
		FactorContactInfo:    hasEmail || hasPhone,
		FactorUrgency:        urgencyRE.MatchString(userText),
		FactorPricingInquiry: pricingRE.MatchString(userText),
		FactorMultiState:     multiStateRE.MatchString(userText),
		FactorBusinessType:   businessType != "",
		FactorEscalated:      in.Escalated,
		FactorEngagement:     countUserTurns(in.Transcript) >= 4,
	}

	sum := 0
	factors := make([]Factor, 0, len(factorOrder))
	for _, name := range factorOrder {
		fired := present[name]
		factors = append(factors, Factor{Name: name, Present: fired})
		if fired {
			sum += factorWeights[name]
		}
	}

	hotness := HotnessCold
	switch {
	case sum >= hotThreshold:
		hotness = HotnessHot
	case sum >= warmThreshold:
		hotness = HotnessWarm
	}

	intent := ClassifyIntent(in.Transcript)
	action, err := ActionFor(hotness, intent)
	if err != nil {
		return Evaluation{}, err
	}

	return Evaluation{
		Hotness: hotness,
		Factors: factors,
		Intent:  intent,
		Action:  action,
	}, nil
}

func joinUserTurns(transcript []Turn) string {
	var b strings.Builder
	for _, turn := range transcript {
		if turn.Role != "user" {
			continue
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func countUserTurns(transcript []Turn) int {
	n := 0
	for _, turn := range transcript {
		if turn.Role == "user" {
			n++
		}
	}
	return n
}
