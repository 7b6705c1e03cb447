package intake

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/launchpadhq/intake-platform/pkg/logging"
)

var escalationTracer = otel.Tracer("intake/escalation-matcher")

// TriggerCategory names a reason to hand the visitor to a human.
type TriggerCategory string

const (
	TriggerNone               TriggerCategory = ""
	TriggerLicensedProfession TriggerCategory = "LICENSED_PROFESSION"
	TriggerTaxStructure       TriggerCategory = "TAX_STRUCTURE"
	TriggerMultiState         TriggerCategory = "MULTI_STATE"
	TriggerPartnership        TriggerCategory = "PARTNERSHIP"
	TriggerFunding            TriggerCategory = "FUNDING"
	TriggerExistingBusiness   TriggerCategory = "EXISTING_BUSINESS"
	TriggerNonprofit          TriggerCategory = "NONPROFIT"
	TriggerUncertainty        TriggerCategory = "UNCERTAINTY"
)

// TriggerMatch is the outcome of scanning one message.
type TriggerMatch struct {
	Category   TriggerCategory
	Keyword    string
	Profession string
}

// ReplyTemplate is the canned three-part escalation response.
// {profession} in any part is filled from the matched context.
type ReplyTemplate struct {
	Acknowledge  string
	Explain      string
	CallToAction string
}

type triggerRule struct {
	category TriggerCategory
	patterns []*triggerPattern
}

type triggerPattern struct {
	regex   *regexp.Regexp
	keyword string
	// capture marks the first regex group as the profession context.
	capture bool
}

// Matcher scans user messages against priority-ordered trigger rules.
// Rules are evaluated in fixed order and the first matching category
// wins; regulatory/legal-risk categories outrank general confusion.
type Matcher struct {
	rules     []triggerRule
	templates map[TriggerCategory]ReplyTemplate
	logger    *logging.Logger
}

// NewMatcher creates a matcher with the default rule and template tables.
func NewMatcher(logger *logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Matcher{
		rules:     defaultTriggerRules(),
		templates: defaultTemplates(),
		logger:    logger,
	}
}

func defaultTriggerRules() []triggerRule {
	return []triggerRule{
		{TriggerLicensedProfession, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\b(?:i'?m|i am|as)\s+(?:a|an)\s+(dentist|doctor|physician|surgeon|lawyer|attorney|accountant|cpa|therapist|psychologist|nurse|architect|engineer|chiropractor|pharmacist|veterinarian|optometrist|real estate (?:agent|broker))\b`), keyword: "licensed profession", capture: true},
			{regex: regexp.MustCompile(`(?i)\b(dentist|physician|surgeon|attorney|chiropractor|pharmacist|veterinarian|optometrist)\b`), keyword: "licensed profession", capture: true},
			{regex: regexp.MustCompile(`(?i)\b(professional license|licensed professional|medical practice|law (?:firm|practice)|dental practice)\b`), keyword: "professional practice"},
		}},
		{TriggerTaxStructure, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\bs[\s-]?corp(oration)?\b`), keyword: "s-corp"},
			{regex: regexp.MustCompile(`(?i)\bc[\s-]?corp(oration)?\b`), keyword: "c-corp"},
			{regex: regexp.MustCompile(`(?i)\b(tax (?:election|structure|status|classification)|pass[\s-]?through|self[\s-]?employment tax|franchise tax)\b`), keyword: "tax structure"},
			{regex: regexp.MustCompile(`(?i)\b(taxed as|tax purposes)\b`), keyword: "tax treatment"},
		}},
		{TriggerMultiState, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\b(multiple states|multi[\s-]?state|two states|several states|another state|other states|across state lines|foreign qualification)\b`), keyword: "multi-state"},
			{regex: regexp.MustCompile(`(?i)\b(expand|operate|operating|business)\s+in\s+\w+\s+states\b`), keyword: "multi-state operation"},
		}},
		{TriggerPartnership, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\b(partner|partners|partnership|co[\s-]?owner|co[\s-]?founder|business with my|50[/\s-]?50)\b`), keyword: "partnership"},
			{regex: regexp.MustCompile(`(?i)\b(equity split|ownership split|operating agreement)\b`), keyword: "ownership terms"},
		}},
		{TriggerFunding, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\b(investor|investors|venture capital|vc funding|raise (?:money|capital|funding)|seed round|angel)\b`), keyword: "funding"},
			{regex: regexp.MustCompile(`(?i)\b(issue (?:shares|stock)|equity financing|convertible note|safe note)\b`), keyword: "equity financing"},
		}},
		{TriggerExistingBusiness, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\b(already (?:have|own|run)|existing (?:business|llc|company|corporation)|convert my|transfer my|sole proprietor(?:ship)? (?:to|into))\b`), keyword: "existing business"},
			{regex: regexp.MustCompile(`(?i)\b(change (?:my|our) (?:entity|structure)|restructur)\b`), keyword: "restructuring"},
		}},
		{TriggerNonprofit, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\b(non[\s-]?profit|501\s*\(?c\)?\s*\(?3\)?|charity|charitable|foundation|tax[\s-]?exempt)\b`), keyword: "nonprofit"},
		}},
		{TriggerUncertainty, []*triggerPattern{
			{regex: regexp.MustCompile(`(?i)\b(not sure|unsure|no idea|don'?t know|confused|confusing|overwhelmed|complicated|what should i|which (?:one|entity|structure) (?:should|is right)|help me (?:decide|choose))\b`), keyword: "uncertainty"},
		}},
	}
}

func defaultTemplates() map[TriggerCategory]ReplyTemplate {
	return map[TriggerCategory]ReplyTemplate{
		TriggerLicensedProfession: {
			Acknowledge:  "Thanks for sharing that. Setting up a business as a {profession} comes with extra considerations.",
			Explain:      "Licensed professionals often need a professional entity (like a PLLC or PC), and the rules vary by state and licensing board.",
			CallToAction: "Let's get you on a quick call with one of our formation specialists so we get it right the first time. You can book a free consultation at launchpadhq.com/consult or leave your email and we'll reach out.",
		},
		TriggerTaxStructure: {
			Acknowledge:  "Great question. Tax treatment is one of the most important decisions you'll make.",
			Explain:      "The right election (LLC default, S-corp, or C-corp) depends on your expected income, payroll plans, and growth path, and it's hard to undo a wrong choice.",
			CallToAction: "A short call with our team can save you real money here. Book a free consultation at launchpadhq.com/consult or leave your email and we'll reach out.",
		},
		TriggerMultiState: {
			Acknowledge:  "Operating in more than one state is a smart ambition, and it adds a layer of paperwork.",
			Explain:      "You'll typically form in one state and register as a foreign entity in the others, and the best home state depends on where you actually do business.",
			CallToAction: "Our specialists map this out every day. Book a free consultation at launchpadhq.com/consult or leave your email and we'll reach out.",
		},
		TriggerPartnership: {
			Acknowledge:  "Starting a business with a partner is exciting, and worth protecting.",
			Explain:      "Ownership splits, decision rights, and exit terms belong in an operating agreement before you file, not after a disagreement.",
			CallToAction: "Let's have a specialist walk you both through it. Book a free consultation at launchpadhq.com/consult or leave your email and we'll reach out.",
		},
		TriggerFunding: {
			Acknowledge:  "Planning to raise money changes the calculus quite a bit.",
			Explain:      "Most investors expect a Delaware C-corp with a standard stock structure, which is a different path than a simple LLC.",
			CallToAction: "Our team has set up plenty of investor-ready entities. Book a free consultation at launchpadhq.com/consult or leave your email and we'll reach out.",
		},
		TriggerExistingBusiness: {
			Acknowledge:  "Since you already have a business, this is a conversion rather than a fresh start.",
			Explain:      "Moving an existing operation into a new entity touches contracts, bank accounts, and tax IDs, so sequencing matters.",
			CallToAction: "A specialist can lay out the exact steps for your situation. Book a free consultation at launchpadhq.com/consult or leave your email and we'll reach out.",
		},
		TriggerNonprofit: {
			Acknowledge:  "A nonprofit, wonderful. That's a different track than a standard business entity.",
			Explain:      "501(c)(3) status involves IRS approval, governance requirements, and ongoing compliance beyond state formation.",
			CallToAction: "Our team handles nonprofit formations regularly. Book a free consultation at launchpadhq.com/consult or leave your email and we'll reach out.",
		},
		TriggerUncertainty: {
			Acknowledge:  "Totally understandable, there's a lot of jargon in this space.",
			Explain:      "The good news is that for most new businesses the decision comes down to a handful of practical questions, and a human can sort it out quickly.",
			CallToAction: "Book a free consultation at launchpadhq.com/consult or leave your email and one of our specialists will reach out.",
		},
	}
}

// Match scans a message and returns the single highest-priority trigger.
// Pure and deterministic; matched-but-lower-priority categories are
// discarded for the turn.
func (m *Matcher) Match(ctx context.Context, message string) (TriggerMatch, bool) {
	_, span := escalationTracer.Start(ctx, "escalation.match")
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return TriggerMatch{}, false
	}

	for _, rule := range m.rules {
		for _, p := range rule.patterns {
			groups := p.regex.FindStringSubmatch(message)
			if groups == nil {
				continue
			}
			match := TriggerMatch{Category: rule.category, Keyword: p.keyword}
			if p.capture && len(groups) > 1 {
				match.Profession = strings.ToLower(groups[1])
			}

			span.SetAttributes(
				attribute.String("escalation.category", string(match.Category)),
				attribute.String("escalation.keyword", match.Keyword),
			)
			m.logger.Info("escalation trigger matched",
				"category", match.Category,
				"keyword", match.Keyword,
			)
			return match, true
		}
	}
	return TriggerMatch{}, false
}

// Reply renders the acknowledge/explain/call-to-action script for a match.
func (m *Matcher) Reply(match TriggerMatch) string {
	tmpl, ok := m.templates[match.Category]
	if !ok {
		tmpl = m.templates[TriggerUncertainty]
	}
	parts := []string{tmpl.Acknowledge, tmpl.Explain, tmpl.CallToAction}
	reply := strings.Join(parts, " ")

	profession := match.Profession
	if profession == "" {
		profession = "licensed professional"
	}
	reply = strings.ReplaceAll(reply, "{profession}", profession)
	return reply
}
