package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/launchpadhq/intake-platform/internal/leads"
	"github.com/launchpadhq/intake-platform/pkg/logging"
)

// Service emails the operator when a lead needs fast attention.
type Service struct {
	email         EmailSender
	operatorEmail string
	logger        *logging.Logger
}

// NewService creates a notification service. email may be nil, in which
// case notifications are logged and skipped.
func NewService(email EmailSender, operatorEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:         email,
		operatorEmail: operatorEmail,
		logger:        logger,
	}
}

// NotifyHotLead sends the operator an alert about a newly created hot lead.
func (s *Service) NotifyHotLead(ctx context.Context, lead *leads.Lead) error {
	if s.email == nil || s.operatorEmail == "" {
		s.logger.Debug("notify: email not configured, skipping hot lead alert", "lead_id", lead.ID)
		return nil
	}

	subject := fmt.Sprintf("Hot lead: %s", displayName(lead))
	body := buildHotLeadBody(lead)

	if err := s.email.Send(ctx, EmailMessage{
		To:      s.operatorEmail,
		Subject: subject,
		Body:    body,
	}); err != nil {
		return fmt.Errorf("notify: hot lead alert: %w", err)
	}

	s.logger.Info("hot lead alert sent", "lead_id", lead.ID, "business_id", lead.BusinessID)
	return nil
}

func displayName(lead *leads.Lead) string {
	if lead.FullName != "" {
		return lead.FullName
	}
	if lead.Email != "" {
		return lead.Email
	}
	return lead.ID
}

func buildHotLeadBody(lead *leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A hot lead just came in.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", valueOr(lead.FullName, "(not given)"))
	fmt.Fprintf(&b, "Email: %s\n", valueOr(lead.Email, "(not given)"))
	fmt.Fprintf(&b, "Phone: %s\n", valueOr(lead.Phone, "(not given)"))
	fmt.Fprintf(&b, "Intent: %s\n", lead.Intent)
	fmt.Fprintf(&b, "Suggested action: %s (%s priority)\n", lead.SuggestedAction.Label, lead.SuggestedAction.Priority)
	fmt.Fprintf(&b, "Reason: %s\n", lead.SuggestedAction.Reason)
	if bt, ok := lead.ExtractedInfo["business_type"]; ok {
		fmt.Fprintf(&b, "Business: %s\n", bt)
	}
	if state, ok := lead.ExtractedInfo["state"]; ok {
		fmt.Fprintf(&b, "State: %s\n", state)
	}

	fired := make([]string, 0, len(lead.HotnessFactors))
	for _, f := range lead.HotnessFactors {
		if f.Present {
			fired = append(fired, f.Name)
		}
	}
	if len(fired) > 0 {
		fmt.Fprintf(&b, "Signals: %s\n", strings.Join(fired, ", "))
	}
	return b.String()
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
