package leads

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/launchpadhq/intake-platform/internal/intake"
	"github.com/launchpadhq/intake-platform/internal/scoring"
	"github.com/launchpadhq/intake-platform/pkg/logging"
)

// Notifier alerts an operator about a newly created lead.
type Notifier interface {
	NotifyHotLead(ctx context.Context, lead *Lead) error
}

// Service owns the lead creation boundary: it enforces the contact
// constraint, runs the scorer, persists the lead, and fires operator
// notifications. The intake engine never calls this mid-turn; sessions
// convert only after reaching a terminal state.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *logging.Logger
}

// NewService creates a lead service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateFromSession converts a terminal session into a persisted,
// scored Lead. The session's transcript is copied verbatim; ownership
// of the conversation transfers to the lead.
func (s *Service) CreateFromSession(ctx context.Context, session *intake.Session) (*Lead, error) {
	if !session.Terminal() {
		return nil, ErrSessionNotTerminal
	}
	if session.BusinessID == "" {
		return nil, ErrMissingBusinessID
	}

	name := session.Answers["name"]
	email := session.Answers["email"]
	if name == "" && email == "" {
		return nil, ErrMissingContact
	}

	conversation := copyTranscript(session.Transcript)
	extracted := make(map[string]string, len(session.Answers))
	for k, v := range session.Answers {
		extracted[k] = v
	}

	eval, err := scoring.Score(scoring.Input{
		Answers:    session.Answers,
		Transcript: conversation,
		SourcePage: session.SourcePage,
		Referrer:   session.Referrer,
		Escalated:  session.Escalated,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lead := &Lead{
		ID:              uuid.New().String(),
		BusinessID:      session.BusinessID,
		FullName:        name,
		Email:           email,
		Phone:           session.Answers["phone"],
		Source:          Source{Page: session.SourcePage, Referrer: session.Referrer},
		Conversation:    conversation,
		ExtractedInfo:   extracted,
		Hotness:         eval.Hotness,
		HotnessFactors:  eval.Factors,
		Intent:          eval.Intent,
		SuggestedAction: eval.Action,
		Escalated:       session.Escalated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.logger.Info("lead created",
		"lead_id", lead.ID,
		"business_id", lead.BusinessID,
		"hotness", lead.Hotness,
		"intent", lead.Intent,
	)

	if s.notifier != nil && lead.Hotness == scoring.HotnessHot {
		if err := s.notifier.NotifyHotLead(ctx, lead); err != nil {
			// Notification failure never blocks lead creation.
			s.logger.Error("hot lead notification failed", "error", err, "lead_id", lead.ID)
		}
	}
	return lead, nil
}

// Rescore re-runs the scorer over the persisted conversation and
// updates hotness, factors, intent, and action together so they never
// drift apart.
func (s *Service) Rescore(ctx context.Context, businessID, id string) (*Lead, error) {
	lead, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	eval, err := scoring.Score(scoring.Input{
		Answers:    lead.ExtractedInfo,
		Transcript: lead.Conversation,
		SourcePage: lead.Source.Page,
		Referrer:   lead.Source.Referrer,
		Escalated:  lead.Escalated,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateScore(ctx, businessID, id, eval)
}

// UpdateNotes lets a dashboard operator annotate a lead.
func (s *Service) UpdateNotes(ctx context.Context, businessID, id, notes string) (*Lead, error) {
	return s.repo.UpdateNotes(ctx, businessID, id, notes)
}

func copyTranscript(transcript []intake.Message) []scoring.Turn {
	turns := make([]scoring.Turn, 0, len(transcript))
	for _, msg := range transcript {
		turns = append(turns, scoring.Turn{Role: string(msg.Role), Content: msg.Content})
	}
	return turns
}
