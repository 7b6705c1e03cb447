package intake

import "time"

// State names the question the session is currently waiting on.
type State string

const (
	StateCollectName         State = "collect_name"
	StateCollectContact      State = "collect_contact"
	StateCollectBusinessType State = "collect_business_type"
	StateCollectState        State = "collect_state"
	StateUncertaintyCheck    State = "uncertainty_check"
	StateComplete            State = "complete"
	StateEscalated           State = "escalated"
)

// Terminal reports whether a state accepts no further transitions.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateEscalated
}

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one transcript entry. The transcript is append-only.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the per-visitor conversation state, pre-lead.
// One logical actor mutates a session at a time; turns are processed
// synchronously to completion.
type Session struct {
	ID         string            `json:"id"`
	BusinessID string            `json:"business_id"`
	State      State             `json:"state"`
	Answers    map[string]string `json:"answers"`
	Transcript []Message         `json:"transcript"`
	Escalated  bool              `json:"escalated"`
	Retries    int               `json:"retries"`
	LeadID     string            `json:"lead_id,omitempty"`
	SourcePage string            `json:"source_page,omitempty"`
	Referrer   string            `json:"referrer,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewSession creates an empty session positioned at the first question.
func NewSession(id, businessID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		BusinessID: businessID,
		State:      StateCollectName,
		Answers:    make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Terminal reports whether the session reached an absorbing state.
func (s *Session) Terminal() bool {
	return s.State.Terminal()
}

// Converted reports whether a lead was already created from this session.
func (s *Session) Converted() bool {
	return s.LeadID != ""
}

func (s *Session) append(role Role, content string) {
	s.Transcript = append(s.Transcript, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	s.UpdatedAt = time.Now().UTC()
}
