package intake

import (
	"context"

	"github.com/launchpadhq/intake-platform/pkg/logging"
)

const defaultMaxRetries = 3

const (
	terminalReply      = "Thanks, I've added that to your notes. One of our specialists will be in touch shortly."
	retryEscalateReply = "No worries, this is easier to sort out with a human. One of our formation specialists will reach out to help you directly. You can also book a free consultation at launchpadhq.com/consult."
)

// TurnResult is what the engine hands back to the transport after a turn.
type TurnResult struct {
	Reply     string `json:"reply"`
	State     State  `json:"state"`
	Done      bool   `json:"done"`
	Escalated bool   `json:"escalated"`

	// EscalationCategory is set only on the turn that escalated.
	EscalationCategory string `json:"-"`
}

// Engine drives the scripted intake conversation. Every operation is a
// total function over (session, message); malformed input is recovered
// by re-asking and the retry ceiling is a designed escalation path, not
// an error.
type Engine struct {
	matcher    *Matcher
	maxRetries int
	logger     *logging.Logger
}

// NewEngine creates an intake engine. maxRetries <= 0 selects the default.
func NewEngine(matcher *Matcher, maxRetries int, logger *logging.Logger) *Engine {
	if matcher == nil {
		matcher = NewMatcher(logger)
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		matcher:    matcher,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Greeting emits the opening bot message for a fresh session.
func (e *Engine) Greeting(s *Session) TurnResult {
	s.append(RoleBot, greetingReply)
	return TurnResult{
		Reply:     greetingReply,
		State:     s.State,
		Done:      s.Terminal(),
		Escalated: s.Escalated,
	}
}

// ProcessTurn advances the state machine by one user message. It appends
// both the user turn and the bot reply to the transcript, mutates
// answers only through validators, and never transitions out of a
// terminal state.
func (e *Engine) ProcessTurn(ctx context.Context, s *Session, message string) TurnResult {
	s.append(RoleUser, message)

	// Terminal states absorb further turns into the transcript only.
	if s.Terminal() {
		s.append(RoleBot, terminalReply)
		return e.result(s, terminalReply)
	}

	// Escalation triggers override the current question for the turn.
	if !s.Escalated {
		if match, ok := e.matcher.Match(ctx, message); ok {
			reply := e.matcher.Reply(match)
			e.escalate(s, reply)
			e.logger.Info("session escalated",
				"session_id", s.ID,
				"category", match.Category,
				"state", s.State,
			)
			res := e.result(s, reply)
			res.EscalationCategory = string(match.Category)
			return res
		}
	}

	st, ok := stagesByState[s.State]
	if !ok {
		// Unknown state means a corrupted session; close it out rather
		// than looping.
		s.State = StateComplete
		s.append(RoleBot, completeReply)
		return e.result(s, completeReply)
	}

	key, value, valid := validateStageInput(st, message)
	if !valid {
		s.Retries++
		if s.Retries > e.maxRetries {
			e.escalate(s, retryEscalateReply)
			e.logger.Info("retry ceiling reached, escalating",
				"session_id", s.ID,
				"state", st.state,
				"retries", s.Retries,
			)
			res := e.result(s, retryEscalateReply)
			res.EscalationCategory = "retry_limit"
			return res
		}
		reply := fallbackReply + st.retryPrompt
		s.append(RoleBot, reply)
		return e.result(s, reply)
	}

	s.Answers[key] = value
	s.Retries = 0

	// Capture contact details volunteered outside the contact stage so
	// the branch rule can skip it.
	if st.kind != fieldContact {
		if email, found := scanEmail(message); found {
			s.Answers[fieldKeyEmail] = email
		} else if phone, found := scanPhone(message); found {
			s.Answers[fieldKeyPhone] = phone
		}
	}

	next := nextAskableState(s, st.next)
	s.State = next

	var reply string
	if next == StateComplete {
		reply = completeReply
	} else {
		reply = stagesByState[next].prompt
	}
	s.append(RoleBot, reply)
	return e.result(s, reply)
}

func (e *Engine) escalate(s *Session, reply string) {
	s.Escalated = true
	s.State = StateEscalated
	s.append(RoleBot, reply)
}

func (e *Engine) result(s *Session, reply string) TurnResult {
	return TurnResult{
		Reply:     reply,
		State:     s.State,
		Done:      s.Terminal(),
		Escalated: s.Escalated,
	}
}

// validateStageInput runs the stage's validator and returns the answer
// key and normalized value. For the contact stage the key depends on
// whether the input parsed as an email or a phone number.
func validateStageInput(st stage, message string) (key, value string, ok bool) {
	switch st.kind {
	case fieldName:
		value, ok = ValidateName(message)
		return fieldKeyName, value, ok
	case fieldContact:
		if email, valid := ValidateEmail(message); valid {
			return fieldKeyEmail, email, true
		}
		if phone, valid := ValidatePhone(message); valid {
			return fieldKeyPhone, phone, true
		}
		// Contact details buried in a sentence still count.
		if email, valid := scanEmail(message); valid {
			return fieldKeyEmail, email, true
		}
		if phone, valid := scanPhone(message); valid {
			return fieldKeyPhone, phone, true
		}
		return fieldKeyEmail, "", false
	case fieldUSState:
		value, ok = ValidateUSState(message)
		return st.field, value, ok
	default:
		value, ok = ValidateFreeText(message)
		return st.field, value, ok
	}
}
