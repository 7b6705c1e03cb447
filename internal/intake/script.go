package intake

// fieldKind selects the validator applied to a stage's answer.
type fieldKind int

const (
	fieldName fieldKind = iota
	fieldContact
	fieldFreeText
	fieldUSState
)

// stage is one scripted question in the intake pipeline.
type stage struct {
	state       State
	field       string
	kind        fieldKind
	prompt      string
	retryPrompt string
	next        State
	// skip reports whether the stage's precondition is already satisfied
	// (e.g. contact details volunteered in an earlier turn).
	skip func(*Session) bool
}

const (
	fieldKeyName         = "name"
	fieldKeyEmail        = "email"
	fieldKeyPhone        = "phone"
	fieldKeyBusinessType = "business_type"
	fieldKeyState        = "state"
	fieldKeyNotes        = "notes"
)

const (
	greetingReply = "Hi! I'm the LaunchPad assistant. I can help you figure out what it takes to get your business officially set up. First things first: what's your name?"
	completeReply = "That's everything I need, thank you! One of our formation specialists will review your details and follow up shortly. Feel free to keep asking questions in the meantime."
	fallbackReply = "I'm sorry, I missed that. "
)

// script is the fixed-order question pipeline. Branch rules live in the
// per-stage skip functions.
var script = []stage{
	{
		state:       StateCollectName,
		field:       fieldKeyName,
		kind:        fieldName,
		prompt:      "What's your name?",
		retryPrompt: "Could you tell me your name? Just a first name works too.",
		next:        StateCollectContact,
	},
	{
		state:       StateCollectContact,
		field:       fieldKeyEmail, // actual key depends on what validates
		kind:        fieldContact,
		prompt:      "Nice to meet you! What's the best email or phone number to reach you at?",
		retryPrompt: "That doesn't look like an email or phone number I can use. Could you share one like name@example.com or (555) 123-4567?",
		next:        StateCollectBusinessType,
		skip: func(s *Session) bool {
			_, hasEmail := s.Answers[fieldKeyEmail]
			_, hasPhone := s.Answers[fieldKeyPhone]
			return hasEmail || hasPhone
		},
	},
	{
		state:       StateCollectBusinessType,
		field:       fieldKeyBusinessType,
		kind:        fieldFreeText,
		prompt:      "What kind of business are you starting? A sentence or two is perfect.",
		retryPrompt: "Could you describe the business you have in mind? Even a few words helps.",
		next:        StateCollectState,
	},
	{
		state:       StateCollectState,
		field:       fieldKeyState,
		kind:        fieldUSState,
		prompt:      "Which state will the business operate in?",
		retryPrompt: "I didn't recognize that state. Could you give me the full state name or its two-letter code, like Texas or TX?",
		next:        StateUncertaintyCheck,
	},
	{
		state:       StateUncertaintyCheck,
		field:       fieldKeyNotes,
		kind:        fieldFreeText,
		prompt:      "Last one: is there anything about the process you're unsure about, or anything else we should know?",
		retryPrompt: "Anything at all, or just say \"no\" and we'll wrap up.",
		next:        StateComplete,
	},
}

var stagesByState = func() map[State]stage {
	m := make(map[State]stage, len(script))
	for _, st := range script {
		m[st.state] = st
	}
	return m
}()

// nextAskableState walks the pipeline from `from`, skipping stages whose
// preconditions are already met, and returns the next state to ask.
func nextAskableState(s *Session, from State) State {
	state := from
	for !state.Terminal() {
		st, ok := stagesByState[state]
		if !ok {
			return StateComplete
		}
		if st.skip == nil || !st.skip(s) {
			return state
		}
		state = st.next
	}
	return state
}
