package scoring

import "fmt"

// ActionType is the kind of follow-up suggested to the operator.
type ActionType string

const (
	ActionCall     ActionType = "call"
	ActionEmail    ActionType = "email"
	ActionSchedule ActionType = "schedule"
	ActionFollowUp ActionType = "follow_up"
	ActionWait     ActionType = "wait"
	ActionArchive  ActionType = "archive"
)

// Priority ranks how quickly the operator should act.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SuggestedAction is the operator guidance derived from (hotness, intent).
type SuggestedAction struct {
	Type     ActionType `json:"type"`
	Label    string     `json:"label"`
	Reason   string     `json:"reason"`
	Priority Priority   `json:"priority"`
}

type actionKey struct {
	hotness Hotness
	intent  Intent
}

// actionTable covers the full (hotness, intent) cross-product. A missing
// combination is a programming defect; the exhaustiveness test walks
// every pair.
var actionTable = map[actionKey]SuggestedAction{
	{HotnessHot, IntentSales}:      {ActionCall, "Call this lead now", "Hot lead with buying signals; strike while interest is high", PriorityHigh},
	{HotnessHot, IntentBooking}:    {ActionSchedule, "Send a booking link now", "Hot lead explicitly asked to schedule time", PriorityHigh},
	{HotnessHot, IntentQuestion}:   {ActionCall, "Call to answer their questions", "Hot lead with open questions; a call converts faster than email", PriorityHigh},
	{HotnessHot, IntentSupport}:    {ActionCall, "Call to resolve their concern", "Hot lead with a support issue; personal outreach protects the relationship", PriorityHigh},
	{HotnessHot, IntentUnknown}:    {ActionCall, "Call to qualify this lead", "Strong signals but unclear ask; a quick call will clarify", PriorityMedium},
	{HotnessWarm, IntentSales}:     {ActionEmail, "Email pricing details", "Warm lead asking about cost; written follow-up keeps momentum", PriorityMedium},
	{HotnessWarm, IntentBooking}:   {ActionSchedule, "Offer consultation slots", "Warm lead open to scheduling; make it easy to pick a time", PriorityMedium},
	{HotnessWarm, IntentQuestion}:  {ActionEmail, "Email answers to their questions", "Warm lead gathering information; helpful answers build trust", PriorityMedium},
	{HotnessWarm, IntentSupport}:   {ActionEmail, "Email to address their concern", "Warm lead with a concern worth a written response", PriorityMedium},
	{HotnessWarm, IntentUnknown}:   {ActionFollowUp, "Send a light follow-up", "Warm but unclear intent; a nudge may surface the real ask", PriorityLow},
	{HotnessCold, IntentSales}:     {ActionFollowUp, "Add to nurture sequence", "Price-curious but low engagement; nurture until signals improve", PriorityLow},
	{HotnessCold, IntentBooking}:   {ActionSchedule, "Send a self-serve booking link", "Low engagement but asked about scheduling; let them self-serve", PriorityLow},
	{HotnessCold, IntentQuestion}:  {ActionFollowUp, "Queue an informational follow-up", "Early-stage researcher; stay on their radar without pressure", PriorityLow},
	{HotnessCold, IntentSupport}:   {ActionEmail, "Email a support response", "Cold lead with a concern; respond once and close the loop", PriorityMedium},
	{HotnessCold, IntentUnknown}:   {ActionArchive, "Archive unless they return", "No contactable signal or clear ask; not worth operator time yet", PriorityLow},
}

// ActionFor looks up the suggested action for a (hotness, intent) pair.
// The returned error marks a gap in the table, which is a defect rather
// than a runtime condition to default around.
func ActionFor(hotness Hotness, intent Intent) (SuggestedAction, error) {
	action, ok := actionTable[actionKey{hotness, intent}]
	if !ok {
		return SuggestedAction{}, fmt.Errorf("scoring: no action defined for (%s, %s)", hotness, intent)
	}
	return action, nil
}

// Hotnesses enumerates all hotness buckets.
func Hotnesses() []Hotness {
	return []Hotness{HotnessHot, HotnessWarm, HotnessCold}
}

// Intents enumerates all intent classes.
func Intents() []Intent {
	return []Intent{IntentSales, IntentBooking, IntentQuestion, IntentSupport, IntentUnknown}
}
