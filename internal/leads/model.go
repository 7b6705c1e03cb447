package leads

import (
	"time"

	"github.com/launchpadhq/intake-platform/internal/scoring"
)

// Source records where the visitor came from. Opaque to the engine.
type Source struct {
	Page     string `json:"page,omitempty"`
	Referrer string `json:"referrer,omitempty"`
}

// Lead is the durable, tenant-scoped record created from a completed or
// escalated intake session.
type Lead struct {
	ID              string                  `json:"id"`
	BusinessID      string                  `json:"business_id"`
	FullName        string                  `json:"full_name,omitempty"`
	Email           string                  `json:"email,omitempty"`
	Phone           string                  `json:"phone,omitempty"`
	Source          Source                  `json:"source"`
	Conversation    []scoring.Turn          `json:"conversation"`
	ExtractedInfo   map[string]string       `json:"extracted_info"`
	Hotness         scoring.Hotness         `json:"hotness"`
	HotnessFactors  []scoring.Factor        `json:"hotness_factors"`
	Intent          scoring.Intent          `json:"intent"`
	SuggestedAction scoring.SuggestedAction `json:"suggested_action"`
	Escalated       bool                    `json:"escalated"`
	Notes           string                  `json:"notes,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// HasContact reports whether the lead carries any way to reach the visitor.
func (l *Lead) HasContact() bool {
	return l.Email != "" || l.Phone != ""
}

// ListFilter narrows dashboard list queries.
type ListFilter struct {
	Hotness scoring.Hotness
	Intent  scoring.Intent
	Limit   int
	Offset  int
}

// DayCount is one day's lead creation count.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Aggregates are the dashboard's derived reporting numbers. They are
// computed over persisted leads, never by the intake engine.
type Aggregates struct {
	Total        int                     `json:"total"`
	ByHotness    map[scoring.Hotness]int `json:"by_hotness"`
	PerDay       []DayCount              `json:"per_day"`
	ContactRatio float64                 `json:"contact_ratio"`
}
