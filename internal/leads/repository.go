package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/launchpadhq/intake-platform/internal/scoring"
)

// Repository defines tenant-scoped lead storage. Every read and write
// is filtered by businessID; tenancy is an invariant here, not an
// optional filter at the handler.
type Repository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, businessID, id string) (*Lead, error)
	ListByBusiness(ctx context.Context, businessID string, filter ListFilter) ([]*Lead, error)
	UpdateNotes(ctx context.Context, businessID, id, notes string) (*Lead, error)
	UpdateScore(ctx context.Context, businessID, id string, eval scoring.Evaluation) (*Lead, error)
	Aggregates(ctx context.Context, businessID string) (*Aggregates, error)
}

// InMemoryRepository is a Repository backed by a map, for tests and
// development.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{leads: make(map[string]*Lead)}
}

// Create stores a new lead.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.BusinessID == "" {
		return ErrMissingBusinessID
	}
	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.mu.Unlock()
	return nil
}

// GetByID retrieves a lead scoped to the tenant.
func (r *InMemoryRepository) GetByID(ctx context.Context, businessID, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok || lead.BusinessID != businessID {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// ListByBusiness returns the tenant's leads, newest first.
func (r *InMemoryRepository) ListByBusiness(ctx context.Context, businessID string, filter ListFilter) ([]*Lead, error) {
	if businessID == "" {
		return nil, ErrMissingBusinessID
	}

	r.mu.RLock()
	matched := make([]*Lead, 0)
	for _, lead := range r.leads {
		if lead.BusinessID != businessID {
			continue
		}
		if filter.Hotness != "" && lead.Hotness != filter.Hotness {
			continue
		}
		if filter.Intent != "" && lead.Intent != filter.Intent {
			continue
		}
		matched = append(matched, lead)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*Lead{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// UpdateNotes replaces the operator notes and bumps UpdatedAt.
func (r *InMemoryRepository) UpdateNotes(ctx context.Context, businessID, id, notes string) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok || lead.BusinessID != businessID {
		return nil, ErrLeadNotFound
	}
	lead.Notes = notes
	lead.UpdatedAt = time.Now().UTC()
	return lead, nil
}

// UpdateScore replaces the scoring outcome atomically, keeping hotness
// and its factors mutually consistent, and bumps UpdatedAt.
func (r *InMemoryRepository) UpdateScore(ctx context.Context, businessID, id string, eval scoring.Evaluation) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok || lead.BusinessID != businessID {
		return nil, ErrLeadNotFound
	}
	lead.Hotness = eval.Hotness
	lead.HotnessFactors = eval.Factors
	lead.Intent = eval.Intent
	lead.SuggestedAction = eval.Action
	lead.UpdatedAt = time.Now().UTC()
	return lead, nil
}

// Aggregates computes the dashboard reporting numbers for one tenant.
func (r *InMemoryRepository) Aggregates(ctx context.Context, businessID string) (*Aggregates, error) {
	if businessID == "" {
		return nil, ErrMissingBusinessID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	agg := &Aggregates{
		ByHotness: map[scoring.Hotness]int{
			scoring.HotnessHot:  0,
			scoring.HotnessWarm: 0,
			scoring.HotnessCold: 0,
		},
	}
	perDay := make(map[string]int)
	withContact := 0

	for _, lead := range r.leads {
		if lead.BusinessID != businessID {
			continue
		}
		agg.Total++
		agg.ByHotness[lead.Hotness]++
		perDay[lead.CreatedAt.UTC().Format("2006-01-02")]++
		if lead.HasContact() {
			withContact++
		}
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		agg.PerDay = append(agg.PerDay, DayCount{Date: day, Count: perDay[day]})
	}

	if agg.Total > 0 {
		agg.ContactRatio = float64(withContact) / float64(agg.Total)
	}
	return agg, nil
}
