package leads

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpadhq/intake-platform/internal/scoring"
)

func seedLead(t *testing.T, repo Repository, businessID, id string, hotness scoring.Hotness, createdAt time.Time) *Lead {
	t.Helper()
	lead := &Lead{
		ID:            id,
		BusinessID:    businessID,
		FullName:      "Lead " + id,
		Email:         id + "@example.com",
		ExtractedInfo: map[string]string{},
		Hotness:       hotness,
		Intent:        scoring.IntentQuestion,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), lead))
	return lead
}

func TestInMemoryRepositoryCreateRequiresBusinessID(t *testing.T) {
	repo := NewInMemoryRepository()
	err := repo.Create(context.Background(), &Lead{ID: "x"})
	assert.ErrorIs(t, err, ErrMissingBusinessID)
}

// Reads are scoped by tenant: a lead is invisible to every other
// businessID, even by direct id.
func TestInMemoryRepositoryTenantIsolation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	seedLead(t, repo, "biz-a", "lead-1", scoring.HotnessHot, now)
	seedLead(t, repo, "biz-b", "lead-2", scoring.HotnessCold, now)

	_, err := repo.GetByID(ctx, "biz-b", "lead-1")
	assert.ErrorIs(t, err, ErrLeadNotFound)

	listed, err := repo.ListByBusiness(ctx, "biz-a", ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "lead-1", listed[0].ID)

	_, err = repo.UpdateNotes(ctx, "biz-b", "lead-1", "sneaky")
	assert.ErrorIs(t, err, ErrLeadNotFound)

	agg, err := repo.Aggregates(ctx, "biz-a")
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Total)
}

func TestInMemoryRepositoryListOrderAndFilters(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		hotness := scoring.HotnessCold
		if i%2 == 0 {
			hotness = scoring.HotnessHot
		}
		seedLead(t, repo, "biz-1", fmt.Sprintf("lead-%d", i), hotness, base.Add(time.Duration(i)*time.Hour))
	}

	listed, err := repo.ListByBusiness(ctx, "biz-1", ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 5)
	// Newest first.
	for i := 1; i < len(listed); i++ {
		assert.True(t, listed[i-1].CreatedAt.After(listed[i].CreatedAt))
	}

	hot, err := repo.ListByBusiness(ctx, "biz-1", ListFilter{Hotness: scoring.HotnessHot})
	require.NoError(t, err)
	assert.Len(t, hot, 3)

	page, err := repo.ListByBusiness(ctx, "biz-1", ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "lead-3", page[0].ID)

	empty, err := repo.ListByBusiness(ctx, "biz-1", ListFilter{Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInMemoryRepositoryUpdateNotes(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	seedLead(t, repo, "biz-1", "lead-1", scoring.HotnessWarm, time.Now().UTC())

	updated, err := repo.UpdateNotes(ctx, "biz-1", "lead-1", "called, left voicemail")
	require.NoError(t, err)
	assert.Equal(t, "called, left voicemail", updated.Notes)
}

func TestInMemoryRepositoryUpdateScore(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	seedLead(t, repo, "biz-1", "lead-1", scoring.HotnessCold, time.Now().UTC())

	eval := scoring.Evaluation{
		Hotness: scoring.HotnessHot,
		Factors: []scoring.Factor{{Name: scoring.FactorContactInfo, Present: true}},
		Intent:  scoring.IntentSales,
		Action:  scoring.SuggestedAction{Type: scoring.ActionCall, Priority: scoring.PriorityHigh},
	}
	updated, err := repo.UpdateScore(ctx, "biz-1", "lead-1", eval)
	require.NoError(t, err)
	assert.Equal(t, scoring.HotnessHot, updated.Hotness)
	assert.Equal(t, scoring.IntentSales, updated.Intent)
	assert.Equal(t, eval.Factors, updated.HotnessFactors)
	assert.Equal(t, scoring.ActionCall, updated.SuggestedAction.Type)
}

func TestInMemoryRepositoryAggregates(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	seedLead(t, repo, "biz-1", "lead-1", scoring.HotnessHot, day1)
	seedLead(t, repo, "biz-1", "lead-2", scoring.HotnessWarm, day1)
	seedLead(t, repo, "biz-1", "lead-3", scoring.HotnessCold, day2)

	// One lead without contact details.
	noContact := &Lead{
		ID: "lead-4", BusinessID: "biz-1", Hotness: scoring.HotnessCold,
		Intent: scoring.IntentUnknown, CreatedAt: day2, UpdatedAt: day2,
	}
	require.NoError(t, repo.Create(ctx, noContact))

	agg, err := repo.Aggregates(ctx, "biz-1")
	require.NoError(t, err)

	assert.Equal(t, 4, agg.Total)
	assert.Equal(t, 1, agg.ByHotness[scoring.HotnessHot])
	assert.Equal(t, 1, agg.ByHotness[scoring.HotnessWarm])
	assert.Equal(t, 2, agg.ByHotness[scoring.HotnessCold])
	require.Len(t, agg.PerDay, 2)
	assert.Equal(t, DayCount{Date: "2026-03-01", Count: 2}, agg.PerDay[0])
	assert.Equal(t, DayCount{Date: "2026-03-02", Count: 2}, agg.PerDay[1])
	assert.InDelta(t, 0.75, agg.ContactRatio, 1e-9)
}
