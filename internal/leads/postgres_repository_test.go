package leads

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpadhq/intake-platform/internal/scoring"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func leadRowColumns() []string {
	return []string{
		"id", "business_id", "full_name", "email", "phone", "source_page", "source_referrer",
		"conversation", "extracted_info", "hotness", "hotness_factors", "intent", "suggested_action",
		"escalated", "notes", "created_at", "updated_at",
	}
}

func sampleLeadRow(id, businessID string, createdAt time.Time) []any {
	return []any{
		id, businessID, "Jane Roe", "jane@example.com", "+15551234567", "/pricing", "google.com",
		[]byte(`[{"role":"user","content":"hi"}]`),
		[]byte(`{"business_type":"bakery"}`),
		"warm",
		[]byte(`[{"name":"contact_info_provided","present":true}]`),
		"sales",
		[]byte(`{"type":"email","label":"Email pricing details","reason":"r","priority":"medium"}`),
		false, "", createdAt, createdAt,
	}
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(
			"lead-1", "biz-1", "Jane Roe", "jane@example.com", "+15551234567",
			"/pricing", "google.com",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "warm", pgxmock.AnyArg(), "sales", pgxmock.AnyArg(),
			false, "", pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	now := time.Now().UTC()
	lead := &Lead{
		ID:         "lead-1",
		BusinessID: "biz-1",
		FullName:   "Jane Roe",
		Email:      "jane@example.com",
		Phone:      "+15551234567",
		Source:     Source{Page: "/pricing", Referrer: "google.com"},
		Hotness:    scoring.HotnessWarm,
		Intent:     scoring.IntentSales,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.Create(context.Background(), lead))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateRequiresBusinessID(t *testing.T) {
	repo, _ := newMockRepo(t)
	err := repo.Create(context.Background(), &Lead{ID: "lead-1"})
	assert.ErrorIs(t, err, ErrMissingBusinessID)
}

func TestPostgresGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM leads WHERE id = .+ AND business_id = .+").
		WithArgs("lead-1", "biz-1").
		WillReturnRows(pgxmock.NewRows(leadRowColumns()).AddRow(sampleLeadRow("lead-1", "biz-1", now)...))

	lead, err := repo.GetByID(context.Background(), "biz-1", "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", lead.FullName)
	assert.Equal(t, scoring.HotnessWarm, lead.Hotness)
	assert.Equal(t, scoring.IntentSales, lead.Intent)
	assert.Equal(t, "bakery", lead.ExtractedInfo["business_type"])
	require.Len(t, lead.Conversation, 1)
	assert.Equal(t, "hi", lead.Conversation[0].Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .+ FROM leads WHERE id = .+ AND business_id = .+").
		WithArgs("missing", "biz-1").
		WillReturnRows(pgxmock.NewRows(leadRowColumns()))

	_, err := repo.GetByID(context.Background(), "biz-1", "missing")
	assert.ErrorIs(t, err, ErrLeadNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByBusinessWithFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM leads WHERE business_id = .+ AND hotness = .+ ORDER BY created_at DESC LIMIT .+").
		WithArgs("biz-1", "warm", 10).
		WillReturnRows(pgxmock.NewRows(leadRowColumns()).
			AddRow(sampleLeadRow("lead-1", "biz-1", now)...).
			AddRow(sampleLeadRow("lead-2", "biz-1", now.Add(-time.Hour))...))

	listed, err := repo.ListByBusiness(context.Background(), "biz-1", ListFilter{
		Hotness: scoring.HotnessWarm,
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateNotesNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE leads SET notes").
		WithArgs("note", pgxmock.AnyArg(), "missing", "biz-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := repo.UpdateNotes(context.Background(), "biz-1", "missing", "note")
	assert.ErrorIs(t, err, ErrLeadNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateScore(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE leads SET hotness").
		WithArgs("hot", pgxmock.AnyArg(), "sales", pgxmock.AnyArg(), pgxmock.AnyArg(), "lead-1", "biz-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT .+ FROM leads WHERE id = .+ AND business_id = .+").
		WithArgs("lead-1", "biz-1").
		WillReturnRows(pgxmock.NewRows(leadRowColumns()).AddRow(sampleLeadRow("lead-1", "biz-1", now)...))

	eval := scoring.Evaluation{
		Hotness: scoring.HotnessHot,
		Factors: []scoring.Factor{{Name: scoring.FactorContactInfo, Present: true}},
		Intent:  scoring.IntentSales,
		Action:  scoring.SuggestedAction{Type: scoring.ActionCall, Priority: scoring.PriorityHigh},
	}
	_, err := repo.UpdateScore(context.Background(), "biz-1", "lead-1", eval)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAggregates(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT hotness, COUNT\\(\\*\\) FROM leads").
		WithArgs("biz-1").
		WillReturnRows(pgxmock.NewRows([]string{"hotness", "count"}).
			AddRow("hot", 2).
			AddRow("cold", 3))
	mock.ExpectQuery("SELECT to_char").
		WithArgs("biz-1").
		WillReturnRows(pgxmock.NewRows([]string{"day", "count"}).
			AddRow("2026-03-01", 4).
			AddRow("2026-03-02", 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM leads").
		WithArgs("biz-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	agg, err := repo.Aggregates(context.Background(), "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 5, agg.Total)
	assert.Equal(t, 2, agg.ByHotness[scoring.HotnessHot])
	assert.Equal(t, 3, agg.ByHotness[scoring.HotnessCold])
	require.Len(t, agg.PerDay, 2)
	assert.Equal(t, DayCount{Date: "2026-03-01", Count: 4}, agg.PerDay[0])
	assert.InDelta(t, 0.8, agg.ContactRatio, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}
