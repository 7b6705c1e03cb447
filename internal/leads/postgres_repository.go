package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/launchpadhq/intake-platform/internal/scoring"
)

// DB is the subset of pgxpool.Pool the repository needs. Narrowing it
// lets tests substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const leadColumns = `id, business_id, full_name, email, phone, source_page, source_referrer,
	conversation, extracted_info, hotness, hotness_factors, intent, suggested_action,
	escalated, notes, created_at, updated_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.BusinessID == "" {
		return ErrMissingBusinessID
	}

	conversation, err := json.Marshal(lead.Conversation)
	if err != nil {
		return fmt.Errorf("leads: encode conversation: %w", err)
	}
	extracted, err := json.Marshal(lead.ExtractedInfo)
	if err != nil {
		return fmt.Errorf("leads: encode extracted info: %w", err)
	}
	factors, err := json.Marshal(lead.HotnessFactors)
	if err != nil {
		return fmt.Errorf("leads: encode hotness factors: %w", err)
	}
	action, err := json.Marshal(lead.SuggestedAction)
	if err != nil {
		return fmt.Errorf("leads: encode suggested action: %w", err)
	}

	query := `
		INSERT INTO leads (id, business_id, full_name, email, phone, source_page, source_referrer,
			conversation, extracted_info, hotness, hotness_factors, intent, suggested_action,
			escalated, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	if _, err := r.db.Exec(ctx, query,
		lead.ID,
		lead.BusinessID,
		lead.FullName,
		lead.Email,
		lead.Phone,
		lead.Source.Page,
		lead.Source.Referrer,
		conversation,
		extracted,
		string(lead.Hotness),
		factors,
		string(lead.Intent),
		action,
		lead.Escalated,
		lead.Notes,
		lead.CreatedAt,
		lead.UpdatedAt,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches a lead scoped to the tenant.
func (r *PostgresRepository) GetByID(ctx context.Context, businessID, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND business_id = $2`
	row := r.db.QueryRow(ctx, query, id, businessID)
	lead, err := scanLead(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// ListByBusiness returns the tenant's leads, newest first.
func (r *PostgresRepository) ListByBusiness(ctx context.Context, businessID string, filter ListFilter) ([]*Lead, error) {
	if businessID == "" {
		return nil, ErrMissingBusinessID
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE business_id = $1`
	args := []any{businessID}

	if filter.Hotness != "" {
		args = append(args, string(filter.Hotness))
		query += fmt.Sprintf(" AND hotness = $%d", len(args))
	}
	if filter.Intent != "" {
		args = append(args, string(filter.Intent))
		query += fmt.Sprintf(" AND intent = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// UpdateNotes replaces the operator notes and bumps updated_at.
func (r *PostgresRepository) UpdateNotes(ctx context.Context, businessID, id, notes string) (*Lead, error) {
	query := `
		UPDATE leads SET notes = $1, updated_at = $2
		WHERE id = $3 AND business_id = $4
	`
	tag, err := r.db.Exec(ctx, query, notes, time.Now().UTC(), id, businessID)
	if err != nil {
		return nil, fmt.Errorf("leads: update notes failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrLeadNotFound
	}
	return r.GetByID(ctx, businessID, id)
}

// UpdateScore replaces the scoring outcome in one statement so hotness
// and its factors stay mutually consistent.
func (r *PostgresRepository) UpdateScore(ctx context.Context, businessID, id string, eval scoring.Evaluation) (*Lead, error) {
	factors, err := json.Marshal(eval.Factors)
	if err != nil {
		return nil, fmt.Errorf("leads: encode hotness factors: %w", err)
	}
	action, err := json.Marshal(eval.Action)
	if err != nil {
		return nil, fmt.Errorf("leads: encode suggested action: %w", err)
	}

	query := `
		UPDATE leads SET hotness = $1, hotness_factors = $2, intent = $3, suggested_action = $4, updated_at = $5
		WHERE id = $6 AND business_id = $7
	`
	tag, err := r.db.Exec(ctx, query,
		string(eval.Hotness), factors, string(eval.Intent), action, time.Now().UTC(), id, businessID)
	if err != nil {
		return nil, fmt.Errorf("leads: update score failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrLeadNotFound
	}
	return r.GetByID(ctx, businessID, id)
}

// Aggregates computes the dashboard reporting numbers for one tenant.
func (r *PostgresRepository) Aggregates(ctx context.Context, businessID string) (*Aggregates, error) {
	if businessID == "" {
		return nil, ErrMissingBusinessID
	}

	agg := &Aggregates{
		ByHotness: map[scoring.Hotness]int{
			scoring.HotnessHot:  0,
			scoring.HotnessWarm: 0,
			scoring.HotnessCold: 0,
		},
	}

	rows, err := r.db.Query(ctx,
		`SELECT hotness, COUNT(*) FROM leads WHERE business_id = $1 GROUP BY hotness`,
		businessID)
	if err != nil {
		return nil, fmt.Errorf("leads: hotness counts failed: %w", err)
	}
	for rows.Next() {
		var hotness string
		var count int
		if err := rows.Scan(&hotness, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("leads: scan hotness count: %w", err)
		}
		agg.ByHotness[scoring.Hotness(hotness)] = count
		agg.Total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: hotness counts failed: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM leads WHERE business_id = $1
		GROUP BY day ORDER BY day
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("leads: per-day counts failed: %w", err)
	}
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("leads: scan per-day count: %w", err)
		}
		agg.PerDay = append(agg.PerDay, dc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: per-day counts failed: %w", err)
	}

	var withContact int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE business_id = $1 AND (email <> '' OR phone <> '')`,
		businessID).Scan(&withContact); err != nil {
		return nil, fmt.Errorf("leads: contact ratio failed: %w", err)
	}
	if agg.Total > 0 {
		agg.ContactRatio = float64(withContact) / float64(agg.Total)
	}
	return agg, nil
}

// scanLead reads one lead row from either a pgx.Row or pgx.Rows.
func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	var conversation, extracted, factors, action []byte
	var hotness, intent string

	if err := row.Scan(
		&lead.ID,
		&lead.BusinessID,
		&lead.FullName,
		&lead.Email,
		&lead.Phone,
		&lead.Source.Page,
		&lead.Source.Referrer,
		&conversation,
		&extracted,
		&hotness,
		&factors,
		&intent,
		&action,
		&lead.Escalated,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}

	lead.Hotness = scoring.Hotness(hotness)
	lead.Intent = scoring.Intent(intent)
	if err := json.Unmarshal(conversation, &lead.Conversation); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	if err := json.Unmarshal(extracted, &lead.ExtractedInfo); err != nil {
		return nil, fmt.Errorf("decode extracted info: %w", err)
	}
	if err := json.Unmarshal(factors, &lead.HotnessFactors); err != nil {
		return nil, fmt.Errorf("decode hotness factors: %w", err)
	}
	if err := json.Unmarshal(action, &lead.SuggestedAction); err != nil {
		return nil, fmt.Errorf("decode suggested action: %w", err)
	}
	return &lead, nil
}
