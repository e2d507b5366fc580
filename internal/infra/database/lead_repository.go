package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/reverio/leadgen/internal/entity"
)

const leadColumns = `id, external_key, company_name, industry, location, website, email, phone,
	description, source, status, owner_id, assigned_at, locked_until, created_at, updated_at`

const recentLeadsLimit = 5

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) InsertIfAbsent(ctx context.Context, lead *entity.Lead) (bool, error) {
	query := `
		INSERT INTO leads (external_key, company_name, industry, location, website, email, phone,
			description, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_key) DO NOTHING
		RETURNING id
	`

	err := conn(ctx, r.DB).QueryRowxContext(ctx, query,
		lead.ExternalKey,
		lead.CompanyName,
		lead.Industry,
		lead.Location,
		lead.Website,
		lead.Email,
		lead.Phone,
		lead.Description,
		lead.Source,
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
	).Scan(&lead.ID)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert lead: %w", err)
	}
	return true, nil
}

// LockAvailable must run inside a transaction; the row locks are released
// on commit or rollback.
func (r *LeadRepository) LockAvailable(ctx context.Context, limit int) ([]entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE owner_id IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	var leads []entity.Lead
	if err := conn(ctx, r.DB).SelectContext(ctx, &leads, query, limit); err != nil {
		return nil, fmt.Errorf("lock available leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) CountAvailable(ctx context.Context) (int, error) {
	var n int
	if err := conn(ctx, r.DB).GetContext(ctx, &n, `SELECT COUNT(*) FROM leads WHERE owner_id IS NULL`); err != nil {
		return 0, fmt.Errorf("count available leads: %w", err)
	}
	return n, nil
}

func (r *LeadRepository) Assign(ctx context.Context, lead *entity.Lead) error {
	if !lead.Assigned() {
		return fmt.Errorf("assign lead %d: no owner set", lead.ID)
	}

	query := `
		UPDATE leads
		SET owner_id = $2, status = $3, assigned_at = $4, locked_until = $5, updated_at = $6
		WHERE id = $1 AND owner_id IS NULL
	`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		lead.ID,
		*lead.OwnerID,
		lead.Status,
		lead.AssignedAt,
		lead.LockedUntil,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("assign lead %d: %w", lead.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign lead %d: %w", lead.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("assign lead %d: %w", lead.ID, entity.ErrConcurrencyConflict)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	return r.findOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
}

func (r *LeadRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Lead, error) {
	return r.findOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, id)
}

func (r *LeadRepository) findOne(ctx context.Context, query string, id int64) (*entity.Lead, error) {
	var lead entity.Lead
	if err := conn(ctx, r.DB).GetContext(ctx, &lead, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead %d: %w", id, err)
	}
	return &lead, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, lead *entity.Lead) error {
	if !lead.Assigned() {
		return entity.ErrNotOwner
	}

	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = $3 WHERE id = $1 AND owner_id = $4`,
		lead.ID, lead.Status, lead.UpdatedAt, *lead.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update lead %d status: %w", lead.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead %d status: %w", lead.ID, err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) ListByOwner(ctx context.Context, ownerID string, filter entity.LeadFilter) ([]entity.Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE owner_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY assigned_at DESC, id DESC
		LIMIT $3
	`

	leads := []entity.Lead{}
	if err := conn(ctx, r.DB).SelectContext(ctx, &leads, query, ownerID, string(filter.Status), limit); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

type statusCount struct {
	Status entity.LeadStatus `db:"status"`
	Count  int               `db:"count"`
}

func (r *LeadRepository) OwnerStats(ctx context.Context, ownerID string, since time.Time) (*entity.LeadStats, error) {
	q := conn(ctx, r.DB)

	var counts []statusCount
	if err := q.SelectContext(ctx, &counts,
		`SELECT status, COUNT(*) AS count FROM leads WHERE owner_id = $1 GROUP BY status`, ownerID,
	); err != nil {
		return nil, fmt.Errorf("owner stats: %w", err)
	}

	stats := &entity.LeadStats{ByStatus: byStatus(counts)}
	for _, c := range counts {
		stats.Total += c.Count
	}

	if err := q.GetContext(ctx, &stats.Today,
		`SELECT COUNT(*) FROM leads WHERE owner_id = $1 AND assigned_at >= $2`, ownerID, since,
	); err != nil {
		return nil, fmt.Errorf("owner stats: %w", err)
	}

	recent, err := r.ListByOwner(ctx, ownerID, entity.LeadFilter{Limit: recentLeadsLimit})
	if err != nil {
		return nil, err
	}
	stats.RecentLeads = recent

	return stats, nil
}

func (r *LeadRepository) PoolStats(ctx context.Context, now time.Time) (*entity.PoolStats, error) {
	q := conn(ctx, r.DB)

	var row struct {
		Total     int `db:"total"`
		Available int `db:"available"`
		Assigned  int `db:"assigned"`
		Locked    int `db:"locked"`
	}
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE owner_id IS NULL) AS available,
			COUNT(*) FILTER (WHERE owner_id IS NOT NULL) AS assigned,
			COUNT(*) FILTER (WHERE locked_until > $1) AS locked
		FROM leads
	`
	if err := q.GetContext(ctx, &row, query, now); err != nil {
		return nil, fmt.Errorf("pool stats: %w", err)
	}

	var counts []statusCount
	if err := q.SelectContext(ctx, &counts, `SELECT status, COUNT(*) AS count FROM leads GROUP BY status`); err != nil {
		return nil, fmt.Errorf("pool stats: %w", err)
	}

	return &entity.PoolStats{
		Total:     row.Total,
		Available: row.Available,
		Assigned:  row.Assigned,
		Locked:    row.Locked,
		ByStatus:  byStatus(counts),
	}, nil
}

func byStatus(counts []statusCount) map[entity.LeadStatus]int {
	out := make(map[entity.LeadStatus]int, len(entity.AllStatuses))
	for _, s := range entity.AllStatuses {
		out[s] = 0
	}
	for _, c := range counts {
		out[c.Status] = c.Count
	}
	return out
}
