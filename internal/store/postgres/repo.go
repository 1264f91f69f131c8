// Package postgres implements the lead store on Postgres using pgx v5. Batch
// writes go through CopyFrom inside an explicit transaction so each chunk
// commits as one atomic unit; the unique index on leads.npi is the backstop
// against concurrent import runs racing on the same identifier.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"npileads/internal/lead"
	"npileads/internal/store"
)

// Config holds Postgres repository configuration.
type Config struct {
	// DSN is the connection string for pgxpool, e.g. postgresql://...
	// Connection-level timeouts belong in the DSN, not in this package.
	DSN string
}

// Repository is a Postgres-backed implementation of store.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

var _ store.Repository = (*Repository)(nil)

// insertColumns is the column order used for COPY and INSERT.
var insertColumns = []string{"npi", "name", "phone", "specialty", "state"}

// New constructs a Repository. Close releases the pool.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Close implements store.Repository.
func (r *Repository) Close() { r.pool.Close() }

// EnsureSchema creates the leads table and its unique NPI index if absent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS leads (
    id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    npi        text NOT NULL,
    name       text NOT NULL,
    phone      text,
    specialty  text,
    state      text,
    created_at timestamptz NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS leads_npi_key ON leads (npi);
CREATE INDEX IF NOT EXISTS leads_state_idx ON leads (state);`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// ExistingNPIs implements store.Store with a single ANY() round-trip.
func (r *Repository) ExistingNPIs(ctx context.Context, npis []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(npis))
	if len(npis) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT npi FROM leads WHERE npi = ANY($1)`, npis)
	if err != nil {
		return nil, fmt.Errorf("postgres: existing npis: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var npi string
		if err := rows.Scan(&npi); err != nil {
			return nil, fmt.Errorf("postgres: scan npi: %w", err)
		}
		out[npi] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: existing npis: %w", err)
	}
	return out, nil
}

// InsertBatch implements store.Store. The COPY runs inside one transaction;
// on any failure the transaction rolls back and nothing from this batch is
// persisted.
func (r *Repository) InsertBatch(ctx context.Context, leads []lead.Candidate) error {
	if len(leads) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"leads"}, insertColumns,
		pgx.CopyFromSlice(len(leads), func(i int) ([]any, error) {
			l := leads[i]
			return []any{
				l.NPI,
				l.Name,
				nullIfEmpty(l.Phone),
				nullIfEmpty(l.Specialty),
				nullIfEmpty(l.State),
			}, nil
		}))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return fmt.Errorf("postgres: copy leads: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return fmt.Errorf("postgres: copy leads: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const leadFields = `id::text, npi, name,
	COALESCE(phone, ''), COALESCE(specialty, ''), COALESCE(state, ''), created_at`

func scanLead(row pgx.Row) (*lead.Lead, error) {
	var (
		l  lead.Lead
		id string
	)
	err := row.Scan(&id, &l.NPI, &l.Name, &l.Phone, &l.Specialty, &l.State, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan lead: %w", err)
	}
	l.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse lead id: %w", err)
	}
	return &l, nil
}

// GetLead returns the lead with the given id, or nil when absent.
func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leadFields+` FROM leads WHERE id = $1`, id.String())
	return scanLead(row)
}

// GetLeadByNPI returns the lead with the given NPI, or nil when absent.
func (r *Repository) GetLeadByNPI(ctx context.Context, npi string) (*lead.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leadFields+` FROM leads WHERE npi = $1`, npi)
	return scanLead(row)
}

// listWhere builds the shared WHERE clause for ListLeads.
func listWhere(f store.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.State != "" {
		add("state = $%d", f.State)
	}
	if f.Specialty != "" {
		add("specialty = $%d", f.Specialty)
	}
	if f.Search != "" {
		add("name ILIKE $%d", "%"+f.Search+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListLeads implements store.Repository: total match count before paging,
// then the requested page newest-first.
func (r *Repository) ListLeads(ctx context.Context, f store.ListFilter) (int, []lead.Lead, error) {
	where, args := listWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("postgres: count leads: %w", err)
	}

	q := `SELECT ` + leadFields + ` FROM leads` + where + ` ORDER BY created_at DESC, npi`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("postgres: list leads: %w", err)
	}
	defer rows.Close()

	var out []lead.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return 0, nil, err
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("postgres: list leads: %w", err)
	}
	return total, out, nil
}

// CreateLead inserts a single lead and returns it with its server-assigned
// id and timestamp. A unique-violation on npi maps to store.ErrDuplicateNPI.
func (r *Repository) CreateLead(ctx context.Context, c lead.Candidate) (*lead.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO leads (npi, name, phone, specialty, state)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+leadFields,
		strings.TrimSpace(c.NPI), strings.TrimSpace(c.Name),
		nullIfEmpty(strings.TrimSpace(c.Phone)),
		nullIfEmpty(strings.TrimSpace(c.Specialty)),
		nullIfEmpty(strings.TrimSpace(c.State)))
	l, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, store.ErrDuplicateNPI
		}
		return nil, err
	}
	return l, nil
}

// UpdateLead applies the non-nil fields of upd and returns the updated lead,
// or nil when the id is unknown.
func (r *Repository) UpdateLead(ctx context.Context, id uuid.UUID, upd store.LeadUpdate) (*lead.Lead, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Phone != nil {
		set("phone", nullIfEmpty(*upd.Phone))
	}
	if upd.Specialty != nil {
		set("specialty", nullIfEmpty(*upd.Specialty))
	}
	if upd.State != nil {
		set("state", nullIfEmpty(*upd.State))
	}
	if len(sets) == 0 {
		return r.GetLead(ctx, id)
	}
	args = append(args, id.String())
	q := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING `+leadFields,
		strings.Join(sets, ", "), len(args))
	return scanLead(r.pool.QueryRow(ctx, q, args...))
}

// DeleteLead removes the lead and reports whether a row was deleted.
func (r *Repository) DeleteLead(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id.String())
	if err != nil {
		return false, fmt.Errorf("postgres: delete lead: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// nullIfEmpty maps "" to SQL NULL for the nullable lead columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
