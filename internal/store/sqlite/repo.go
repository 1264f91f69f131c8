// Package sqlite implements the lead store on SQLite via database/sql. It
// serves local development and tests; batch writes run inside a transaction
// so each chunk is atomic, mirroring the Postgres backend. IDs and
// timestamps are assigned client-side since SQLite has no uuid generator.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"npileads/internal/lead"
	"npileads/internal/store"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is passed to database/sql, e.g. "file:leads.db" or ":memory:".
	DSN string
}

// Repository is a SQLite-backed implementation of store.Repository.
type Repository struct {
	db *sql.DB
}

var _ store.Repository = (*Repository)(nil)

// New opens the database and verifies the connection.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single connection keeps in-memory databases from vanishing between
	// pooled connections.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close implements store.Repository.
func (r *Repository) Close() { r.db.Close() }

// EnsureSchema creates the leads table if absent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS leads (
    id         TEXT PRIMARY KEY,
    npi        TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    phone      TEXT,
    specialty  TEXT,
    state      TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS leads_state_idx ON leads (state);`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

// ExistingNPIs implements store.Store with one IN() query.
func (r *Repository) ExistingNPIs(ctx context.Context, npis []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(npis))
	if len(npis) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(npis)), ",")
	args := make([]any, len(npis))
	for i, n := range npis {
		args[i] = n
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT npi FROM leads WHERE npi IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: existing npis: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var npi string
		if err := rows.Scan(&npi); err != nil {
			return nil, fmt.Errorf("sqlite: scan npi: %w", err)
		}
		out[npi] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: existing npis: %w", err)
	}
	return out, nil
}

// InsertBatch implements store.Store: one transaction, prepared insert,
// rollback on any failure so the chunk stays atomic.
func (r *Repository) InsertBatch(ctx context.Context, leads []lead.Candidate) error {
	if len(leads) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (id, npi, name, phone, specialty, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, l := range leads {
		_, err := stmt.ExecContext(ctx,
			uuid.NewString(), l.NPI, l.Name,
			nullIfEmpty(l.Phone), nullIfEmpty(l.Specialty), nullIfEmpty(l.State),
			now)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert npi %s: %w", l.NPI, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

const leadFields = `id, npi, name,
	COALESCE(phone, ''), COALESCE(specialty, ''), COALESCE(state, ''), created_at`

// row is satisfied by both *sql.Row and *sql.Rows.
type row interface {
	Scan(dest ...any) error
}

func scanLead(rw row) (*lead.Lead, error) {
	var (
		l      lead.Lead
		id, ts string
	)
	err := rw.Scan(&id, &l.NPI, &l.Name, &l.Phone, &l.Specialty, &l.State, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan lead: %w", err)
	}
	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("sqlite: parse lead id: %w", err)
	}
	if l.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return nil, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	return &l, nil
}

// GetLead returns the lead with the given id, or nil when absent.
func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadFields+` FROM leads WHERE id = ?`, id.String()))
}

// GetLeadByNPI returns the lead with the given NPI, or nil when absent.
func (r *Repository) GetLeadByNPI(ctx context.Context, npi string) (*lead.Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadFields+` FROM leads WHERE npi = ?`, npi))
}

func listWhere(f store.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, f.State)
	}
	if f.Specialty != "" {
		conds = append(conds, "specialty = ?")
		args = append(args, f.Specialty)
	}
	if f.Search != "" {
		conds = append(conds, "LOWER(name) LIKE LOWER(?)")
		args = append(args, "%"+f.Search+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListLeads implements store.Repository.
func (r *Repository) ListLeads(ctx context.Context, f store.ListFilter) (int, []lead.Lead, error) {
	where, args := listWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("sqlite: count leads: %w", err)
	}

	q := `SELECT ` + leadFields + ` FROM leads` + where + ` ORDER BY created_at DESC, npi`
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			q += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("sqlite: list leads: %w", err)
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
		return 0, nil, fmt.Errorf("sqlite: list leads: %w", err)
	}
	return total, out, nil
}

// CreateLead inserts a single lead. A unique-constraint failure on npi maps
// to store.ErrDuplicateNPI.
func (r *Repository) CreateLead(ctx context.Context, c lead.Candidate) (*lead.Lead, error) {
	id := uuid.New()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leads (id, npi, name, phone, specialty, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), strings.TrimSpace(c.NPI), strings.TrimSpace(c.Name),
		nullIfEmpty(strings.TrimSpace(c.Phone)),
		nullIfEmpty(strings.TrimSpace(c.Specialty)),
		nullIfEmpty(strings.TrimSpace(c.State)),
		now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, store.ErrDuplicateNPI
		}
		return nil, fmt.Errorf("sqlite: create lead: %w", err)
	}
	return r.GetLead(ctx, id)
}

// UpdateLead applies the non-nil fields of upd and returns the updated lead,
// or nil when the id is unknown.
func (r *Repository) UpdateLead(ctx context.Context, id uuid.UUID, upd store.LeadUpdate) (*lead.Lead, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE leads SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update lead: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.GetLead(ctx, id)
}

// DeleteLead removes the lead and reports whether a row was deleted.
func (r *Repository) DeleteLead(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("sqlite: delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: delete lead: %w", err)
	}
	return n > 0, nil
}

// nullIfEmpty maps "" to SQL NULL for the nullable lead columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
