// Package store defines the storage contracts consumed by the lead import
// pipeline and the API, plus the chunked batch inserter that feeds candidate
// records into a backing store. Concrete backends live in the postgres and
// sqlite subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"npileads/internal/lead"
)

// Store is the narrow contract the batch inserter needs: one bulk existence
// query and one transactional batch write.
type Store interface {
	// ExistingNPIs reports which of the candidate NPIs are already persisted.
	// Implementations must answer in a single round-trip regardless of input
	// size.
	ExistingNPIs(ctx context.Context, npis []string) (map[string]struct{}, error)

	// InsertBatch persists the given candidates as one atomic unit. Either
	// every record in the batch is committed or none are. Empty phone,
	// specialty, and state values are stored as NULL.
	InsertBatch(ctx context.Context, leads []lead.Candidate) error
}

// ListFilter narrows and pages the lead listing. Search matches the name
// case-insensitively. Limit <= 0 means no limit.
type ListFilter struct {
	State     string
	Specialty string
	Search    string
	Limit     int
	Offset    int
}

// LeadUpdate carries a partial update; nil fields are left unchanged.
type LeadUpdate struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
	State     *string `json:"state"`
}

// ErrDuplicateNPI is returned by CreateLead when the NPI is already taken.
var ErrDuplicateNPI = errors.New("npi already exists")

// Repository is the full store surface: the inserter contract plus the query
// operations behind the HTTP API.
type Repository interface {
	Store

	GetLead(ctx context.Context, id uuid.UUID) (*lead.Lead, error)
	GetLeadByNPI(ctx context.Context, npi string) (*lead.Lead, error)

	// ListLeads returns the total number of matches before paging and the
	// requested page, newest first.
	ListLeads(ctx context.Context, f ListFilter) (int, []lead.Lead, error)

	CreateLead(ctx context.Context, c lead.Candidate) (*lead.Lead, error)
	UpdateLead(ctx context.Context, id uuid.UUID, upd LeadUpdate) (*lead.Lead, error)
	DeleteLead(ctx context.Context, id uuid.UUID) (bool, error)

	Close()
}

// WriteError wraps a failed chunk commit. NPIs identifies the chunk so the
// failure can be traced back to specific records; chunks committed earlier in
// the same run remain committed.
type WriteError struct {
	NPIs []string
	Err  error
}

func (e *WriteError) Error() string {
	n := len(e.NPIs)
	preview := e.NPIs
	if n > 5 {
		preview = e.NPIs[:5]
	}
	return fmt.Sprintf("store write failed for chunk of %d leads (npi %s): %v",
		n, strings.Join(preview, ","), e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
