// Package lead defines the record types shared by the NPPES pipeline, the
// stores, and the HTTP API.
package lead

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is the formatted output of one pipeline run: a cleaned provider
// record that has not yet been persisted. NPI is the natural key; Phone is
// guaranteed non-empty by the cleaning stage, the remaining fields may be
// empty strings.
type Candidate struct {
	NPI       string `json:"npi"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	State     string `json:"state"`
}

// Lead is the persisted form of a Candidate. ID and CreatedAt are assigned by
// the store on insert. Phone, Specialty and State are stored as NULL when the
// candidate carried an empty string; they read back as "".
type Lead struct {
	ID        uuid.UUID `json:"id"`
	NPI       string    `json:"npi"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Specialty string    `json:"specialty"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}
