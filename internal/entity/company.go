package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProvenanceAutoMatching tags records created by the matching importer so
// they can be told apart from manually curated ones.
const ProvenanceAutoMatching = "auto_matching"

// Company is an employer entity resolved or created during import, scoped
// to the organization the merged contact is imported into.
type Company struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Provenance     *string   `json:"provenance,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Publication is an outlet linked to a company, resolved or created lazily
// during import by exact name match.
type Publication struct {
	ID         uuid.UUID `json:"id"`
	CompanyID  uuid.UUID `json:"company_id"`
	Name       string    `json:"name"`
	Provenance *string   `json:"provenance,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
