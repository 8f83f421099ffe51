package entity

import (
	"time"

	"github.com/google/uuid"
)

// Match key types.
const (
	MatchTypeEmail = "email"
	MatchTypeName  = "name"
)

// Candidate lifecycle states. Importing is a short-lived claim held by one
// import run; it keeps the candidate out of ListPending so a concurrent or
// stale run cannot create a second merged contact.
const (
	CandidateStatusPending   = "pending"
	CandidateStatusImporting = "importing"
	CandidateStatusImported  = "imported"
)

// ContactSnapshot is the denormalized, comparison-ready projection of a
// contact stored inside a candidate variant. Publication references are
// resolved to display names so downstream merging compares names, not ids.
type ContactSnapshot struct {
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	DisplayName     string          `json:"display_name"`
	Title           *string         `json:"title,omitempty"`
	Suffix          *string         `json:"suffix,omitempty"`
	Emails          []string        `json:"emails,omitempty"`
	Phones          []string        `json:"phones,omitempty"`
	HasMediaProfile bool            `json:"has_media_profile"`
	Beats           []string        `json:"beats,omitempty"`
	MediaTypes      []string        `json:"media_types,omitempty"`
	Publications    []string        `json:"publications,omitempty"`
	Position        *string         `json:"position,omitempty"`
	Department      *string         `json:"department,omitempty"`
	CompanyID       *uuid.UUID      `json:"company_id,omitempty"`
	CompanyName     *string         `json:"company_name,omitempty"`
	Socials         []SocialProfile `json:"socials,omitempty"`
	PhotoURL        *string         `json:"photo_url,omitempty"`
	WebsiteURL      *string         `json:"website_url,omitempty"`
}

// CandidateVariant is one organization's version of the matched person.
type CandidateVariant struct {
	OrganizationID   uuid.UUID       `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
	ContactID        uuid.UUID       `json:"contact_id"`
	Snapshot         ContactSnapshot `json:"snapshot"`
}

// MatchingCandidate aggregates all variants sharing a match key together
// with the confidence score and import lifecycle state. Variants hold at
// most one entry per organization.
type MatchingCandidate struct {
	ID                uuid.UUID          `json:"id"`
	MatchKey          string             `json:"match_key"`
	MatchType         string             `json:"match_type"`
	Score             int                `json:"score"`
	Variants          []CandidateVariant `json:"variants"`
	Status            string             `json:"status"`
	ScanJobID         uuid.UUID          `json:"scan_job_id"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	LastScannedAt     time.Time          `json:"last_scanned_at"`
	ImportedAt        *time.Time         `json:"imported_at,omitempty"`
	ImportedBy        *string            `json:"imported_by,omitempty"`
	ImportedContactID *uuid.UUID         `json:"imported_contact_id,omitempty"`
	BaseVariantIndex  *int               `json:"base_variant_index,omitempty"`
}

// OrganizationCount returns the number of distinct organizations among the
// candidate's variants.
func (c *MatchingCandidate) OrganizationCount() int {
	seen := make(map[uuid.UUID]struct{}, len(c.Variants))
	for _, v := range c.Variants {
		seen[v.OrganizationID] = struct{}{}
	}
	return len(seen)
}
