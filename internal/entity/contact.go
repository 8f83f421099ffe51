package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProvenanceRemoteReference tags contact rows that merely mirror a record
// owned by another organization. They are placeholders, not source data,
// and matching scans skip them.
const ProvenanceRemoteReference = "remote_reference"

// ContactEmail is a single address attached to a contact.
type ContactEmail struct {
	Address string `json:"address"`
	Primary bool   `json:"primary"`
}

// ContactPhone is a single phone number attached to a contact.
type ContactPhone struct {
	Number string  `json:"number"`
	Type   *string `json:"type,omitempty"`
}

// SocialProfile links a contact to a social network handle.
type SocialProfile struct {
	Network string `json:"network"`
	Handle  string `json:"handle"`
}

// PublicationRef points at a publication either directly by global id or
// through an organization-local reference token that needs resolving.
type PublicationRef struct {
	ID       *uuid.UUID `json:"id,omitempty"`
	LocalRef *string    `json:"local_ref,omitempty"`
}

// MediaProfile carries the press-specific attributes of a contact.
type MediaProfile struct {
	Journalist   bool             `json:"journalist"`
	Beats        []string         `json:"beats,omitempty"`
	MediaTypes   []string         `json:"media_types,omitempty"`
	Publications []PublicationRef `json:"publications,omitempty"`
}

// Contact is one organization's record of a person. The matching subsystem
// reads contacts and, on import, creates new merged ones; it never mutates
// records owned by other flows.
type Contact struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Title          *string         `json:"title,omitempty"`
	Suffix         *string         `json:"suffix,omitempty"`
	Emails         []ContactEmail  `json:"emails,omitempty"`
	Phones         []ContactPhone  `json:"phones,omitempty"`
	MediaProfile   *MediaProfile   `json:"media_profile,omitempty"`
	CompanyID      *uuid.UUID      `json:"company_id,omitempty"`
	CompanyName    *string         `json:"company_name,omitempty"`
	Position       *string         `json:"position,omitempty"`
	Department     *string         `json:"department,omitempty"`
	Socials        []SocialProfile `json:"socials,omitempty"`
	PhotoURL       *string         `json:"photo_url,omitempty"`
	WebsiteURL     *string         `json:"website_url,omitempty"`
	Provenance     *string         `json:"provenance,omitempty"`
	CandidateID    *uuid.UUID      `json:"candidate_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PrimaryEmail returns the address flagged primary, falling back to the
// first address when none is flagged.
func (c *Contact) PrimaryEmail() string {
	for _, e := range c.Emails {
		if e.Primary && strings.TrimSpace(e.Address) != "" {
			return e.Address
		}
	}
	for _, e := range c.Emails {
		if strings.TrimSpace(e.Address) != "" {
			return e.Address
		}
	}
	return ""
}

// IsJournalist reports whether the contact carries a press profile.
func (c *Contact) IsJournalist() bool {
	return c.MediaProfile != nil && c.MediaProfile.Journalist
}

// IsReferencePlaceholder reports whether the contact is a cross-organization
// reference placeholder rather than an owned record.
func (c *Contact) IsReferencePlaceholder() bool {
	return c.Provenance != nil && *c.Provenance == ProvenanceRemoteReference
}
