package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/pressmate/media-crm/api/internal/entity"
	"github.com/pressmate/media-crm/api/internal/repository"
)

// Snapshotter builds the denormalized projection of a contact stored inside
// candidate variants. Publication references are resolved to display names;
// a single publication failing to resolve is skipped, never fatal.
type Snapshotter struct {
	publications repository.PublicationsRepository
	phoneRegion  string
}

// NewSnapshotter constructs a snapshotter resolving publications through the
// given repository.
func NewSnapshotter(publications repository.PublicationsRepository, phoneRegion string) *Snapshotter {
	if phoneRegion == "" {
		phoneRegion = defaultPhoneRegion
	}
	return &Snapshotter{publications: publications, phoneRegion: phoneRegion}
}

// Snapshot projects a contact into its comparison-ready form.
func (s *Snapshotter) Snapshot(ctx context.Context, contact *entity.Contact) entity.ContactSnapshot {
	firstName := strings.TrimSpace(contact.FirstName)
	lastName := strings.TrimSpace(contact.LastName)

	snapshot := entity.ContactSnapshot{
		FirstName:       firstName,
		LastName:        lastName,
		DisplayName:     strings.TrimSpace(firstName + " " + lastName),
		Title:           contact.Title,
		Suffix:          contact.Suffix,
		HasMediaProfile: contact.MediaProfile != nil,
		Position:        contact.Position,
		Department:      contact.Department,
		CompanyID:       contact.CompanyID,
		CompanyName:     contact.CompanyName,
		PhotoURL:        contact.PhotoURL,
		WebsiteURL:      contact.WebsiteURL,
	}

	for _, email := range contact.Emails {
		if normalized := normalizeEmail(email.Address); normalized != "" {
			snapshot.Emails = append(snapshot.Emails, normalized)
		}
	}
	for _, phone := range contact.Phones {
		if normalized := normalizePhone(phone.Number, s.phoneRegion); normalized != "" {
			snapshot.Phones = append(snapshot.Phones, normalized)
		}
	}
	if len(contact.Socials) > 0 {
		snapshot.Socials = append([]entity.SocialProfile(nil), contact.Socials...)
	}

	if contact.MediaProfile != nil {
		profile := contact.MediaProfile
		if len(profile.Beats) > 0 {
			snapshot.Beats = append([]string(nil), profile.Beats...)
		}
		if len(profile.MediaTypes) > 0 {
			snapshot.MediaTypes = append([]string(nil), profile.MediaTypes...)
		}
		snapshot.Publications = s.resolvePublicationNames(ctx, contact.OrganizationID, profile.Publications)
	}

	return snapshot
}

// resolvePublicationNames maps publication references to display names,
// following the local-reference indirection where needed.
func (s *Snapshotter) resolvePublicationNames(ctx context.Context, orgID uuid.UUID, refs []entity.PublicationRef) []string {
	var names []string
	seen := make(map[string]struct{}, len(refs))

	for _, ref := range refs {
		id := uuid.Nil
		switch {
		case ref.ID != nil:
			id = *ref.ID
		case ref.LocalRef != nil && strings.TrimSpace(*ref.LocalRef) != "":
			resolved, err := s.publications.ResolveReference(ctx, orgID, *ref.LocalRef)
			if err != nil {
				log.Printf("snapshot: resolve publication ref %q org=%s: %v", *ref.LocalRef, orgID, err)
				continue
			}
			id = resolved
		default:
			continue
		}

		name, err := s.publications.GetName(ctx, id)
		if err != nil {
			log.Printf("snapshot: publication name %s: %v", id, err)
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			continue
		}
		seen[strings.ToLower(name)] = struct{}{}
		names = append(names, name)
	}
	return names
}
