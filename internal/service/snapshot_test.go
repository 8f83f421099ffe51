package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pressmate/media-crm/api/internal/entity"
)

func TestSnapshotBasicFields(t *testing.T) {
	position := "Editor"
	company := "Spiegel Verlag"
	s := NewSnapshotter(newFakePublications(), "DE")

	contact := &entity.Contact{
		ID:          uuid.New(),
		FirstName:   "  Jane ",
		LastName:    " Doe ",
		Position:    &position,
		CompanyName: &company,
		Emails: []entity.ContactEmail{
			{Address: "Jane.Doe@Spiegel.DE", Primary: true},
			{Address: "broken"},
		},
		Phones: []entity.ContactPhone{
			{Number: "0151 12345678"},
			{Number: "   "},
		},
		Socials: []entity.SocialProfile{{Network: "twitter", Handle: "@janedoe"}},
	}

	snapshot := s.Snapshot(context.Background(), contact)

	if snapshot.DisplayName != "Jane Doe" {
		t.Fatalf("expected display name Jane Doe, got %q", snapshot.DisplayName)
	}
	if len(snapshot.Emails) != 1 || snapshot.Emails[0] != "jane.doe@spiegel.de" {
		t.Fatalf("expected one normalized email, got %v", snapshot.Emails)
	}
	if len(snapshot.Phones) != 1 || snapshot.Phones[0] != "+4915112345678" {
		t.Fatalf("expected one normalized phone, got %v", snapshot.Phones)
	}
	if snapshot.HasMediaProfile {
		t.Fatalf("expected no media profile")
	}
	if snapshot.CompanyName == nil || *snapshot.CompanyName != company {
		t.Fatalf("expected company name carried over")
	}
	if len(snapshot.Socials) != 1 {
		t.Fatalf("expected socials carried over")
	}
}

func TestSnapshotResolvesPublicationReferences(t *testing.T) {
	pubs := newFakePublications()
	orgID := uuid.New()
	directID := pubs.addNamed("Der Spiegel")
	referencedID := pubs.addNamed("Spiegel Online")
	pubs.references[orgID.String()+"/local-42"] = referencedID

	localRef := "local-42"
	contact := &entity.Contact{
		OrganizationID: orgID,
		FirstName:      "Jane",
		LastName:       "Doe",
		MediaProfile: &entity.MediaProfile{
			Journalist: true,
			Beats:      []string{"politics"},
			Publications: []entity.PublicationRef{
				{ID: &directID},
				{LocalRef: &localRef},
			},
		},
	}

	s := NewSnapshotter(pubs, "DE")
	snapshot := s.Snapshot(context.Background(), contact)

	if !snapshot.HasMediaProfile {
		t.Fatalf("expected media profile flag")
	}
	if len(snapshot.Publications) != 2 {
		t.Fatalf("expected both publications resolved, got %v", snapshot.Publications)
	}
	if snapshot.Publications[0] != "Der Spiegel" || snapshot.Publications[1] != "Spiegel Online" {
		t.Fatalf("unexpected publication names: %v", snapshot.Publications)
	}
	if len(snapshot.Beats) != 1 || snapshot.Beats[0] != "politics" {
		t.Fatalf("expected beats carried over, got %v", snapshot.Beats)
	}
}

func TestSnapshotSkipsUnresolvablePublications(t *testing.T) {
	pubs := newFakePublications()
	orgID := uuid.New()
	knownID := pubs.addNamed("Die Zeit")
	unknownID := uuid.New()
	missingRef := "nowhere"

	contact := &entity.Contact{
		OrganizationID: orgID,
		FirstName:      "Jane",
		LastName:       "Doe",
		MediaProfile: &entity.MediaProfile{
			Journalist: true,
			Publications: []entity.PublicationRef{
				{ID: &unknownID},
				{LocalRef: &missingRef},
				{ID: &knownID},
				{},
			},
		},
	}

	s := NewSnapshotter(pubs, "DE")
	snapshot := s.Snapshot(context.Background(), contact)

	if len(snapshot.Publications) != 1 || snapshot.Publications[0] != "Die Zeit" {
		t.Fatalf("expected only the resolvable publication, got %v", snapshot.Publications)
	}
}

func TestSnapshotDeduplicatesPublicationNames(t *testing.T) {
	pubs := newFakePublications()
	first := pubs.addNamed("Der Spiegel")
	second := pubs.addNamed("der spiegel")

	contact := &entity.Contact{
		FirstName: "Jane",
		LastName:  "Doe",
		MediaProfile: &entity.MediaProfile{
			Journalist: true,
			Publications: []entity.PublicationRef{
				{ID: &first},
				{ID: &second},
			},
		},
	}

	s := NewSnapshotter(pubs, "DE")
	snapshot := s.Snapshot(context.Background(), contact)

	if len(snapshot.Publications) != 1 {
		t.Fatalf("expected case-insensitive dedupe, got %v", snapshot.Publications)
	}
}
