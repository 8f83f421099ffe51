package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pressmate/media-crm/api/internal/entity"
	"github.com/pressmate/media-crm/api/internal/repository"
)

// baseVariantIndex records which variant the merge started from. Variants
// are sorted by organization name, the first one is always the base.
const baseVariantIndex = 0

// ImportConfig carries the importer defaults taken from configuration.
type ImportConfig struct {
	MinScore  int
	BatchSize int
}

// ImportOptions parameterizes one import run.
type ImportOptions struct {
	MinScore       int
	UseMergeAssist bool
	Actor          string
	OrganizationID uuid.UUID
}

// ImportSummary aggregates the outcome of one import batch. Per-candidate
// errors are collected, never propagated: one bad candidate must not abort
// the batch.
type ImportSummary struct {
	Processed int
	Imported  int
	Failed    int
	Errors    []string
}

// Importer promotes high-confidence pending candidates into merged shared
// contacts, lazily resolving or creating the company and publication
// entities they reference.
type Importer struct {
	candidates   repository.CandidatesRepository
	companies    repository.CompaniesRepository
	publications repository.PublicationsRepository
	contacts     repository.ContactsRepository
	assist       MergeAssist
	cfg          ImportConfig

	// find-or-create by name is a read-then-write race; singleflight
	// collapses concurrent callers of the same name into one creation.
	companyFlight     singleflight.Group
	publicationFlight singleflight.Group
}

// NewImporter wires an importer over the given repositories. A nil assist
// defaults to the no-op implementation.
func NewImporter(
	candidates repository.CandidatesRepository,
	companies repository.CompaniesRepository,
	publications repository.PublicationsRepository,
	contacts repository.ContactsRepository,
	assist MergeAssist,
	cfg ImportConfig,
) *Importer {
	if assist == nil {
		assist = NoopMergeAssist{}
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = 70
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Importer{
		candidates:   candidates,
		companies:    companies,
		publications: publications,
		contacts:     contacts,
		assist:       assist,
		cfg:          cfg,
	}
}

// Run imports one batch of eligible candidates, highest score first. Only a
// systemic failure (candidates cannot be listed, context cancelled) is
// returned as an error; everything per-candidate lands in the summary.
func (im *Importer) Run(ctx context.Context, opts ImportOptions) (ImportSummary, error) {
	var summary ImportSummary

	if opts.OrganizationID == uuid.Nil {
		return summary, errors.New("target organization is required")
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = im.cfg.MinScore
	}

	pending, err := im.candidates.ListPending(ctx, minScore, im.cfg.BatchSize)
	if err != nil {
		return summary, fmt.Errorf("list pending candidates: %w", err)
	}

	for _, candidate := range pending {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("import cancelled: %w", err)
		}

		summary.Processed++
		if err := im.importCandidate(ctx, &candidate, opts); err != nil {
			log.Printf("import: candidate %s (%s): %v", candidate.ID, candidate.MatchKey, err)
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("candidate %s: %v", candidate.ID, err))
			continue
		}
		summary.Imported++
	}

	return summary, nil
}

func (im *Importer) importCandidate(ctx context.Context, candidate *entity.MatchingCandidate, opts ImportOptions) error {
	if len(candidate.Variants) == 0 {
		return errors.New("candidate has no variants")
	}
	if candidate.Status != entity.CandidateStatusPending {
		return fmt.Errorf("candidate status is %q, not pending", candidate.Status)
	}

	// The claim must come before any write: a stale ListPending read or a
	// concurrent run loses the claim here and backs off without having
	// created anything.
	claimed, err := im.candidates.Claim(ctx, candidate.ID)
	if err != nil {
		return fmt.Errorf("claim candidate: %w", err)
	}
	if !claimed {
		return errors.New("candidate was imported concurrently")
	}

	contact, err := im.createMergedContact(ctx, candidate, opts)
	if err != nil {
		if relErr := im.candidates.Release(ctx, candidate.ID); relErr != nil {
			log.Printf("import: release candidate %s: %v", candidate.ID, relErr)
		}
		return err
	}

	ok, err := im.candidates.MarkImported(ctx, candidate.ID, opts.Actor, contact.ID, baseVariantIndex)
	if err != nil {
		return fmt.Errorf("mark candidate imported: %w", err)
	}
	if !ok {
		return errors.New("candidate state changed during import")
	}
	return nil
}

// createMergedContact resolves the company and publications the merged
// snapshot references and persists the shared contact. The caller still
// holds the claim on the candidate.
func (im *Importer) createMergedContact(ctx context.Context, candidate *entity.MatchingCandidate, opts ImportOptions) (*entity.Contact, error) {
	merged := im.mergeVariants(ctx, candidate, opts.UseMergeAssist)

	var companyID *uuid.UUID
	if merged.CompanyName != nil && strings.TrimSpace(*merged.CompanyName) != "" {
		id, err := im.findOrCreateCompany(ctx, opts.OrganizationID, strings.TrimSpace(*merged.CompanyName))
		if err != nil {
			return nil, fmt.Errorf("resolve company %q: %w", *merged.CompanyName, err)
		}
		companyID = &id
	}

	var publicationIDs []uuid.UUID
	if companyID != nil && merged.HasMediaProfile {
		for _, name := range merged.Publications {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			id, err := im.findOrCreatePublication(ctx, *companyID, name)
			if err != nil {
				return nil, fmt.Errorf("resolve publication %q: %w", name, err)
			}
			publicationIDs = append(publicationIDs, id)
		}
	}

	contact := contactFromSnapshot(merged, opts.OrganizationID, companyID, publicationIDs, candidate.ID)
	if err := im.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create merged contact: %w", err)
	}
	return contact, nil
}

// mergeVariants picks the base variant and, when enabled, asks the merge
// assist for a combined snapshot. Assist failures of any kind fall back to
// the base variant; a merged result missing publications gets the union of
// all variants' publication names restored.
func (im *Importer) mergeVariants(ctx context.Context, candidate *entity.MatchingCandidate, useAssist bool) entity.ContactSnapshot {
	base := candidate.Variants[0].Snapshot
	if !useAssist || len(candidate.Variants) < 2 {
		return base
	}

	merged, err := im.assist.Merge(ctx, candidate.Variants)
	if err != nil || merged == nil {
		if err != nil && !errors.Is(err, ErrMergeAssistUnavailable) {
			log.Printf("import: merge assist for %s: %v", candidate.MatchKey, err)
		}
		return base
	}

	if len(merged.Publications) == 0 {
		merged.Publications = unionPublications(candidate.Variants)
	}
	return *merged
}

func unionPublications(variants []entity.CandidateVariant) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, v := range variants {
		for _, name := range v.Snapshot.Publications {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// findOrCreateCompany looks a company up by exact name in the organization
// scope and creates it (tagged as auto-created) when absent. All callers of
// the same name share one flight; a lost storage-level race re-reads the
// winner.
func (im *Importer) findOrCreateCompany(ctx context.Context, orgID uuid.UUID, name string) (uuid.UUID, error) {
	key := orgID.String() + "\x00" + strings.ToLower(name)
	result, err, _ := im.companyFlight.Do(key, func() (any, error) {
		company, err := im.companies.FindByName(ctx, orgID, name)
		if err == nil {
			return company.ID, nil
		}
		if !errors.Is(err, repository.ErrCompanyNotFound) {
			return uuid.Nil, err
		}

		provenance := entity.ProvenanceAutoMatching
		created := &entity.Company{
			OrganizationID: orgID,
			Name:           name,
			Provenance:     &provenance,
		}
		if err := im.companies.Create(ctx, created); err != nil {
			if errors.Is(err, repository.ErrCompanyDuplicate) {
				winner, findErr := im.companies.FindByName(ctx, orgID, name)
				if findErr != nil {
					return uuid.Nil, findErr
				}
				return winner.ID, nil
			}
			return uuid.Nil, err
		}
		return created.ID, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return result.(uuid.UUID), nil
}

// findOrCreatePublication mirrors findOrCreateCompany scoped to a company.
func (im *Importer) findOrCreatePublication(ctx context.Context, companyID uuid.UUID, name string) (uuid.UUID, error) {
	key := companyID.String() + "\x00" + strings.ToLower(name)
	result, err, _ := im.publicationFlight.Do(key, func() (any, error) {
		pub, err := im.publications.FindByName(ctx, companyID, name)
		if err == nil {
			return pub.ID, nil
		}
		if !errors.Is(err, repository.ErrPublicationNotFound) {
			return uuid.Nil, err
		}

		provenance := entity.ProvenanceAutoMatching
		created := &entity.Publication{
			CompanyID:  companyID,
			Name:       name,
			Provenance: &provenance,
		}
		if err := im.publications.Create(ctx, created); err != nil {
			if errors.Is(err, repository.ErrPublicationDuplicate) {
				winner, findErr := im.publications.FindByName(ctx, companyID, name)
				if findErr != nil {
					return uuid.Nil, findErr
				}
				return winner.ID, nil
			}
			return uuid.Nil, err
		}
		return created.ID, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return result.(uuid.UUID), nil
}

// contactFromSnapshot materializes the merged snapshot as a new contact
// owned by the target organization, tagged with its originating candidate.
func contactFromSnapshot(snapshot entity.ContactSnapshot, orgID uuid.UUID, companyID *uuid.UUID, publicationIDs []uuid.UUID, candidateID uuid.UUID) *entity.Contact {
	provenance := entity.ProvenanceAutoMatching
	contact := &entity.Contact{
		ID:             uuid.New(),
		OrganizationID: orgID,
		FirstName:      snapshot.FirstName,
		LastName:       snapshot.LastName,
		Title:          snapshot.Title,
		Suffix:         snapshot.Suffix,
		CompanyID:      companyID,
		CompanyName:    snapshot.CompanyName,
		Position:       snapshot.Position,
		Department:     snapshot.Department,
		PhotoURL:       snapshot.PhotoURL,
		WebsiteURL:     snapshot.WebsiteURL,
		Provenance:     &provenance,
		CandidateID:    &candidateID,
	}

	for i, email := range snapshot.Emails {
		contact.Emails = append(contact.Emails, entity.ContactEmail{Address: email, Primary: i == 0})
	}
	for _, phone := range snapshot.Phones {
		contact.Phones = append(contact.Phones, entity.ContactPhone{Number: phone})
	}
	if len(snapshot.Socials) > 0 {
		contact.Socials = append([]entity.SocialProfile(nil), snapshot.Socials...)
	}

	if snapshot.HasMediaProfile {
		profile := &entity.MediaProfile{
			Journalist: true,
			Beats:      snapshot.Beats,
			MediaTypes: snapshot.MediaTypes,
		}
		for _, id := range publicationIDs {
			pubID := id
			profile.Publications = append(profile.Publications, entity.PublicationRef{ID: &pubID})
		}
		contact.MediaProfile = profile
	}

	return contact
}
