package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pressmate/media-crm/api/internal/dto"
	"github.com/pressmate/media-crm/api/internal/entity"
	"github.com/pressmate/media-crm/api/internal/repository"
)

type fakeOrganizations struct {
	orgs    []entity.Organization
	listErr error
}

func (f *fakeOrganizations) List(ctx context.Context) ([]entity.Organization, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orgs, nil
}

func (f *fakeOrganizations) Get(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	for _, org := range f.orgs {
		if org.ID == id {
			return &org, nil
		}
	}
	return nil, repository.ErrOrganizationNotFound
}

type fakeContacts struct {
	mu         sync.Mutex
	byOrg      map[uuid.UUID][]entity.Contact
	listErrs   map[uuid.UUID]error
	created    []entity.Contact
	createErr  error
	createCall int
}

func (f *fakeContacts) ListJournalists(ctx context.Context, orgID uuid.UUID) ([]entity.Contact, error) {
	if err := f.listErrs[orgID]; err != nil {
		return nil, err
	}
	return f.byOrg[orgID], nil
}

func (f *fakeContacts) Create(ctx context.Context, contact *entity.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCall++
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *contact)
	return nil
}

type fakeCandidates struct {
	mu        sync.Mutex
	byKey     map[string]*entity.MatchingCandidate
	upsertErr error
}

func newFakeCandidates() *fakeCandidates {
	return &fakeCandidates{byKey: make(map[string]*entity.MatchingCandidate)}
}

func (f *fakeCandidates) FindByMatchKey(ctx context.Context, matchKey string) (*entity.MatchingCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byKey[matchKey]; ok {
		clone := *existing
		return &clone, nil
	}
	return nil, repository.ErrCandidateNotFound
}

func (f *fakeCandidates) Upsert(ctx context.Context, candidate *entity.MatchingCandidate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return false, f.upsertErr
	}

	now := time.Now()
	existing, ok := f.byKey[candidate.MatchKey]
	if ok {
		existing.MatchType = candidate.MatchType
		existing.Score = candidate.Score
		existing.Variants = candidate.Variants
		existing.ScanJobID = candidate.ScanJobID
		existing.LastScannedAt = now
		existing.UpdatedAt = now
		*candidate = *existing
		return false, nil
	}

	candidate.ID = uuid.New()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	candidate.LastScannedAt = now
	clone := *candidate
	f.byKey[candidate.MatchKey] = &clone
	return true, nil
}

func (f *fakeCandidates) ListPending(ctx context.Context, minScore, limit int) ([]entity.MatchingCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.MatchingCandidate
	for _, candidate := range f.byKey {
		if candidate.Status == entity.CandidateStatusPending && candidate.Score >= minScore {
			out = append(out, *candidate)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCandidates) List(ctx context.Context, filter dto.CandidateFilter) ([]entity.MatchingCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.MatchingCandidate
	for _, candidate := range f.byKey {
		if filter.Status != "" && candidate.Status != filter.Status {
			continue
		}
		out = append(out, *candidate)
	}
	return out, nil
}

func (f *fakeCandidates) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.transition(id, entity.CandidateStatusPending, entity.CandidateStatusImporting)
}

func (f *fakeCandidates) Release(ctx context.Context, id uuid.UUID) error {
	_, err := f.transition(id, entity.CandidateStatusImporting, entity.CandidateStatusPending)
	return err
}

func (f *fakeCandidates) transition(id uuid.UUID, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, candidate := range f.byKey {
		if candidate.ID != id {
			continue
		}
		if candidate.Status != from {
			return false, nil
		}
		candidate.Status = to
		return true, nil
	}
	return false, repository.ErrCandidateNotFound
}

func (f *fakeCandidates) MarkImported(ctx context.Context, id uuid.UUID, importedBy string, contactID uuid.UUID, baseVariantIndex int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, candidate := range f.byKey {
		if candidate.ID != id {
			continue
		}
		if candidate.Status != entity.CandidateStatusImporting {
			return false, nil
		}
		now := time.Now()
		candidate.Status = entity.CandidateStatusImported
		candidate.ImportedAt = &now
		candidate.ImportedBy = &importedBy
		candidate.ImportedContactID = &contactID
		candidate.BaseVariantIndex = &baseVariantIndex
		return true, nil
	}
	return false, repository.ErrCandidateNotFound
}

func (f *fakeCandidates) get(matchKey string) *entity.MatchingCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byKey[matchKey]
}

type fakeScanJobs struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*entity.ScanJob
	createErr error
}

func newFakeScanJobs() *fakeScanJobs {
	return &fakeScanJobs{jobs: make(map[uuid.UUID]*entity.ScanJob)}
}

func (f *fakeScanJobs) Create(ctx context.Context, job *entity.ScanJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	job.ID = uuid.New()
	job.Status = entity.ScanJobStatusRunning
	job.StartedAt = time.Now()
	clone := *job
	f.jobs[job.ID] = &clone
	return nil
}

func (f *fakeScanJobs) Finalize(ctx context.Context, id uuid.UUID, status string, stats entity.ScanStats, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return repository.ErrScanJobNotFound
	}
	now := time.Now()
	job.Status = status
	job.Stats = stats
	job.Error = errMsg
	job.FinishedAt = &now
	return nil
}

func (f *fakeScanJobs) Get(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrScanJobNotFound
	}
	clone := *job
	return &clone, nil
}

func (f *fakeScanJobs) List(ctx context.Context, limit int) ([]entity.ScanJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.ScanJob
	for _, job := range f.jobs {
		out = append(out, *job)
	}
	return out, nil
}

type fakePublications struct {
	mu         sync.Mutex
	references map[string]uuid.UUID
	names      map[uuid.UUID]string
	byCompany  map[uuid.UUID][]entity.Publication
	resolveErr error
	createErr  error
	creates    int
}

func newFakePublications() *fakePublications {
	return &fakePublications{
		references: make(map[string]uuid.UUID),
		names:      make(map[uuid.UUID]string),
		byCompany:  make(map[uuid.UUID][]entity.Publication),
	}
}

func (f *fakePublications) addNamed(name string) uuid.UUID {
	id := uuid.New()
	f.names[id] = name
	return id
}

func (f *fakePublications) ResolveReference(ctx context.Context, orgID uuid.UUID, token string) (uuid.UUID, error) {
	if f.resolveErr != nil {
		return uuid.Nil, f.resolveErr
	}
	id, ok := f.references[orgID.String()+"/"+token]
	if !ok {
		return uuid.Nil, repository.ErrReferenceNotFound
	}
	return id, nil
}

func (f *fakePublications) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	name, ok := f.names[id]
	if !ok {
		return "", repository.ErrPublicationNotFound
	}
	return name, nil
}

func (f *fakePublications) FindByName(ctx context.Context, companyID uuid.UUID, name string) (*entity.Publication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pub := range f.byCompany[companyID] {
		if strings.EqualFold(pub.Name, name) {
			clone := pub
			return &clone, nil
		}
	}
	return nil, repository.ErrPublicationNotFound
}

func (f *fakePublications) Create(ctx context.Context, publication *entity.Publication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	for _, pub := range f.byCompany[publication.CompanyID] {
		if strings.EqualFold(pub.Name, publication.Name) {
			return repository.ErrPublicationDuplicate
		}
	}
	publication.ID = uuid.New()
	f.byCompany[publication.CompanyID] = append(f.byCompany[publication.CompanyID], *publication)
	f.names[publication.ID] = publication.Name
	return nil
}

type fakeCompanies struct {
	mu        sync.Mutex
	byOrg     map[uuid.UUID][]entity.Company
	createErr error
	creates   int
}

func newFakeCompanies() *fakeCompanies {
	return &fakeCompanies{byOrg: make(map[uuid.UUID][]entity.Company)}
}

func (f *fakeCompanies) FindByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, company := range f.byOrg[orgID] {
		if strings.EqualFold(company.Name, name) {
			clone := company
			return &clone, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (f *fakeCompanies) Create(ctx context.Context, company *entity.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byOrg[company.OrganizationID] {
		if strings.EqualFold(existing.Name, company.Name) {
			return repository.ErrCompanyDuplicate
		}
	}
	company.ID = uuid.New()
	f.byOrg[company.OrganizationID] = append(f.byOrg[company.OrganizationID], *company)
	return nil
}

type fakeMergeAssist struct {
	result *entity.ContactSnapshot
	err    error
	calls  int
}

func (f *fakeMergeAssist) Merge(ctx context.Context, variants []entity.CandidateVariant) (*entity.ContactSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
