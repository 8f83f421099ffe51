package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pressmate/media-crm/api/internal/entity"
	"github.com/pressmate/media-crm/api/internal/repository"
	"github.com/pressmate/media-crm/api/internal/service/scoring"
)

// Relaxed thresholds applied in development mode so small fixtures still
// produce candidates.
const (
	devMinOrganizations = 1
	devMinScore         = 0
)

// ScanConfig carries the scanner defaults taken from configuration.
type ScanConfig struct {
	MinOrganizations int
	MinScore         int
	DevelopmentMode  bool
	Concurrency      int
	TrustedDomains   []string
}

// ScanOptions parameterizes a single run. Zero values fall back to the
// configured defaults.
type ScanOptions struct {
	MinOrganizations int
	MinScore         int
	DevelopmentMode  bool
	Trigger          string
	OrganizationIDs  []uuid.UUID
}

// Scanner runs the detection pass: it reads every organization's journalist
// contacts, groups them by identity key, scores the groups and upserts
// matching candidates, tracking the whole run in a scan job.
type Scanner struct {
	orgs        repository.OrganizationsRepository
	contacts    repository.ContactsRepository
	candidates  repository.CandidatesRepository
	jobs        repository.ScanJobsRepository
	snapshotter *Snapshotter
	cfg         ScanConfig
}

// NewScanner wires a scanner over the given repositories.
func NewScanner(
	orgs repository.OrganizationsRepository,
	contacts repository.ContactsRepository,
	candidates repository.CandidatesRepository,
	jobs repository.ScanJobsRepository,
	snapshotter *Snapshotter,
	cfg ScanConfig,
) *Scanner {
	if cfg.MinOrganizations <= 0 {
		cfg.MinOrganizations = 2
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Scanner{
		orgs:        orgs,
		contacts:    contacts,
		candidates:  candidates,
		jobs:        jobs,
		snapshotter: snapshotter,
		cfg:         cfg,
	}
}

// keyGroupMember is one observation of an identity key in one organization.
type keyGroupMember struct {
	contact entity.Contact
	orgID   uuid.UUID
	orgName string
}

type keyGroup struct {
	matchType string
	members   []keyGroupMember
}

// Run executes one detection pass. Per-organization failures are counted
// and skipped; only a systemic failure (organizations cannot be listed at
// all, or the context is cancelled) finalizes the job as failed and is
// returned to the caller.
func (s *Scanner) Run(ctx context.Context, opts ScanOptions) (*entity.ScanJob, error) {
	minOrgs, minScore := s.effectiveThresholds(opts)
	if opts.Trigger == "" {
		opts.Trigger = entity.ScanTriggerManual
	}

	job := &entity.ScanJob{
		Trigger: opts.Trigger,
		Options: entity.ScanOptions{
			MinOrganizations: minOrgs,
			MinScore:         minScore,
			DevelopmentMode:  opts.DevelopmentMode || s.cfg.DevelopmentMode,
			OrganizationIDs:  opts.OrganizationIDs,
		},
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create scan job: %w", err)
	}

	stats, err := s.scan(ctx, job, minOrgs, minScore, opts.OrganizationIDs)
	job.Stats = stats
	if err != nil {
		msg := err.Error()
		job.Status = entity.ScanJobStatusFailed
		job.Error = &msg
		if finErr := s.jobs.Finalize(ctx, job.ID, entity.ScanJobStatusFailed, stats, &msg); finErr != nil {
			log.Printf("scan: finalize failed job %s: %v", job.ID, finErr)
		}
		return job, err
	}

	job.Status = entity.ScanJobStatusCompleted
	if err := s.jobs.Finalize(ctx, job.ID, entity.ScanJobStatusCompleted, stats, nil); err != nil {
		return job, fmt.Errorf("finalize scan job: %w", err)
	}
	return job, nil
}

func (s *Scanner) effectiveThresholds(opts ScanOptions) (minOrgs, minScore int) {
	minOrgs = s.cfg.MinOrganizations
	if opts.MinOrganizations > 0 {
		minOrgs = opts.MinOrganizations
	}
	minScore = s.cfg.MinScore
	if opts.MinScore > 0 {
		minScore = opts.MinScore
	}
	if opts.DevelopmentMode || s.cfg.DevelopmentMode {
		minOrgs = devMinOrganizations
		minScore = devMinScore
	}
	return minOrgs, minScore
}

func (s *Scanner) scan(ctx context.Context, job *entity.ScanJob, minOrgs, minScore int, allowList []uuid.UUID) (entity.ScanStats, error) {
	var stats entity.ScanStats

	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list organizations: %w", err)
	}
	orgs = filterOrganizations(orgs, allowList)

	groups := make(map[string]*keyGroup)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, org := range orgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			contacts, err := s.contacts.ListJournalists(gctx, org.ID)
			if err != nil {
				log.Printf("scan: organization %s (%s): %v", org.Name, org.ID, err)
				mu.Lock()
				stats.Errors++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			stats.OrganizationsScanned++
			for _, contact := range contacts {
				stats.ContactsScanned++
				if contact.IsReferencePlaceholder() {
					stats.SkippedReference++
					continue
				}
				key, ok := DeriveMatchKey(&contact)
				if !ok {
					stats.SkippedNoKey++
					continue
				}
				group := groups[key.Key]
				if group == nil {
					group = &keyGroup{matchType: key.Type}
					groups[key.Key] = group
				}
				group.members = append(group.members, keyGroupMember{
					contact: contact,
					orgID:   org.ID,
					orgName: org.Name,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("scan aborted: %w", err)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := groups[key]
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("scan cancelled: %w", err)
		}

		candidate := &entity.MatchingCandidate{
			MatchKey:  key,
			MatchType: group.matchType,
			Variants:  s.buildVariants(ctx, group),
			Status:    entity.CandidateStatusPending,
			ScanJobID: job.ID,
		}
		if candidate.OrganizationCount() < minOrgs {
			continue
		}

		candidate.Score = scoring.ComputeScore(candidate.Variants, s.cfg.TrustedDomains).Total
		if candidate.Score < minScore {
			continue
		}
		created, err := s.candidates.Upsert(ctx, candidate)
		if err != nil {
			log.Printf("scan: upsert candidate %q: %v", key, err)
			stats.Errors++
			continue
		}
		if created {
			stats.CandidatesCreated++
		} else {
			stats.CandidatesUpdated++
		}
	}

	return stats, nil
}

// buildVariants snapshots one contact per organization, keeping the first
// observation when the same organization holds several contacts under the
// key.
func (s *Scanner) buildVariants(ctx context.Context, group *keyGroup) []entity.CandidateVariant {
	members := make([]keyGroupMember, len(group.members))
	copy(members, group.members)
	sort.Slice(members, func(i, j int) bool {
		if members[i].orgName != members[j].orgName {
			return members[i].orgName < members[j].orgName
		}
		return members[i].contact.ID.String() < members[j].contact.ID.String()
	})

	seen := make(map[uuid.UUID]struct{}, len(members))
	variants := make([]entity.CandidateVariant, 0, len(members))
	for _, member := range members {
		if _, dup := seen[member.orgID]; dup {
			continue
		}
		seen[member.orgID] = struct{}{}
		variants = append(variants, entity.CandidateVariant{
			OrganizationID:   member.orgID,
			OrganizationName: member.orgName,
			ContactID:        member.contact.ID,
			Snapshot:         s.snapshotter.Snapshot(ctx, &member.contact),
		})
	}
	return variants
}

func filterOrganizations(orgs []entity.Organization, allowList []uuid.UUID) []entity.Organization {
	allowed := make(map[uuid.UUID]struct{}, len(allowList))
	for _, id := range allowList {
		allowed[id] = struct{}{}
	}

	filtered := orgs[:0]
	for _, org := range orgs {
		if org.Classification == entity.ClassificationPlatformAdmin {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[org.ID]; !ok {
				continue
			}
		}
		filtered = append(filtered, org)
	}
	return filtered
}

