package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressmate/media-crm/api/internal/entity"
)

// Errors surfaced by the companies repository.
var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrCompanyDuplicate = errors.New("company name already exists in organization")
)

// CompaniesRepository declares the company operations the importer needs:
// exact-name lookup within an organization scope and lazy creation.
type CompaniesRepository interface {
	FindByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.Company, error)
	Create(ctx context.Context, company *entity.Company) error
}

// PGXCompaniesRepository implements CompaniesRepository with pgx.
type PGXCompaniesRepository struct {
	pool pgxPool
}

// NewPGXCompaniesRepository wires a pgx backed repository.
func NewPGXCompaniesRepository(pool *pgxpool.Pool) *PGXCompaniesRepository {
	return &PGXCompaniesRepository{pool: pool}
}

// FindByName fetches a company by exact name (case-insensitive) within an
// organization.
func (r *PGXCompaniesRepository) FindByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.Company, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, organization_id, name, provenance, created_at, updated_at
        FROM companies
        WHERE organization_id = $1 AND LOWER(name) = LOWER($2)
    `, orgID, name)

	var company entity.Company
	err := row.Scan(&company.ID, &company.OrganizationID, &company.Name, &company.Provenance, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("query company by name: %w", err)
	}
	return &company, nil
}

// Create inserts a new company. A unique index on
// (organization_id, LOWER(name)) turns concurrent find-or-create races into
// ErrCompanyDuplicate so the caller can re-read the winner.
func (r *PGXCompaniesRepository) Create(ctx context.Context, company *entity.Company) error {
	if company == nil {
		return fmt.Errorf("company payload is nil")
	}
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO companies (id, organization_id, name, provenance)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at
    `, company.ID, company.OrganizationID, company.Name, company.Provenance)

	if err := row.Scan(&company.CreatedAt, &company.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ErrCompanyDuplicate, company.Name)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}
