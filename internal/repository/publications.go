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

// Errors surfaced by the publications repository.
var (
	ErrPublicationNotFound  = errors.New("publication not found")
	ErrReferenceNotFound    = errors.New("publication reference not found")
	ErrPublicationDuplicate = errors.New("publication name already exists for company")
)

// PublicationsRepository declares publication access including the
// organization-local reference indirection used by contact records.
type PublicationsRepository interface {
	ResolveReference(ctx context.Context, orgID uuid.UUID, token string) (uuid.UUID, error)
	GetName(ctx context.Context, id uuid.UUID) (string, error)
	FindByName(ctx context.Context, companyID uuid.UUID, name string) (*entity.Publication, error)
	Create(ctx context.Context, publication *entity.Publication) error
}

// PGXPublicationsRepository implements PublicationsRepository with pgx.
type PGXPublicationsRepository struct {
	pool pgxPool
}

// NewPGXPublicationsRepository wires a pgx backed repository.
func NewPGXPublicationsRepository(pool *pgxpool.Pool) *PGXPublicationsRepository {
	return &PGXPublicationsRepository{pool: pool}
}

// ResolveReference maps an organization-local reference token to the global
// publication id it points at.
func (r *PGXPublicationsRepository) ResolveReference(ctx context.Context, orgID uuid.UUID, token string) (uuid.UUID, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT publication_id
        FROM publication_references
        WHERE organization_id = $1 AND local_ref = $2
    `, orgID, token)

	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrReferenceNotFound
		}
		return uuid.Nil, fmt.Errorf("resolve publication reference: %w", err)
	}
	return id, nil
}

// GetName returns the display name for a global publication id.
func (r *PGXPublicationsRepository) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	row := r.pool.QueryRow(ctx, `SELECT name FROM publications WHERE id = $1`, id)

	var name string
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPublicationNotFound
		}
		return "", fmt.Errorf("query publication name: %w", err)
	}
	return name, nil
}

// FindByName fetches a publication by exact name (case-insensitive) scoped
// to a company.
func (r *PGXPublicationsRepository) FindByName(ctx context.Context, companyID uuid.UUID, name string) (*entity.Publication, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, company_id, name, provenance, created_at, updated_at
        FROM publications
        WHERE company_id = $1 AND LOWER(name) = LOWER($2)
    `, companyID, name)

	var pub entity.Publication
	err := row.Scan(&pub.ID, &pub.CompanyID, &pub.Name, &pub.Provenance, &pub.CreatedAt, &pub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPublicationNotFound
		}
		return nil, fmt.Errorf("query publication by name: %w", err)
	}
	return &pub, nil
}

// Create inserts a new publication. A unique index on
// (company_id, LOWER(name)) turns concurrent find-or-create races into
// ErrPublicationDuplicate.
func (r *PGXPublicationsRepository) Create(ctx context.Context, publication *entity.Publication) error {
	if publication == nil {
		return fmt.Errorf("publication payload is nil")
	}
	if publication.ID == uuid.Nil {
		publication.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO publications (id, company_id, name, provenance)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at
    `, publication.ID, publication.CompanyID, publication.Name, publication.Provenance)

	if err := row.Scan(&publication.CreatedAt, &publication.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ErrPublicationDuplicate, publication.Name)
		}
		return fmt.Errorf("insert publication: %w", err)
	}
	return nil
}
