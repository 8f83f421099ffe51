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

// ErrOrganizationNotFound is returned when no organization matches the id.
var ErrOrganizationNotFound = errors.New("organization not found")

// OrganizationsRepository declares read access to scannable organizations.
type OrganizationsRepository interface {
	List(ctx context.Context) ([]entity.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Organization, error)
}

// PGXOrganizationsRepository implements OrganizationsRepository with pgx.
type PGXOrganizationsRepository struct {
	pool pgxPool
}

// NewPGXOrganizationsRepository wires a pgx backed repository.
func NewPGXOrganizationsRepository(pool *pgxpool.Pool) *PGXOrganizationsRepository {
	return &PGXOrganizationsRepository{pool: pool}
}

// List returns all organizations except the reserved platform-admin one.
func (r *PGXOrganizationsRepository) List(ctx context.Context) ([]entity.Organization, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, classification, created_at
        FROM organizations
        WHERE classification <> $1
        ORDER BY name ASC
    `, entity.ClassificationPlatformAdmin)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []entity.Organization
	for rows.Next() {
		var org entity.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Classification, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization row: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, nil
}

// Get retrieves a single organization by id.
func (r *PGXOrganizationsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, name, classification, created_at
        FROM organizations
        WHERE id = $1
    `, id)

	var org entity.Organization
	if err := row.Scan(&org.ID, &org.Name, &org.Classification, &org.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("query organization by id: %w", err)
	}
	return &org, nil
}
