package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressmate/media-crm/api/internal/entity"
)

// ContactsRepository declares the contact operations the matching engine
// needs: reading an organization's journalists and creating merged records.
type ContactsRepository interface {
	ListJournalists(ctx context.Context, orgID uuid.UUID) ([]entity.Contact, error)
	Create(ctx context.Context, contact *entity.Contact) error
}

// PGXContactsRepository implements ContactsRepository with pgx. Structured
// sub-documents (emails, phones, media profile, socials) live in jsonb
// columns.
type PGXContactsRepository struct {
	pool pgxPool
}

// NewPGXContactsRepository wires a pgx backed repository.
func NewPGXContactsRepository(pool *pgxpool.Pool) *PGXContactsRepository {
	return &PGXContactsRepository{pool: pool}
}

const contactColumns = `
        id, organization_id, first_name, last_name, title, suffix,
        emails, phones, media_profile, company_id, company_name,
        position, department, socials, photo_url, website_url,
        provenance, candidate_id, created_at, updated_at`

// ListJournalists returns the organization's contacts carrying a media
// profile.
func (r *PGXContactsRepository) ListJournalists(ctx context.Context, orgID uuid.UUID) ([]entity.Contact, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+contactColumns+`
        FROM contacts
        WHERE organization_id = $1 AND media_profile IS NOT NULL
        ORDER BY last_name ASC, first_name ASC
    `, orgID)
	if err != nil {
		return nil, fmt.Errorf("list journalist contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// Create inserts a new contact row, typically a merged record produced by
// the importer.
func (r *PGXContactsRepository) Create(ctx context.Context, contact *entity.Contact) error {
	if contact == nil {
		return fmt.Errorf("contact payload is nil")
	}
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}

	emailsJSON, err := json.Marshal(sliceOrEmpty(contact.Emails))
	if err != nil {
		return fmt.Errorf("marshal emails: %w", err)
	}
	phonesJSON, err := json.Marshal(sliceOrEmpty(contact.Phones))
	if err != nil {
		return fmt.Errorf("marshal phones: %w", err)
	}
	socialsJSON, err := json.Marshal(sliceOrEmpty(contact.Socials))
	if err != nil {
		return fmt.Errorf("marshal socials: %w", err)
	}
	var profileJSON any
	if contact.MediaProfile != nil {
		data, err := json.Marshal(contact.MediaProfile)
		if err != nil {
			return fmt.Errorf("marshal media profile: %w", err)
		}
		profileJSON = string(data)
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO contacts (
            id, organization_id, first_name, last_name, title, suffix,
            emails, phones, media_profile, company_id, company_name,
            position, department, socials, photo_url, website_url,
            provenance, candidate_id
        ) VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8::jsonb,$9::jsonb,$10,$11,$12,$13,$14::jsonb,$15,$16,$17,$18)
        RETURNING created_at, updated_at
    `,
		contact.ID,
		contact.OrganizationID,
		contact.FirstName,
		contact.LastName,
		contact.Title,
		contact.Suffix,
		string(emailsJSON),
		string(phonesJSON),
		profileJSON,
		contact.CompanyID,
		contact.CompanyName,
		contact.Position,
		contact.Department,
		string(socialsJSON),
		contact.PhotoURL,
		contact.WebsiteURL,
		contact.Provenance,
		contact.CandidateID,
	)
	if err := row.Scan(&contact.CreatedAt, &contact.UpdatedAt); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func scanContacts(rows pgx.Rows) ([]entity.Contact, error) {
	var contacts []entity.Contact
	for rows.Next() {
		var (
			c           entity.Contact
			title       sql.NullString
			suffix      sql.NullString
			emailsJSON  []byte
			phonesJSON  []byte
			profileJSON []byte
			companyName sql.NullString
			position    sql.NullString
			department  sql.NullString
			socialsJSON []byte
			photoURL    sql.NullString
			websiteURL  sql.NullString
			provenance  sql.NullString
		)

		err := rows.Scan(
			&c.ID,
			&c.OrganizationID,
			&c.FirstName,
			&c.LastName,
			&title,
			&suffix,
			&emailsJSON,
			&phonesJSON,
			&profileJSON,
			&c.CompanyID,
			&companyName,
			&position,
			&department,
			&socialsJSON,
			&photoURL,
			&websiteURL,
			&provenance,
			&c.CandidateID,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}

		if len(emailsJSON) > 0 {
			if err := json.Unmarshal(emailsJSON, &c.Emails); err != nil {
				return nil, fmt.Errorf("unmarshal emails: %w", err)
			}
		}
		if len(phonesJSON) > 0 {
			if err := json.Unmarshal(phonesJSON, &c.Phones); err != nil {
				return nil, fmt.Errorf("unmarshal phones: %w", err)
			}
		}
		if len(profileJSON) > 0 {
			var profile entity.MediaProfile
			if err := json.Unmarshal(profileJSON, &profile); err != nil {
				return nil, fmt.Errorf("unmarshal media profile: %w", err)
			}
			c.MediaProfile = &profile
		}
		if len(socialsJSON) > 0 {
			if err := json.Unmarshal(socialsJSON, &c.Socials); err != nil {
				return nil, fmt.Errorf("unmarshal socials: %w", err)
			}
		}
		c.Title = nullStringToPtr(title)
		c.Suffix = nullStringToPtr(suffix)
		c.CompanyName = nullStringToPtr(companyName)
		c.Position = nullStringToPtr(position)
		c.Department = nullStringToPtr(department)
		c.PhotoURL = nullStringToPtr(photoURL)
		c.WebsiteURL = nullStringToPtr(websiteURL)
		c.Provenance = nullStringToPtr(provenance)

		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

func sliceOrEmpty[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}
