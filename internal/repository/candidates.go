package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressmate/media-crm/api/internal/dto"
	"github.com/pressmate/media-crm/api/internal/entity"
)

// ErrCandidateNotFound is returned when no candidate matches the lookup.
var ErrCandidateNotFound = errors.New("matching candidate not found")

// CandidatesRepository declares persistence for matching candidates.
type CandidatesRepository interface {
	FindByMatchKey(ctx context.Context, matchKey string) (*entity.MatchingCandidate, error)
	Upsert(ctx context.Context, candidate *entity.MatchingCandidate) (created bool, err error)
	ListPending(ctx context.Context, minScore, limit int) ([]entity.MatchingCandidate, error)
	List(ctx context.Context, filter dto.CandidateFilter) ([]entity.MatchingCandidate, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
	MarkImported(ctx context.Context, id uuid.UUID, importedBy string, contactID uuid.UUID, baseVariantIndex int) (bool, error)
}

// PGXCandidatesRepository implements CandidatesRepository with pgx. Variants
// are stored as a jsonb document since they are always read and replaced as
// a whole.
type PGXCandidatesRepository struct {
	pool pgxPool
}

// NewPGXCandidatesRepository wires a pgx backed repository.
func NewPGXCandidatesRepository(pool *pgxpool.Pool) *PGXCandidatesRepository {
	return &PGXCandidatesRepository{pool: pool}
}

const candidateColumns = `
        id, match_key, match_type, score, variants, status, scan_job_id,
        created_at, updated_at, last_scanned_at,
        imported_at, imported_by, imported_contact_id, base_variant_index`

// FindByMatchKey fetches a candidate by its normalized match key.
func (r *PGXCandidatesRepository) FindByMatchKey(ctx context.Context, matchKey string) (*entity.MatchingCandidate, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+candidateColumns+`
        FROM matching_candidates
        WHERE match_key = $1
    `, matchKey)

	candidate, err := scanCandidateRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("query candidate by match key: %w", err)
	}
	return candidate, nil
}

// Upsert inserts a new candidate or, when the match key already exists,
// replaces its variants, score, match type and scan bookkeeping while
// leaving the import lifecycle fields untouched. Reports whether a new row
// was created.
func (r *PGXCandidatesRepository) Upsert(ctx context.Context, candidate *entity.MatchingCandidate) (bool, error) {
	if candidate == nil {
		return false, fmt.Errorf("candidate payload is nil")
	}
	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	if candidate.Status == "" {
		candidate.Status = entity.CandidateStatusPending
	}

	variantsJSON, err := json.Marshal(candidate.Variants)
	if err != nil {
		return false, fmt.Errorf("marshal variants: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO matching_candidates (
            id, match_key, match_type, score, variants, status, scan_job_id, last_scanned_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, NOW(), NOW())
        ON CONFLICT (match_key) DO UPDATE SET
            match_type = EXCLUDED.match_type,
            score = EXCLUDED.score,
            variants = EXCLUDED.variants,
            scan_job_id = EXCLUDED.scan_job_id,
            last_scanned_at = NOW(),
            updated_at = NOW()
        RETURNING id, xmax = 0
    `,
		candidate.ID,
		candidate.MatchKey,
		candidate.MatchType,
		candidate.Score,
		string(variantsJSON),
		candidate.Status,
		candidate.ScanJobID,
	)

	var created bool
	if err := row.Scan(&candidate.ID, &created); err != nil {
		return false, fmt.Errorf("upsert candidate %q: %w", candidate.MatchKey, err)
	}
	return created, nil
}

// ListPending returns importable candidates ordered by score descending.
func (r *PGXCandidatesRepository) ListPending(ctx context.Context, minScore, limit int) ([]entity.MatchingCandidate, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT `+candidateColumns+`
        FROM matching_candidates
        WHERE status = $1 AND score >= $2
        ORDER BY score DESC, last_scanned_at DESC
        LIMIT $3
    `, entity.CandidateStatusPending, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending candidates: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// List retrieves candidates matching the provided filter with pagination.
func (r *PGXCandidatesRepository) List(ctx context.Context, filter dto.CandidateFilter) ([]entity.MatchingCandidate, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + candidateColumns + ` FROM matching_candidates`)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.MatchType != "" {
		clauses = append(clauses, fmt.Sprintf("match_type = $%d", idx))
		args = append(args, filter.MatchType)
		idx++
	}
	if filter.MinScore != nil {
		clauses = append(clauses, fmt.Sprintf("score >= $%d", idx))
		args = append(args, *filter.MinScore)
		idx++
	}

	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}
	query.WriteString(" ORDER BY score DESC, updated_at DESC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// Claim transitions a pending candidate to importing. The conditional WHERE
// clause makes the claim exclusive: the caller that gets true owns the
// candidate, everyone else sees false and must not touch it.
func (r *PGXCandidatesRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	claimed, err := r.transition(ctx, id, entity.CandidateStatusPending, entity.CandidateStatusImporting)
	if err != nil {
		return false, fmt.Errorf("claim candidate: %w", err)
	}
	return claimed, nil
}

// Release puts a claimed candidate back to pending so a later run can retry
// it. Releasing a candidate that is not importing is a no-op.
func (r *PGXCandidatesRepository) Release(ctx context.Context, id uuid.UUID) error {
	if _, err := r.transition(ctx, id, entity.CandidateStatusImporting, entity.CandidateStatusPending); err != nil {
		return fmt.Errorf("release candidate: %w", err)
	}
	return nil
}

func (r *PGXCandidatesRepository) transition(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE matching_candidates
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = $3
    `, to, id, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkImported transitions a claimed candidate to imported. The conditional
// WHERE clause makes the transition exactly-once: a candidate no longer held
// in the importing state is left untouched and false is returned.
func (r *PGXCandidatesRepository) MarkImported(ctx context.Context, id uuid.UUID, importedBy string, contactID uuid.UUID, baseVariantIndex int) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE matching_candidates
        SET status = $1,
            imported_at = NOW(),
            imported_by = $2,
            imported_contact_id = $3,
            base_variant_index = $4,
            updated_at = NOW()
        WHERE id = $5 AND status = $6
    `,
		entity.CandidateStatusImported,
		importedBy,
		contactID,
		baseVariantIndex,
		id,
		entity.CandidateStatusImporting,
	)
	if err != nil {
		return false, fmt.Errorf("mark candidate imported: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func scanCandidates(rows pgx.Rows) ([]entity.MatchingCandidate, error) {
	var candidates []entity.MatchingCandidate
	for rows.Next() {
		candidate, err := scanCandidateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		candidates = append(candidates, *candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

func scanCandidateRow(row pgx.Row) (*entity.MatchingCandidate, error) {
	var (
		c            entity.MatchingCandidate
		variantsJSON []byte
		importedAt   sql.NullTime
		importedBy   sql.NullString
		baseIndex    sql.NullInt64
	)

	err := row.Scan(
		&c.ID,
		&c.MatchKey,
		&c.MatchType,
		&c.Score,
		&variantsJSON,
		&c.Status,
		&c.ScanJobID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.LastScannedAt,
		&importedAt,
		&importedBy,
		&c.ImportedContactID,
		&baseIndex,
	)
	if err != nil {
		return nil, err
	}

	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &c.Variants); err != nil {
			return nil, fmt.Errorf("unmarshal variants: %w", err)
		}
	}
	if importedAt.Valid {
		ts := importedAt.Time
		c.ImportedAt = &ts
	}
	c.ImportedBy = nullStringToPtr(importedBy)
	if baseIndex.Valid {
		cast := int(baseIndex.Int64)
		c.BaseVariantIndex = &cast
	}
	return &c, nil
}
