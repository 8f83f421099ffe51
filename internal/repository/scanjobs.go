package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressmate/media-crm/api/internal/entity"
)

// ErrScanJobNotFound is returned when no scan job matches the lookup.
var ErrScanJobNotFound = errors.New("scan job not found")

// ScanJobsRepository declares persistence for scan runs. Jobs are created
// running and finalized exactly once; Finalize refuses to touch a job that
// already reached a terminal state.
type ScanJobsRepository interface {
	Create(ctx context.Context, job *entity.ScanJob) error
	Finalize(ctx context.Context, id uuid.UUID, status string, stats entity.ScanStats, errMsg *string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error)
	List(ctx context.Context, limit int) ([]entity.ScanJob, error)
}

// PGXScanJobsRepository implements ScanJobsRepository with pgx.
type PGXScanJobsRepository struct {
	pool pgxPool
}

// NewPGXScanJobsRepository wires a pgx backed repository.
func NewPGXScanJobsRepository(pool *pgxpool.Pool) *PGXScanJobsRepository {
	return &PGXScanJobsRepository{pool: pool}
}

// Create inserts a new job in running state.
func (r *PGXScanJobsRepository) Create(ctx context.Context, job *entity.ScanJob) error {
	if job == nil {
		return fmt.Errorf("scan job payload is nil")
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Status = entity.ScanJobStatusRunning

	optionsJSON, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshal scan options: %w", err)
	}
	statsJSON, err := json.Marshal(job.Stats)
	if err != nil {
		return fmt.Errorf("marshal scan stats: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO scan_jobs (id, status, trigger_mode, options, stats)
        VALUES ($1, $2, $3, $4::jsonb, $5::jsonb)
        RETURNING started_at
    `, job.ID, job.Status, job.Trigger, string(optionsJSON), string(statsJSON))

	if err := row.Scan(&job.StartedAt); err != nil {
		return fmt.Errorf("insert scan job: %w", err)
	}
	return nil
}

// Finalize moves a running job to a terminal state with its final stats.
func (r *PGXScanJobsRepository) Finalize(ctx context.Context, id uuid.UUID, status string, stats entity.ScanStats, errMsg *string) error {
	if status != entity.ScanJobStatusCompleted && status != entity.ScanJobStatusFailed {
		return fmt.Errorf("invalid terminal status %q", status)
	}

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal scan stats: %w", err)
	}

	cmd, err := r.pool.Exec(ctx, `
        UPDATE scan_jobs
        SET status = $1, stats = $2::jsonb, error = $3, finished_at = NOW()
        WHERE id = $4 AND status = $5
    `, status, string(statsJSON), errMsg, id, entity.ScanJobStatusRunning)
	if err != nil {
		return fmt.Errorf("finalize scan job: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("scan job %s is not running", id)
	}
	return nil
}

// Get retrieves one scan job by id.
func (r *PGXScanJobsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, status, trigger_mode, options, stats, error, started_at, finished_at
        FROM scan_jobs
        WHERE id = $1
    `, id)

	job, err := scanJobRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScanJobNotFound
		}
		return nil, fmt.Errorf("query scan job: %w", err)
	}
	return job, nil
}

// List returns the most recent scan jobs, newest first.
func (r *PGXScanJobsRepository) List(ctx context.Context, limit int) ([]entity.ScanJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, status, trigger_mode, options, stats, error, started_at, finished_at
        FROM scan_jobs
        ORDER BY started_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list scan jobs: %w", err)
	}
	defer rows.Close()

	var jobs []entity.ScanJob
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan jobs: %w", err)
	}
	return jobs, nil
}

func scanJobRow(row pgx.Row) (*entity.ScanJob, error) {
	var (
		job         entity.ScanJob
		optionsJSON []byte
		statsJSON   []byte
		errMsg      sql.NullString
		finishedAt  sql.NullTime
	)

	err := row.Scan(&job.ID, &job.Status, &job.Trigger, &optionsJSON, &statsJSON, &errMsg, &job.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &job.Options); err != nil {
			return nil, fmt.Errorf("unmarshal scan options: %w", err)
		}
	}
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &job.Stats); err != nil {
			return nil, fmt.Errorf("unmarshal scan stats: %w", err)
		}
	}
	job.Error = nullStringToPtr(errMsg)
	if finishedAt.Valid {
		ts := finishedAt.Time
		job.FinishedAt = &ts
	}
	return &job, nil
}
