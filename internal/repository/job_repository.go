package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/jobboard/internal/domain"
)

// JobRepository encapsulates job persistence. Every read and write after
// creation takes the owner id as part of its filter; a row owned by someone
// else behaves exactly like a missing row.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Job, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch domain.JobPatch) (*domain.Job, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}

type jobRepository struct {
	db DBTX
}

// NewJobRepository instantiates repository.
func NewJobRepository(db DBTX) JobRepository {
	return &jobRepository{db: db}
}

const jobColumns = `id, title, company, description, created_by, created_at, updated_at`

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (title, company, description, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		job.Title,
		job.Company,
		job.Description,
		job.CreatedBy,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Job, error) {
	const query = `SELECT ` + jobColumns + `
        FROM jobs WHERE created_by=$1
        ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// UpdateOwned applies the non-nil patch fields in a single statement filtered
// by id and owner.
func (r *jobRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch domain.JobPatch) (*domain.Job, error) {
	const query = `
        UPDATE jobs SET
            title=COALESCE($1, title),
            company=COALESCE($2, company),
            description=COALESCE($3, description),
            updated_at=NOW()
        WHERE id=$4 AND created_by=$5
        RETURNING ` + jobColumns

	var job domain.Job
	if err := scanJob(r.db.QueryRow(ctx, query,
		patch.Title,
		patch.Company,
		patch.Description,
		id,
		ownerID,
	), &job); err != nil {
		return nil, mapNoRows(err)
	}
	return &job, nil
}

func (r *jobRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM jobs WHERE id=$1 AND created_by=$2`
	cmd, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row, job *domain.Job) error {
	return row.Scan(
		&job.ID,
		&job.Title,
		&job.Company,
		&job.Description,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	result := []domain.Job{}
	for rows.Next() {
		var job domain.Job
		if err := scanJob(rows, &job); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}
