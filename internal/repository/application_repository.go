package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobdesk/api/internal/models"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	// ErrDuplicateApplication surfaces the unique (candidate, job) index,
	// so a concurrent double-apply produces exactly one row.
	ErrDuplicateApplication = errors.New("application already exists")
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) Create(ctx context.Context, app models.Application) (models.Application, error) {
	const query = `
		INSERT INTO applications (
			id, candidate_id, job_id, status, resume, cover_letter, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		app.ID,
		app.CandidateID,
		app.JobID,
		app.Status,
		app.Resume,
		app.CoverLetter,
	).Scan(&app.CreatedAt, &app.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.Application{}, ErrDuplicateApplication
		}
		return models.Application{}, err
	}
	return app, nil
}

const applicationColumns = `
	id, candidate_id, job_id, status, resume, cover_letter, created_at, updated_at
`

func scanApplication(row pgx.Row) (models.Application, error) {
	var app models.Application
	if err := row.Scan(
		&app.ID,
		&app.CandidateID,
		&app.JobID,
		&app.Status,
		&app.Resume,
		&app.CoverLetter,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.pool.QueryRow(ctx, query, id))
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (models.Application, error) {
	const query = `
		UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING ` + applicationColumns + `
	`
	return scanApplication(r.pool.QueryRow(ctx, query, id, status))
}

func (r *ApplicationRepository) listQuery(ctx context.Context, query string, key any, limit, offset int) ([]models.Application, error) {
	rows, err := r.pool.Query(ctx, query, key, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]models.Application, 0, limit)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) ListByCandidate(ctx context.Context, candidateID string, limit, offset int) ([]models.Application, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM applications WHERE candidate_id = $1`, candidateID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT ` + applicationColumns + `
		FROM applications WHERE candidate_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	apps, err := r.listQuery(ctx, query, candidateID, limit, offset)
	return apps, total, err
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]models.Application, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM applications WHERE job_id = $1`, jobID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT ` + applicationColumns + `
		FROM applications WHERE job_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	apps, err := r.listQuery(ctx, query, jobID, limit, offset)
	return apps, total, err
}
