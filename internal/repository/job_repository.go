package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobdesk/api/internal/ids"
	"jobdesk/api/internal/models"
)

var (
	ErrJobNotFound = errors.New("job not found")
	// ErrStatusConflict means the job left the expected pre-state before
	// the conditional update ran; the caller lost the race.
	ErrStatusConflict = errors.New("job status changed concurrently")
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// Create inserts the job in status pending together with its creation
// history entry, so statusHistory is never empty.
func (r *JobRepository) Create(ctx context.Context, job models.Job) (models.Job, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Job{}, err
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO jobs (
			id, title, description, requirements, location, job_type, salary,
			experience_level, skills, created_by, company_id, status, is_approved,
			rejection_reason, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, '', NOW(), NOW()
		)
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		job.Requirements,
		job.Location,
		job.JobType,
		job.Salary,
		job.ExperienceLevel,
		job.Skills,
		job.CreatedBy,
		job.CompanyID,
		models.JobStatusPending,
	).Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		return models.Job{}, err
	}

	change := models.StatusChange{
		Status:    models.JobStatusPending,
		ChangedBy: job.CreatedBy,
		ChangedAt: job.CreatedAt,
		Reason:    "job created",
	}
	if err := appendHistory(ctx, tx, job.ID, change); err != nil {
		return models.Job{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Job{}, err
	}

	job.Status = models.JobStatusPending
	job.IsApproved = false
	job.StatusHistory = []models.StatusChange{change}
	return job, nil
}

func appendHistory(ctx context.Context, tx pgx.Tx, jobID string, change models.StatusChange) error {
	const query = `
		INSERT INTO job_status_history (id, job_id, status, changed_by, changed_at, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, query, ids.New(), jobID, change.Status, change.ChangedBy, change.ChangedAt, change.Reason)
	return err
}

// TransitionParams drives one optimistic status transition: the update
// applies only while the job is still in Expected, and exactly one
// history entry is appended in the same transaction.
type TransitionParams struct {
	JobID    string
	Expected models.JobStatus
	Next     models.JobStatus
	ActorID  string
	Reason   string
}

func (r *JobRepository) Transition(ctx context.Context, p TransitionParams) (models.Job, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Job{}, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	var query string
	switch p.Next {
	case models.JobStatusApproved:
		query = `
			UPDATE jobs
			SET status = $3, is_approved = TRUE, rejection_reason = '',
			    approved_by = $4, approved_at = $5, updated_at = $5
			WHERE id = $1 AND status = $2
		`
	case models.JobStatusRejected:
		query = `
			UPDATE jobs
			SET status = $3, is_approved = FALSE, rejection_reason = $6,
			    rejected_by = $4, rejected_at = $5, updated_at = $5
			WHERE id = $1 AND status = $2
		`
	case models.JobStatusClosed:
		query = `
			UPDATE jobs
			SET status = $3, closed_by = $4, closed_at = $5, updated_at = $5
			WHERE id = $1 AND status = $2
		`
	default:
		return models.Job{}, fmt.Errorf("no transition to status %q", p.Next)
	}

	args := []any{p.JobID, p.Expected, p.Next, p.ActorID, now}
	if p.Next == models.JobStatusRejected {
		args = append(args, p.Reason)
	}

	cmd, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return models.Job{}, err
	}
	if cmd.RowsAffected() == 0 {
		// Row missing vs. pre-state lost are different failures.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, p.JobID).Scan(&exists); err != nil {
			return models.Job{}, err
		}
		if !exists {
			return models.Job{}, ErrJobNotFound
		}
		return models.Job{}, ErrStatusConflict
	}

	if err := appendHistory(ctx, tx, p.JobID, models.StatusChange{
		Status:    p.Next,
		ChangedBy: p.ActorID,
		ChangedAt: now,
		Reason:    p.Reason,
	}); err != nil {
		return models.Job{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Job{}, err
	}

	return r.GetByID(ctx, p.JobID)
}

const jobColumns = `
	id, title, description, requirements, location, job_type, salary,
	experience_level, skills, created_by, company_id, status, is_approved,
	rejection_reason, approved_by, approved_at, rejected_by, rejected_at,
	closed_by, closed_at, created_at, updated_at
`

func scanJob(row pgx.Row) (models.Job, error) {
	var job models.Job
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Requirements,
		&job.Location,
		&job.JobType,
		&job.Salary,
		&job.ExperienceLevel,
		&job.Skills,
		&job.CreatedBy,
		&job.CompanyID,
		&job.Status,
		&job.IsApproved,
		&job.RejectionReason,
		&job.ApprovedBy,
		&job.ApprovedAt,
		&job.RejectedBy,
		&job.RejectedAt,
		&job.ClosedBy,
		&job.ClosedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, ErrJobNotFound
		}
		return models.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (models.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.Job{}, err
	}

	history, err := r.history(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	job.StatusHistory = history
	return job, nil
}

func (r *JobRepository) history(ctx context.Context, jobID string) ([]models.StatusChange, error) {
	const query = `
		SELECT status, changed_by, changed_at, reason
		FROM job_status_history
		WHERE job_id = $1
		ORDER BY changed_at, id
	`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.StatusChange
	for rows.Next() {
		var change models.StatusChange
		if err := rows.Scan(&change.Status, &change.ChangedBy, &change.ChangedAt, &change.Reason); err != nil {
			return nil, err
		}
		history = append(history, change)
	}
	return history, rows.Err()
}

// UpdateFields applies owner edits to the mutable listing fields.
// Status and audit columns are never touched here.
func (r *JobRepository) UpdateFields(ctx context.Context, job models.Job) (models.Job, error) {
	const query = `
		UPDATE jobs
		SET title = $2, description = $3, requirements = $4, location = $5,
		    job_type = $6, salary = $7, experience_level = $8, skills = $9,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		job.Requirements,
		job.Location,
		job.JobType,
		job.Salary,
		job.ExperienceLevel,
		job.Skills,
	)
	if err != nil {
		return models.Job{}, err
	}
	if cmd.RowsAffected() == 0 {
		return models.Job{}, ErrJobNotFound
	}
	return r.GetByID(ctx, job.ID)
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// JobFilter narrows listings. A nil Statuses slice means all statuses;
// the public read path always passes approved only.
type JobFilter struct {
	Statuses         []models.JobStatus
	ApprovedOnly     bool
	CreatedBy        string
	Search           string
	Location         string
	JobTypes         []string
	ExperienceLevels []string
	Limit            int
	Offset           int
}

// escapeLike neutralizes LIKE wildcards in user-supplied filter text so
// the location filter matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *JobRepository) List(ctx context.Context, f JobFilter) ([]models.Job, int, error) {
	where := make([]string, 0, 6)
	args := make([]any, 0, 6)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Statuses) > 0 {
		where = append(where, fmt.Sprintf("status = ANY(%s)", arg(f.Statuses)))
	}
	if f.ApprovedOnly {
		where = append(where, "is_approved = TRUE")
	}
	if f.CreatedBy != "" {
		where = append(where, fmt.Sprintf("created_by = %s", arg(f.CreatedBy)))
	}
	if f.Search != "" {
		where = append(where, fmt.Sprintf("search_vector @@ websearch_to_tsquery('english', %s)", arg(f.Search)))
	}
	if f.Location != "" {
		where = append(where, fmt.Sprintf("location ILIKE '%%' || %s || '%%'", arg(escapeLike(f.Location))))
	}
	if len(f.JobTypes) > 0 {
		where = append(where, fmt.Sprintf("job_type = ANY(%s)", arg(f.JobTypes)))
	}
	if len(f.ExperienceLevels) > 0 {
		where = append(where, fmt.Sprintf("experience_level = ANY(%s)", arg(f.ExperienceLevels)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM jobs"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + jobColumns + " FROM jobs" + clause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]models.Job, 0, f.Limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}
