package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobdesk/api/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and its role profile in one transaction.
// A unique violation on the case-insensitive email index surfaces as
// ErrEmailTaken, so concurrent registrations cannot both win.
func (r *UserRepository) Create(ctx context.Context, user models.User, profile models.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const userQuery = `
		INSERT INTO users (
			id, name, email, password_hash, role, is_suspended, is_email_verified, created_at, updated_at
		) VALUES (
			$1, $2, lower($3), $4, $5, $6, $7, NOW(), NOW()
		)
	`
	if _, err := tx.Exec(ctx, userQuery,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsSuspended,
		user.IsEmailVerified,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	const profileQuery = `
		INSERT INTO profiles (
			id, user_id, phone, designation, agency, skills, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`
	if _, err := tx.Exec(ctx, profileQuery,
		profile.ID,
		profile.UserID,
		profile.Phone,
		profile.Designation,
		profile.Agency,
		profile.Skills,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const userColumns = `
	id, name, email, password_hash, role, is_suspended, is_email_verified, created_at, updated_at
`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsSuspended,
		&user.IsEmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	const query = `
		SELECT id, user_id, phone, designation, agency, skills, COALESCE(resume_key, ''), created_at, updated_at
		FROM profiles WHERE user_id = $1
	`
	var p models.Profile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Phone,
		&p.Designation,
		&p.Agency,
		&p.Skills,
		&p.ResumeKey,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrUserNotFound
		}
		return models.Profile{}, err
	}
	return p, nil
}

func (r *UserRepository) SetSuspended(ctx context.Context, id string, suspended bool) error {
	const query = `UPDATE users SET is_suspended = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, suspended)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) error {
	const query = `UPDATE users SET is_email_verified = TRUE, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResumeKey(ctx context.Context, userID, key string) error {
	const query = `UPDATE profiles SET resume_key = $2, updated_at = NOW() WHERE user_id = $1`
	cmd, err := r.pool.Exec(ctx, query, userID, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT ` + userColumns + `
		FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
