package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-board/internal/domain"
)

// ErrEmailTaken is returned when an account already exists for the email.
var ErrEmailTaken = errors.New("email already registered")

// AccountRepository defines persistence access for credential accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// ProfileRepository stores the public user records posted to /users.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, name, photo_url, password_hash, provider)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id::text, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.Name,
		account.PhotoURL,
		account.PasswordHash,
		account.Provider,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET name=$1, photo_url=$2, password_hash=$3, provider=$4, updated_at=NOW()
        WHERE id::text=$5`

	cmd, err := r.pool.Exec(ctx, query,
		account.Name,
		account.PhotoURL,
		account.PasswordHash,
		account.Provider,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `
        SELECT id::text, email, name, photo_url, password_hash, provider, created_at, updated_at
        FROM accounts WHERE id::text=$1`, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `
        SELECT id::text, email, name, photo_url, password_hash, provider, created_at, updated_at
        FROM accounts WHERE LOWER(email)=$1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.PhotoURL,
		&account.PasswordHash,
		&account.Provider,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (email, name, photo_url, created_at)
        VALUES (LOWER($1), $2, $3, COALESCE($4, NOW()))
        ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name, photo_url=EXCLUDED.photo_url
        RETURNING created_at`
	var createdAt *time.Time
	if !profile.CreatedAt.IsZero() {
		createdAt = &profile.CreatedAt
	}
	return r.pool.QueryRow(ctx, query,
		profile.Email,
		profile.Name,
		profile.PhotoURL,
		createdAt,
	).Scan(&profile.CreatedAt)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	const query = `SELECT email, name, photo_url, created_at FROM profiles WHERE email=LOWER($1)`
	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(
		&profile.Email,
		&profile.Name,
		&profile.PhotoURL,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
