package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-board/internal/domain"
)

// ErrJobAlreadyAccepted is returned when a job already has an active acceptance.
var ErrJobAlreadyAccepted = errors.New("job already accepted")

const uniqueViolation = "23505"

// AcceptanceRepository persists acceptance records. At most one record exists per job.
type AcceptanceRepository interface {
	Create(ctx context.Context, record *domain.Acceptance) error
	GetByID(ctx context.Context, id string) (*domain.Acceptance, error)
	GetByJobID(ctx context.Context, jobID string) (*domain.Acceptance, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Acceptance, error)
	Delete(ctx context.Context, id string) error
}

type acceptanceRepository struct {
	pool *pgxpool.Pool
}

// NewAcceptanceRepository instantiates the Postgres repository.
func NewAcceptanceRepository(pool *pgxpool.Pool) AcceptanceRepository {
	return &acceptanceRepository{pool: pool}
}

const acceptanceColumns = `id::text, job_id::text, accepted_by_name, accepted_by_email, accepted_at,
               title, category, summary, cover_image_url, poster_email`

func (r *acceptanceRepository) Create(ctx context.Context, record *domain.Acceptance) error {
	const query = `
        INSERT INTO acceptances (job_id, accepted_by_name, accepted_by_email, title, category, summary, cover_image_url, poster_email)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id::text, accepted_at`
	err := r.pool.QueryRow(ctx, query,
		record.JobID,
		record.AcceptedByName,
		record.AcceptedByEmail,
		record.Title,
		record.Category,
		record.Summary,
		record.CoverImageURL,
		record.PosterEmail,
	).Scan(&record.ID, &record.AcceptedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrJobAlreadyAccepted
	}
	return err
}

func (r *acceptanceRepository) GetByID(ctx context.Context, id string) (*domain.Acceptance, error) {
	return r.fetchSingle(ctx, `SELECT `+acceptanceColumns+` FROM acceptances WHERE id::text=$1`, id)
}

func (r *acceptanceRepository) GetByJobID(ctx context.Context, jobID string) (*domain.Acceptance, error) {
	return r.fetchSingle(ctx, `SELECT `+acceptanceColumns+` FROM acceptances WHERE job_id::text=$1`, jobID)
}

func (r *acceptanceRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Acceptance, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records, err := scanAcceptances(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &records[0], nil
}

func (r *acceptanceRepository) ListByEmail(ctx context.Context, email string) ([]domain.Acceptance, error) {
	query := `SELECT ` + acceptanceColumns + ` FROM acceptances
        WHERE LOWER(accepted_by_email)=$1 ORDER BY accepted_at DESC`
	rows, err := r.pool.Query(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAcceptances(rows)
}

func (r *acceptanceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM acceptances WHERE id::text=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAcceptances(rows pgx.Rows) ([]domain.Acceptance, error) {
	result := []domain.Acceptance{}
	for rows.Next() {
		var record domain.Acceptance
		if err := rows.Scan(
			&record.ID,
			&record.JobID,
			&record.AcceptedByName,
			&record.AcceptedByEmail,
			&record.AcceptedAt,
			&record.Title,
			&record.Category,
			&record.Summary,
			&record.CoverImageURL,
			&record.PosterEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
