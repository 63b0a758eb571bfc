package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-board/internal/domain"
)

const (
	defaultJobLimit = 50
	maxJobLimit     = 200
)

// JobRepository encapsulates job posting persistence. Missing rows are reported as
// pgx.ErrNoRows by every implementation.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates the Postgres repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (title, category, summary, cover_image_url, posted_by_name, poster_email)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query,
		job.Title,
		job.Category,
		job.Summary,
		job.CoverImageURL,
		job.PostedByName,
		job.PosterEmail,
	).Scan(&job.ID, &job.CreatedAt)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	const query = `
        UPDATE jobs SET title=$1, category=$2, summary=$3, cover_image_url=$4
        WHERE id::text=$5`
	cmd, err := r.pool.Exec(ctx, query,
		job.Title,
		job.Category,
		job.Summary,
		job.CoverImageURL,
		job.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id::text=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	const query = `
        SELECT id::text, title, category, summary, cover_image_url, posted_by_name, poster_email, created_at
        FROM jobs WHERE id::text=$1`
	var job domain.Job
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Category,
		&job.Summary,
		&job.CoverImageURL,
		&job.PostedByName,
		&job.PosterEmail,
		&job.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	base := `SELECT id::text, title, category, summary, cover_image_url, posted_by_name, poster_email, created_at
             FROM jobs`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.PosterEmail != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(filter.PosterEmail)))
		clauses = append(clauses, fmt.Sprintf("LOWER(poster_email)=$%d", len(args)))
	}

	direction := "DESC"
	if filter.Sort == domain.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at %s, id %s LIMIT %d`,
		base, strings.Join(clauses, " AND "), direction, direction, normalizeLimit(filter.Limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	result := []domain.Job{}
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Category,
			&job.Summary,
			&job.CoverImageURL,
			&job.PostedByName,
			&job.PosterEmail,
			&job.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultJobLimit
	}
	if limit > maxJobLimit {
		return maxJobLimit
	}
	return limit
}
