package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const jobColumns = `id, created_at, updated_at, organization_id, user_id, title, description, location_type, location_details, employment_type, skills, experience, qualifications, salary_min, salary_max, salary_currency, deadline, openings, is_active, is_archived, application_count`

func scanJob(row interface{ Scan(...interface{}) error }) (Job, error) {
	var i Job
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.OrganizationID,
		&i.UserID,
		&i.Title,
		&i.Description,
		&i.LocationType,
		&i.LocationDetails,
		&i.EmploymentType,
		pq.Array(&i.Skills),
		&i.Experience,
		pq.Array(&i.Qualifications),
		&i.SalaryMin,
		&i.SalaryMax,
		&i.SalaryCurrency,
		&i.Deadline,
		&i.Openings,
		&i.IsActive,
		&i.IsArchived,
		&i.ApplicationCount,
	)
	return i, err
}

const createJob = `-- name: CreateJob :one
INSERT INTO job (
id, organization_id, user_id, title, description, location_type, location_details, employment_type, skills, experience, qualifications, salary_min, salary_max, salary_currency, deadline, openings)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + jobColumns

type CreateJobParams struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	UserID          uuid.UUID
	Title           string
	Description     string
	LocationType    string
	LocationDetails sql.NullString
	EmploymentType  string
	Skills          []string
	Experience      string
	Qualifications  []string
	SalaryMin       sql.NullInt64
	SalaryMax       sql.NullInt64
	SalaryCurrency  string
	Deadline        sql.NullTime
	Openings        int32
}

func (q *Queries) CreateJob(ctx context.Context, arg CreateJobParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, createJob,
		arg.ID,
		arg.OrganizationID,
		arg.UserID,
		arg.Title,
		arg.Description,
		arg.LocationType,
		arg.LocationDetails,
		arg.EmploymentType,
		pq.Array(arg.Skills),
		arg.Experience,
		pq.Array(arg.Qualifications),
		arg.SalaryMin,
		arg.SalaryMax,
		arg.SalaryCurrency,
		arg.Deadline,
		arg.Openings,
	)
	return scanJob(row)
}

const getJob = `-- name: GetJob :one
SELECT ` + jobColumns + ` FROM job WHERE id=$1`

func (q *Queries) GetJob(ctx context.Context, id uuid.UUID) (Job, error) {
	return scanJob(q.db.QueryRowContext(ctx, getJob, id))
}

const getPublicJob = `-- name: GetPublicJob :one
SELECT ` + jobColumns + ` FROM job WHERE id=$1 AND is_active=true AND is_archived=false`

func (q *Queries) GetPublicJob(ctx context.Context, id uuid.UUID) (Job, error) {
	return scanJob(q.db.QueryRowContext(ctx, getPublicJob, id))
}

const listJobs = `-- name: ListJobs :many
SELECT ` + jobColumns + ` FROM job
WHERE organization_id = $1
  AND ($2 <> 'active' OR (is_active = true AND is_archived = false))
  AND ($2 <> 'archived' OR is_archived = true)
  AND ($3 = '' OR employment_type = $3)
  AND ($4 = '' OR location_type = $4)
  AND ($5 = '' OR title ILIKE '%' || $5 || '%' OR description ILIKE '%' || $5 || '%')
ORDER BY created_at DESC`

type ListJobsParams struct {
	OrganizationID uuid.UUID
	Status         string
	EmploymentType string
	LocationType   string
	Search         string
}

func (q *Queries) ListJobs(ctx context.Context, arg ListJobsParams) ([]Job, error) {
	rows, err := q.db.QueryContext(ctx, listJobs,
		arg.OrganizationID,
		arg.Status,
		arg.EmploymentType,
		arg.LocationType,
		arg.Search,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Job
	for rows.Next() {
		i, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPublicJobs = `-- name: ListPublicJobs :many
SELECT ` + jobColumns + ` FROM job
WHERE is_active = true AND is_archived = false
ORDER BY created_at DESC`

func (q *Queries) ListPublicJobs(ctx context.Context) ([]Job, error) {
	rows, err := q.db.QueryContext(ctx, listPublicJobs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Job
	for rows.Next() {
		i, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateJob = `-- name: UpdateJob :one
UPDATE job SET
	title = COALESCE($2, title),
	description = COALESCE($3, description),
	location_type = COALESCE($4, location_type),
	employment_type = COALESCE($5, employment_type),
	skills = COALESCE($6, skills),
	experience = COALESCE($7, experience),
	qualifications = COALESCE($8, qualifications),
	openings = COALESCE($9, openings),
	is_active = COALESCE($10, is_active),
	updated_at = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING ` + jobColumns

type UpdateJobParams struct {
	ID             uuid.UUID
	Title          sql.NullString
	Description    sql.NullString
	LocationType   sql.NullString
	EmploymentType sql.NullString
	Skills         []string
	Experience     sql.NullString
	Qualifications []string
	Openings       sql.NullInt32
	IsActive       sql.NullBool
}

func (q *Queries) UpdateJob(ctx context.Context, arg UpdateJobParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, updateJob,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.LocationType,
		arg.EmploymentType,
		pq.Array(arg.Skills),
		arg.Experience,
		pq.Array(arg.Qualifications),
		arg.Openings,
		arg.IsActive,
	)
	return scanJob(row)
}

const archiveJob = `-- name: ArchiveJob :exec
UPDATE job
SET is_active = false,
    is_archived = true,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $1`

func (q *Queries) ArchiveJob(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, archiveJob, id)
	return err
}

const incrementApplicationCount = `-- name: IncrementApplicationCount :exec
UPDATE job
SET application_count = application_count + 1,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $1`

func (q *Queries) IncrementApplicationCount(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, incrementApplicationCount, id)
	return err
}
