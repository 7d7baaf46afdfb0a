package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

const applicationColumns = `id, created_at, updated_at, job_id, name, email, phone, resume_url, resume_key, resume_text, cover_letter, ats_score, ats_analysis, status, is_viewed, interview_id, source`

func scanApplication(row interface{ Scan(...interface{}) error }) (JobApplication, error) {
	var i JobApplication
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.JobID,
		&i.Name,
		&i.Email,
		&i.Phone,
		&i.ResumeUrl,
		&i.ResumeKey,
		&i.ResumeText,
		&i.CoverLetter,
		&i.AtsScore,
		&i.AtsAnalysis,
		&i.Status,
		&i.IsViewed,
		&i.InterviewID,
		&i.Source,
	)
	return i, err
}

const createApplication = `-- name: CreateApplication :one
INSERT INTO job_application (
id, job_id, name, email, phone, resume_url, resume_key, resume_text, cover_letter, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + applicationColumns

type CreateApplicationParams struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	Name        string
	Email       string
	Phone       string
	ResumeUrl   string
	ResumeKey   string
	ResumeText  sql.NullString
	CoverLetter sql.NullString
	Source      string
}

func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (JobApplication, error) {
	row := q.db.QueryRowContext(ctx, createApplication,
		arg.ID,
		arg.JobID,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.ResumeUrl,
		arg.ResumeKey,
		arg.ResumeText,
		arg.CoverLetter,
		arg.Source,
	)
	return scanApplication(row)
}

const getApplication = `-- name: GetApplication :one
SELECT ` + applicationColumns + ` FROM job_application WHERE id=$1`

func (q *Queries) GetApplication(ctx context.Context, id uuid.UUID) (JobApplication, error) {
	return scanApplication(q.db.QueryRowContext(ctx, getApplication, id))
}

const listApplications = `-- name: ListApplications :many
SELECT ` + applicationColumns + ` FROM job_application
WHERE job_id = $1
  AND ($2 = '' OR status = $2)
  AND ($3::int < 0 OR ats_score >= $3)
  AND ($4::int < 0 OR ats_score <= $4)
ORDER BY
	CASE WHEN $5 = 'name_asc' THEN name END ASC,
	CASE WHEN $5 = 'name_desc' THEN name END DESC,
	CASE WHEN $5 = 'score_asc' THEN ats_score END ASC NULLS FIRST,
	CASE WHEN $5 = 'score_desc' THEN ats_score END DESC NULLS LAST,
	CASE WHEN $5 = 'date_asc' THEN created_at END ASC,
	created_at DESC`

type ListApplicationsParams struct {
	JobID    uuid.UUID
	Status   string
	MinScore int32
	MaxScore int32
	OrderBy  string
}

func (q *Queries) ListApplications(ctx context.Context, arg ListApplicationsParams) ([]JobApplication, error) {
	rows, err := q.db.QueryContext(ctx, listApplications,
		arg.JobID,
		arg.Status,
		arg.MinScore,
		arg.MaxScore,
		arg.OrderBy,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JobApplication
	for rows.Next() {
		i, err := scanApplication(rows)
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

const searchApplications = `-- name: SearchApplications :many
SELECT ` + applicationColumns + ` FROM job_application
WHERE job_id = $1
  AND (name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
ORDER BY created_at DESC`

type SearchApplicationsParams struct {
	JobID uuid.UUID
	Query string
}

func (q *Queries) SearchApplications(ctx context.Context, arg SearchApplicationsParams) ([]JobApplication, error) {
	rows, err := q.db.QueryContext(ctx, searchApplications, arg.JobID, arg.Query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JobApplication
	for rows.Next() {
		i, err := scanApplication(rows)
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

const updateApplicationStatus = `-- name: UpdateApplicationStatus :exec
UPDATE job_application
SET status = $1,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $2`

type UpdateApplicationStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateApplicationStatus(ctx context.Context, arg UpdateApplicationStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateApplicationStatus, arg.Status, arg.ID)
	return err
}

const setApplicationScore = `-- name: SetApplicationScore :execrows
UPDATE job_application
SET ats_score = $1,
    ats_analysis = $2,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $3 AND ats_score IS NULL`

type SetApplicationScoreParams struct {
	AtsScore    sql.NullInt32
	AtsAnalysis json.RawMessage
	ID          uuid.UUID
}

// SetApplicationScore persists a match report only when no score exists yet.
// The ats_score IS NULL guard makes the first completed scoring win.
func (q *Queries) SetApplicationScore(ctx context.Context, arg SetApplicationScoreParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setApplicationScore, arg.AtsScore, arg.AtsAnalysis, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markApplicationViewed = `-- name: MarkApplicationViewed :exec
UPDATE job_application
SET is_viewed = true
WHERE id = $1`

func (q *Queries) MarkApplicationViewed(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, markApplicationViewed, id)
	return err
}

const setApplicationInterview = `-- name: SetApplicationInterview :exec
UPDATE job_application
SET interview_id = $1,
    status = 'invited',
    updated_at = CURRENT_TIMESTAMP
WHERE id = $2`

type SetApplicationInterviewParams struct {
	InterviewID sql.NullString
	ID          uuid.UUID
}

func (q *Queries) SetApplicationInterview(ctx context.Context, arg SetApplicationInterviewParams) error {
	_, err := q.db.ExecContext(ctx, setApplicationInterview, arg.InterviewID, arg.ID)
	return err
}

const getApplicationStats = `-- name: GetApplicationStats :many
SELECT status, ats_score FROM job_application WHERE job_id = $1`

type GetApplicationStatsRow struct {
	Status   string
	AtsScore sql.NullInt32
}

func (q *Queries) GetApplicationStats(ctx context.Context, jobID uuid.UUID) ([]GetApplicationStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, getApplicationStats, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetApplicationStatsRow
	for rows.Next() {
		var i GetApplicationStatsRow
		if err := rows.Scan(&i.Status, &i.AtsScore); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
