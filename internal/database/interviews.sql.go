package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createInterview = `-- name: CreateInterview :one
INSERT INTO interview (
id, application_id, job_id, name, objective, questions, url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, application_id, job_id, name, objective, questions, url`

type CreateInterviewParams struct {
	ID            string
	ApplicationID uuid.UUID
	JobID         uuid.UUID
	Name          string
	Objective     string
	Questions     json.RawMessage
	Url           string
}

func (q *Queries) CreateInterview(ctx context.Context, arg CreateInterviewParams) (Interview, error) {
	row := q.db.QueryRowContext(ctx, createInterview,
		arg.ID,
		arg.ApplicationID,
		arg.JobID,
		arg.Name,
		arg.Objective,
		arg.Questions,
		arg.Url,
	)
	var i Interview
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.ApplicationID,
		&i.JobID,
		&i.Name,
		&i.Objective,
		&i.Questions,
		&i.Url,
	)
	return i, err
}

const listInterviews = `-- name: ListInterviews :many
SELECT id, created_at, application_id, job_id, name, objective, questions, url FROM interview
WHERE job_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListInterviews(ctx context.Context, jobID uuid.UUID) ([]Interview, error) {
	rows, err := q.db.QueryContext(ctx, listInterviews, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Interview
	for rows.Next() {
		var i Interview
		if err := rows.Scan(
			&i.ID,
			&i.CreatedAt,
			&i.ApplicationID,
			&i.JobID,
			&i.Name,
			&i.Objective,
			&i.Questions,
			&i.Url,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getInterview = `-- name: GetInterview :one
SELECT id, created_at, application_id, job_id, name, objective, questions, url FROM interview WHERE id=$1`

func (q *Queries) GetInterview(ctx context.Context, id string) (Interview, error) {
	row := q.db.QueryRowContext(ctx, getInterview, id)
	var i Interview
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.ApplicationID,
		&i.JobID,
		&i.Name,
		&i.Objective,
		&i.Questions,
		&i.Url,
	)
	return i, err
}
