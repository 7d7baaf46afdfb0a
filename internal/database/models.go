package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	OrganizationID   uuid.UUID
	UserID           uuid.UUID
	Title            string
	Description      string
	LocationType     string
	LocationDetails  sql.NullString
	EmploymentType   string
	Skills           []string
	Experience       string
	Qualifications   []string
	SalaryMin        sql.NullInt64
	SalaryMax        sql.NullInt64
	SalaryCurrency   string
	Deadline         sql.NullTime
	Openings         int32
	IsActive         bool
	IsArchived       bool
	ApplicationCount int32
}

type JobApplication struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	JobID       uuid.UUID
	Name        string
	Email       string
	Phone       string
	ResumeUrl   string
	ResumeKey   string
	ResumeText  sql.NullString
	CoverLetter sql.NullString
	AtsScore    sql.NullInt32
	AtsAnalysis json.RawMessage
	Status      string
	IsViewed    bool
	InterviewID sql.NullString
	Source      string
}

type Interview struct {
	ID            string
	CreatedAt     time.Time
	ApplicationID uuid.UUID
	JobID         uuid.UUID
	Name          string
	Objective     string
	Questions     json.RawMessage
	Url           string
}
