package api

import (
	"encoding/json"
	"time"

	"github.com/blocksphere4/TalentHireAI/internal/database"
)

type jobView struct {
	ID               string   `json:"id"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
	OrganizationID   string   `json:"organizationId"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	LocationType     string   `json:"locationType"`
	LocationDetails  string   `json:"locationDetails,omitempty"`
	EmploymentType   string   `json:"employmentType"`
	Skills           []string `json:"skills"`
	Experience       string   `json:"experience"`
	Qualifications   []string `json:"qualifications"`
	SalaryMin        *int64   `json:"salaryMin,omitempty"`
	SalaryMax        *int64   `json:"salaryMax,omitempty"`
	SalaryCurrency   string   `json:"salaryCurrency"`
	Deadline         *string  `json:"deadline,omitempty"`
	Openings         int32    `json:"openings"`
	IsActive         bool     `json:"isActive"`
	IsArchived       bool     `json:"isArchived"`
	ApplicationCount int32    `json:"applicationCount"`
}

func toJobView(j database.Job) jobView {
	v := jobView{
		ID:               j.ID.String(),
		CreatedAt:        j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        j.UpdatedAt.Format(time.RFC3339),
		OrganizationID:   j.OrganizationID.String(),
		Title:            j.Title,
		Description:      j.Description,
		LocationType:     j.LocationType,
		EmploymentType:   j.EmploymentType,
		Skills:           j.Skills,
		Experience:       j.Experience,
		Qualifications:   j.Qualifications,
		SalaryCurrency:   j.SalaryCurrency,
		Openings:         j.Openings,
		IsActive:         j.IsActive,
		IsArchived:       j.IsArchived,
		ApplicationCount: j.ApplicationCount,
	}
	if j.LocationDetails.Valid {
		v.LocationDetails = j.LocationDetails.String
	}
	if j.SalaryMin.Valid {
		v.SalaryMin = &j.SalaryMin.Int64
	}
	if j.SalaryMax.Valid {
		v.SalaryMax = &j.SalaryMax.Int64
	}
	if j.Deadline.Valid {
		deadline := j.Deadline.Time.Format(time.RFC3339)
		v.Deadline = &deadline
	}
	if v.Skills == nil {
		v.Skills = []string{}
	}
	if v.Qualifications == nil {
		v.Qualifications = []string{}
	}
	return v
}

func toJobViews(jobs []database.Job) []jobView {
	views := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, toJobView(j))
	}
	return views
}

type interviewView struct {
	ID            string          `json:"id"`
	CreatedAt     string          `json:"createdAt"`
	ApplicationID string          `json:"applicationId"`
	JobID         string          `json:"jobId"`
	Name          string          `json:"name"`
	Objective     string          `json:"objective"`
	Questions     json.RawMessage `json:"questions"`
	URL           string          `json:"url"`
}

func toInterviewView(i database.Interview) interviewView {
	return interviewView{
		ID:            i.ID,
		CreatedAt:     i.CreatedAt.Format(time.RFC3339),
		ApplicationID: i.ApplicationID.String(),
		JobID:         i.JobID.String(),
		Name:          i.Name,
		Objective:     i.Objective,
		Questions:     i.Questions,
		URL:           i.Url,
	}
}

func toInterviewViews(interviews []database.Interview) []interviewView {
	views := make([]interviewView, 0, len(interviews))
	for _, i := range interviews {
		views = append(views, toInterviewView(i))
	}
	return views
}

type applicationView struct {
	ID          string          `json:"id"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
	JobID       string          `json:"jobId"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	ResumeURL   string          `json:"resumeUrl"`
	CoverLetter string          `json:"coverLetter,omitempty"`
	AtsScore    *int32          `json:"atsScore"`
	AtsAnalysis json.RawMessage `json:"atsAnalysis,omitempty"`
	Status      string          `json:"status"`
	IsViewed    bool            `json:"isViewed"`
	InterviewID string          `json:"interviewId,omitempty"`
	Source      string          `json:"source"`
}

func toApplicationView(a database.JobApplication) applicationView {
	v := applicationView{
		ID:          a.ID.String(),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
		JobID:       a.JobID.String(),
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		ResumeURL:   a.ResumeUrl,
		AtsAnalysis: a.AtsAnalysis,
		Status:      a.Status,
		IsViewed:    a.IsViewed,
		Source:      a.Source,
	}
	if a.CoverLetter.Valid {
		v.CoverLetter = a.CoverLetter.String
	}
	if a.AtsScore.Valid {
		v.AtsScore = &a.AtsScore.Int32
	}
	if a.InterviewID.Valid {
		v.InterviewID = a.InterviewID.String
	}
	return v
}

func toApplicationViews(apps []database.JobApplication) []applicationView {
	views := make([]applicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, toApplicationView(a))
	}
	return views
}
