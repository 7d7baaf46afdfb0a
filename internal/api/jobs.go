package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blocksphere4/TalentHireAI/internal/database"
	"github.com/blocksphere4/TalentHireAI/internal/lifecycle"
)

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", lifecycle.ErrValidation, raw)
	}
	return id, nil
}

type createJobRequest struct {
	OrganizationID  string   `json:"organizationId"`
	UserID          string   `json:"userId"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	LocationType    string   `json:"locationType"`
	LocationDetails string   `json:"locationDetails"`
	EmploymentType  string   `json:"employmentType"`
	Skills          []string `json:"skills"`
	Experience      string   `json:"experience"`
	Qualifications  []string `json:"qualifications"`
	SalaryMin       *int64   `json:"salaryMin"`
	SalaryMax       *int64   `json:"salaryMax"`
	SalaryCurrency  string   `json:"salaryCurrency"`
	Deadline        string   `json:"deadline"`
	Openings        int32    `json:"openings"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid json body", lifecycle.ErrValidation))
		return
	}

	var missing []string
	for name, value := range map[string]string{
		"title":          req.Title,
		"description":    req.Description,
		"locationType":   req.LocationType,
		"employmentType": req.EmploymentType,
		"organizationId": req.OrganizationID,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		s.writeError(w, fmt.Errorf("%w: missing required fields: %s", lifecycle.ErrValidation, strings.Join(missing, ", ")))
		return
	}

	orgID, err := parseID(req.OrganizationID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	userID := uuid.Nil
	if req.UserID != "" {
		if userID, err = parseID(req.UserID); err != nil {
			s.writeError(w, err)
			return
		}
	}

	params := database.CreateJobParams{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		LocationType:   req.LocationType,
		EmploymentType: req.EmploymentType,
		Skills:         req.Skills,
		Experience:     req.Experience,
		Qualifications: req.Qualifications,
		SalaryCurrency: "USD",
		Openings:       1,
	}
	if req.LocationDetails != "" {
		params.LocationDetails = sql.NullString{String: req.LocationDetails, Valid: true}
	}
	if req.SalaryMin != nil {
		params.SalaryMin = sql.NullInt64{Int64: *req.SalaryMin, Valid: true}
	}
	if req.SalaryMax != nil {
		params.SalaryMax = sql.NullInt64{Int64: *req.SalaryMax, Valid: true}
	}
	if req.SalaryCurrency != "" {
		params.SalaryCurrency = req.SalaryCurrency
	}
	if req.Openings > 0 {
		params.Openings = req.Openings
	}
	if req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: deadline must be RFC 3339", lifecycle.ErrValidation))
			return
		}
		params.Deadline = sql.NullTime{Time: deadline, Valid: true}
	}
	if params.Skills == nil {
		params.Skills = []string{}
	}
	if params.Qualifications == nil {
		params.Qualifications = []string{}
	}

	job, err := s.queries.CreateJob(r.Context(), params)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: create job: %v", lifecycle.ErrDependency, err))
		return
	}
	s.writeJSON(w, http.StatusCreated, toJobView(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseID(r.URL.Query().Get("organizationId"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	jobs, err := s.queries.ListJobs(r.Context(), database.ListJobsParams{
		OrganizationID: orgID,
		Status:         r.URL.Query().Get("status"),
		EmploymentType: r.URL.Query().Get("employmentType"),
		LocationType:   r.URL.Query().Get("locationType"),
		Search:         r.URL.Query().Get("search"),
	})
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: list jobs: %v", lifecycle.ErrDependency, err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": toJobViews(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("jobId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	job, err := s.queries.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, jobLoadError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, toJobView(job))
}

type updateJobRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	LocationType   *string  `json:"locationType"`
	EmploymentType *string  `json:"employmentType"`
	Skills         []string `json:"skills"`
	Experience     *string  `json:"experience"`
	Qualifications []string `json:"qualifications"`
	Openings       *int32   `json:"openings"`
	IsActive       *bool    `json:"isActive"`
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("jobId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req updateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid json body", lifecycle.ErrValidation))
		return
	}

	params := database.UpdateJobParams{
		ID:             id,
		Title:          nullFrom(req.Title),
		Description:    nullFrom(req.Description),
		LocationType:   nullFrom(req.LocationType),
		EmploymentType: nullFrom(req.EmploymentType),
		Experience:     nullFrom(req.Experience),
		Skills:         req.Skills,
		Qualifications: req.Qualifications,
	}
	if req.Openings != nil {
		params.Openings = sql.NullInt32{Int32: *req.Openings, Valid: true}
	}
	if req.IsActive != nil {
		params.IsActive = sql.NullBool{Bool: *req.IsActive, Valid: true}
	}

	job, err := s.queries.UpdateJob(r.Context(), params)
	if err != nil {
		s.writeError(w, jobLoadError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, toJobView(job))
}

func (s *Server) handleArchiveJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("jobId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.queries.GetJob(r.Context(), id); err != nil {
		s.writeError(w, jobLoadError(err))
		return
	}
	if err := s.queries.ArchiveJob(r.Context(), id); err != nil {
		s.writeError(w, fmt.Errorf("%w: archive job: %v", lifecycle.ErrDependency, err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"archived": true})
}

func (s *Server) handleJobStats(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("jobId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.queries.GetJob(r.Context(), id); err != nil {
		s.writeError(w, jobLoadError(err))
		return
	}
	stats, err := s.controller.Stats(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

var sortKeys = map[string]bool{
	"name_asc": true, "name_desc": true,
	"score_asc": true, "score_desc": true,
	"date_asc": true, "date_desc": true,
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	jobID, err := parseID(r.PathValue("jobId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	query := r.URL.Query()

	if search := query.Get("search"); search != "" {
		apps, err := s.queries.SearchApplications(r.Context(), database.SearchApplicationsParams{
			JobID: jobID,
			Query: search,
		})
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: search applications: %v", lifecycle.ErrDependency, err))
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"applications": toApplicationViews(apps)})
		return
	}

	status := query.Get("status")
	if status != "" && !lifecycle.ValidStatus(status) {
		s.writeError(w, fmt.Errorf("%w: unknown status %q", lifecycle.ErrValidation, status))
		return
	}
	minScore, err := scoreParam(query.Get("minScore"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	maxScore, err := scoreParam(query.Get("maxScore"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	orderBy := "date_desc"
	if sortBy := query.Get("sortBy"); sortBy != "" {
		order := query.Get("sortOrder")
		if order != "asc" {
			order = "desc"
		}
		orderBy = sortBy + "_" + order
		if !sortKeys[orderBy] {
			s.writeError(w, fmt.Errorf("%w: unknown sort %q", lifecycle.ErrValidation, sortBy))
			return
		}
	}

	apps, err := s.queries.ListApplications(r.Context(), database.ListApplicationsParams{
		JobID:    jobID,
		Status:   status,
		MinScore: minScore,
		MaxScore: maxScore,
		OrderBy:  orderBy,
	})
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: list applications: %v", lifecycle.ErrDependency, err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"applications": toApplicationViews(apps)})
}

// scoreParam parses a score filter; -1 disables the filter downstream.
func scoreParam(raw string) (int32, error) {
	if raw == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 100 {
		return 0, fmt.Errorf("%w: score filter must be between 0 and 100", lifecycle.ErrValidation)
	}
	return int32(n), nil
}

func jobLoadError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: job", lifecycle.ErrNotFound)
	}
	return fmt.Errorf("%w: load job: %v", lifecycle.ErrDependency, err)
}

func nullFrom(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
