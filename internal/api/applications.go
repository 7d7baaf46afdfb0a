package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/blocksphere4/TalentHireAI/internal/extract"
	"github.com/blocksphere4/TalentHireAI/internal/lifecycle"
	"github.com/blocksphere4/TalentHireAI/internal/storage"
)

// maxApplyBytes bounds the whole submission body: the resume ceiling plus
// headroom for the text fields and multipart framing.
const maxApplyBytes = storage.MaxResumeBytes + 1<<20

// handleApply accepts a multipart careers submission: form fields plus a
// single "resume" file part.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxApplyBytes)
	if err := r.ParseMultipartForm(maxApplyBytes); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid multipart form", lifecycle.ErrValidation))
		return
	}

	params := lifecycle.SubmitParams{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		CoverLetter: r.FormValue("coverLetter"),
		Source:      r.FormValue("source"),
	}
	if raw := r.FormValue("jobId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		params.JobID = id
	}

	file, header, err := r.FormFile("resume")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, storage.MaxResumeBytes+1))
		if readErr != nil {
			s.writeError(w, fmt.Errorf("%w: read resume: %v", lifecycle.ErrValidation, readErr))
			return
		}
		params.Resume = data
		params.ContentType = header.Header.Get("Content-Type")
	}

	app, err := s.controller.Submit(r.Context(), params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toApplicationView(app))
}

func (s *Server) handleListPublicJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.queries.ListPublicJobs(r.Context())
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: list jobs: %v", lifecycle.ErrDependency, err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": toJobViews(jobs)})
}

func (s *Server) handleGetPublicJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("jobId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	job, err := s.queries.GetPublicJob(r.Context(), id)
	if err != nil {
		s.writeError(w, jobLoadError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, toJobView(job))
}

// handleGetApplication returns an application and marks it viewed.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("applicationId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.queries.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, applicationLoadError(err))
		return
	}
	if !app.IsViewed {
		if err := s.controller.MarkViewed(r.Context(), id); err != nil {
			s.logger.Warn("failed to mark application viewed",
				zap.String("application_id", id.String()), zap.Error(err))
		} else {
			app.IsViewed = true
		}
	}
	s.writeJSON(w, http.StatusOK, toApplicationView(app))
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("applicationId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid json body", lifecycle.ErrValidation))
		return
	}
	if err := s.controller.SetStatus(r.Context(), id, req.Status); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// handleAnalyze returns the match report for an application, computing and
// caching it on first request.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApplicationID string `json:"applicationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid json body", lifecycle.ErrValidation))
		return
	}
	id, err := parseID(req.ApplicationID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.controller.GetScore(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if result.Pending {
		s.writeJSON(w, http.StatusOK, map[string]any{"status": "pending"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "completed",
		"score":    result.Score,
		"cached":   result.Cached,
		"analysis": result.Report,
	})
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("applicationId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		InterviewURL string `json:"interviewUrl"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, fmt.Errorf("%w: invalid json body", lifecycle.ErrValidation))
			return
		}
	}
	if err := s.controller.Shortlist(r.Context(), id, req.InterviewURL); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": lifecycle.StatusShortlisted})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("applicationId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.controller.Reject(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": lifecycle.StatusRejected})
}

// handleDownloadResume streams the stored resume file back to staff.
func (s *Server) handleDownloadResume(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("applicationId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.queries.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, applicationLoadError(err))
		return
	}

	data, err := s.files.Download(r.Context(), app.ResumeKey)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: fetch resume: %v", lifecycle.ErrDependency, err))
		return
	}

	w.Header().Set("Content-Type", extract.MimePDF)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", app.Name+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to stream resume", zap.String("application_id", id.String()), zap.Error(err))
	}
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("interviewId")
	iv, err := s.queries.GetInterview(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeError(w, fmt.Errorf("%w: interview", lifecycle.ErrNotFound))
			return
		}
		s.writeError(w, fmt.Errorf("%w: load interview: %v", lifecycle.ErrDependency, err))
		return
	}

	s.writeJSON(w, http.StatusOK, toInterviewView(iv))
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	jobID, err := parseID(r.URL.Query().Get("jobId"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	interviews, err := s.queries.ListInterviews(r.Context(), jobID)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: list interviews: %v", lifecycle.ErrDependency, err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"interviews": toInterviewViews(interviews)})
}

func applicationLoadError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: application", lifecycle.ErrNotFound)
	}
	return fmt.Errorf("%w: load application: %v", lifecycle.ErrDependency, err)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("applicationId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		InterviewName string   `json:"interviewName"`
		Questions     []string `json:"questions"`
		AutoGenerate  bool     `json:"autoGenerate"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, fmt.Errorf("%w: invalid json body", lifecycle.ErrValidation))
			return
		}
	}

	ref, err := s.controller.Invite(r.Context(), id, lifecycle.InviteParams{
		InterviewName: req.InterviewName,
		Questions:     req.Questions,
		AutoGenerate:  req.AutoGenerate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":       lifecycle.StatusInvited,
		"interviewId":  ref.ID,
		"interviewUrl": ref.URL,
	})
}
