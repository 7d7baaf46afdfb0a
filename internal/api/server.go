// Package api exposes the candidate submission and staff triage
// interfaces over HTTP. Handlers stay thin: parsing, delegation to the
// lifecycle controller or stores, and error-to-status mapping.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/blocksphere4/TalentHireAI/internal/database"
	"github.com/blocksphere4/TalentHireAI/internal/lifecycle"
)

// FileStore reads stored resume files back out of object storage.
type FileStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type Server struct {
	controller *lifecycle.Controller
	queries    *database.Queries
	files      FileStore
	logger     *zap.Logger
}

func NewServer(controller *lifecycle.Controller, queries *database.Queries, files FileStore, logger *zap.Logger) *Server {
	return &Server{controller: controller, queries: queries, files: files, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Candidate-facing.
	mux.HandleFunc("POST /api/careers/apply", s.handleApply)
	mux.HandleFunc("GET /api/careers/jobs", s.handleListPublicJobs)
	mux.HandleFunc("GET /api/careers/jobs/{jobId}", s.handleGetPublicJob)

	// Staff-facing.
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{jobId}", s.handleGetJob)
	mux.HandleFunc("PATCH /api/jobs/{jobId}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /api/jobs/{jobId}", s.handleArchiveJob)
	mux.HandleFunc("GET /api/jobs/{jobId}/stats", s.handleJobStats)
	mux.HandleFunc("GET /api/jobs/{jobId}/applications", s.handleListApplications)

	mux.HandleFunc("GET /api/applications/{applicationId}", s.handleGetApplication)
	mux.HandleFunc("GET /api/applications/{applicationId}/resume", s.handleDownloadResume)
	mux.HandleFunc("PUT /api/applications/{applicationId}", s.handleSetStatus)
	mux.HandleFunc("POST /api/applications/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/applications/{applicationId}/shortlist", s.handleShortlist)
	mux.HandleFunc("POST /api/applications/{applicationId}/reject", s.handleReject)
	mux.HandleFunc("POST /api/applications/{applicationId}/invite-interview", s.handleInvite)

	mux.HandleFunc("GET /api/interviews", s.handleListInterviews)
	mux.HandleFunc("GET /api/interviews/{interviewId}", s.handleGetInterview)

	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// writeError maps the lifecycle error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrState):
		status = http.StatusConflict
	case errors.Is(err, lifecycle.ErrDependency):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
