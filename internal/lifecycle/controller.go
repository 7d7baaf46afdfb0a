// Package lifecycle owns the application status state machine and
// orchestrates scoring, notification and interview side effects.
package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blocksphere4/TalentHireAI/internal/ats"
	"github.com/blocksphere4/TalentHireAI/internal/database"
	"github.com/blocksphere4/TalentHireAI/internal/interview"
	"github.com/blocksphere4/TalentHireAI/internal/notify"
	"github.com/blocksphere4/TalentHireAI/internal/storage"
)

// Application statuses. Transitions are one-directional; rejected and
// invited are terminal.
const (
	StatusNew         = "new"
	StatusReviewing   = "reviewing"
	StatusShortlisted = "shortlisted"
	StatusInvited     = "invited"
	StatusRejected    = "rejected"
)

var transitions = map[string]map[string]bool{
	StatusNew:         {StatusReviewing: true, StatusShortlisted: true, StatusRejected: true, StatusInvited: true},
	StatusReviewing:   {StatusShortlisted: true, StatusRejected: true, StatusInvited: true},
	StatusShortlisted: {StatusInvited: true},
	StatusRejected:    {},
	StatusInvited:     {},
}

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

const defaultScoreTimeout = 30 * time.Second

type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (database.Job, error)
	GetPublicJob(ctx context.Context, id uuid.UUID) (database.Job, error)
	IncrementApplicationCount(ctx context.Context, id uuid.UUID) error
}

type ApplicationStore interface {
	CreateApplication(ctx context.Context, arg database.CreateApplicationParams) (database.JobApplication, error)
	GetApplication(ctx context.Context, id uuid.UUID) (database.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, arg database.UpdateApplicationStatusParams) error
	SetApplicationScore(ctx context.Context, arg database.SetApplicationScoreParams) (int64, error)
	SetApplicationInterview(ctx context.Context, arg database.SetApplicationInterviewParams) error
	MarkApplicationViewed(ctx context.Context, id uuid.UUID) error
	GetApplicationStats(ctx context.Context, jobID uuid.UUID) ([]database.GetApplicationStatsRow, error)
}

type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (key, url string, err error)
}

type Notifier interface {
	SendShortlist(email notify.ShortlistEmail) error
	SendRejection(email notify.RejectionEmail) error
}

type InterviewProvisioner interface {
	Create(ctx context.Context, params interview.CreateParams) (interview.Ref, error)
}

// ScoreEnqueuer hands an application to the asynchronous scoring workers.
type ScoreEnqueuer interface {
	EnqueueScore(ctx context.Context, applicationID uuid.UUID) error
}

// Extractor converts an uploaded file into plain text, degrading to ""
// on failure.
type Extractor func(mime string, data []byte) string

type Controller struct {
	jobs         JobStore
	apps         ApplicationStore
	uploader     Uploader
	extract      Extractor
	scorer       ats.Scorer
	notifier     Notifier
	interviews   InterviewProvisioner
	queue        ScoreEnqueuer
	companyName  string
	scoreTimeout time.Duration
	logger       *zap.Logger
}

type Options struct {
	Jobs         JobStore
	Apps         ApplicationStore
	Uploader     Uploader
	Extract      Extractor
	Scorer       ats.Scorer
	Notifier     Notifier
	Interviews   InterviewProvisioner
	Queue        ScoreEnqueuer
	CompanyName  string
	ScoreTimeout time.Duration
	Logger       *zap.Logger
}

func NewController(opts Options) *Controller {
	if opts.ScoreTimeout <= 0 {
		opts.ScoreTimeout = defaultScoreTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		jobs:         opts.Jobs,
		apps:         opts.Apps,
		uploader:     opts.Uploader,
		extract:      opts.Extract,
		scorer:       opts.Scorer,
		notifier:     opts.Notifier,
		interviews:   opts.Interviews,
		queue:        opts.Queue,
		companyName:  opts.CompanyName,
		scoreTimeout: opts.ScoreTimeout,
		logger:       opts.Logger,
	}
}

type SubmitParams struct {
	JobID       uuid.UUID
	Name        string
	Email       string
	Phone       string
	CoverLetter string
	Resume      []byte
	ContentType string
	Source      string
}

// Submit accepts a candidate application. The resume is validated before
// any storage or extraction call; scoring is requested asynchronously and
// is not required for the submission to succeed.
func (c *Controller) Submit(ctx context.Context, params SubmitParams) (database.JobApplication, error) {
	var missing []string
	for name, value := range map[string]string{
		"name":  params.Name,
		"email": params.Email,
		"phone": params.Phone,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if params.JobID == uuid.Nil {
		missing = append(missing, "jobId")
	}
	if len(params.Resume) == 0 {
		missing = append(missing, "resume")
	}
	if len(missing) > 0 {
		return database.JobApplication{}, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	if err := storage.ValidateResume(params.ContentType, int64(len(params.Resume))); err != nil {
		return database.JobApplication{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	job, err := c.jobs.GetPublicJob(ctx, params.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.JobApplication{}, fmt.Errorf("%w: job not found or no longer active", ErrNotFound)
		}
		return database.JobApplication{}, fmt.Errorf("%w: load job: %v", ErrDependency, err)
	}

	key, url, err := c.uploader.Upload(ctx, params.Resume, params.ContentType)
	if err != nil {
		return database.JobApplication{}, fmt.Errorf("%w: upload resume: %v", ErrDependency, err)
	}

	resumeText := c.extract(params.ContentType, params.Resume)
	if resumeText == "" {
		c.logger.Warn("resume text extraction produced no text",
			zap.String("job_id", job.ID.String()),
			zap.String("resume_key", key))
	}

	source := params.Source
	if source == "" {
		source = "careers"
	}

	app, err := c.apps.CreateApplication(ctx, database.CreateApplicationParams{
		ID:          uuid.New(),
		JobID:       job.ID,
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		ResumeUrl:   url,
		ResumeKey:   key,
		ResumeText:  nullString(resumeText),
		CoverLetter: nullString(params.CoverLetter),
		Source:      source,
	})
	if err != nil {
		return database.JobApplication{}, fmt.Errorf("%w: create application: %v", ErrDependency, err)
	}

	if err := c.jobs.IncrementApplicationCount(ctx, job.ID); err != nil {
		c.logger.Warn("failed to bump application count", zap.String("job_id", job.ID.String()), zap.Error(err))
	}

	// Fire-and-forget scoring request.
	if c.queue != nil && resumeText != "" {
		if err := c.queue.EnqueueScore(ctx, app.ID); err != nil {
			c.logger.Warn("failed to enqueue scoring", zap.String("application_id", app.ID.String()), zap.Error(err))
		}
	}

	c.logger.Info("application submitted",
		zap.String("application_id", app.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Bool("resume_text_extracted", resumeText != ""))

	return app, nil
}

// Shortlist moves an application to shortlisted and emails the candidate.
// Email failure is logged, never rolled back.
func (c *Controller) Shortlist(ctx context.Context, id uuid.UUID, interviewURL string) error {
	app, err := c.getApplication(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(app.Status, StatusShortlisted); err != nil {
		return err
	}

	if err := c.apps.UpdateApplicationStatus(ctx, database.UpdateApplicationStatusParams{
		Status: StatusShortlisted,
		ID:     id,
	}); err != nil {
		return fmt.Errorf("%w: update status: %v", ErrDependency, err)
	}

	job, err := c.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		c.logger.Warn("shortlisted but could not load job for email", zap.String("application_id", id.String()), zap.Error(err))
		return nil
	}

	if err := c.notifier.SendShortlist(notify.ShortlistEmail{
		CandidateName:  app.Name,
		CandidateEmail: app.Email,
		JobTitle:       job.Title,
		InterviewURL:   interviewURL,
		CompanyName:    c.companyName,
	}); err != nil {
		c.logger.Warn("shortlist email failed", zap.String("application_id", id.String()), zap.Error(err))
	}

	return nil
}

// Reject moves an application to rejected and emails the candidate.
func (c *Controller) Reject(ctx context.Context, id uuid.UUID) error {
	app, err := c.getApplication(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(app.Status, StatusRejected); err != nil {
		return err
	}

	if err := c.apps.UpdateApplicationStatus(ctx, database.UpdateApplicationStatusParams{
		Status: StatusRejected,
		ID:     id,
	}); err != nil {
		return fmt.Errorf("%w: update status: %v", ErrDependency, err)
	}

	job, err := c.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		c.logger.Warn("rejected but could not load job for email", zap.String("application_id", id.String()), zap.Error(err))
		return nil
	}

	if err := c.notifier.SendRejection(notify.RejectionEmail{
		CandidateName:  app.Name,
		CandidateEmail: app.Email,
		JobTitle:       job.Title,
		CompanyName:    c.companyName,
	}); err != nil {
		c.logger.Warn("rejection email failed", zap.String("application_id", id.String()), zap.Error(err))
	}

	return nil
}

type InviteParams struct {
	InterviewName string
	Questions     []string
	AutoGenerate  bool
}

// Invite provisions an interview and moves the application to invited.
// Provisioning failure leaves the status untouched.
func (c *Controller) Invite(ctx context.Context, id uuid.UUID, params InviteParams) (interview.Ref, error) {
	app, err := c.getApplication(ctx, id)
	if err != nil {
		return interview.Ref{}, err
	}
	if err := checkTransition(app.Status, StatusInvited); err != nil {
		return interview.Ref{}, err
	}

	job, err := c.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		return interview.Ref{}, fmt.Errorf("%w: load job: %v", ErrDependency, err)
	}

	ref, err := c.interviews.Create(ctx, interview.CreateParams{
		ApplicationID:  app.ID,
		JobID:          job.ID,
		JobTitle:       job.Title,
		JobDescription: job.Description,
		Skills:         job.Skills,
		Experience:     job.Experience,
		Qualifications: job.Qualifications,
		CandidateName:  app.Name,
		Name:           params.InterviewName,
		Questions:      params.Questions,
		AutoGenerate:   params.AutoGenerate,
	})
	if err != nil {
		return interview.Ref{}, fmt.Errorf("%w: provision interview: %v", ErrDependency, err)
	}

	if err := c.apps.SetApplicationInterview(ctx, database.SetApplicationInterviewParams{
		InterviewID: nullString(ref.ID),
		ID:          id,
	}); err != nil {
		return interview.Ref{}, fmt.Errorf("%w: store interview ref: %v", ErrDependency, err)
	}

	c.logger.Info("candidate invited to interview",
		zap.String("application_id", id.String()),
		zap.String("interview_id", ref.ID))

	return ref, nil
}

// ScoreResult is the outcome of GetScore. Pending means no report can be
// produced (no resume text); Cached means the stored report was reused.
type ScoreResult struct {
	Report  *ats.MatchReport
	Score   int
	Cached  bool
	Pending bool
}

// GetScore returns the cached match report, or computes and persists one.
// At most one effective score is ever persisted per application: the cache
// is checked immediately before dispatch and the write is a compare-and-set
// on score absence.
func (c *Controller) GetScore(ctx context.Context, id uuid.UUID) (ScoreResult, error) {
	app, err := c.getApplication(ctx, id)
	if err != nil {
		return ScoreResult{}, err
	}

	if result, ok, err := cachedResult(app); err != nil {
		return ScoreResult{}, err
	} else if ok {
		return result, nil
	}

	if !app.ResumeText.Valid || strings.TrimSpace(app.ResumeText.String) == "" {
		return ScoreResult{Pending: true}, nil
	}

	job, err := c.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ScoreResult{}, fmt.Errorf("%w: job", ErrNotFound)
		}
		return ScoreResult{}, fmt.Errorf("%w: load job: %v", ErrDependency, err)
	}

	scoreCtx, cancel := context.WithTimeout(ctx, c.scoreTimeout)
	defer cancel()

	report, err := c.scorer.Score(scoreCtx, app.ResumeText.String, ats.JobRequirement{
		Description:    job.Description,
		Skills:         job.Skills,
		Experience:     job.Experience,
		Qualifications: job.Qualifications,
	})
	if err != nil {
		if errors.Is(err, ats.ErrInvalidInput) {
			return ScoreResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return ScoreResult{}, fmt.Errorf("%w: scoring: %v", ErrDependency, err)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("%w: marshal report: %v", ErrDependency, err)
	}

	rows, err := c.apps.SetApplicationScore(ctx, database.SetApplicationScoreParams{
		AtsScore:    sql.NullInt32{Int32: int32(report.OverallScore), Valid: true},
		AtsAnalysis: payload,
		ID:          id,
	})
	if err != nil {
		return ScoreResult{}, fmt.Errorf("%w: persist score: %v", ErrDependency, err)
	}

	if rows == 0 {
		// Lost the race: a concurrent scoring call persisted first. Its
		// report is the effective one.
		app, err := c.getApplication(ctx, id)
		if err != nil {
			return ScoreResult{}, err
		}
		if result, ok, err := cachedResult(app); err != nil {
			return ScoreResult{}, err
		} else if ok {
			return result, nil
		}
		return ScoreResult{}, fmt.Errorf("%w: score write raced and no report found", ErrDependency)
	}

	c.logger.Info("application scored",
		zap.String("application_id", id.String()),
		zap.Int("score", report.OverallScore),
		zap.String("recommendation", string(report.Recommendation)))

	return ScoreResult{Report: report, Score: report.OverallScore}, nil
}

// MarkViewed flips is_viewed on first staff read, independent of status.
func (c *Controller) MarkViewed(ctx context.Context, id uuid.UUID) error {
	if err := c.apps.MarkApplicationViewed(ctx, id); err != nil {
		return fmt.Errorf("%w: mark viewed: %v", ErrDependency, err)
	}
	return nil
}

// Stats aggregates per-job application counts and the average score.
type Stats struct {
	Total        int `json:"total"`
	New          int `json:"new"`
	Reviewing    int `json:"reviewing"`
	Shortlisted  int `json:"shortlisted"`
	Invited      int `json:"invited"`
	Rejected     int `json:"rejected"`
	AverageScore int `json:"averageScore"`
}

func (c *Controller) Stats(ctx context.Context, jobID uuid.UUID) (Stats, error) {
	rows, err := c.apps.GetApplicationStats(ctx, jobID)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: load stats: %v", ErrDependency, err)
	}

	var stats Stats
	var scoreSum, scored int
	for _, row := range rows {
		stats.Total++
		switch row.Status {
		case StatusNew:
			stats.New++
		case StatusReviewing:
			stats.Reviewing++
		case StatusShortlisted:
			stats.Shortlisted++
		case StatusInvited:
			stats.Invited++
		case StatusRejected:
			stats.Rejected++
		}
		if row.AtsScore.Valid {
			scoreSum += int(row.AtsScore.Int32)
			scored++
		}
	}
	if scored > 0 {
		stats.AverageScore = int(math.Round(float64(scoreSum) / float64(scored)))
	}

	return stats, nil
}

// SetStatus applies a bare status transition without side effects (staff
// moving an application into reviewing, for example).
func (c *Controller) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	app, err := c.getApplication(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(app.Status, status); err != nil {
		return err
	}

	if err := c.apps.UpdateApplicationStatus(ctx, database.UpdateApplicationStatusParams{
		Status: status,
		ID:     id,
	}); err != nil {
		return fmt.Errorf("%w: update status: %v", ErrDependency, err)
	}
	return nil
}

func (c *Controller) getApplication(ctx context.Context, id uuid.UUID) (database.JobApplication, error) {
	app, err := c.apps.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.JobApplication{}, fmt.Errorf("%w: application %s", ErrNotFound, id)
		}
		return database.JobApplication{}, fmt.Errorf("%w: load application: %v", ErrDependency, err)
	}
	return app, nil
}

func cachedResult(app database.JobApplication) (ScoreResult, bool, error) {
	if len(app.AtsAnalysis) == 0 || !app.AtsScore.Valid {
		return ScoreResult{}, false, nil
	}
	var report ats.MatchReport
	if err := json.Unmarshal(app.AtsAnalysis, &report); err != nil {
		return ScoreResult{}, false, fmt.Errorf("%w: corrupt stored analysis: %v", ErrDependency, err)
	}
	return ScoreResult{Report: &report, Score: int(app.AtsScore.Int32), Cached: true}, true, nil
}

func checkTransition(from, to string) error {
	if from == to {
		return fmt.Errorf("%w: already %s", ErrState, to)
	}
	if !transitions[from][to] {
		return fmt.Errorf("%w: %s -> %s", ErrState, from, to)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
