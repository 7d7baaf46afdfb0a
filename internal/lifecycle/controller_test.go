package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocksphere4/TalentHireAI/internal/ats"
	"github.com/blocksphere4/TalentHireAI/internal/database"
	"github.com/blocksphere4/TalentHireAI/internal/interview"
	"github.com/blocksphere4/TalentHireAI/internal/notify"
)

type fakeJobs struct {
	job       database.Job
	publicErr error
	getErr    error
	incCalls  int
}

func (f *fakeJobs) GetJob(context.Context, uuid.UUID) (database.Job, error) {
	return f.job, f.getErr
}

func (f *fakeJobs) GetPublicJob(context.Context, uuid.UUID) (database.Job, error) {
	if f.publicErr != nil {
		return database.Job{}, f.publicErr
	}
	return f.job, nil
}

func (f *fakeJobs) IncrementApplicationCount(context.Context, uuid.UUID) error {
	f.incCalls++
	return nil
}

type fakeApps struct {
	app        database.JobApplication
	getErr     error
	created    []database.CreateApplicationParams
	statuses   []database.UpdateApplicationStatusParams
	scores     []database.SetApplicationScoreParams
	interviews []database.SetApplicationInterviewParams
	viewed     []uuid.UUID
	statsRows  []database.GetApplicationStatsRow

	// loseScoreRace makes SetApplicationScore report zero affected rows
	// and installs raceAnalysis as the already-persisted report.
	loseScoreRace bool
	raceScore     int32
	raceAnalysis  json.RawMessage
}

func (f *fakeApps) CreateApplication(_ context.Context, arg database.CreateApplicationParams) (database.JobApplication, error) {
	f.created = append(f.created, arg)
	return database.JobApplication{
		ID:         arg.ID,
		JobID:      arg.JobID,
		Name:       arg.Name,
		Email:      arg.Email,
		Phone:      arg.Phone,
		ResumeText: arg.ResumeText,
		Status:     StatusNew,
		Source:     arg.Source,
	}, nil
}

func (f *fakeApps) GetApplication(context.Context, uuid.UUID) (database.JobApplication, error) {
	if f.getErr != nil {
		return database.JobApplication{}, f.getErr
	}
	return f.app, nil
}

func (f *fakeApps) UpdateApplicationStatus(_ context.Context, arg database.UpdateApplicationStatusParams) error {
	f.statuses = append(f.statuses, arg)
	f.app.Status = arg.Status
	return nil
}

func (f *fakeApps) SetApplicationScore(_ context.Context, arg database.SetApplicationScoreParams) (int64, error) {
	f.scores = append(f.scores, arg)
	if f.loseScoreRace {
		f.app.AtsScore = sql.NullInt32{Int32: f.raceScore, Valid: true}
		f.app.AtsAnalysis = f.raceAnalysis
		return 0, nil
	}
	f.app.AtsScore = arg.AtsScore
	f.app.AtsAnalysis = arg.AtsAnalysis
	return 1, nil
}

func (f *fakeApps) SetApplicationInterview(_ context.Context, arg database.SetApplicationInterviewParams) error {
	f.interviews = append(f.interviews, arg)
	f.app.InterviewID = arg.InterviewID
	f.app.Status = StatusInvited
	return nil
}

func (f *fakeApps) MarkApplicationViewed(_ context.Context, id uuid.UUID) error {
	f.viewed = append(f.viewed, id)
	return nil
}

func (f *fakeApps) GetApplicationStats(context.Context, uuid.UUID) ([]database.GetApplicationStatsRow, error) {
	return f.statsRows, nil
}

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(context.Context, []byte, string) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return "resumes/key.pdf", "https://files.example.com/resumes/key.pdf", nil
}

type fakeNotifier struct {
	shortlists []notify.ShortlistEmail
	rejections []notify.RejectionEmail
	err        error
}

func (f *fakeNotifier) SendShortlist(email notify.ShortlistEmail) error {
	f.shortlists = append(f.shortlists, email)
	return f.err
}

func (f *fakeNotifier) SendRejection(email notify.RejectionEmail) error {
	f.rejections = append(f.rejections, email)
	return f.err
}

type fakeInterviews struct {
	params []interview.CreateParams
	ref    interview.Ref
	err    error
}

func (f *fakeInterviews) Create(_ context.Context, params interview.CreateParams) (interview.Ref, error) {
	f.params = append(f.params, params)
	return f.ref, f.err
}

type fakeQueue struct {
	enqueued []uuid.UUID
}

func (f *fakeQueue) EnqueueScore(_ context.Context, id uuid.UUID) error {
	f.enqueued = append(f.enqueued, id)
	return nil
}

type fakeScorer struct {
	report *ats.MatchReport
	err    error
	calls  int
}

func (f *fakeScorer) Score(context.Context, string, ats.JobRequirement) (*ats.MatchReport, error) {
	f.calls++
	return f.report, f.err
}

type fixture struct {
	jobs       *fakeJobs
	apps       *fakeApps
	uploader   *fakeUploader
	notifier   *fakeNotifier
	interviews *fakeInterviews
	queue      *fakeQueue
	scorer     *fakeScorer
	extracted  string
	controller *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		jobs: &fakeJobs{job: database.Job{
			ID:          uuid.New(),
			Title:       "Backend Engineer",
			Description: "Build APIs",
			Skills:      []string{"Go"},
			IsActive:    true,
		}},
		apps:       &fakeApps{},
		uploader:   &fakeUploader{},
		notifier:   &fakeNotifier{},
		interviews: &fakeInterviews{ref: interview.Ref{ID: "iv-1", URL: "https://app.example.com/call/iv-1"}},
		queue:      &fakeQueue{},
		scorer:     &fakeScorer{report: testReport(72)},
		extracted:  "resume text",
	}
	f.controller = NewController(Options{
		Jobs:        f.jobs,
		Apps:        f.apps,
		Uploader:    f.uploader,
		Extract:     func(string, []byte) string { return f.extracted },
		Scorer:      f.scorer,
		Notifier:    f.notifier,
		Interviews:  f.interviews,
		Queue:       f.queue,
		CompanyName: "TalentHireAI",
	})
	return f
}

func testReport(overall int) *ats.MatchReport {
	return &ats.MatchReport{
		OverallScore:   overall,
		Recommendation: ats.RecommendationFor(overall),
		Strengths:      []string{"a", "b", "c"},
		Concerns:       []string{"a", "b", "c"},
	}
}

func validSubmit(jobID uuid.UUID) SubmitParams {
	return SubmitParams{
		JobID:       jobID,
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+15550100",
		Resume:      []byte("%PDF-1.4 fake"),
		ContentType: "application/pdf",
	}
}

func TestSubmit(t *testing.T) {
	t.Run("creates application and enqueues scoring", func(t *testing.T) {
		f := newFixture(t)

		app, err := f.controller.Submit(context.Background(), validSubmit(f.jobs.job.ID))
		require.NoError(t, err)

		assert.Equal(t, StatusNew, app.Status)
		assert.Equal(t, "careers", app.Source)
		require.Len(t, f.apps.created, 1)
		assert.Equal(t, 1, f.jobs.incCalls)
		assert.Equal(t, []uuid.UUID{app.ID}, f.queue.enqueued)
	})

	t.Run("missing fields fail before any dependency call", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.controller.Submit(context.Background(), SubmitParams{JobID: f.jobs.job.ID})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Zero(t, f.uploader.calls)
		assert.Empty(t, f.apps.created)
	})

	t.Run("non-pdf resume rejected before upload", func(t *testing.T) {
		f := newFixture(t)
		params := validSubmit(f.jobs.job.ID)
		params.ContentType = "text/plain"

		_, err := f.controller.Submit(context.Background(), params)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Zero(t, f.uploader.calls)
	})

	t.Run("unknown job maps to not found", func(t *testing.T) {
		f := newFixture(t)
		f.jobs.publicErr = sql.ErrNoRows

		_, err := f.controller.Submit(context.Background(), validSubmit(uuid.New()))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, f.uploader.calls)
	})

	t.Run("upload failure maps to dependency error", func(t *testing.T) {
		f := newFixture(t)
		f.uploader.err = errors.New("bucket unavailable")

		_, err := f.controller.Submit(context.Background(), validSubmit(f.jobs.job.ID))
		assert.ErrorIs(t, err, ErrDependency)
		assert.Empty(t, f.apps.created)
	})

	t.Run("empty resume text skips the scoring queue", func(t *testing.T) {
		f := newFixture(t)
		f.extracted = ""

		_, err := f.controller.Submit(context.Background(), validSubmit(f.jobs.job.ID))
		require.NoError(t, err)
		assert.Empty(t, f.queue.enqueued)
	})
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{StatusNew, StatusReviewing, true},
		{StatusNew, StatusShortlisted, true},
		{StatusNew, StatusRejected, true},
		{StatusNew, StatusInvited, true},
		{StatusReviewing, StatusShortlisted, true},
		{StatusReviewing, StatusRejected, true},
		{StatusShortlisted, StatusInvited, true},
		{StatusShortlisted, StatusReviewing, false},
		{StatusReviewing, StatusNew, false},
		{StatusRejected, StatusReviewing, false},
		{StatusRejected, StatusShortlisted, false},
		{StatusInvited, StatusRejected, false},
	}

	for _, tc := range cases {
		err := checkTransition(tc.from, tc.to)
		if tc.allowed {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, ErrState, "%s -> %s", tc.from, tc.to)
		}
	}

	assert.ErrorIs(t, checkTransition(StatusReviewing, StatusReviewing), ErrState)
}

func TestShortlist(t *testing.T) {
	t.Run("updates status and emails the candidate", func(t *testing.T) {
		f := newFixture(t)
		f.apps.app = database.JobApplication{ID: uuid.New(), JobID: f.jobs.job.ID, Name: "Jane", Email: "jane@example.com", Status: StatusReviewing}

		require.NoError(t, f.controller.Shortlist(context.Background(), f.apps.app.ID, "https://app.example.com/call/x"))
		require.Len(t, f.apps.statuses, 1)
		assert.Equal(t, StatusShortlisted, f.apps.statuses[0].Status)
		require.Len(t, f.notifier.shortlists, 1)
		assert.Equal(t, "Backend Engineer", f.notifier.shortlists[0].JobTitle)
	})

	t.Run("email failure does not roll back the transition", func(t *testing.T) {
		f := newFixture(t)
		f.apps.app = database.JobApplication{ID: uuid.New(), JobID: f.jobs.job.ID, Status: StatusNew}
		f.notifier.err = errors.New("smtp down")

		require.NoError(t, f.controller.Shortlist(context.Background(), f.apps.app.ID, ""))
		assert.Equal(t, StatusShortlisted, f.apps.app.Status)
	})

	t.Run("rejected application cannot be shortlisted", func(t *testing.T) {
		f := newFixture(t)
		f.apps.app = database.JobApplication{ID: uuid.New(), Status: StatusRejected}

		err := f.controller.Shortlist(context.Background(), f.apps.app.ID, "")
		assert.ErrorIs(t, err, ErrState)
		assert.Empty(t, f.apps.statuses)
		assert.Empty(t, f.notifier.shortlists)
	})

	t.Run("unknown application maps to not found", func(t *testing.T) {
		f := newFixture(t)
		f.apps.getErr = sql.ErrNoRows

		err := f.controller.Shortlist(context.Background(), uuid.New(), "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	f.apps.app = database.JobApplication{ID: uuid.New(), JobID: f.jobs.job.ID, Name: "Jane", Email: "jane@example.com", Status: StatusReviewing}

	require.NoError(t, f.controller.Reject(context.Background(), f.apps.app.ID))
	assert.Equal(t, StatusRejected, f.apps.app.Status)
	require.Len(t, f.notifier.rejections, 1)

	// Terminal: a second rejection is a state error.
	err := f.controller.Reject(context.Background(), f.apps.app.ID)
	assert.ErrorIs(t, err, ErrState)
	assert.Len(t, f.notifier.rejections, 1)
}

func TestInvite(t *testing.T) {
	t.Run("provisions an interview then stores the ref", func(t *testing.T) {
		f := newFixture(t)
		f.apps.app = database.JobApplication{ID: uuid.New(), JobID: f.jobs.job.ID, Name: "Jane", Status: StatusShortlisted}

		ref, err := f.controller.Invite(context.Background(), f.apps.app.ID, InviteParams{AutoGenerate: true})
		require.NoError(t, err)
		assert.Equal(t, "iv-1", ref.ID)
		require.Len(t, f.apps.interviews, 1)
		assert.Equal(t, StatusInvited, f.apps.app.Status)
		require.Len(t, f.interviews.params, 1)
		assert.Equal(t, "Backend Engineer", f.interviews.params[0].JobTitle)
	})

	t.Run("provisioning failure leaves status untouched", func(t *testing.T) {
		f := newFixture(t)
		f.apps.app = database.JobApplication{ID: uuid.New(), JobID: f.jobs.job.ID, Status: StatusShortlisted}
		f.interviews.err = errors.New("provider down")

		_, err := f.controller.Invite(context.Background(), f.apps.app.ID, InviteParams{})
		assert.ErrorIs(t, err, ErrDependency)
		assert.Equal(t, StatusShortlisted, f.apps.app.Status)
		assert.Empty(t, f.apps.interviews)
	})

	t.Run("invited is terminal", func(t *testing.T) {
		f := newFixture(t)
		f.apps.app = database.JobApplication{ID: uuid.New(), Status: StatusInvited}

		_, err := f.controller.Invite(context.Background(), f.apps.app.ID, InviteParams{})
		assert.ErrorIs(t, err, ErrState)
	})
}

func TestGetScore(t *testing.T) {
	scorable := func(f *fixture) {
		f.apps.app = database.JobApplication{
			ID:         uuid.New(),
			JobID:      f.jobs.job.ID,
			Status:     StatusNew,
			ResumeText: sql.NullString{String: "resume text", Valid: true},
		}
	}

	t.Run("computes once then serves the cache", func(t *testing.T) {
		f := newFixture(t)
		scorable(f)

		first, err := f.controller.GetScore(context.Background(), f.apps.app.ID)
		require.NoError(t, err)
		assert.False(t, first.Cached)
		assert.Equal(t, 72, first.Score)
		assert.Equal(t, 1, f.scorer.calls)

		second, err := f.controller.GetScore(context.Background(), f.apps.app.ID)
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, 72, second.Score)
		assert.Equal(t, 1, f.scorer.calls, "scorer must not run again")
	})

	t.Run("no resume text stays pending and never scores", func(t *testing.T) {
		f := newFixture(t)
		scorable(f)
		f.apps.app.ResumeText = sql.NullString{}

		result, err := f.controller.GetScore(context.Background(), f.apps.app.ID)
		require.NoError(t, err)
		assert.True(t, result.Pending)
		assert.Zero(t, f.scorer.calls)
		assert.Empty(t, f.apps.scores)
	})

	t.Run("lost write race returns the winning report", func(t *testing.T) {
		f := newFixture(t)
		scorable(f)

		winner, err := json.Marshal(testReport(88))
		require.NoError(t, err)
		f.apps.loseScoreRace = true
		f.apps.raceScore = 88
		f.apps.raceAnalysis = winner

		result, err := f.controller.GetScore(context.Background(), f.apps.app.ID)
		require.NoError(t, err)
		assert.True(t, result.Cached)
		assert.Equal(t, 88, result.Score)
	})

	t.Run("scorer invalid input maps to validation error", func(t *testing.T) {
		f := newFixture(t)
		scorable(f)
		f.scorer.report = nil
		f.scorer.err = ats.ErrInvalidInput

		_, err := f.controller.GetScore(context.Background(), f.apps.app.ID)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("scorer outage maps to dependency error and persists nothing", func(t *testing.T) {
		f := newFixture(t)
		scorable(f)
		f.scorer.report = nil
		f.scorer.err = ats.ErrScoringUnavailable

		_, err := f.controller.GetScore(context.Background(), f.apps.app.ID)
		assert.ErrorIs(t, err, ErrDependency)
		assert.Empty(t, f.apps.scores)
	})
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	f.apps.app = database.JobApplication{ID: uuid.New(), Status: StatusNew}

	require.NoError(t, f.controller.SetStatus(context.Background(), f.apps.app.ID, StatusReviewing))
	assert.Equal(t, StatusReviewing, f.apps.app.Status)

	err := f.controller.SetStatus(context.Background(), f.apps.app.ID, "archived")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.apps.statsRows = []database.GetApplicationStatsRow{
		{Status: StatusNew},
		{Status: StatusNew, AtsScore: sql.NullInt32{Int32: 80, Valid: true}},
		{Status: StatusReviewing, AtsScore: sql.NullInt32{Int32: 61, Valid: true}},
		{Status: StatusShortlisted, AtsScore: sql.NullInt32{Int32: 90, Valid: true}},
		{Status: StatusRejected},
		{Status: StatusInvited},
	}

	stats, err := f.controller.Stats(context.Background(), f.jobs.job.ID)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.New)
	assert.Equal(t, 1, stats.Reviewing)
	assert.Equal(t, 1, stats.Shortlisted)
	assert.Equal(t, 1, stats.Invited)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 77, stats.AverageScore)
}

func TestMarkViewed(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	require.NoError(t, f.controller.MarkViewed(context.Background(), id))
	assert.Equal(t, []uuid.UUID{id}, f.apps.viewed)
}
