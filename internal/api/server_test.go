package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blocksphere4/TalentHireAI/internal/database"
	"github.com/blocksphere4/TalentHireAI/internal/lifecycle"
)

func TestWriteErrorMapping(t *testing.T) {
	s := NewServer(nil, nil, nil, zap.NewNop())

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: missing name", lifecycle.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: application", lifecycle.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: rejected -> shortlisted", lifecycle.ErrState), http.StatusConflict},
		{fmt.Errorf("%w: smtp down", lifecycle.ErrDependency), http.StatusBadGateway},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		s.writeError(rec, tc.err)
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	}
}

func TestApplyRejectsOversizeBody(t *testing.T) {
	s := NewServer(nil, nil, nil, zap.NewNop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("resume", "resume.pdf")
	require.NoError(t, err)
	_, err = part.Write(make([]byte, maxApplyBytes+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/careers/apply", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	s.handleApply(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreParam(t *testing.T) {
	n, err := scoreParam("")
	require.NoError(t, err)
	assert.Equal(t, int32(-1), n)

	n, err = scoreParam("85")
	require.NoError(t, err)
	assert.Equal(t, int32(85), n)

	for _, raw := range []string{"-3", "101", "high"} {
		_, err := scoreParam(raw)
		assert.ErrorIs(t, err, lifecycle.ErrValidation, raw)
	}
}

func TestToJobViewNullHandling(t *testing.T) {
	job := database.Job{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Title:     "Backend Engineer",
	}

	view := toJobView(job)
	assert.Nil(t, view.SalaryMin)
	assert.Nil(t, view.Deadline)
	assert.NotNil(t, view.Skills)
	assert.NotNil(t, view.Qualifications)

	job.SalaryMin = sql.NullInt64{Int64: 90000, Valid: true}
	view = toJobView(job)
	require.NotNil(t, view.SalaryMin)
	assert.Equal(t, int64(90000), *view.SalaryMin)
}

func TestToApplicationViewScore(t *testing.T) {
	app := database.JobApplication{ID: uuid.New(), JobID: uuid.New(), Status: lifecycle.StatusNew}

	view := toApplicationView(app)
	assert.Nil(t, view.AtsScore)

	app.AtsScore = sql.NullInt32{Int32: 72, Valid: true}
	view = toApplicationView(app)
	require.NotNil(t, view.AtsScore)
	assert.Equal(t, int32(72), *view.AtsScore)
}
