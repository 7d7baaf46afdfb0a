package ats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontendResume = `Jane Doe
jane.doe@example.com

Summary
Frontend developer with 5 years of experience building web applications.

Skills
- React
- JavaScript
- HTML and CSS
- Redux

Experience
Acme Corp, 2019 - present
- Built customer dashboards in React
- Led migration from legacy templates

Education
Bachelor of Science in Computer Science`

func frontendJob() JobRequirement {
	return JobRequirement{
		Description:    "We are hiring a frontend engineer to own our customer-facing dashboards.",
		Skills:         []string{"React", "SQL"},
		Experience:     "3+ years of frontend development",
		Qualifications: []string{"Bachelor's degree in Computer Science"},
	}
}

func TestScorePartialSkillOverlap(t *testing.T) {
	engine := NewEngine()
	report, err := engine.Score(context.Background(), frontendResume, frontendJob())
	require.NoError(t, err)

	skills := report.MatchingScores.Skills
	assert.Contains(t, skills.MatchedSkills, "React")
	assert.Contains(t, skills.MissingSkills, "SQL")
	assert.NotContains(t, skills.MatchedSkills, "SQL")

	// Partial overlap must land strictly inside the open interval.
	assert.Greater(t, skills.Score, 0)
	assert.Less(t, skills.Score, 100)

	assert.Equal(t, RecommendationFor(report.OverallScore), report.Recommendation)
	require.NoError(t, report.Validate(frontendJob()))
}

func TestScoreNoRequiredSkills(t *testing.T) {
	engine := NewEngine()
	job := frontendJob()
	job.Skills = nil

	report, err := engine.Score(context.Background(), frontendResume, job)
	require.NoError(t, err)

	assert.Equal(t, 100, report.MatchingScores.Skills.Score)
	assert.Empty(t, report.MatchingScores.Skills.MissingSkills)
}

func TestScoreDeterministic(t *testing.T) {
	engine := NewEngine()

	first, err := engine.Score(context.Background(), frontendResume, frontendJob())
	require.NoError(t, err)
	second, err := engine.Score(context.Background(), frontendResume, frontendJob())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScoreRejectsEmptyInput(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Score(context.Background(), "   ", frontendJob())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = engine.Score(context.Background(), frontendResume, JobRequirement{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScoreSynonymMatching(t *testing.T) {
	engine := NewEngine()
	job := JobRequirement{
		Description: "Backend engineer for our payments platform.",
		Skills:      []string{"Golang", "Postgres", "K8s"},
	}
	resume := `Backend engineer. 6 years of experience writing Go services
backed by PostgreSQL, deployed on Kubernetes.
contact: dev@example.com`

	report, err := engine.Score(context.Background(), resume, job)
	require.NoError(t, err)

	skills := report.MatchingScores.Skills
	assert.ElementsMatch(t, []string{"Golang", "Postgres", "K8s"}, skills.MatchedSkills)
	assert.Empty(t, skills.MissingSkills)
	assert.Equal(t, 100, skills.Score)
}

func TestScoreListsAdditionalSkills(t *testing.T) {
	engine := NewEngine()
	report, err := engine.Score(context.Background(), frontendResume, frontendJob())
	require.NoError(t, err)

	extra := report.MatchingScores.Skills.AdditionalSkills
	assert.Contains(t, extra, "javascript")
	assert.NotContains(t, extra, "react")
	assert.LessOrEqual(t, len(extra), 8)
}

func TestScoreListBounds(t *testing.T) {
	engine := NewEngine()
	report, err := engine.Score(context.Background(), frontendResume, frontendJob())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(report.Strengths), 3)
	assert.LessOrEqual(t, len(report.Strengths), 5)
	assert.GreaterOrEqual(t, len(report.Concerns), 3)
	assert.LessOrEqual(t, len(report.Concerns), 5)
	assert.LessOrEqual(t, len([]rune(report.OverallFeedback)), maxFeedbackRunes)
}

func fixedEngine(year int) *Engine {
	return &Engine{now: func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}}
}

func TestMatchExperience(t *testing.T) {
	engine := fixedEngine(2026)

	t.Run("meets requirement via explicit years", func(t *testing.T) {
		resume := "Engineer with 5 years of experience shipping services."
		m := engine.matchExperience(resume, tokenize(resume), tokenSet(tokenize(resume)), "3+ years of backend work")
		assert.Equal(t, 100, m.Score)
		assert.Equal(t, "~5 years", m.YearsFound)
	})

	t.Run("below requirement is prorated", func(t *testing.T) {
		resume := "Engineer with 4 years of experience."
		m := engine.matchExperience(resume, tokenize(resume), tokenSet(tokenize(resume)), "10 years of experience required")
		assert.Equal(t, 40, m.Score)
	})

	t.Run("date ranges count toward years", func(t *testing.T) {
		resume := "Acme Corp, 2019 - present. Built internal tooling."
		m := engine.matchExperience(resume, tokenize(resume), tokenSet(tokenize(resume)), "5 years of experience")
		assert.Equal(t, 100, m.Score)
		assert.Equal(t, "~7 years", m.YearsFound)
	})

	t.Run("no stated requirement with working history", func(t *testing.T) {
		resume := "Worked at Acme from 2020 - 2024 on infrastructure."
		m := engine.matchExperience(resume, tokenize(resume), tokenSet(tokenize(resume)), "")
		assert.Equal(t, 70, m.Score)
	})

	t.Run("no quantifiable history stays below shortlist", func(t *testing.T) {
		resume := "Go developer building services and tooling."
		m := engine.matchExperience(resume, tokenize(resume), tokenSet(tokenize(resume)), "requires 5 years of go")
		assert.Equal(t, "not stated", m.YearsFound)
		assert.Less(t, m.Score, ThresholdShortlist)
	})
}

func TestResumeYearsCapsRanges(t *testing.T) {
	engine := fixedEngine(2026)

	// A lifetime-sized range is not an employment range.
	years := engine.resumeYears("Active 1950 - 2010 in the industry.")
	assert.Equal(t, float64(0), years)
}

func TestPresentationScoreBounds(t *testing.T) {
	low := presentationScore("short", tokenSet(tokenize("short")))
	high := presentationScore(frontendResume, tokenSet(tokenize(frontendResume)))

	assert.GreaterOrEqual(t, low, 0)
	assert.Greater(t, high, low)
	assert.LessOrEqual(t, high, 100)
}
