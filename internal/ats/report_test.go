package ats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationFor(t *testing.T) {
	cases := []struct {
		score int
		want  Recommendation
	}{
		{0, RecommendReject},
		{39, RecommendReject},
		{40, RecommendMaybe},
		{59, RecommendMaybe},
		{60, RecommendShortlist},
		{79, RecommendShortlist},
		{80, RecommendStrongYes},
		{100, RecommendStrongYes},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RecommendationFor(tc.score), "score %d", tc.score)
	}
}

func TestCombineScores(t *testing.T) {
	assert.Equal(t, 100, CombineScores(100, 100, 100, 100))
	assert.Equal(t, 0, CombineScores(0, 0, 0, 0))
	assert.Equal(t, 40, CombineScores(100, 0, 0, 0))
	assert.Equal(t, 30, CombineScores(0, 100, 0, 0))
	assert.Equal(t, 20, CombineScores(0, 0, 100, 0))
	assert.Equal(t, 10, CombineScores(0, 0, 0, 100))
	assert.Equal(t, 55, CombineScores(50, 50, 50, 100))
}

func validationJob() JobRequirement {
	return JobRequirement{
		Description: "Backend engineer",
		Skills:      []string{"Go", "PostgreSQL"},
	}
}

func validReport() *MatchReport {
	overall := CombineScores(50, 80, 100, 60)
	return &MatchReport{
		OverallScore:    overall,
		OverallFeedback: "Reasonable match with one skill gap.",
		MatchingScores: MatchingScores{
			Skills: SkillsMatch{
				Score:            50,
				MatchedSkills:    []string{"Go"},
				MissingSkills:    []string{"PostgreSQL"},
				AdditionalSkills: []string{},
			},
			Experience:     ExperienceMatch{Score: 80, YearsFound: "~4 years"},
			Qualifications: QualificationsMatch{Score: 100, Matched: []string{}, Missing: []string{}},
		},
		Strengths:      []string{"a", "b", "c"},
		Concerns:       []string{"a", "b", "c"},
		Recommendation: RecommendationFor(overall),
	}
}

func TestValidateAcceptsConsistentReport(t *testing.T) {
	require.NoError(t, validReport().Validate(validationJob()))
}

func TestValidateRejections(t *testing.T) {
	t.Run("nil report", func(t *testing.T) {
		var r *MatchReport
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("score out of range", func(t *testing.T) {
		r := validReport()
		r.MatchingScores.Skills.Score = 120
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("recommendation inconsistent with score", func(t *testing.T) {
		r := validReport()
		r.Recommendation = RecommendStrongYes
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("overall not derivable from sub-scores", func(t *testing.T) {
		r := validReport()
		r.OverallScore = 95
		r.Recommendation = RecommendationFor(95)
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("required skill absent from both lists", func(t *testing.T) {
		r := validReport()
		r.MatchingScores.Skills.MissingSkills = []string{}
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("skill both matched and missing", func(t *testing.T) {
		r := validReport()
		r.MatchingScores.Skills.MissingSkills = []string{"Go", "PostgreSQL"}
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("too few strengths", func(t *testing.T) {
		r := validReport()
		r.Strengths = []string{"only one"}
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("too many concerns", func(t *testing.T) {
		r := validReport()
		r.Concerns = []string{"a", "b", "c", "d", "e", "f"}
		assert.Error(t, r.Validate(validationJob()))
	})

	t.Run("feedback over the rune limit", func(t *testing.T) {
		r := validReport()
		r.OverallFeedback = strings.Repeat("x", maxFeedbackRunes+1)
		assert.Error(t, r.Validate(validationJob()))
	})
}
