package ats

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Scoring weights for the overall score. The presentation component is
// folded into the overall score and not exposed as a separate field.
const (
	WeightSkills         = 0.4
	WeightExperience     = 0.3
	WeightQualifications = 0.2
	WeightPresentation   = 0.1
)

// Recommendation thresholds on the overall score.
const (
	ThresholdMaybe     = 40
	ThresholdShortlist = 60
	ThresholdStrongYes = 80
)

const maxFeedbackRunes = 600

var (
	// ErrInvalidInput reports a caller-side precondition failure: an empty
	// resume or an empty job description.
	ErrInvalidInput = errors.New("ats: invalid input")

	// ErrScoringUnavailable reports that the backing scorer could not
	// produce a usable report. Callers should treat it as retryable and
	// leave the application unscored.
	ErrScoringUnavailable = errors.New("ats: scoring unavailable")
)

type Recommendation string

const (
	RecommendReject    Recommendation = "reject"
	RecommendMaybe     Recommendation = "maybe"
	RecommendShortlist Recommendation = "shortlist"
	RecommendStrongYes Recommendation = "strong_yes"
)

// JobRequirement is the immutable job snapshot the engine scores against.
type JobRequirement struct {
	Description    string
	Skills         []string
	Experience     string
	Qualifications []string
}

type SkillsMatch struct {
	Score            int      `json:"score"`
	MatchedSkills    []string `json:"matchedSkills"`
	MissingSkills    []string `json:"missingSkills"`
	AdditionalSkills []string `json:"additionalSkills"`
}

type ExperienceMatch struct {
	Score      int    `json:"score"`
	YearsFound string `json:"yearsFound"`
	Feedback   string `json:"feedback"`
}

type QualificationsMatch struct {
	Score    int      `json:"score"`
	Matched  []string `json:"matched"`
	Missing  []string `json:"missing"`
	Feedback string   `json:"feedback"`
}

type MatchingScores struct {
	Skills         SkillsMatch         `json:"skills"`
	Experience     ExperienceMatch     `json:"experience"`
	Qualifications QualificationsMatch `json:"qualifications"`
}

// MatchReport is the structured output of scoring a resume against a job.
// The JSON shape is the persisted ats_analysis payload.
type MatchReport struct {
	OverallScore    int            `json:"overallScore"`
	OverallFeedback string         `json:"overallFeedback"`
	MatchingScores  MatchingScores `json:"matchingScores"`
	Strengths       []string       `json:"strengths"`
	Concerns        []string       `json:"concerns"`
	Recommendation  Recommendation `json:"recommendation"`
}

// Scorer produces a match report for a resume/job pair. Implementations
// must be deterministic for identical inputs.
type Scorer interface {
	Score(ctx context.Context, resumeText string, job JobRequirement) (*MatchReport, error)
}

// RecommendationFor maps an overall score onto the fixed threshold table.
func RecommendationFor(score int) Recommendation {
	switch {
	case score >= ThresholdStrongYes:
		return RecommendStrongYes
	case score >= ThresholdShortlist:
		return RecommendShortlist
	case score >= ThresholdMaybe:
		return RecommendMaybe
	default:
		return RecommendReject
	}
}

// CombineScores folds the sub-scores into the overall score using the
// fixed weights.
func CombineScores(skills, experience, qualifications, presentation int) int {
	combined := WeightSkills*float64(skills) +
		WeightExperience*float64(experience) +
		WeightQualifications*float64(qualifications) +
		WeightPresentation*float64(presentation)
	return clampScore(int(math.Round(combined)))
}

// Validate checks the report against the scoring invariants: bounded
// scores, threshold-consistent recommendation, weight-derivable overall
// score, and full coverage of the job's required skills and
// qualifications. Reports that fail validation must never be persisted.
func (r *MatchReport) Validate(job JobRequirement) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}

	scores := map[string]int{
		"overall":        r.OverallScore,
		"skills":         r.MatchingScores.Skills.Score,
		"experience":     r.MatchingScores.Experience.Score,
		"qualifications": r.MatchingScores.Qualifications.Score,
	}
	for name, score := range scores {
		if score < 0 || score > 100 {
			return fmt.Errorf("%s score %d out of [0,100]", name, score)
		}
	}

	if got := RecommendationFor(r.OverallScore); r.Recommendation != got {
		return fmt.Errorf("recommendation %q inconsistent with score %d (want %q)", r.Recommendation, r.OverallScore, got)
	}

	// The overall score must be reachable from the weighted combination
	// for some presentation score in [0,100], with one point of rounding
	// slack.
	low := CombineScores(r.MatchingScores.Skills.Score, r.MatchingScores.Experience.Score, r.MatchingScores.Qualifications.Score, 0)
	high := CombineScores(r.MatchingScores.Skills.Score, r.MatchingScores.Experience.Score, r.MatchingScores.Qualifications.Score, 100)
	if r.OverallScore < low-1 || r.OverallScore > high+1 {
		return fmt.Errorf("overall score %d not derivable from sub-scores (range %d-%d)", r.OverallScore, low, high)
	}

	if err := checkCoverage("skill", job.Skills, r.MatchingScores.Skills.MatchedSkills, r.MatchingScores.Skills.MissingSkills); err != nil {
		return err
	}
	if err := checkCoverage("qualification", job.Qualifications, r.MatchingScores.Qualifications.Matched, r.MatchingScores.Qualifications.Missing); err != nil {
		return err
	}

	if n := len(r.Strengths); n < 3 || n > 5 {
		return fmt.Errorf("strengths must hold 3-5 items, got %d", n)
	}
	if n := len(r.Concerns); n < 3 || n > 5 {
		return fmt.Errorf("concerns must hold 3-5 items, got %d", n)
	}

	if n := len([]rune(r.OverallFeedback)); n > maxFeedbackRunes {
		return fmt.Errorf("overall feedback too long: %d runes", n)
	}

	return nil
}

// checkCoverage verifies that every required item lands in exactly one of
// the matched/missing lists (compared on canonical form).
func checkCoverage(kind string, required, matched, missing []string) error {
	matchedSet := make(map[string]bool, len(matched))
	for _, s := range matched {
		matchedSet[canonicalKey(s)] = true
	}
	missingSet := make(map[string]bool, len(missing))
	for _, s := range missing {
		missingSet[canonicalKey(s)] = true
	}

	for key := range matchedSet {
		if missingSet[key] {
			return fmt.Errorf("%s %q listed as both matched and missing", kind, key)
		}
	}

	for _, req := range required {
		key := canonicalKey(req)
		if key == "" {
			continue
		}
		if !matchedSet[key] && !missingSet[key] {
			return fmt.Errorf("required %s %q missing from both matched and missing lists", kind, req)
		}
	}

	return nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
