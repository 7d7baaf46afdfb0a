package ats

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	// similarityThreshold is the Dice coefficient above which a resume
	// token counts as a full match for a single-token skill.
	similarityThreshold = 0.84

	// partialCredit is the weight of a partially evidenced skill.
	partialCredit = 0.5
)

// skillLexicon is scanned for "additional skills": relevant skills the
// resume shows that the job never asked for. Order is the reporting order.
var skillLexicon = []string{
	"go", "javascript", "typescript", "python", "java", "c++", "c#",
	"rust", "ruby", "php", "kotlin", "swift", "sql", "postgresql",
	"mysql", "mongodb", "redis", "kafka", "rabbitmq", "elasticsearch",
	"docker", "kubernetes", "terraform", "ansible", "aws", "gcp",
	"azure", "react", "vue", "angular", "node", "django", "spring",
	"graphql", "grpc", "rest", "linux", "git", "cicd", "html", "css",
}

var (
	yearsPattern     = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:\+|\s*(?:-|–|to)\s*(\d{1,2}))?\s*(?:years?|yrs?)`)
	dateRangePattern = regexp.MustCompile(`(?i)\b(19\d{2}|20\d{2})\s*(?:-|–|—|to|until)\s*(present|current|now|19\d{2}|20\d{2})\b`)
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Engine is the deterministic rule-based scorer. Given identical inputs it
// produces identical reports, so recommendation boundaries never flicker
// across repeated calls.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

func (e *Engine) Score(_ context.Context, resumeText string, job JobRequirement) (*MatchReport, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("%w: empty resume text", ErrInvalidInput)
	}
	if strings.TrimSpace(job.Description) == "" {
		return nil, fmt.Errorf("%w: empty job description", ErrInvalidInput)
	}

	resumeTokens := tokenize(resumeText)
	resumeSet := tokenSet(resumeTokens)

	skills := e.matchSkills(resumeTokens, resumeSet, job.Skills)
	experience := e.matchExperience(resumeText, resumeTokens, resumeSet, job.Experience)
	qualifications := e.matchQualifications(resumeTokens, resumeSet, job.Qualifications)
	presentation := presentationScore(resumeText, resumeSet)

	overall := CombineScores(skills.Score, experience.Score, qualifications.Score, presentation)

	report := &MatchReport{
		OverallScore: overall,
		MatchingScores: MatchingScores{
			Skills:         skills,
			Experience:     experience,
			Qualifications: qualifications,
		},
		Recommendation: RecommendationFor(overall),
	}
	report.OverallFeedback = buildOverallFeedback(report, job)
	report.Strengths = buildStrengths(report, job)
	report.Concerns = buildConcerns(report, job)

	if err := report.Validate(job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	return report, nil
}

// matchSkills computes the skill overlap. A skill matches fully when its
// canonical token sequence appears in the resume, or when a resume token
// clears the similarity threshold; multi-token skills with at least half
// their tokens present earn partial credit.
func (e *Engine) matchSkills(resumeTokens []string, resumeSet map[string]bool, required []string) SkillsMatch {
	match := SkillsMatch{
		MatchedSkills:    []string{},
		MissingSkills:    []string{},
		AdditionalSkills: []string{},
	}

	if len(required) == 0 {
		// Nothing to miss.
		match.Score = 100
		match.AdditionalSkills = additionalSkills(resumeTokens, required)
		return match
	}

	var credit float64
	for _, skill := range required {
		switch evidenceFor(skill, resumeTokens, resumeSet) {
		case evidenceFull:
			credit += 1
			match.MatchedSkills = append(match.MatchedSkills, skill)
		case evidencePartial:
			credit += partialCredit
			match.MatchedSkills = append(match.MatchedSkills, skill)
		default:
			match.MissingSkills = append(match.MissingSkills, skill)
		}
	}

	match.Score = clampScore(int(math.Round(100 * credit / float64(len(required)))))
	match.AdditionalSkills = additionalSkills(resumeTokens, required)
	return match
}

func (e *Engine) matchQualifications(resumeTokens []string, resumeSet map[string]bool, required []string) QualificationsMatch {
	match := QualificationsMatch{
		Matched: []string{},
		Missing: []string{},
	}

	if len(required) == 0 {
		match.Score = 100
		match.Feedback = "No specific qualifications were required for this role."
		return match
	}

	var credit float64
	for _, qual := range required {
		switch evidenceFor(qual, resumeTokens, resumeSet) {
		case evidenceFull:
			credit += 1
			match.Matched = append(match.Matched, qual)
		case evidencePartial:
			credit += partialCredit
			match.Matched = append(match.Matched, qual)
		default:
			match.Missing = append(match.Missing, qual)
		}
	}

	match.Score = clampScore(int(math.Round(100 * credit / float64(len(required)))))
	switch {
	case len(match.Missing) == 0:
		match.Feedback = "The resume shows evidence for every required qualification."
	case len(match.Matched) == 0:
		match.Feedback = "None of the required qualifications are evidenced in the resume."
	default:
		match.Feedback = fmt.Sprintf("The resume covers %d of %d required qualifications.", len(match.Matched), len(required))
	}
	return match
}

type evidenceLevel int

const (
	evidenceNone evidenceLevel = iota
	evidencePartial
	evidenceFull
)

func evidenceFor(phrase string, resumeTokens []string, resumeSet map[string]bool) evidenceLevel {
	want := tokenize(phrase)
	if len(want) == 0 {
		return evidenceNone
	}

	if containsPhrase(resumeTokens, want) {
		return evidenceFull
	}

	if len(want) == 1 {
		target := want[0]
		for tok := range resumeSet {
			if diceSimilarity(target, tok) >= similarityThreshold {
				return evidenceFull
			}
		}
		return evidenceNone
	}

	present := 0
	for _, tok := range want {
		if resumeSet[tok] {
			present++
		}
	}
	if present*2 >= len(want) {
		return evidencePartial
	}
	return evidenceNone
}

func additionalSkills(resumeTokens []string, required []string) []string {
	requiredKeys := make(map[string]bool, len(required))
	for _, r := range required {
		requiredKeys[canonicalKey(r)] = true
	}

	resumeSet := tokenSet(resumeTokens)
	var extra []string
	for _, skill := range skillLexicon {
		if requiredKeys[skill] || !resumeSet[skill] {
			continue
		}
		extra = append(extra, skill)
		if len(extra) == 8 {
			break
		}
	}
	if extra == nil {
		extra = []string{}
	}
	return extra
}

// matchExperience compares the years of experience evidenced by the resume
// against the years the requirement narrative asks for. Resume years come
// from explicit "N years" mentions and from employment date ranges;
// exceeding the requirement is never penalized.
func (e *Engine) matchExperience(resumeText string, resumeTokens []string, resumeSet map[string]bool, narrative string) ExperienceMatch {
	requiredYears, requirementKnown := parseRequiredYears(narrative)
	foundYears := e.resumeYears(resumeText)

	var match ExperienceMatch
	if foundYears > 0 {
		match.YearsFound = fmt.Sprintf("~%d years", int(foundYears+0.5))
	} else {
		match.YearsFound = "not stated"
	}

	switch {
	case !requirementKnown:
		if foundYears > 0 {
			match.Score = 70
			match.Feedback = "No explicit experience requirement; the resume shows a working history."
		} else {
			match.Score = 50
			match.Feedback = "No explicit experience requirement and no quantifiable history in the resume."
		}
	case foundYears == 0:
		// Nothing quantifiable; fall back to narrative keyword density.
		match.Score = keywordDensityScore(narrative, resumeSet)
		match.Feedback = "The resume states no quantifiable experience; scored on requirement keyword overlap."
	default:
		ratio := foundYears / requiredYears
		if ratio >= 1 {
			match.Score = 100
			match.Feedback = fmt.Sprintf("Meets or exceeds the ~%.0f year requirement.", requiredYears)
		} else {
			match.Score = clampScore(int(math.Round(100 * ratio)))
			match.Feedback = fmt.Sprintf("Below the ~%.0f year requirement.", requiredYears)
		}
	}

	return match
}

// parseRequiredYears pulls the minimum year count out of phrases like
// "3+ years" or "2-4 years of backend work". Spelled-out numbers are not
// recognized; the requirement then falls back to keyword density.
func parseRequiredYears(narrative string) (float64, bool) {
	m := yearsPattern.FindStringSubmatch(narrative)
	if m == nil {
		return 0, false
	}
	var years float64
	if _, err := fmt.Sscanf(m[1], "%f", &years); err != nil || years <= 0 {
		return 0, false
	}
	return years, true
}

func (e *Engine) resumeYears(resumeText string) float64 {
	var explicit float64
	for _, m := range yearsPattern.FindAllStringSubmatch(resumeText, -1) {
		var y float64
		if _, err := fmt.Sscanf(m[1], "%f", &y); err == nil && y > explicit {
			explicit = y
		}
	}

	currentYear := e.now().Year()
	var ranged float64
	for _, m := range dateRangePattern.FindAllStringSubmatch(resumeText, -1) {
		var start, end int
		fmt.Sscanf(m[1], "%d", &start)
		switch strings.ToLower(m[2]) {
		case "present", "current", "now":
			end = currentYear
		default:
			fmt.Sscanf(m[2], "%d", &end)
		}
		if end > start && end-start <= 40 {
			ranged += float64(end - start)
		}
	}

	if ranged > explicit {
		return ranged
	}
	return explicit
}

// keywordDensityScore is the last-resort experience signal: the share of
// requirement-narrative tokens present in the resume, capped below the
// shortlist boundary.
func keywordDensityScore(narrative string, resumeSet map[string]bool) int {
	tokens := tokenize(narrative)
	if len(tokens) == 0 {
		return 50
	}
	hits := 0
	for _, tok := range tokens {
		if resumeSet[tok] {
			hits++
		}
	}
	return clampScore(int(math.Round(55 * float64(hits) / float64(len(tokens)))))
}

var sectionHeaders = []string{"experience", "education", "skills", "summary", "projects", "employment", "certifications"}

// presentationScore is a deterministic structure heuristic standing in for
// the "overall presentation and relevance" component.
func presentationScore(resumeText string, resumeSet map[string]bool) int {
	score := 40

	words := len(strings.Fields(resumeText))
	if words >= 50 {
		score += 10
	}
	if words >= 120 && words <= 1500 {
		score += 15
	}

	sections := 0
	for _, header := range sectionHeaders {
		if resumeSet[header] {
			sections++
		}
	}
	if sections >= 2 {
		score += 15
	}

	if emailPattern.MatchString(resumeText) {
		score += 10
	}

	bullets := 0
	for _, line := range strings.Split(resumeText, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "•") {
			bullets++
		}
	}
	if bullets >= 3 {
		score += 10
	}

	return clampScore(score)
}

func buildOverallFeedback(r *MatchReport, job JobRequirement) string {
	skills := r.MatchingScores.Skills
	var b strings.Builder

	switch r.Recommendation {
	case RecommendStrongYes:
		b.WriteString("Excellent match for the role. ")
	case RecommendShortlist:
		b.WriteString("Good match for the role. ")
	case RecommendMaybe:
		b.WriteString("Partial match with notable gaps. ")
	default:
		b.WriteString("Weak match against the stated requirements. ")
	}

	if len(job.Skills) > 0 {
		fmt.Fprintf(&b, "The resume evidences %d of %d required skills. ", len(skills.MatchedSkills), len(job.Skills))
	}
	fmt.Fprintf(&b, "Experience alignment scored %d and qualifications %d.",
		r.MatchingScores.Experience.Score, r.MatchingScores.Qualifications.Score)

	return truncateRunes(b.String(), maxFeedbackRunes)
}

func buildStrengths(r *MatchReport, job JobRequirement) []string {
	var items []string
	skills := r.MatchingScores.Skills

	if len(skills.MatchedSkills) > 0 {
		items = append(items, fmt.Sprintf("Covers %d of %d required skills (%s)",
			len(skills.MatchedSkills), len(job.Skills), strings.Join(firstN(skills.MatchedSkills, 4), ", ")))
	}
	if r.MatchingScores.Experience.Score >= 80 {
		items = append(items, fmt.Sprintf("Experience level meets the requirement (%s found)", r.MatchingScores.Experience.YearsFound))
	}
	if len(r.MatchingScores.Qualifications.Matched) > 0 {
		items = append(items, fmt.Sprintf("Holds required qualifications: %s", strings.Join(firstN(r.MatchingScores.Qualifications.Matched, 3), ", ")))
	}
	if len(skills.AdditionalSkills) > 0 {
		items = append(items, fmt.Sprintf("Brings additional relevant skills: %s", strings.Join(firstN(skills.AdditionalSkills, 4), ", ")))
	}
	if len(items) < 5 {
		items = append(items, "Submitted a complete, machine-readable application")
	}

	return padList(items, []string{
		"Resume provides enough detail for screening",
		"Career history is traceable from the resume text",
	})
}

func buildConcerns(r *MatchReport, job JobRequirement) []string {
	var items []string
	skills := r.MatchingScores.Skills

	if len(skills.MissingSkills) > 0 {
		items = append(items, fmt.Sprintf("Missing required skills: %s", strings.Join(firstN(skills.MissingSkills, 4), ", ")))
	}
	if r.MatchingScores.Experience.Score < 60 {
		items = append(items, "Experience appears below the stated requirement")
	}
	if len(r.MatchingScores.Qualifications.Missing) > 0 {
		items = append(items, fmt.Sprintf("Missing qualifications: %s", strings.Join(firstN(r.MatchingScores.Qualifications.Missing, 3), ", ")))
	}
	if len(items) < 5 {
		items = append(items, "Automated screening cannot assess soft skills")
	}

	return padList(items, []string{
		"Scores rely solely on the submitted resume text",
		"A screening call is recommended to confirm fit",
	})
}

// padList guarantees the 3-5 item contract.
func padList(items []string, fillers []string) []string {
	for _, filler := range fillers {
		if len(items) >= 3 {
			break
		}
		items = append(items, filler)
	}
	if len(items) > 5 {
		items = items[:5]
	}
	return items
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
