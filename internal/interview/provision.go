// Package interview provisions interview sessions for shortlisted or
// invited candidates.
package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blocksphere4/TalentHireAI/internal/database"
)

// QuestionGenerator produces interview questions through a generative
// backend. Optional: without one, questions are templated from the job.
type QuestionGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type store interface {
	CreateInterview(ctx context.Context, arg database.CreateInterviewParams) (database.Interview, error)
}

type Provisioner struct {
	store     store
	generator QuestionGenerator
	baseURL   string
	logger    *zap.Logger
}

func NewProvisioner(store store, generator QuestionGenerator, baseURL string, logger *zap.Logger) *Provisioner {
	return &Provisioner{store: store, generator: generator, baseURL: baseURL, logger: logger}
}

// CreateParams describes the job and candidate context an interview is
// provisioned for.
type CreateParams struct {
	ApplicationID  uuid.UUID
	JobID          uuid.UUID
	JobTitle       string
	JobDescription string
	Skills         []string
	Experience     string
	Qualifications []string
	CandidateName  string
	Name           string
	Questions      []string
	AutoGenerate   bool
}

// Ref points at a provisioned interview session.
type Ref struct {
	ID  string
	URL string
}

func (p *Provisioner) Create(ctx context.Context, params CreateParams) (Ref, error) {
	questions := params.Questions
	if params.AutoGenerate || len(questions) == 0 {
		questions = p.questionSet(ctx, params)
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return Ref{}, fmt.Errorf("marshal questions: %w", err)
	}

	id := uuid.NewString()
	url := fmt.Sprintf("%s/call/%s", strings.TrimRight(p.baseURL, "/"), id)

	name := params.Name
	if name == "" {
		name = fmt.Sprintf("%s - %s", params.JobTitle, params.CandidateName)
	}

	_, err = p.store.CreateInterview(ctx, database.CreateInterviewParams{
		ID:            id,
		ApplicationID: params.ApplicationID,
		JobID:         params.JobID,
		Name:          name,
		Objective:     params.JobDescription,
		Questions:     questionsJSON,
		Url:           url,
	})
	if err != nil {
		return Ref{}, fmt.Errorf("create interview: %w", err)
	}

	return Ref{ID: id, URL: url}, nil
}

// questionSet asks the generative backend for questions and falls back to
// templated ones when generation is unavailable or unparsable.
func (p *Provisioner) questionSet(ctx context.Context, params CreateParams) []string {
	if p.generator != nil {
		if questions, err := p.generateQuestions(ctx, params); err == nil {
			return questions
		} else {
			p.logger.Warn("question generation failed, using templated questions", zap.Error(err))
		}
	}
	return templatedQuestions(params)
}

func (p *Provisioner) generateQuestions(ctx context.Context, params CreateParams) ([]string, error) {
	prompt := fmt.Sprintf(`Generate 5 interview questions for the role below.

Role: %s
Objective: %s
Required skills: %s
Experience: %s
Qualifications: %s

Respond with JSON only: {"questions": [string]}`,
		params.JobTitle,
		params.JobDescription,
		strings.Join(params.Skills, ", "),
		params.Experience,
		strings.Join(params.Qualifications, ", "),
	)

	raw, err := p.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("no questions generated")
	}
	return parsed.Questions, nil
}

func templatedQuestions(params CreateParams) []string {
	questions := []string{
		fmt.Sprintf("Walk us through your most relevant experience for the %s role.", params.JobTitle),
		"Describe a challenging project you owned end to end. What made it hard?",
	}
	for _, skill := range params.Skills {
		questions = append(questions, fmt.Sprintf("Tell us about your hands-on experience with %s.", skill))
		if len(questions) == 4 {
			break
		}
	}
	questions = append(questions, "What questions do you have about the role or the team?")
	return questions
}

func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
