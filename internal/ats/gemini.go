package ats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/blocksphere4/TalentHireAI/internal/retry"
)

// generateAttempts is the retry budget for the generative backend.
const generateAttempts = 2

const defaultGeminiModel = "gemini-2.5-flash"

// pinnedSeed keeps the generative backend reproducible for a fixed model
// version, per the deterministic scoring contract.
const pinnedSeed int32 = 7

// contentGenerator abstracts the generative backend so the scorer can be
// tested with a stub.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator wraps the Google GenAI client with generation settings pinned
// for reproducibility: zero temperature, fixed seed, JSON responses.
type Generator struct {
	client    *genai.Client
	modelName string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}

	return &Generator{client: client, modelName: model}, nil
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0),
		Seed:              genai.Ptr(pinnedSeed),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(analysisSystemPrompt, genai.RoleUser),
	}

	resp, err := retry.Do(generateAttempts, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

func (g *Generator) Model() string {
	return g.modelName
}

// GeminiScorer scores resumes through a generative backend. Any response
// that fails schema or invariant validation is surfaced as
// ErrScoringUnavailable; a schema-mismatched response is never downgraded
// to a partial score.
type GeminiScorer struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewGeminiScorer(generator contentGenerator, logger *zap.Logger) *GeminiScorer {
	return &GeminiScorer{generator: generator, logger: logger}
}

func (s *GeminiScorer) Score(ctx context.Context, resumeText string, job JobRequirement) (*MatchReport, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("%w: empty resume text", ErrInvalidInput)
	}
	if strings.TrimSpace(job.Description) == "" {
		return nil, fmt.Errorf("%w: empty job description", ErrInvalidInput)
	}

	raw, err := s.generator.GenerateContent(ctx, analysisPrompt(resumeText, job))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	var report MatchReport
	if err := json.Unmarshal([]byte(stripJSONFence(raw)), &report); err != nil {
		s.logger.Warn("gemini response failed to parse", zap.Error(err))
		return nil, fmt.Errorf("%w: unparsable response: %v", ErrScoringUnavailable, err)
	}

	if err := report.Validate(job); err != nil {
		s.logger.Warn("gemini report failed validation", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid report: %v", ErrScoringUnavailable, err)
	}

	return &report, nil
}

// stripJSONFence removes markdown code fences some models wrap around JSON
// payloads.
func stripJSONFence(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
