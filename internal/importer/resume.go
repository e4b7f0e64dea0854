package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
)

// maxResumeChars bounds the text sent to the model.
const maxResumeChars = 20000

const resumeExtractionPrompt = `
You are a resume parsing assistant. Analyze the resume text below and extract structured data.

### INSTRUCTIONS:
1. Extract only what the resume states. Do not guess.
2. Output valid JSON only. Do not wrap the output in markdown code blocks.
3. Use empty strings or empty arrays for missing information.

### OUTPUT SCHEMA:
{
    "name": "Full name",
    "email": "Email address",
    "phone": "Phone number",
    "location": "City, state or country",
    "summary": "Short professional summary",
    "skills": ["skill", "skill"],
    "experience": [
        {"company": "", "title": "", "startDate": "", "endDate": "", "summary": ""}
    ],
    "education": [
        {"institution": "", "degree": "", "year": ""}
    ]
}

### RESUME TEXT:
%s
`

// ResumeParser turns raw resume text into a ResumeRecord using a language
// model.
type ResumeParser struct {
	model llms.Model
	log   *logger.Logger
}

// NewResumeParser wraps an existing model.
func NewResumeParser(model llms.Model, log *logger.Logger) *ResumeParser {
	if log == nil {
		log = logger.NewNop()
	}
	return &ResumeParser{model: model, log: log}
}

// NewGeminiResumeParser builds a parser backed by Google's Gemini models.
func NewGeminiResumeParser(ctx context.Context, apiKey, model string, log *logger.Logger) (*ResumeParser, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.NewAppError(apperrors.ErrCodeMissingField, "ai.api_key is not configured").
			WithDetails("set COVERDRAFT_AI_API_KEY or ai.api_key in coverdraft.yaml")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, apperrors.ImportError("failed to create Gemini client", err)
	}
	return NewResumeParser(llm, log), nil
}

// Parse sends text to the model and decodes its JSON answer.
func (p *ResumeParser) Parse(ctx context.Context, text string) (*models.ResumeRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.InvalidInputError("resume text is empty")
	}
	if r := []rune(text); len(r) > maxResumeChars {
		text = string(r[:maxResumeChars])
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, p.model, fmt.Sprintf(resumeExtractionPrompt, text))
	if err != nil {
		return nil, apperrors.ImportError("resume extraction request failed", err)
	}

	var record models.ResumeRecord
	if err := json.Unmarshal([]byte(extractJSON(resp)), &record); err != nil {
		p.log.Debug("unparseable model response", "response", resp)
		return nil, apperrors.ImportError("model returned invalid JSON", err)
	}
	if record.Skills == nil {
		record.Skills = []string{}
	}
	p.log.Info("resume parsed", "name", record.Name, "experience", len(record.Experience))
	return &record, nil
}

// extractJSON strips markdown code fences and any prose around the outermost
// JSON object.
func extractJSON(resp string) string {
	s := strings.TrimSpace(resp)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}
