package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
)

type fakeModel struct {
	response string
	err      error
	prompt   string
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range messages {
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompt += text.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.response}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestResumeParser_Parse(t *testing.T) {
	model := &fakeModel{response: "```json\n" + `{
		"name": "Jane Doe",
		"email": "jane@example.com",
		"phone": "555-0100",
		"skills": ["Go", "SQL"],
		"experience": [{"company": "Acme", "title": "Engineer"}]
	}` + "\n```"}
	p := NewResumeParser(model, logger.NewTest(t))

	rec, err := p.Parse(context.Background(), "Jane Doe\nEngineer at Acme")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "jane@example.com", rec.Email)
	assert.Equal(t, []string{"Go", "SQL"}, rec.Skills)
	require.Len(t, rec.Experience, 1)
	assert.Equal(t, "Acme", rec.Experience[0].Company)
	assert.Contains(t, model.prompt, "Engineer at Acme")
}

func TestResumeParser_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewResumeParser(&fakeModel{}, nil).Parse(ctx, "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	_, err = NewResumeParser(&fakeModel{err: errors.New("quota")}, nil).Parse(ctx, "resume")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeImportFailed))

	_, err = NewResumeParser(&fakeModel{response: "I cannot help with that"}, nil).Parse(ctx, "resume")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeImportFailed))
}

func TestResumeParser_TruncatesInput(t *testing.T) {
	model := &fakeModel{response: `{"name": "x"}`}
	_, err := NewResumeParser(model, nil).Parse(context.Background(), strings.Repeat("a", maxResumeChars+500))
	require.NoError(t, err)
	assert.Less(t, strings.Count(model.prompt, "a"), maxResumeChars+500)
}

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                       `{"a":1}`,
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n{\"a\":1}\n```":           `{"a":1}`,
		"Sure! Here it is: {\"a\":1} ok": `{"a":1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, extractJSON(in), in)
	}
}

func TestNewGeminiResumeParser_RequiresKey(t *testing.T) {
	_, err := NewGeminiResumeParser(context.Background(), "", "gemini-1.5-flash", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingField))
}
