package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/dpshade/coverdraft/internal/catalog"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/export"
	"github.com/dpshade/coverdraft/internal/identity"
	"github.com/dpshade/coverdraft/internal/importer"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/storage"
)

type stubModel struct{ response string }

func (m stubModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.response}}}, nil
}

func (m stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewTest(t)

	templates, err := storage.NewTemplateStore(dir, log)
	require.NoError(t, err)
	letters, err := storage.OpenLetterStore(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = letters.Close() })

	accounts := identity.NewFileProvider(dir)
	svc := NewWithDeps(Deps{
		Catalog:   catalog.Default(),
		Templates: templates,
		Letters:   letters,
		Identity:  identity.Chain{identity.FromContext{}, accounts},
		Accounts:  accounts,
		Export:    export.Options{Dir: filepath.Join(dir, "exports"), Width: 60, LinesPerPage: 20},
		Resume:    importer.NewResumeParser(stubModel{response: `{"name": "Jane Doe", "skills": ["Go"]}`}, log),
		Log:       log,
	})

	_, err = svc.InitLibrary(context.Background())
	require.NoError(t, err)
	return svc, dir
}

func TestInitLibrary_SeedsOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListTemplates(ctx, storage.TemplateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(storage.StarterTemplates()))

	n, err := svc.InitLibrary(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListTemplates_Filters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tech, err := svc.ListTemplates(ctx, storage.TemplateFilter{Industry: "Technology"})
	require.NoError(t, err)
	require.Len(t, tech, 2)
	for _, tmpl := range tech {
		assert.Equal(t, "Technology", tmpl.Industry)
	}

	all, err := svc.ListTemplates(ctx, storage.TemplateFilter{Industry: catalog.AllIndustries, ExperienceLevel: catalog.AllLevels})
	require.NoError(t, err)
	assert.Len(t, all, len(storage.StarterTemplates()))
}

func TestSearchTemplates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	results, err := svc.SearchTemplates(ctx, "nurse")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "registered-nurse", results[0].ID)

	results, err = svc.SearchTemplates(ctx, "")
	require.NoError(t, err)
	assert.Len(t, results, len(storage.StarterTemplates()))
}

func TestRenderTemplate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	form := models.FormData{FullName: "Jane Doe", CompanyName: "Acme"}
	result, err := svc.RenderTemplate(ctx, "software-engineer-senior", form)
	require.NoError(t, err)
	assert.Contains(t, result.Content, "Jane Doe")
	assert.Contains(t, result.Content, "Acme")
	assert.NotContains(t, result.Content, "[Company Name]")
	assert.Contains(t, result.UnfilledTokens, "[Job Title]")
	assert.False(t, result.Validation.IsValid)

	_, err = svc.RenderTemplate(ctx, "missing", form)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestLetters_RequireIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListLetters(ctx)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))

	_, err = svc.SaveLetter(ctx, "financial-analyst", "", models.FormData{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))

	_, err = svc.ExportLetter(ctx, "any", FormatText)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))
}

func TestLetterLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := identity.WithUser(context.Background(), "u1")

	saved, err := svc.SaveLetter(ctx, "financial-analyst", "", models.FormData{FullName: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, "financial-analyst", saved.TemplateID)
	assert.Equal(t, "Financial Analyst cover letter", saved.Title)
	assert.Contains(t, saved.Content, "Jane Doe")
	assert.NotContains(t, saved.Content, "[Date]")

	title := "Acme application"
	updated, err := svc.UpdateLetter(ctx, saved.ID, models.LetterPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, saved.Content, updated.Content)

	dup, err := svc.DuplicateLetter(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme application (Copy)", dup.Title)

	letters, err := svc.ListLetters(ctx)
	require.NoError(t, err)
	assert.Len(t, letters, 2)

	other := identity.WithUser(context.Background(), "u2")
	_, err = svc.GetLetter(other, saved.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	_, err = svc.UpdateLetter(other, saved.ID, models.LetterPatch{Title: &title})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	err = svc.DeleteLetter(other, saved.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

	require.NoError(t, svc.DeleteLetter(ctx, saved.ID))
	letters, err = svc.ListLetters(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, dup.ID, letters[0].ID)
}

func TestUpdateLetter_RejectsEmptyPatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := identity.WithUser(context.Background(), "u1")

	_, err := svc.UpdateLetter(ctx, "whatever", models.LetterPatch{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	blank := "  "
	_, err = svc.UpdateLetter(ctx, "whatever", models.LetterPatch{Title: &blank})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingField))
}

func TestExportLetter(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := identity.WithUser(context.Background(), "u1")

	saved, err := svc.SaveLetter(ctx, "registered-nurse", "Nurse at St. Mary's", models.FormData{})
	require.NoError(t, err)

	path, err := svc.ExportLetter(ctx, saved.ID, FormatText)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "nurse-at-st.-mary-s.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dear")

	path, err = svc.ExportLetter(ctx, saved.ID, FormatPNG)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "-page-01.png"))

	_, err = svc.Export(ctx, "text", "x", ExportFormat("pdf"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestSignInSignOut(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, ok := svc.WhoAmI(ctx)
	assert.False(t, ok)

	require.NoError(t, svc.SignIn("  alice "))
	user, ok := svc.WhoAmI(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", user)

	letter, err := svc.SaveLetter(ctx, "teacher-entry", "", models.FormData{})
	require.NoError(t, err)
	assert.Equal(t, "alice", letter.UserID)

	// request-scoped identity wins over the signed-in user
	user, _ = svc.WhoAmI(identity.WithUser(ctx, "bob"))
	assert.Equal(t, "bob", user)

	require.NoError(t, svc.SignOut())
	require.NoError(t, svc.SignOut())
	_, ok = svc.WhoAmI(ctx)
	assert.False(t, ok)

	err = svc.SignIn("")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestParseResume(t *testing.T) {
	svc, _ := newTestService(t)

	record, err := svc.ParseResume(context.Background(), "Jane Doe\nGo developer")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", record.Name)
	assert.Equal(t, []string{"Go"}, record.Skills)

	_, err = svc.ParseResumeFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestParseResume_MissingAPIKey(t *testing.T) {
	svc := NewWithDeps(Deps{Log: logger.NewTest(t)})

	_, err := svc.ParseResume(context.Background(), "some resume")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingField))
}

func TestSavedFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.SaveFilter(models.SavedFilter{Name: "bad", Industry: "Underwater Basketry"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	require.NoError(t, svc.SaveFilter(models.SavedFilter{Name: "tech", Industry: "Technology", Query: "junior"}))
	results, err := svc.ApplySavedFilter(ctx, "tech")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "software-developer-entry", results[0].ID)

	filters, err := svc.ListSavedFilters()
	require.NoError(t, err)
	assert.Len(t, filters, 1)

	require.NoError(t, svc.DeleteSavedFilter("tech"))
	_, err = svc.ApplySavedFilter(ctx, "tech")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}
