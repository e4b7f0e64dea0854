package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/coverdraft/internal/catalog"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
)

func newTemplateStore(t *testing.T) *TemplateStore {
	t.Helper()
	s, err := NewTemplateStore(t.TempDir(), logger.NewTest(t))
	require.NoError(t, err)
	require.NoError(t, s.InitLibrary())

	seed := []*models.Template{
		{ID: "swe-senior", JobTitle: "Software Engineer", Industry: "Technology", ExperienceLevel: "Senior Level",
			Content: "Dear [Hiring Manager Name],\n\nI am applying to [Company Name]."},
		{ID: "nurse-entry", JobTitle: "Registered Nurse", Industry: "Healthcare", ExperienceLevel: "Entry Level",
			Content: "Dear [Hiring Manager Name],\n\nCare matters."},
		{ID: "analyst-mid", JobTitle: "Financial Analyst", Industry: "Finance", ExperienceLevel: "Mid Level",
			Content: "Dear [Hiring Manager Name],\n\nNumbers."},
		{ID: "swe-entry", JobTitle: "Junior Software Developer", Industry: "Technology", ExperienceLevel: "Entry Level",
			Content: "Hello [Company Name]"},
	}
	for _, tmpl := range seed {
		tmpl.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		tmpl.UpdatedAt = tmpl.CreatedAt
		require.NoError(t, s.SaveTemplate(tmpl))
	}
	return s
}

func ids(templates []*models.Template) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = t.ID
	}
	return out
}

func TestTemplateStore_ListFilters(t *testing.T) {
	s := newTemplateStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter TemplateFilter
		want   []string
	}{
		{"all sorted by job title", TemplateFilter{}, []string{"analyst-mid", "swe-entry", "nurse-entry", "swe-senior"}},
		{"sentinels", TemplateFilter{Industry: catalog.AllIndustries, ExperienceLevel: catalog.AllLevels}, []string{"analyst-mid", "swe-entry", "nurse-entry", "swe-senior"}},
		{"industry", TemplateFilter{Industry: "Technology"}, []string{"swe-entry", "swe-senior"}},
		{"level", TemplateFilter{ExperienceLevel: "Entry Level"}, []string{"swe-entry", "nurse-entry"}},
		{"search is case-insensitive substring", TemplateFilter{Search: "SOFTWARE"}, []string{"swe-entry", "swe-senior"}},
		{"combined", TemplateFilter{Industry: "Technology", ExperienceLevel: "Senior Level", Search: "eng"}, []string{"swe-senior"}},
		{"no match", TemplateFilter{Industry: "Legal"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestTemplateStore_Get(t *testing.T) {
	s := newTemplateStore(t)

	got, err := s.Get(context.Background(), "swe-senior")
	require.NoError(t, err)
	assert.Equal(t, "Software Engineer", got.JobTitle)
	assert.Equal(t, "Dear [Hiring Manager Name],\n\nI am applying to [Company Name].", got.Content)
	assert.Equal(t, "Dear [Hiring Manager Name],", got.Preview)

	_, err = s.Get(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

	_, err = s.Get(context.Background(), "../etc/passwd")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestTemplateStore_GetByFrontmatterID(t *testing.T) {
	s := newTemplateStore(t)
	body := "---\nid: odd-name\njob_title: Barista\nindustry: Hospitality\nexperience_level: Entry Level\n---\n\nCoffee at [Company Name]\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir(), "templates", "file.md"), []byte(body), 0644))

	got, err := s.Get(context.Background(), "odd-name")
	require.NoError(t, err)
	assert.Equal(t, "Coffee at [Company Name]", got.Content)
}

func TestTemplateStore_SkipsCorruptFiles(t *testing.T) {
	s := newTemplateStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir(), "templates", "broken.md"), []byte("no frontmatter"), 0644))

	got, err := s.List(context.Background(), TemplateFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestTemplateStore_CacheRefreshesOnChange(t *testing.T) {
	s := newTemplateStore(t)
	ctx := context.Background()

	_, err := s.List(ctx, TemplateFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, s.cache.Len())

	// cached entries survive a reopen
	reopened, err := NewTemplateStore(s.BaseDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, reopened.cache.Len())

	path := filepath.Join(s.BaseDir(), "templates", "swe-senior.md")
	require.NoError(t, os.Remove(path))
	got, err := reopened.List(ctx, TemplateFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, reopened.cache.Len())
}

func TestTemplateStore_EmptyLibrary(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir(), nil)
	require.NoError(t, err)

	got, err := s.List(context.Background(), TemplateFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSeedStarterTemplates(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	n, err := s.SeedStarterTemplates(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, len(StarterTemplates()), n)

	n, err = s.SeedStarterTemplates(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	cat := catalog.Default()
	for _, tmpl := range StarterTemplates() {
		assert.True(t, cat.ValidIndustry(tmpl.Industry), tmpl.ID)
		assert.True(t, cat.ValidExperienceLevel(tmpl.ExperienceLevel), tmpl.ID)

		got, err := s.Get(ctx, tmpl.ID)
		require.NoError(t, err)
		assert.Equal(t, tmpl.Content, got.Content)
	}
}
