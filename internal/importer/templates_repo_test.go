package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/coverdraft/internal/catalog"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/storage"
)

func TestExtractOwnerFromURL(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
		hasError bool
	}{
		{"https://github.com/user/repo.git", "user", false},
		{"https://github.com/organization/letters.git", "organization", false},
		{"git@github.com:user/repo.git", "user", false},
		{"git@gitlab.com:team/project.git", "team", false},
		{"https://gitlab.com/group/subgroup/project.git", "group", false},
		{"invalid-url", "", true},
		{"https://github.com/", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			owner, err := extractOwnerFromURL(tc.url)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, owner)
		})
	}
}

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", name), []byte(body), 0644))
}

func TestTemplateRepoImporter_LocalDirectory(t *testing.T) {
	src := t.TempDir()
	writeTemplate(t, src, "good.md", "---\nid: data-analyst\njob_title: Data Analyst\nindustry: Technology\nexperience_level: Mid Level\n---\n\nDear [Hiring Manager Name], I love [Favorite Dataset].\n")
	writeTemplate(t, src, "bad-industry.md", "---\nid: pirate\njob_title: Pirate\nindustry: Piracy\nexperience_level: Mid Level\n---\n\nArr\n")
	writeTemplate(t, src, "no-frontmatter.md", "just text")

	lib, err := storage.NewTemplateStore(t.TempDir(), nil)
	require.NoError(t, err)
	imp := NewTemplateRepoImporter(lib, catalog.Default(), logger.NewTest(t))
	ctx := context.Background()

	res, err := imp.Import(ctx, TemplateImportOptions{Source: src})
	require.NoError(t, err)
	require.Len(t, res.Imported, 1)
	assert.Equal(t, "data-analyst", res.Imported[0].ID)
	assert.Len(t, res.Errors, 2)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "[Favorite Dataset]")

	got, err := lib.Get(ctx, "data-analyst")
	require.NoError(t, err)
	assert.Equal(t, "Dear [Hiring Manager Name], I love [Favorite Dataset].", got.Content)

	again, err := imp.Import(ctx, TemplateImportOptions{Source: src})
	require.NoError(t, err)
	assert.Empty(t, again.Imported)
	assert.Equal(t, []string{"data-analyst"}, again.Skipped)

	over, err := imp.Import(ctx, TemplateImportOptions{Source: src, Overwrite: true})
	require.NoError(t, err)
	assert.Len(t, over.Imported, 1)
}

func TestTemplateRepoImporter_DryRun(t *testing.T) {
	src := t.TempDir()
	writeTemplate(t, src, "a.md", "---\nid: teacher\njob_title: Teacher\nindustry: Education\nexperience_level: Entry Level\n---\n\nHi\n")

	lib, err := storage.NewTemplateStore(t.TempDir(), nil)
	require.NoError(t, err)
	imp := NewTemplateRepoImporter(lib, catalog.Default(), nil)

	res, err := imp.Import(context.Background(), TemplateImportOptions{Source: src, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Imported, 1)

	_, err = lib.Get(context.Background(), "teacher")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestTemplateRepoImporter_InvalidSource(t *testing.T) {
	lib, err := storage.NewTemplateStore(t.TempDir(), nil)
	require.NoError(t, err)
	imp := NewTemplateRepoImporter(lib, catalog.Default(), nil)

	_, err = imp.Import(context.Background(), TemplateImportOptions{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	_, err = imp.Import(context.Background(), TemplateImportOptions{Source: "not a url"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	_, err = imp.Import(context.Background(), TemplateImportOptions{Source: t.TempDir()})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeImportFailed))
}
