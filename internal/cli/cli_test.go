package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/clipboard"
	"github.com/dpshade/coverdraft/internal/export"
	"github.com/dpshade/coverdraft/internal/identity"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
	"github.com/dpshade/coverdraft/internal/service"
	"github.com/dpshade/coverdraft/internal/storage"
)

type testCLI struct {
	*CLI
	out    *bytes.Buffer
	copied []string
	dir    string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewTest(t)

	templates, err := storage.NewTemplateStore(dir, log)
	require.NoError(t, err)
	letters, err := storage.OpenLetterStore(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = letters.Close() })

	accounts := identity.NewFileProvider(dir)
	svc := service.NewWithDeps(service.Deps{
		Catalog:   catalog.Default(),
		Templates: templates,
		Letters:   letters,
		Identity:  identity.Chain{identity.FromContext{}, accounts},
		Accounts:  accounts,
		Export:    export.Options{Dir: filepath.Join(dir, "exports"), Width: 60, LinesPerPage: 20},
		Log:       log,
	})

	tc := &testCLI{out: &bytes.Buffer{}, dir: dir}
	cb := clipboard.New(func(s string) error {
		tc.copied = append(tc.copied, s)
		return nil
	}, func() bool { return true })
	tc.CLI = NewCLI(svc, log, WithOutput(tc.out), WithClipboard(cb))
	return tc
}

func (tc *testCLI) run(t *testing.T, args ...string) string {
	t.Helper()
	tc.out.Reset()
	require.NoError(t, tc.ExecuteCommand(context.Background(), args))
	return tc.out.String()
}

func TestParseFlags(t *testing.T) {
	fs := parseFlags([]string{
		"nurse", "--set", "fullName=Ada", "-s", "Company Name=Acme",
		"--format=json", "--copy", "--title", "My Letter",
	}, "copy")

	assert.Equal(t, []string{"nurse"}, fs.positional)
	assert.Equal(t, []string{"fullName=Ada", "Company Name=Acme"}, fs.sets)
	assert.Equal(t, "json", fs.get("format"))
	assert.Equal(t, "My Letter", fs.get("title"))
	assert.True(t, fs.bools["copy"])
}

func TestFormFromSets(t *testing.T) {
	tc := newTestCLI(t)

	form, err := tc.formFromSets([]string{"fullName=Ada Lovelace", "Company Name=Acme", "[Job Title]=Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", form.Get(catalog.FieldFullName))
	assert.Equal(t, "Acme", form.Get(catalog.FieldCompanyName))
	assert.Equal(t, "Engineer", form.Get(catalog.FieldJobTitle))

	_, err = tc.formFromSets([]string{"favouriteColour=blue"})
	assert.Error(t, err)

	_, err = tc.formFromSets([]string{"fullName"})
	assert.Error(t, err)
}

func TestInitAndListTemplates(t *testing.T) {
	tc := newTestCLI(t)

	out := tc.run(t, "init")
	assert.Contains(t, out, "Library ready")

	out = tc.run(t, "templates", "--format", "ids")
	ids := strings.Fields(out)
	assert.Len(t, ids, len(storage.StarterTemplates()))
	assert.Contains(t, ids, "registered-nurse")

	out = tc.run(t, "templates", "--industry", "Healthcare", "--format", "json")
	var templates []models.Template
	require.NoError(t, json.Unmarshal([]byte(out), &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, "registered-nurse", templates[0].ID)

	out = tc.run(t, "ls", "--level", "Entry Level", "-f", "table")
	assert.Contains(t, out, "software-developer-entry")
	assert.Contains(t, out, "teacher-entry")
	assert.NotContains(t, out, "sales-executive")
}

func TestListTemplates_RejectsUnknownIndustry(t *testing.T) {
	tc := newTestCLI(t)
	tc.run(t, "init")

	err := tc.ExecuteCommand(context.Background(), []string{"templates", "--industry", "Astrology"})
	assert.Error(t, err)

	err = tc.ExecuteCommand(context.Background(), []string{"templates", "--format", "xml"})
	assert.Error(t, err)
}

func TestSearchAndShowTemplate(t *testing.T) {
	tc := newTestCLI(t)
	tc.run(t, "init")

	out := tc.run(t, "search", "nurse", "--format", "ids")
	assert.Equal(t, "registered-nurse", strings.Fields(out)[0])

	out = tc.run(t, "template", "registered-nurse")
	assert.Contains(t, out, "Industry: Healthcare")
	assert.Contains(t, out, "[Company Name]")

	err := tc.ExecuteCommand(context.Background(), []string{"template", "no-such-template"})
	assert.Error(t, err)

	err = tc.ExecuteCommand(context.Background(), []string{"search"})
	assert.Error(t, err)
}

func TestFields(t *testing.T) {
	tc := newTestCLI(t)

	out := tc.run(t, "fields")
	for _, e := range catalog.Default().Entries() {
		assert.Contains(t, out, e.Token)
	}
	assert.Contains(t, out, "* required")
}

func TestRender(t *testing.T) {
	tc := newTestCLI(t)
	tc.run(t, "init")

	out := tc.run(t, "render", "registered-nurse", "--set", "fullName=Ada Lovelace", "-s", "Company Name=St. Mary's")
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "St. Mary's")
	assert.Contains(t, out, "fields remaining")
	assert.NotContains(t, out, "[Full Name]\n[Your Address]")

	out = tc.run(t, "render", "registered-nurse", "--format", "json", "--copy", "--set", "fullName=Ada")
	require.Len(t, tc.copied, 1)
	assert.Contains(t, tc.copied[0], "Ada")
	assert.Contains(t, out, "Copied to clipboard!")

	var result renderer.Result
	jsonPart := out[:strings.LastIndex(out, "}")+1]
	require.NoError(t, json.Unmarshal([]byte(jsonPart), &result))
	assert.False(t, result.Validation.IsValid)
	assert.NotEmpty(t, result.UnfilledTokens)
}

func TestRender_Export(t *testing.T) {
	tc := newTestCLI(t)
	tc.run(t, "init")

	out := tc.run(t, "render", "registered-nurse", "--set", "fullName=Ada", "--export", "ada nurse")
	assert.Contains(t, out, "Exported to")

	_, err := os.Stat(filepath.Join(tc.dir, "exports", "ada-nurse.txt"))
	assert.NoError(t, err)
}

func TestLetters_RequireSignIn(t *testing.T) {
	tc := newTestCLI(t)
	tc.run(t, "init")

	err := tc.ExecuteCommand(context.Background(), []string{"letters"})
	assert.Error(t, err)

	out := tc.run(t, "whoami")
	assert.Contains(t, out, "Not signed in")
}

func TestLetterLifecycle(t *testing.T) {
	tc := newTestCLI(t)
	tc.run(t, "init")

	out := tc.run(t, "login", "ada")
	assert.Contains(t, out, "Signed in as ada")
	assert.Equal(t, "ada\n", tc.run(t, "whoami"))

	out = tc.run(t, "save", "registered-nurse", "--title", "Nurse at St. Mary's", "--set", "fullName=Ada")
	assert.Contains(t, out, `Saved letter "Nurse at St. Mary's"`)

	out = tc.run(t, "letters", "--format", "ids")
	ids := strings.Fields(out)
	require.Len(t, ids, 1)
	id := ids[0]

	out = tc.run(t, "letter", id)
	assert.Contains(t, out, "Title: Nurse at St. Mary's")
	assert.Contains(t, out, "Template: registered-nurse")

	out = tc.run(t, "duplicate", id)
	assert.Contains(t, out, "Nurse at St. Mary's (Copy)")

	out = tc.run(t, "letters", "--format", "json")
	var letters []models.Letter
	require.NoError(t, json.Unmarshal([]byte(out), &letters))
	assert.Len(t, letters, 2)

	out = tc.run(t, "copy", id)
	assert.Contains(t, out, "Copied to clipboard!")
	require.Len(t, tc.copied, 1)
	assert.Contains(t, tc.copied[0], "Ada")

	out = tc.run(t, "export", id)
	assert.Contains(t, out, "Exported to")

	out = tc.run(t, "delete", id)
	assert.Contains(t, out, "Deleted letter")
	err := tc.ExecuteCommand(context.Background(), []string{"letter", id})
	assert.Error(t, err)

	tc.run(t, "logout")
	assert.Contains(t, tc.run(t, "whoami"), "Not signed in")
}

func TestFilters(t *testing.T) {
	tc := newTestCLI(t)
	tc.run(t, "init")

	assert.Contains(t, tc.run(t, "filters"), "No saved filters")

	out := tc.run(t, "filters", "save", "entry", "--level", "Entry Level")
	assert.Contains(t, out, `Saved filter "entry"`)

	out = tc.run(t, "filters", "list")
	assert.Contains(t, out, "entry")
	assert.Contains(t, out, "Entry Level")

	out = tc.run(t, "filters", "run", "entry", "--format", "ids")
	ids := strings.Fields(out)
	assert.ElementsMatch(t, []string{"software-developer-entry", "teacher-entry"}, ids)

	tc.run(t, "filters", "delete", "entry")
	err := tc.ExecuteCommand(context.Background(), []string{"filters", "run", "entry"})
	assert.Error(t, err)

	err = tc.ExecuteCommand(context.Background(), []string{"filters", "rename", "entry"})
	assert.Error(t, err)
}

func TestImportTemplates_DryRun(t *testing.T) {
	tc := newTestCLI(t)

	src := t.TempDir()
	content := "---\nid: data-scientist\njob_title: Data Scientist\nindustry: Technology\nexperience_level: Mid Level\n---\nDear [Hiring Manager Name],\n\n[Full Name]\n"
	require.NoError(t, os.MkdirAll(filepath.Join(src, "templates"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "templates", "data-scientist.md"), []byte(content), 0644))

	out := tc.run(t, "import-templates", src, "--dry-run")
	assert.Contains(t, out, "Template Import Preview:")
	assert.Contains(t, out, "Data Scientist (data-scientist)")

	out = tc.run(t, "templates", "--format", "ids")
	assert.NotContains(t, out, "data-scientist")

	out = tc.run(t, "import-templates", src)
	assert.Contains(t, out, "Template Import Complete:")
	out = tc.run(t, "templates", "--format", "ids")
	assert.Contains(t, out, "data-scientist")
}

func TestUnknownCommand(t *testing.T) {
	tc := newTestCLI(t)

	err := tc.ExecuteCommand(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Command 'frobnicate' not found")
}

func TestHelp(t *testing.T) {
	tc := newTestCLI(t)

	assert.Contains(t, tc.run(t), "Usage: coverdraft [command] [options]")
	assert.Contains(t, tc.run(t, "help", "render"), "--set, -s field=value")
	assert.Error(t, tc.ExecuteCommand(context.Background(), []string{"help", "nope"}))
}
