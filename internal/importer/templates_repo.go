package importer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dpshade/coverdraft/internal/catalog"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
	"github.com/dpshade/coverdraft/internal/storage"
)

// TemplateLibrary is where imported templates are written.
type TemplateLibrary interface {
	Get(ctx context.Context, id string) (*models.Template, error)
	SaveTemplate(template *models.Template) error
}

// TemplateImportOptions configures a template pack import.
type TemplateImportOptions struct {
	Source    string // git URL or local directory containing templates/
	Branch    string // branch to clone (default: repository default)
	Depth     int    // shallow clone depth (0 = full clone)
	TempDir   string // clone location (default: system temp)
	Overwrite bool   // replace templates that already exist
	DryRun    bool   // validate without writing
}

// TemplateImportResult reports what an import did.
type TemplateImportResult struct {
	Source   string
	Owner    string
	Imported []*models.Template
	Skipped  []string // ids that already existed
	Warnings []string // unknown tokens and similar non-fatal findings
	Errors   []error
}

// TemplateRepoImporter imports cover letter templates from a git repository
// or a local directory laid out like a library.
type TemplateRepoImporter struct {
	library TemplateLibrary
	catalog *catalog.Catalog
	log     *logger.Logger
}

func NewTemplateRepoImporter(library TemplateLibrary, cat *catalog.Catalog, log *logger.Logger) *TemplateRepoImporter {
	if log == nil {
		log = logger.NewNop()
	}
	return &TemplateRepoImporter{library: library, catalog: cat, log: log}
}

// Import fetches the source and copies every valid template into the library.
func (g *TemplateRepoImporter) Import(ctx context.Context, options TemplateImportOptions) (*TemplateImportResult, error) {
	result := &TemplateImportResult{Source: options.Source}
	if options.Source == "" {
		return result, apperrors.InvalidInputError("template source is required")
	}

	root := options.Source
	if info, err := os.Stat(options.Source); err != nil || !info.IsDir() {
		owner, err := extractOwnerFromURL(options.Source)
		if err != nil {
			return result, apperrors.InvalidInputError(err.Error())
		}
		result.Owner = owner

		tempDir, cleanup, err := setupTempDir(options.TempDir)
		if err != nil {
			return result, apperrors.ImportError("failed to set up temporary directory", err)
		}
		defer cleanup()

		clonePath, err := cloneRepository(ctx, options.Source, tempDir, options.Branch, options.Depth)
		if err != nil {
			return result, apperrors.NetworkError("clone template repository", err)
		}
		root = clonePath
	}

	templatesDir := filepath.Join(root, "templates")
	if info, err := os.Stat(templatesDir); err != nil || !info.IsDir() {
		return result, apperrors.ImportError("source does not contain a templates/ directory", err)
	}

	err := filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		if err := g.importFile(ctx, path, options, result); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", filepath.Base(path), err))
		}
		return nil
	})
	if err != nil {
		return result, apperrors.ImportError("failed to walk templates", err)
	}

	g.log.Info("template import finished",
		"source", options.Source,
		"imported", len(result.Imported),
		"skipped", len(result.Skipped),
		"errors", len(result.Errors),
	)
	return result, nil
}

func (g *TemplateRepoImporter) importFile(ctx context.Context, path string, options TemplateImportOptions, result *TemplateImportResult) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	tmpl, err := storage.ParseTemplate(content)
	if err != nil {
		return err
	}
	if err := g.validate(tmpl); err != nil {
		return err
	}

	for _, token := range renderer.ExtractTokens(tmpl.Content) {
		if _, ok := g.catalog.FieldForToken(token); !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: unknown token %s will always show as unfilled", tmpl.ID, token))
		}
	}

	if _, err := g.library.Get(ctx, tmpl.ID); err == nil && !options.Overwrite {
		result.Skipped = append(result.Skipped, tmpl.ID)
		return nil
	}

	now := time.Now().UTC()
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	tmpl.UpdatedAt = now
	tmpl.FilePath = ""

	if !options.DryRun {
		if err := g.library.SaveTemplate(tmpl); err != nil {
			return err
		}
	}
	result.Imported = append(result.Imported, tmpl)
	return nil
}

var templateIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

func (g *TemplateRepoImporter) validate(t *models.Template) error {
	if !templateIDPattern.MatchString(t.ID) {
		return fmt.Errorf("template id %q must be lower-case letters, digits and dashes", t.ID)
	}
	if strings.TrimSpace(t.JobTitle) == "" {
		return fmt.Errorf("template %s has no job_title", t.ID)
	}
	if catalog.IsAllIndustries(t.Industry) || !g.catalog.ValidIndustry(t.Industry) {
		return fmt.Errorf("template %s has unknown industry %q", t.ID, t.Industry)
	}
	if catalog.IsAllLevels(t.ExperienceLevel) || !g.catalog.ValidExperienceLevel(t.ExperienceLevel) {
		return fmt.Errorf("template %s has unknown experience level %q", t.ID, t.ExperienceLevel)
	}
	return nil
}

var sshPattern = regexp.MustCompile(`^git@([^:]+):([^/]+)/`)

// extractOwnerFromURL extracts the owner/username from a git repository URL
func extractOwnerFromURL(repoURL string) (string, error) {
	if matches := sshPattern.FindStringSubmatch(repoURL); len(matches) > 2 {
		return matches[2], nil
	}

	parsedURL, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("invalid repository URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid repository URL %q", repoURL)
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) < 2 {
		return "", fmt.Errorf("invalid repository URL format")
	}
	return pathParts[0], nil
}

// setupTempDir returns a clone directory and a function that removes it.
func setupTempDir(customTempDir string) (string, func(), error) {
	if customTempDir != "" {
		if err := os.MkdirAll(customTempDir, 0755); err != nil {
			return "", nil, fmt.Errorf("failed to create custom temp directory: %w", err)
		}
		return customTempDir, func() {}, nil
	}

	tempDir, err := os.MkdirTemp("", "coverdraft-template-import-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	return tempDir, func() { _ = os.RemoveAll(tempDir) }, nil
}

// cloneRepository clones the git repository to the specified directory
func cloneRepository(ctx context.Context, repoURL, tempDir, branch string, depth int) (string, error) {
	clonePath := filepath.Join(tempDir, "repo")

	args := []string{"clone"}
	if depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", depth))
	}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, repoURL, clonePath)

	output, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git clone failed: %w\nOutput: %s", err, string(output))
	}
	return clonePath, nil
}
