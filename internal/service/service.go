package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/config"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/export"
	"github.com/dpshade/coverdraft/internal/identity"
	"github.com/dpshade/coverdraft/internal/importer"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
	"github.com/dpshade/coverdraft/internal/session"
	"github.com/dpshade/coverdraft/internal/storage"
)

// ExportFormat selects the exporter used for a letter.
type ExportFormat string

const (
	FormatText ExportFormat = "txt"
	FormatPNG  ExportFormat = "png"
)

// Deps are the collaborators a Service is assembled from.
type Deps struct {
	Catalog   *catalog.Catalog
	Templates *storage.TemplateStore
	Letters   *storage.LetterStore
	Filters   *storage.SavedFiltersStorage
	Identity  identity.Provider
	Accounts  *identity.FileProvider // sign-in state; nil disables login/logout
	Export    export.Options
	Resume    *importer.ResumeParser // built lazily from AI when nil
	AI        config.AIConfig
	Log       *logger.Logger
}

// Service provides business logic for templates and letters
type Service struct {
	catalog   *catalog.Catalog
	engine    *renderer.Engine
	templates *storage.TemplateStore
	letters   *storage.LetterStore
	filters   *storage.SavedFiltersStorage
	identity  identity.Provider
	accounts  *identity.FileProvider
	exporters map[ExportFormat]export.Exporter
	importer  *importer.TemplateRepoImporter
	ai        config.AIConfig
	log       *logger.Logger

	resumeMu sync.Mutex
	resume   *importer.ResumeParser
}

// NewService opens the library and letter database described by cfg.
func NewService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewNop()
	}

	templates, err := storage.NewTemplateStore(cfg.Library.Dir, log.With("component", "templates"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize template store: %w", err)
	}
	if err := templates.InitLibrary(); err != nil {
		return nil, apperrors.StorageError("initialize library", err)
	}

	letters, err := storage.OpenLetterStore(ctx, cfg.Database.Path, log.With("component", "letters"))
	if err != nil {
		return nil, err
	}

	accounts := identity.NewFileProvider(cfg.Library.Dir)
	chain := identity.Chain{identity.FromContext{}}
	if cfg.User.ID != "" {
		chain = append(chain, identity.Static(cfg.User.ID))
	}
	chain = append(chain, accounts)

	return NewWithDeps(Deps{
		Catalog:   catalog.Default(),
		Templates: templates,
		Letters:   letters,
		Filters:   storage.NewSavedFiltersStorage(templates.BaseDir()),
		Identity:  chain,
		Accounts:  accounts,
		Export: export.Options{
			Dir:          cfg.Export.Dir,
			Width:        cfg.Export.Width,
			LinesPerPage: cfg.Export.LinesPerPage,
		},
		AI:  cfg.AI,
		Log: log,
	}), nil
}

// NewWithDeps assembles a Service from already-built collaborators.
func NewWithDeps(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Filters == nil && d.Templates != nil {
		d.Filters = storage.NewSavedFiltersStorage(d.Templates.BaseDir())
	}
	return &Service{
		catalog:   d.Catalog,
		engine:    renderer.NewEngine(d.Catalog),
		templates: d.Templates,
		letters:   d.Letters,
		filters:   d.Filters,
		identity:  d.Identity,
		accounts:  d.Accounts,
		exporters: map[ExportFormat]export.Exporter{
			FormatText: export.NewTextExporter(d.Export),
			FormatPNG:  export.NewPNGExporter(d.Export),
		},
		importer: importer.NewTemplateRepoImporter(d.Templates, d.Catalog, d.Log.With("component", "importer")),
		ai:       d.AI,
		resume:   d.Resume,
		log:      d.Log,
	}
}

// Close releases the letter database.
func (s *Service) Close() error {
	if s.letters == nil {
		return nil
	}
	return s.letters.Close()
}

// Catalog returns the token catalog in use.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Engine returns the substitution engine in use.
func (s *Service) Engine() *renderer.Engine {
	return s.engine
}

// InitLibrary creates the library layout and writes any missing starter
// templates.
func (s *Service) InitLibrary(ctx context.Context) (int, error) {
	if err := s.templates.InitLibrary(); err != nil {
		return 0, apperrors.StorageError("initialize library", err)
	}
	n, err := s.templates.SeedStarterTemplates(ctx, false)
	if err != nil {
		return n, apperrors.StorageError("seed starter templates", err)
	}
	s.log.Info("library initialized", "dir", s.templates.BaseDir(), "seeded", n)
	return n, nil
}

// Template Methods

// ListTemplates returns templates matching filter, sorted by job title
func (s *Service) ListTemplates(ctx context.Context, filter storage.TemplateFilter) ([]*models.Template, error) {
	templates, err := s.templates.List(ctx, filter)
	if err != nil {
		return nil, apperrors.StorageError("list templates", err)
	}
	return templates, nil
}

// SearchTemplates fuzzy-matches query against job title, industry and level
func (s *Service) SearchTemplates(ctx context.Context, query string) ([]*models.Template, error) {
	templates, err := s.ListTemplates(ctx, storage.TemplateFilter{})
	if err != nil {
		return nil, err
	}
	return fuzzyTemplates(templates, query), nil
}

func fuzzyTemplates(templates []*models.Template, query string) []*models.Template {
	query = strings.TrimSpace(query)
	if query == "" {
		return templates
	}

	searchStrings := make([]string, 0, len(templates))
	for _, t := range templates {
		searchStrings = append(searchStrings, fmt.Sprintf("%s %s %s %s",
			t.JobTitle,
			t.Industry,
			t.ExperienceLevel,
			t.ID))
	}

	matches := fuzzy.Find(query, searchStrings)

	results := make([]*models.Template, 0, len(matches))
	for _, match := range matches {
		results = append(results, templates[match.Index])
	}
	return results
}

// GetTemplate returns a template by ID with its content loaded
func (s *Service) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, apperrors.StorageError("get template", err)
	}
	return t, nil
}

// RenderTemplate substitutes form into a template without touching any store
// besides the template library.
func (s *Service) RenderTemplate(ctx context.Context, id string, form models.FormData) (renderer.Result, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return renderer.Result{}, err
	}
	return s.engine.Evaluate(t.Content, form), nil
}

// ImportTemplates copies templates from a git repository or directory
func (s *Service) ImportTemplates(ctx context.Context, options importer.TemplateImportOptions) (*importer.TemplateImportResult, error) {
	return s.importer.Import(ctx, options)
}

// Saved Filter Methods

// ListSavedFilters returns all saved template filters
func (s *Service) ListSavedFilters() ([]models.SavedFilter, error) {
	return s.filters.List()
}

// SaveFilter stores a named template filter after checking its options
// against the catalog
func (s *Service) SaveFilter(filter models.SavedFilter) error {
	if filter.Industry != "" && !s.catalog.ValidIndustry(filter.Industry) {
		return apperrors.ValidationError("unknown industry: " + filter.Industry)
	}
	if filter.ExperienceLevel != "" && !s.catalog.ValidExperienceLevel(filter.ExperienceLevel) {
		return apperrors.ValidationError("unknown experience level: " + filter.ExperienceLevel)
	}
	return s.filters.Save(filter)
}

// DeleteSavedFilter removes a saved filter by name
func (s *Service) DeleteSavedFilter(name string) error {
	return s.filters.Delete(name)
}

// ApplySavedFilter lists the templates a saved filter selects
func (s *Service) ApplySavedFilter(ctx context.Context, name string) ([]*models.Template, error) {
	f, err := s.filters.Get(name)
	if err != nil {
		return nil, err
	}
	return s.FilterTemplates(ctx, *f)
}

// FilterTemplates lists the templates an unsaved filter would select
func (s *Service) FilterTemplates(ctx context.Context, f models.SavedFilter) ([]*models.Template, error) {
	templates, err := s.ListTemplates(ctx, storage.TemplateFilter{
		Industry:        f.Industry,
		ExperienceLevel: f.ExperienceLevel,
	})
	if err != nil {
		return nil, err
	}
	return fuzzyTemplates(templates, f.Query), nil
}

// Letter Methods

// NewSession creates an editing session bound to this service's stores
func (s *Service) NewSession() *session.Session {
	return session.New(s.engine, s.templates, s.letters, s.identity,
		session.WithLogger(s.log.With("component", "session")))
}

func (s *Service) requireUser(ctx context.Context, operation string) (string, error) {
	if s.identity == nil {
		return "", apperrors.Unauthorized(operation)
	}
	userID, ok := s.identity.CurrentUser(ctx)
	if !ok || userID == "" {
		return "", apperrors.Unauthorized(operation)
	}
	return userID, nil
}

// ListLetters returns the current user's letters, newest first
func (s *Service) ListLetters(ctx context.Context) ([]*models.Letter, error) {
	userID, err := s.requireUser(ctx, "list letters")
	if err != nil {
		return nil, err
	}
	letters, err := s.letters.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.StorageError("list letters", err)
	}
	return letters, nil
}

// GetLetter returns one of the current user's letters
func (s *Service) GetLetter(ctx context.Context, id string) (*models.Letter, error) {
	userID, err := s.requireUser(ctx, "open a letter")
	if err != nil {
		return nil, err
	}
	letter, err := s.letters.Get(ctx, id, userID)
	if err != nil {
		return nil, apperrors.StorageError("get letter", err)
	}
	return letter, nil
}

// SaveLetter renders a template with form and stores it as a new letter.
// Empty form values leave the session defaults (such as today's date) alone.
func (s *Service) SaveLetter(ctx context.Context, templateID, title string, form models.FormData) (*models.Letter, error) {
	if _, err := s.requireUser(ctx, "save a letter"); err != nil {
		return nil, err
	}
	t, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	sess := s.NewSession()
	if _, err := sess.Dispatch(ctx, session.StartFromTemplate{Template: t}); err != nil {
		return nil, err
	}
	for field, value := range form.Values() {
		if value == "" {
			continue
		}
		if _, err := sess.Dispatch(ctx, session.SetField{Field: field, Value: value}); err != nil {
			return nil, err
		}
	}
	return sess.Save(ctx, title)
}

// UpdateLetter patches the title and/or content of one of the current
// user's letters
func (s *Service) UpdateLetter(ctx context.Context, id string, patch models.LetterPatch) (*models.Letter, error) {
	userID, err := s.requireUser(ctx, "update a letter")
	if err != nil {
		return nil, err
	}
	if patch.Title == nil && patch.Content == nil {
		return nil, apperrors.ValidationError("nothing to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperrors.NewAppError(apperrors.ErrCodeMissingField, "title must not be empty")
	}
	if _, err := s.letters.Get(ctx, id, userID); err != nil {
		return nil, apperrors.StorageError("update letter", err)
	}
	letter, err := s.letters.Update(ctx, id, patch)
	if err != nil {
		return nil, apperrors.StorageError("update letter", err)
	}
	return letter, nil
}

// DuplicateLetter copies one of the current user's letters
func (s *Service) DuplicateLetter(ctx context.Context, id string) (*models.Letter, error) {
	return s.NewSession().DuplicateLetter(ctx, id)
}

// DeleteLetter removes one of the current user's letters
func (s *Service) DeleteLetter(ctx context.Context, id string) error {
	return s.NewSession().DeleteLetter(ctx, id)
}

// Export Methods

// Export writes text with the exporter for format and returns the first path
func (s *Service) Export(ctx context.Context, text, filename string, format ExportFormat) (string, error) {
	if format == "" {
		format = FormatText
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return "", apperrors.InvalidInputError(fmt.Sprintf("unsupported export format %q", format))
	}
	path, err := exporter.Export(ctx, text, filename)
	if err != nil {
		return "", err
	}
	s.log.Info("letter exported", "path", path, "format", format)
	return path, nil
}

// ExportLetter exports a saved letter under its title
func (s *Service) ExportLetter(ctx context.Context, id string, format ExportFormat) (string, error) {
	letter, err := s.GetLetter(ctx, id)
	if err != nil {
		return "", err
	}
	return s.Export(ctx, letter.Content, letter.Title, format)
}

// Resume Import Methods

// ParseResume extracts a resume record from raw text with the configured
// language model
func (s *Service) ParseResume(ctx context.Context, text string) (*models.ResumeRecord, error) {
	parser, err := s.resumeParser(ctx)
	if err != nil {
		return nil, err
	}
	return parser.Parse(ctx, text)
}

// ParseResumeFile reads path and parses it as resume text
func (s *Service) ParseResumeFile(ctx context.Context, path string) (*models.ResumeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "failed to read resume file").
			WithContext("path", path)
	}
	return s.ParseResume(ctx, string(data))
}

func (s *Service) resumeParser(ctx context.Context) (*importer.ResumeParser, error) {
	s.resumeMu.Lock()
	defer s.resumeMu.Unlock()

	if s.resume != nil {
		return s.resume, nil
	}
	parser, err := importer.NewGeminiResumeParser(ctx, s.ai.APIKey, s.ai.Model, s.log.With("component", "resume"))
	if err != nil {
		return nil, err
	}
	s.resume = parser
	return parser, nil
}

// Identity Methods

// SignIn records userID as the signed-in user for this library
func (s *Service) SignIn(userID string) error {
	if s.accounts == nil {
		return apperrors.NewAppError(apperrors.ErrCodeNotImplemented, "sign-in is not available")
	}
	if err := s.accounts.SignIn(userID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "sign-in failed")
	}
	s.log.Info("signed in", "user", strings.TrimSpace(userID))
	return nil
}

// SignOut forgets the signed-in user
func (s *Service) SignOut() error {
	if s.accounts == nil {
		return apperrors.NewAppError(apperrors.ErrCodeNotImplemented, "sign-out is not available")
	}
	if err := s.accounts.SignOut(); err != nil {
		return apperrors.StorageError("sign out", err)
	}
	return nil
}

// WhoAmI returns the current user, if any
func (s *Service) WhoAmI(ctx context.Context) (string, bool) {
	if s.identity == nil {
		return "", false
	}
	return s.identity.CurrentUser(ctx)
}
