package storage

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/coverdraft/internal/catalog"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
)

// TemplateFilter narrows a template listing. Empty values and the catalog
// "all" sentinels disable the corresponding filter.
type TemplateFilter struct {
	Industry        string
	ExperienceLevel string
	Search          string // case-insensitive substring of the job title
}

// TemplateStore reads and writes cover letter templates as markdown files
// with YAML frontmatter under <root>/templates.
type TemplateStore struct {
	rootPath string
	cache    *MetadataCache
	log      *logger.Logger
}

// NewTemplateStore creates a template store rooted at rootPath.
func NewTemplateStore(rootPath string, log *logger.Logger) (*TemplateStore, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if rootPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		rootPath = filepath.Join(homeDir, ".coverdraft")
	}

	cache := NewMetadataCache(rootPath)
	if err := cache.Load(); err != nil {
		// cache is optional
		log.Warn("failed to load metadata cache", "error", err)
	}

	return &TemplateStore{
		rootPath: rootPath,
		cache:    cache,
		log:      log,
	}, nil
}

// InitLibrary creates the directory structure for a template library
func (s *TemplateStore) InitLibrary() error {
	dirs := []string{
		s.rootPath,
		filepath.Join(s.rootPath, "templates"),
		filepath.Join(s.rootPath, "exports"),
		filepath.Join(s.rootPath, "logs"),
		filepath.Join(s.rootPath, ".cache"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// BaseDir returns the root path of the library
func (s *TemplateStore) BaseDir() string {
	return s.rootPath
}

// LoadTemplate loads a template from a markdown file relative to the root
func (s *TemplateStore) LoadTemplate(path string) (*models.Template, error) {
	fullPath := filepath.Join(s.rootPath, path)

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	template, err := ParseTemplate(content)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted, "failed to parse template").
			WithContext("path", path)
	}

	template.FilePath = path
	return template, nil
}

// SaveTemplate writes a template. FilePath defaults to templates/<id>.md.
func (s *TemplateStore) SaveTemplate(template *models.Template) error {
	if template.ID == "" {
		return apperrors.ValidationError("template id is required")
	}
	if template.FilePath == "" {
		template.FilePath = filepath.Join("templates", template.ID+".md")
	}
	if template.Preview == "" {
		template.Preview = previewOf(template.Content)
	}
	fullPath := filepath.Join(s.rootPath, template.FilePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	content, err := serializeTemplate(template)
	if err != nil {
		return fmt.Errorf("failed to serialize template: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write template file: %w", err)
	}

	return nil
}

// List returns the templates matching filter, sorted by job title. Listed
// templates carry metadata only; use Get for the body.
func (s *TemplateStore) List(ctx context.Context, filter TemplateFilter) ([]*models.Template, error) {
	all, err := s.listAll(ctx)
	if err != nil {
		return nil, apperrors.StorageError("list templates", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []*models.Template
	for _, t := range all {
		if !catalog.IsAllIndustries(filter.Industry) && t.Industry != filter.Industry {
			continue
		}
		if !catalog.IsAllLevels(filter.ExperienceLevel) && t.ExperienceLevel != filter.ExperienceLevel {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.JobTitle), search) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].JobTitle) < strings.ToLower(out[j].JobTitle)
	})
	return out, nil
}

// Get loads one template with its body.
func (s *TemplateStore) Get(ctx context.Context, id string) (*models.Template, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, apperrors.NotFoundError("template").WithContext("id", id)
	}

	direct := filepath.Join("templates", id+".md")
	if _, err := os.Stat(filepath.Join(s.rootPath, direct)); err == nil {
		t, err := s.LoadTemplate(direct)
		if err == nil && t.ID == id {
			return t, nil
		}
	}

	all, err := s.listAll(ctx)
	if err != nil {
		return nil, apperrors.StorageError("get template", err)
	}
	for _, t := range all {
		if t.ID == id {
			return s.LoadTemplate(t.FilePath)
		}
	}
	return nil, apperrors.NotFoundError("template").WithContext("id", id)
}

// listAll walks the templates directory, serving unchanged files from the
// metadata cache.
func (s *TemplateStore) listAll(ctx context.Context) ([]*models.Template, error) {
	templatesDir := filepath.Join(s.rootPath, "templates")
	if _, err := os.Stat(templatesDir); os.IsNotExist(err) {
		return []*models.Template{}, nil
	}

	var templates []*models.Template
	existingFiles := make(map[string]bool)
	cacheModified := false

	err := filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !info.IsDir() && strings.HasSuffix(path, ".md") {
			relPath, _ := filepath.Rel(s.rootPath, path)
			existingFiles[relPath] = true

			if cached, valid := s.cache.Get(relPath, info); valid {
				templates = append(templates, cached.ToTemplate())
				return nil
			}

			template, err := s.LoadTemplate(relPath)
			if err != nil {
				s.log.Warn("failed to load template", "path", relPath, "error", err)
				return nil
			}

			s.cache.Set(relPath, filepath.Join(s.rootPath, relPath), info, template)
			cacheModified = true

			meta := *template
			meta.Content = ""
			templates = append(templates, &meta)
		}

		return nil
	})

	if s.cache.Cleanup(existingFiles) {
		cacheModified = true
	}

	if cacheModified {
		if err := s.cache.Save(); err != nil {
			s.log.Warn("failed to save metadata cache", "error", err)
		}
	}

	return templates, err
}

// Helper functions

// ParseTemplate decodes a template file: YAML frontmatter between "---"
// lines followed by the body.
func ParseTemplate(content []byte) (*models.Template, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return nil, fmt.Errorf("missing frontmatter delimiter")
	}

	var frontmatterLines []string
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			closed = true
			break
		}
		frontmatterLines = append(frontmatterLines, line)
	}
	if !closed {
		return nil, fmt.Errorf("unterminated frontmatter")
	}

	var template models.Template
	if err := yaml.Unmarshal([]byte(strings.Join(frontmatterLines, "\n")), &template); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if template.ID == "" {
		return nil, fmt.Errorf("frontmatter is missing id")
	}

	var contentLines []string
	for scanner.Scan() {
		contentLines = append(contentLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	// Trim only the blank lines between frontmatter and body
	template.Content = strings.TrimLeft(strings.Join(contentLines, "\n"), "\n")
	template.Content = strings.TrimRight(template.Content, "\n")

	if template.Preview == "" {
		template.Preview = previewOf(template.Content)
	}
	return &template, nil
}

// serializeTemplate converts a template to YAML frontmatter + markdown content
func serializeTemplate(template *models.Template) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(template); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.WriteString("---\n")

	if template.Content != "" {
		buf.WriteString("\n")
		buf.WriteString(template.Content)
		if !strings.HasSuffix(template.Content, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// previewOf returns the first non-empty line of body, shortened.
func previewOf(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > 120 {
			return string(r[:117]) + "..."
		}
		return line
	}
	return ""
}

func calculateHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
