package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dpshade/coverdraft/internal/models"
)

// TemplateMetadata represents cached frontmatter for a template file
type TemplateMetadata struct {
	ID              string    `json:"id"`
	JobTitle        string    `json:"job_title"`
	Industry        string    `json:"industry"`
	ExperienceLevel string    `json:"experience_level"`
	Preview         string    `json:"preview"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	FilePath        string    `json:"file_path"`
	ModTime         time.Time `json:"mod_time"`
	FileHash        string    `json:"file_hash"`
}

// MetadataCache keeps template frontmatter keyed by relative path so listing
// the library does not reparse unchanged files.
type MetadataCache struct {
	cacheDir  string
	cacheFile string
	metadata  map[string]*TemplateMetadata
	mu        sync.RWMutex
}

// NewMetadataCache creates a new metadata cache
func NewMetadataCache(baseDir string) *MetadataCache {
	cacheDir := filepath.Join(baseDir, ".cache")
	return &MetadataCache{
		cacheDir:  cacheDir,
		cacheFile: filepath.Join(cacheDir, "templates.json"),
		metadata:  make(map[string]*TemplateMetadata),
	}
}

// Load loads the metadata cache from disk
func (c *MetadataCache) Load() error {
	if _, err := os.Stat(c.cacheFile); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := json.Unmarshal(data, &c.metadata); err != nil || c.metadata == nil {
		// corrupted cache, start fresh
		c.metadata = make(map[string]*TemplateMetadata)
	}
	return nil
}

// Save saves the metadata cache to disk
func (c *MetadataCache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.metadata, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(c.cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Get retrieves metadata for a file if it has not been modified since caching
func (c *MetadataCache) Get(relPath string, fileInfo os.FileInfo) (*TemplateMetadata, bool) {
	c.mu.RLock()
	cached, exists := c.metadata[relPath]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	if !fileInfo.ModTime().Equal(cached.ModTime) {
		return nil, false
	}
	return cached, true
}

// Set stores metadata in the cache
func (c *MetadataCache) Set(relPath string, fullPath string, fileInfo os.FileInfo, template *models.Template) {
	fileHash := ""
	if data, err := os.ReadFile(fullPath); err == nil {
		fileHash = calculateHash(data)
	}

	c.mu.Lock()
	c.metadata[relPath] = &TemplateMetadata{
		ID:              template.ID,
		JobTitle:        template.JobTitle,
		Industry:        template.Industry,
		ExperienceLevel: template.ExperienceLevel,
		Preview:         template.Preview,
		CreatedAt:       template.CreatedAt,
		UpdatedAt:       template.UpdatedAt,
		FilePath:        template.FilePath,
		ModTime:         fileInfo.ModTime(),
		FileHash:        fileHash,
	}
	c.mu.Unlock()
}

// ToTemplate converts cached metadata back to a Template without its body
func (m *TemplateMetadata) ToTemplate() *models.Template {
	return &models.Template{
		ID:              m.ID,
		JobTitle:        m.JobTitle,
		Industry:        m.Industry,
		ExperienceLevel: m.ExperienceLevel,
		Preview:         m.Preview,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		FilePath:        m.FilePath,
	}
}

// Cleanup removes cache entries for files that no longer exist and reports
// whether anything was removed.
func (c *MetadataCache) Cleanup(existingFiles map[string]bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := false
	for relPath := range c.metadata {
		if !existingFiles[relPath] {
			delete(c.metadata, relPath)
			removed = true
		}
	}
	return removed
}

// Len returns the number of cached entries.
func (c *MetadataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.metadata)
}
