package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/models"
)

const savedFiltersFile = "saved_filters.json"

// SavedFiltersStorage handles persistence of named template filters
type SavedFiltersStorage struct {
	filePath string
	mu       sync.Mutex
}

// NewSavedFiltersStorage creates a new saved filters storage
func NewSavedFiltersStorage(baseDir string) *SavedFiltersStorage {
	return &SavedFiltersStorage{
		filePath: filepath.Join(baseDir, savedFiltersFile),
	}
}

// SavedFiltersData represents the JSON structure for saved filters
type SavedFiltersData struct {
	Filters []models.SavedFilter `json:"filters"`
	Version string               `json:"version"`
}

// List loads all saved filters from disk
func (s *SavedFiltersStorage) List() ([]models.SavedFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *SavedFiltersStorage) load() ([]models.SavedFilter, error) {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return []models.SavedFilter{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saved filters file: %w", err)
	}

	var filterData SavedFiltersData
	if err := json.Unmarshal(data, &filterData); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted, "saved filters file is not valid JSON")
	}
	return filterData.Filters, nil
}

func (s *SavedFiltersStorage) write(filters []models.SavedFilter) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create saved filters directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(SavedFiltersData{Filters: filters, Version: "1.0"}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saved filters: %w", err)
	}
	if err := os.WriteFile(s.filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write saved filters file: %w", err)
	}
	return nil
}

// Save adds a filter, replacing any existing filter with the same name
func (s *SavedFiltersStorage) Save(filter models.SavedFilter) error {
	filter.Name = strings.TrimSpace(filter.Name)
	if filter.Name == "" {
		return apperrors.NewAppError(apperrors.ErrCodeMissingField, "filter name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filters, err := s.load()
	if err != nil {
		return err
	}

	now := time.Now().Format(time.RFC3339)
	filter.UpdatedAt = now
	for i, existing := range filters {
		if existing.Name == filter.Name {
			filter.CreatedAt = existing.CreatedAt
			filters[i] = filter
			return s.write(filters)
		}
	}
	if filter.CreatedAt == "" {
		filter.CreatedAt = now
	}
	return s.write(append(filters, filter))
}

// Delete removes a saved filter by name
func (s *SavedFiltersStorage) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filters, err := s.load()
	if err != nil {
		return err
	}
	for i, filter := range filters {
		if filter.Name == name {
			return s.write(append(filters[:i], filters[i+1:]...))
		}
	}
	return apperrors.NotFoundError("saved filter").WithContext("name", name)
}

// Get retrieves a saved filter by name
func (s *SavedFiltersStorage) Get(name string) (*models.SavedFilter, error) {
	filters, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, filter := range filters {
		if filter.Name == name {
			f := filter
			return &f, nil
		}
	}
	return nil, apperrors.NotFoundError("saved filter").WithContext("name", name)
}
