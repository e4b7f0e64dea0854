package models

import (
	"fmt"
	"strings"
)

// SavedFilter is a named template filter the user can re-apply from the
// template browser.
type SavedFilter struct {
	Name            string `json:"name"`
	Industry        string `json:"industry,omitempty"`
	ExperienceLevel string `json:"level,omitempty"`
	Query           string `json:"query,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// String describes the filter for list rows and status lines.
func (f SavedFilter) String() string {
	var parts []string
	if f.Industry != "" {
		parts = append(parts, f.Industry)
	}
	if f.ExperienceLevel != "" {
		parts = append(parts, f.ExperienceLevel)
	}
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", f.Query))
	}
	if len(parts) == 0 {
		return "all templates"
	}
	return strings.Join(parts, " · ")
}
