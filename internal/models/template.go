package models

import (
	"strings"
	"time"
)

// Template is a cover letter template stored as a markdown file with YAML
// frontmatter. Content is the raw body containing bracketed tokens.
type Template struct {
	// Frontmatter fields
	ID              string    `yaml:"id" json:"id"`
	JobTitle        string    `yaml:"job_title" json:"jobTitle"`
	Industry        string    `yaml:"industry" json:"industry"`
	ExperienceLevel string    `yaml:"experience_level" json:"experienceLevel"`
	Preview         string    `yaml:"preview" json:"preview"`
	CreatedAt       time.Time `yaml:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `yaml:"updated_at" json:"updatedAt"`

	// Content fields
	Content  string `yaml:"-" json:"content"`
	FilePath string `yaml:"-" json:"-"`
}

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (t Template) FilterValue() string {
	return cleanString(t.JobTitle + " " + t.Industry + " " + t.ExperienceLevel)
}

// Title satisfies the list.Item interface
func (t Template) Title() string {
	if t.JobTitle != "" {
		return cleanString(t.JobTitle)
	}
	return cleanString(t.ID)
}

// Description satisfies the list.Item interface
func (t Template) Description() string {
	var parts []string
	if t.Industry != "" {
		parts = append(parts, t.Industry)
	}
	if t.ExperienceLevel != "" {
		parts = append(parts, t.ExperienceLevel)
	}
	if t.Preview != "" {
		parts = append(parts, truncate(cleanString(t.Preview), 60))
	}
	return truncate(cleanString(strings.Join(parts, " • ")), 100)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// cleanString removes control characters that break list rendering
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
