package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/models"
)

// SaveFilterModal names the current industry/level selection plus an
// optional text query so it can be reapplied later.
type SaveFilterModal struct {
	nameInput      textinput.Model
	queryInput     textinput.Model
	industry       string
	level          string
	isActive       bool
	submitted      bool
	savedFilter    *models.SavedFilter
	editMode       bool
	originalFilter *models.SavedFilter
	focusIndex     int // 0=name, 1=query

	// Live match count
	countFunc  func(models.SavedFilter) (int, error)
	matchCount int
	countError string
}

// NewSaveFilterModal creates a new save filter modal
func NewSaveFilterModal() *SaveFilterModal {
	nameInput := textinput.New()
	nameInput.Placeholder = "Enter filter name"
	nameInput.Focus()
	nameInput.CharLimit = 50
	nameInput.Width = 50

	queryInput := textinput.New()
	queryInput.Placeholder = "Optional: text query"
	queryInput.CharLimit = 200
	queryInput.Width = 50

	return &SaveFilterModal{
		nameInput:  nameInput,
		queryInput: queryInput,
	}
}

// SetSelection records the industry and level that will be saved
func (m *SaveFilterModal) SetSelection(industry, level string) {
	m.industry = industry
	m.level = level
	m.refreshCount()
}

// SetCountFunc sets the callback used for the live match count
func (m *SaveFilterModal) SetCountFunc(countFunc func(models.SavedFilter) (int, error)) {
	m.countFunc = countFunc
}

// current builds the filter described by the modal's inputs
func (m *SaveFilterModal) current() models.SavedFilter {
	f := models.SavedFilter{
		Name:  strings.TrimSpace(m.nameInput.Value()),
		Query: strings.TrimSpace(m.queryInput.Value()),
	}
	if !catalog.IsAllIndustries(m.industry) {
		f.Industry = m.industry
	}
	if !catalog.IsAllLevels(m.level) {
		f.ExperienceLevel = m.level
	}
	return f
}

// Update handles input for the modal
func (m *SaveFilterModal) Update(msg tea.Msg) tea.Cmd {
	if !m.isActive {
		return nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			m.isActive = false
			m.submitted = false
			m.savedFilter = nil
			m.nameInput.SetValue("")
			m.queryInput.SetValue("")
			m.focusIndex = 0
			return nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("tab", "shift+tab"))):
			m.focusIndex = 1 - m.focusIndex
			m.updateFocus()
			return nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			f := m.current()
			if f.Name != "" {
				m.savedFilter = &f
				m.submitted = true
			}
			return nil
		}

		switch m.focusIndex {
		case 0:
			m.nameInput, cmd = m.nameInput.Update(msg)
		case 1:
			before := m.queryInput.Value()
			m.queryInput, cmd = m.queryInput.Update(msg)
			if m.queryInput.Value() != before {
				m.refreshCount()
			}
		}
	}

	return cmd
}

// refreshCount runs the count callback for the current inputs
func (m *SaveFilterModal) refreshCount() {
	if m.countFunc == nil {
		return
	}
	n, err := m.countFunc(m.current())
	if err != nil {
		m.countError = "Search failed"
		m.matchCount = 0
		return
	}
	m.countError = ""
	m.matchCount = n
}

// updateFocus manages focus between the two input fields
func (m *SaveFilterModal) updateFocus() {
	m.nameInput.Blur()
	m.queryInput.Blur()
	if m.focusIndex == 0 {
		m.nameInput.Focus()
	} else {
		m.queryInput.Focus()
	}
}

// View renders the modal
func (m *SaveFilterModal) View() string {
	if !m.isActive {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Bold(true)
	focusedLabelStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	helpStyle := lipgloss.NewStyle().Italic(true).MarginTop(1).Foreground(ColorTextDim)

	title := "Save Template Filter"
	if m.editMode {
		title = "Edit Template Filter"
	}

	content := []string{
		StyleTitle.Render(title),
		"",
		CreateFilterBar(m.industry, m.level, ""),
		"",
	}

	labels := []string{"Name:", "Text Query (optional):"}
	inputs := []string{m.nameInput.View(), m.queryInput.View()}
	for i, label := range labels {
		if i == m.focusIndex {
			content = append(content, focusedLabelStyle.Render("▶ "+label))
		} else {
			content = append(content, labelStyle.Render(label))
		}
		content = append(content, inputs[i], "")
	}

	if m.countError != "" {
		content = append(content, StyleError.Render("✗ "+m.countError))
	} else if m.countFunc != nil {
		content = append(content, StyleTextMuted.Render(fmt.Sprintf("✓ %d matching templates", m.matchCount)))
	}

	helpText := "Tab: next field • Enter: save • Esc: cancel"
	if m.editMode {
		helpText = "Tab: next field • Enter: update • Esc: cancel"
	}
	content = append(content, helpStyle.Render(helpText))

	return StyleModal.Width(64).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}

// SetActive sets the modal active state
func (m *SaveFilterModal) SetActive(active bool) {
	m.isActive = active
	if active {
		m.submitted = false
		m.savedFilter = nil
		m.focusIndex = 0
		m.updateFocus()
		if !m.editMode {
			m.nameInput.SetValue("")
			m.queryInput.SetValue("")
		}
		m.refreshCount()
	}
}

// SetEditMode configures the modal for editing an existing filter
func (m *SaveFilterModal) SetEditMode(filter *models.SavedFilter) {
	m.editMode = true
	m.originalFilter = filter
	m.nameInput.SetValue(filter.Name)
	m.queryInput.SetValue(filter.Query)

	m.industry = catalog.AllIndustries
	if filter.Industry != "" {
		m.industry = filter.Industry
	}
	m.level = catalog.AllLevels
	if filter.ExperienceLevel != "" {
		m.level = filter.ExperienceLevel
	}
	m.refreshCount()
}

// ClearEditMode clears edit mode
func (m *SaveFilterModal) ClearEditMode() {
	m.editMode = false
	m.originalFilter = nil
	m.nameInput.SetValue("")
	m.queryInput.SetValue("")
	m.focusIndex = 0
}

func (m *SaveFilterModal) IsEditMode() bool {
	return m.editMode
}

func (m *SaveFilterModal) GetOriginalFilter() *models.SavedFilter {
	return m.originalFilter
}

func (m *SaveFilterModal) IsActive() bool {
	return m.isActive
}

func (m *SaveFilterModal) IsSubmitted() bool {
	return m.submitted
}

// GetSavedFilter returns the filter built on submit
func (m *SaveFilterModal) GetSavedFilter() *models.SavedFilter {
	return m.savedFilter
}

// Resize adjusts input widths to the terminal
func (m *SaveFilterModal) Resize(width int) {
	inputWidth := width - 16
	if inputWidth > 50 {
		inputWidth = 50
	}
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.nameInput.Width = inputWidth
	m.queryInput.Width = inputWidth
}
