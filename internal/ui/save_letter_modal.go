package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SaveLetterModal asks for the title a letter is saved under. An empty title
// is allowed; the session then picks a default.
type SaveLetterModal struct {
	titleInput textinput.Model
	isActive   bool
	submitted  bool
	cancelled  bool
	updating   bool
}

func NewSaveLetterModal() *SaveLetterModal {
	in := textinput.New()
	in.Placeholder = "Letter title (optional)"
	in.CharLimit = 120
	in.Width = 50
	return &SaveLetterModal{titleInput: in}
}

// Open shows the modal prefilled with title. updating marks a save over an
// existing letter.
func (m *SaveLetterModal) Open(title string, updating bool) {
	m.isActive = true
	m.submitted = false
	m.cancelled = false
	m.updating = updating
	m.titleInput.SetValue(title)
	m.titleInput.CursorEnd()
	m.titleInput.Focus()
}

func (m *SaveLetterModal) Update(msg tea.Msg) tea.Cmd {
	if !m.isActive {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.isActive = false
			m.cancelled = true
			return nil
		case "enter":
			m.isActive = false
			m.submitted = true
			return nil
		}
	}
	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return cmd
}

// Title returns the entered title without surrounding whitespace
func (m *SaveLetterModal) Title() string {
	return strings.TrimSpace(m.titleInput.Value())
}

func (m *SaveLetterModal) IsActive() bool    { return m.isActive }
func (m *SaveLetterModal) IsSubmitted() bool { return m.submitted }
func (m *SaveLetterModal) IsCancelled() bool { return m.cancelled }

// Consume clears the submitted/cancelled flags once the caller has acted
func (m *SaveLetterModal) Consume() {
	m.submitted = false
	m.cancelled = false
}

func (m *SaveLetterModal) View() string {
	if !m.isActive {
		return ""
	}
	title := "Save Letter"
	if m.updating {
		title = "Update Letter"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		StyleTitle.Render(title),
		"",
		StyleFormLabel.Render("Title:"),
		m.titleInput.View(),
		"",
		StyleTextDim.Italic(true).Render("Enter: save • Esc: cancel"),
	)
	return StyleModal.Width(60).Render(content)
}
