package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
)

// fieldChange is reported when an input's value differs after a key press
type fieldChange struct {
	Field catalog.Field
	Value string
}

// LetterForm holds one text input per catalog field
type LetterForm struct {
	fields   []catalog.Field
	labels   []string
	inputs   []textinput.Model
	required map[catalog.Field]bool
	focused  int
	width    int
}

// NewLetterForm creates a form with an input for every field the engine knows
func NewLetterForm(engine *renderer.Engine) *LetterForm {
	fields := engine.Catalog().Fields()
	f := &LetterForm{
		fields:   fields,
		labels:   make([]string, len(fields)),
		inputs:   make([]textinput.Model, len(fields)),
		required: make(map[catalog.Field]bool, len(renderer.RequiredFields)),
		width:    40,
	}
	for _, field := range renderer.RequiredFields {
		f.required[field] = true
	}

	for i, field := range fields {
		f.labels[i] = engine.FormatFieldLabel(field)
		in := textinput.New()
		in.Placeholder = f.labels[i]
		in.CharLimit = 200
		in.Width = f.width
		in.Prompt = "› "
		f.inputs[i] = in
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// Load copies the values of form into the inputs and focuses the first field
func (f *LetterForm) Load(form models.FormData) {
	for i, field := range f.fields {
		f.inputs[i].SetValue(form.Get(field))
		f.inputs[i].CursorEnd()
		f.inputs[i].Blur()
	}
	f.focused = 0
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
}

// Update routes navigation keys and passes the rest to the focused input.
// A non-nil change means the focused field's value was edited.
func (f *LetterForm) Update(msg tea.Msg) (tea.Cmd, *fieldChange) {
	if len(f.inputs) == 0 {
		return nil, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down", "enter":
			f.nextField()
			return nil, nil
		case "shift+tab", "up":
			f.prevField()
			return nil, nil
		}
	}

	before := f.inputs[f.focused].Value()
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	after := f.inputs[f.focused].Value()
	if after == before {
		return cmd, nil
	}
	return cmd, &fieldChange{Field: f.fields[f.focused], Value: after}
}

// Resize updates the input widths for the form column
func (f *LetterForm) Resize(width int) {
	f.width = width - 4
	if f.width < 10 {
		f.width = 10
	}
	for i := range f.inputs {
		f.inputs[i].Width = f.width
	}
}

func (f *LetterForm) nextField() {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + 1) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

func (f *LetterForm) prevField() {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused - 1 + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

// FocusedField returns the field whose input has focus
func (f *LetterForm) FocusedField() catalog.Field {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focused]
}

// View renders as many fields as fit in height lines, keeping the focused
// field visible.
func (f *LetterForm) View(height int) string {
	const linesPerField = 3
	visible := height / linesPerField
	if visible < 1 {
		visible = 1
	}
	start := 0
	if f.focused >= visible {
		start = f.focused - visible + 1
	}
	end := start + visible
	if end > len(f.inputs) {
		end = len(f.inputs)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		label := f.labels[i]
		if f.required[f.fields[i]] {
			label += " *"
		}
		if i == f.focused {
			b.WriteString(StyleFormLabelFocused.Render(label))
		} else {
			b.WriteString(StyleFormLabel.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	if end < len(f.inputs) {
		b.WriteString(StyleTextDim.Render("↓ more fields"))
	}
	return b.String()
}
