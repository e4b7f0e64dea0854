package ui

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/dpshade/coverdraft/internal/clipboard"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
	"github.com/dpshade/coverdraft/internal/service"
	"github.com/dpshade/coverdraft/internal/session"
	"github.com/dpshade/coverdraft/internal/storage"
)

// createGlamourRenderer creates a glamour renderer matched to the terminal
func createGlamourRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()
	styleOption := glamour.WithAutoStyle()
	if profile == termenv.TrueColor || profile == termenv.ANSI256 {
		if darkTheme() {
			styleOption = glamour.WithStandardStyle("dark")
		} else {
			styleOption = glamour.WithStandardStyle("light")
		}
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// Commands for async operations
type templatesLoadedMsg struct {
	templates []*models.Template
	filter    string
	err       error
}

type lettersLoadedMsg struct {
	letters []*models.Letter
	err     error
}

type filtersLoadedMsg struct {
	filters []models.SavedFilter
	err     error
}

// sessionDoneMsg reports the outcome of a session event run off the UI loop
type sessionDoneMsg struct {
	op  string
	err error
}

type exportDoneMsg struct {
	path string
	err  error
}

func loadTemplatesCmd(ctx context.Context, svc *service.Service, filter storage.TemplateFilter) tea.Cmd {
	return func() tea.Msg {
		templates, err := svc.ListTemplates(ctx, filter)
		return templatesLoadedMsg{templates: templates, err: err}
	}
}

func applyFilterCmd(ctx context.Context, svc *service.Service, name string) tea.Cmd {
	return func() tea.Msg {
		templates, err := svc.ApplySavedFilter(ctx, name)
		return templatesLoadedMsg{templates: templates, filter: name, err: err}
	}
}

func loadLettersCmd(ctx context.Context, svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		letters, err := svc.ListLetters(ctx)
		return lettersLoadedMsg{letters: letters, err: err}
	}
}

func loadFiltersCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		filters, err := svc.ListSavedFilters()
		return filtersLoadedMsg{filters: filters, err: err}
	}
}

// dispatchCmd runs a session event that touches a store
func dispatchCmd(ctx context.Context, sess *session.Session, op string, ev session.Event) tea.Cmd {
	return func() tea.Msg {
		_, err := sess.Dispatch(ctx, ev)
		return sessionDoneMsg{op: op, err: err}
	}
}

func exportCmd(ctx context.Context, svc *service.Service, text, filename string, format service.ExportFormat) tea.Cmd {
	return func() tea.Msg {
		path, err := svc.Export(ctx, text, filename, format)
		return exportDoneMsg{path: path, err: err}
	}
}

// ViewMode represents the current view in the TUI
type ViewMode int

const (
	ViewTemplates ViewMode = iota
	ViewTemplateDetail
	ViewEditor
	ViewLetters
)

// Model represents the TUI application state
type Model struct {
	ctx     context.Context
	service *service.Service
	session *session.Session
	clip    *clipboard.Clipboard
	errors  *apperrors.TUIErrorHandler
	log     *logger.Logger

	viewMode ViewMode

	// UI components
	templateList list.Model
	letterList   list.Model
	viewport     viewport.Model
	preview      viewport.Model
	help         help.Model
	keys         KeyMap
	form         *LetterForm
	saveModal    *SaveLetterModal
	filterModal  *SaveFilterModal

	// Data
	templates        []*models.Template
	letters          []*models.Letter
	savedFilters     []models.SavedFilter
	selectedTemplate *models.Template
	industryIdx      int
	levelIdx         int
	activeFilter     string
	filterIdx        int
	loading          bool
	deleteConfirm    bool

	glamourRenderer *glamour.TermRenderer

	// Window dimensions
	width  int
	height int

	// Status messages
	statusMsg     string
	statusType    string
	statusTimeout int
}

// KeyMap defines all key bindings
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Back        key.Binding
	Quit        key.Binding
	Help        key.Binding
	Switch      key.Binding
	Edit        key.Binding
	Industry    key.Binding
	Level       key.Binding
	ResetFilter key.Binding
	SaveFilter  key.Binding
	NextFilter  key.Binding
	Save        key.Binding
	Copy        key.Binding
	Export      key.Binding
	ExportPNG   key.Binding
	Duplicate   key.Binding
	Delete      key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Switch, k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Switch, k.Edit, k.Industry, k.Level},
		{k.ResetFilter, k.SaveFilter, k.NextFilter},
		{k.Save, k.Copy, k.Export, k.ExportPNG},
		{k.Duplicate, k.Delete, k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Switch: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "templates/letters"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "write letter"),
	),
	Industry: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "next industry"),
	),
	Level: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "next level"),
	),
	ResetFilter: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset filters"),
	),
	SaveFilter: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save filter"),
	),
	NextFilter: key.NewBinding(
		key.WithKeys("F"),
		key.WithHelp("F", "next saved filter"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("Ctrl+s", "save letter"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y", "c"),
		key.WithHelp("Ctrl+y/c", "copy"),
	),
	Export: key.NewBinding(
		key.WithKeys("ctrl+x", "x"),
		key.WithHelp("Ctrl+x/x", "export text"),
	),
	ExportPNG: key.NewBinding(
		key.WithKeys("ctrl+p", "P"),
		key.WithHelp("Ctrl+p/P", "export PNG"),
	),
	Duplicate: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "duplicate"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, svc *service.Service, log *logger.Logger) (*Model, error) {
	initializeColors()
	if log == nil {
		log = logger.NewNop()
	}

	tl := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	tl.Title = ""
	tl.SetShowStatusBar(false)
	tl.SetFilteringEnabled(true)
	tl.SetShowHelp(false)

	ll := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	ll.Title = ""
	ll.SetShowStatusBar(false)
	ll.SetFilteringEnabled(true)
	ll.SetShowHelp(false)

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()
	pv := viewport.New(60, 20)
	pv.Style = lipgloss.NewStyle()

	glam, err := createGlamourRenderer(60)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	filterModal := NewSaveFilterModal()
	filterModal.SetCountFunc(func(f models.SavedFilter) (int, error) {
		templates, err := svc.FilterTemplates(ctx, f)
		return len(templates), err
	})

	return &Model{
		ctx:             ctx,
		service:         svc,
		session:         svc.NewSession(),
		clip:            clipboard.System,
		errors:          apperrors.NewTUIErrorHandler(false, log),
		log:             log,
		viewMode:        ViewTemplates,
		templateList:    tl,
		letterList:      ll,
		viewport:        vp,
		preview:         pv,
		help:            help.New(),
		keys:            keys,
		form:            NewLetterForm(svc.Engine()),
		saveModal:       NewSaveLetterModal(),
		filterModal:     filterModal,
		loading:         true,
		glamourRenderer: glam,
	}, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadTemplatesCmd(m.ctx, m.service, m.currentFilter()),
		loadFiltersCmd(m.service),
	)
}

// tickMsg is sent to clear the status message
type tickMsg time.Time

// clearStatusCmd returns a command that clears the status message after a delay
func clearStatusCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) setStatus(text, statusType string, seconds int) tea.Cmd {
	m.statusMsg = text
	m.statusType = statusType
	m.statusTimeout = seconds
	return clearStatusCmd()
}

// setError logs err and shows it in the status line
func (m *Model) setError(err error) tea.Cmd {
	err = m.errors.HandleError(err)
	return m.setStatus(m.errors.FormatError(err), "error", 4)
}

func (m Model) industry() string {
	return m.service.Catalog().Industries()[m.industryIdx]
}

func (m Model) level() string {
	return m.service.Catalog().ExperienceLevels()[m.levelIdx]
}

func (m Model) currentFilter() storage.TemplateFilter {
	return storage.TemplateFilter{Industry: m.industry(), ExperienceLevel: m.level()}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.statusTimeout > 0 {
			m.statusTimeout--
			if m.statusTimeout == 0 {
				m.statusMsg = ""
			} else {
				return m, clearStatusCmd()
			}
		}
		return m, nil

	case templatesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		m.templates = msg.templates
		m.activeFilter = msg.filter
		items := make([]list.Item, len(m.templates))
		for i, t := range m.templates {
			items[i] = t
		}
		m.templateList.SetItems(items)
		return m, nil

	case lettersLoadedMsg:
		if msg.err != nil {
			if apperrors.IsCode(msg.err, apperrors.ErrCodeUnauthorized) {
				m.letterList.SetItems(nil)
				return m, m.setStatus("Sign in with 'coverdraft login <user>' to see your letters", "warning", 5)
			}
			return m, m.setError(msg.err)
		}
		m.letters = msg.letters
		items := make([]list.Item, len(m.letters))
		for i, l := range m.letters {
			items[i] = models.LetterItem{Letter: *l}
		}
		m.letterList.SetItems(items)
		return m, nil

	case filtersLoadedMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		m.savedFilters = msg.filters
		return m, nil

	case sessionDoneMsg:
		return m.handleSessionDone(msg)

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		return m, m.setStatus("Exported to "+msg.path, "success", 4)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.saveModal.IsActive() {
			return m.updateSaveModal(msg)
		}
		if m.filterModal.IsActive() {
			return m.updateFilterModal(msg)
		}

		switch m.viewMode {
		case ViewTemplates:
			return m.updateTemplates(msg)
		case ViewTemplateDetail:
			return m.updateTemplateDetail(msg)
		case ViewEditor:
			return m.updateEditor(msg)
		case ViewLetters:
			return m.updateLetters(msg)
		}
	}

	return m.updateActiveComponent(msg)
}

// updateActiveComponent forwards non-key messages (cursor blink, list
// filtering) to whatever the current view shows
func (m Model) updateActiveComponent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewTemplates:
		m.templateList, cmd = m.templateList.Update(msg)
	case ViewLetters:
		m.letterList, cmd = m.letterList.Update(msg)
	case ViewTemplateDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ViewEditor:
		cmd, _ = m.form.Update(msg)
	}
	return m, cmd
}

// resize lays out every component for the current window size
func (m *Model) resize() {
	// title + filter bar + status + help
	const reserved = 6
	available := m.height - reserved
	if available < 5 {
		available = 5
	}

	m.templateList.SetSize(m.width, available)
	m.letterList.SetSize(m.width, available)

	detailWidth := m.width - 8
	if detailWidth < 40 {
		detailWidth = 40
	}
	m.viewport.Width = detailWidth
	m.viewport.Height = available
	if r, err := createGlamourRenderer(detailWidth - 4); err == nil {
		m.glamourRenderer = r
	}

	formWidth := m.width / 3
	if formWidth < 24 {
		formWidth = 24
	}
	m.form.Resize(formWidth)
	m.preview.Width = m.width - formWidth - 8
	if m.preview.Width < 20 {
		m.preview.Width = 20
	}
	m.preview.Height = available - 3
	if m.preview.Height < 3 {
		m.preview.Height = 3
	}
	m.filterModal.Resize(m.width)

	if m.viewMode == ViewTemplateDetail {
		m.renderTemplateDetail()
	}
	if m.viewMode == ViewEditor {
		m.refreshPreview()
	}
}

func (m Model) updateTemplates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.templateList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.templateList, cmd = m.templateList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Switch):
		m.viewMode = ViewLetters
		m.deleteConfirm = false
		return m, loadLettersCmd(m.ctx, m.service)
	case key.Matches(msg, m.keys.Enter):
		if t, ok := m.templateList.SelectedItem().(*models.Template); ok {
			return m.openTemplateDetail(t)
		}
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.templateList.SelectedItem().(*models.Template); ok {
			return m.openTemplate(t)
		}
		return m, nil
	case key.Matches(msg, m.keys.Industry):
		m.industryIdx = (m.industryIdx + 1) % len(m.service.Catalog().Industries())
		m.activeFilter = ""
		return m, loadTemplatesCmd(m.ctx, m.service, m.currentFilter())
	case key.Matches(msg, m.keys.Level):
		m.levelIdx = (m.levelIdx + 1) % len(m.service.Catalog().ExperienceLevels())
		m.activeFilter = ""
		return m, loadTemplatesCmd(m.ctx, m.service, m.currentFilter())
	case key.Matches(msg, m.keys.ResetFilter):
		m.industryIdx, m.levelIdx = 0, 0
		m.activeFilter = ""
		return m, loadTemplatesCmd(m.ctx, m.service, m.currentFilter())
	case key.Matches(msg, m.keys.SaveFilter):
		m.filterModal.ClearEditMode()
		m.filterModal.SetSelection(m.industry(), m.level())
		m.filterModal.SetActive(true)
		return m, nil
	case key.Matches(msg, m.keys.NextFilter):
		if len(m.savedFilters) == 0 {
			return m, m.setStatus("No saved filters", "info", 2)
		}
		f := m.savedFilters[m.filterIdx%len(m.savedFilters)]
		m.filterIdx++
		m.selectFilter(f)
		return m, applyFilterCmd(m.ctx, m.service, f.Name)
	}

	var cmd tea.Cmd
	m.templateList, cmd = m.templateList.Update(msg)
	return m, cmd
}

// selectFilter moves the industry and level cycles to a saved filter's values
func (m *Model) selectFilter(f models.SavedFilter) {
	m.industryIdx, m.levelIdx = 0, 0
	for i, v := range m.service.Catalog().Industries() {
		if v == f.Industry {
			m.industryIdx = i
		}
	}
	for i, v := range m.service.Catalog().ExperienceLevels() {
		if v == f.ExperienceLevel {
			m.levelIdx = i
		}
	}
}

func (m Model) openTemplateDetail(t *models.Template) (tea.Model, tea.Cmd) {
	full, err := m.service.GetTemplate(m.ctx, t.ID)
	if err != nil {
		return m, m.setError(err)
	}
	m.selectedTemplate = full
	m.viewMode = ViewTemplateDetail
	m.renderTemplateDetail()
	return m, nil
}

// renderTemplateDetail renders the selected template as markdown
func (m *Model) renderTemplateDetail() {
	t := m.selectedTemplate
	if t == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.JobTitle)
	fmt.Fprintf(&b, "**Industry:** %s  \n**Experience level:** %s\n\n", t.Industry, t.ExperienceLevel)
	if tokens := m.service.Engine().ExtractTokens(t.Content); len(tokens) > 0 {
		fmt.Fprintf(&b, "**Fields:** `%s`\n\n", strings.Join(tokens, "` `"))
	}
	b.WriteString("---\n\n")
	b.WriteString(t.Content)

	out, err := m.glamourRenderer.Render(b.String())
	if err != nil {
		out = b.String()
	}
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}

func (m Model) updateTemplateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.viewMode = ViewTemplates
		return m, nil
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Edit):
		if m.selectedTemplate != nil {
			return m.openTemplate(m.selectedTemplate)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// openTemplate starts a new draft from t and switches to the editor
func (m Model) openTemplate(t *models.Template) (tea.Model, tea.Cmd) {
	full := t
	if full.Content == "" {
		var err error
		if full, err = m.service.GetTemplate(m.ctx, t.ID); err != nil {
			return m, m.setError(err)
		}
	}
	if _, err := m.session.Dispatch(m.ctx, session.StartFromTemplate{Template: full}); err != nil {
		return m, m.setError(err)
	}
	m.enterEditor()
	return m, nil
}

func (m *Model) enterEditor() {
	m.viewMode = ViewEditor
	m.form.Load(m.session.Snapshot().Form)
	m.refreshPreview()
	m.preview.GotoTop()
}

// refreshPreview rebuilds the editor preview from the session snapshot
func (m *Model) refreshPreview() {
	snap := m.session.Snapshot()
	text := wordwrap.String(snap.Rendered, m.preview.Width)
	text = renderer.Highlight(text, func(token string) string {
		return StyleTokenUnfilled.Render(token)
	})
	m.preview.SetContent(text)
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if _, err := m.session.Dispatch(m.ctx, session.Reset{}); err != nil {
			return m, m.setError(err)
		}
		m.viewMode = ViewTemplates
		return m, nil
	case key.Matches(msg, m.keys.Save):
		snap := m.session.Snapshot()
		title := ""
		if snap.Letter != nil {
			title = snap.Letter.Title
		}
		m.saveModal.Open(title, snap.Letter != nil)
		return m, nil
	case msg.String() == "ctrl+y":
		return m.copyText(m.session.Snapshot().Rendered)
	case msg.String() == "ctrl+x":
		return m, m.exportDraft(service.FormatText)
	case msg.String() == "ctrl+p":
		return m, m.exportDraft(service.FormatPNG)
	case msg.String() == "pgdown":
		m.preview.HalfViewDown()
		return m, nil
	case msg.String() == "pgup":
		m.preview.HalfViewUp()
		return m, nil
	}

	cmd, change := m.form.Update(msg)
	if change != nil {
		if _, err := m.session.Dispatch(m.ctx, session.SetField{Field: change.Field, Value: change.Value}); err != nil {
			return m, tea.Batch(cmd, m.setError(err))
		}
		m.refreshPreview()
	}
	return m, cmd
}

// draftFilename names an export after the open letter or template
func (m Model) draftFilename() string {
	snap := m.session.Snapshot()
	switch {
	case snap.Letter != nil && snap.Letter.Title != "":
		return snap.Letter.Title
	case snap.Template != nil:
		return snap.Template.JobTitle + " cover letter"
	}
	return "letter"
}

func (m Model) exportDraft(format service.ExportFormat) tea.Cmd {
	return exportCmd(m.ctx, m.service, m.session.Snapshot().Rendered, m.draftFilename(), format)
}

func (m Model) copyText(text string) (tea.Model, tea.Cmd) {
	status, err := m.clip.CopyWithFallback(text)
	if err != nil {
		var clipErr *clipboard.ClipboardError
		if stderrors.As(err, &clipErr) {
			return m, m.setStatus(clipErr.Error(), "warning", 5)
		}
		return m, m.setError(err)
	}
	return m, m.setStatus(status, "success", 2)
}

func (m Model) updateSaveModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.saveModal.Update(msg)
	switch {
	case m.saveModal.IsSubmitted():
		title := m.saveModal.Title()
		m.saveModal.Consume()
		return m, tea.Batch(
			m.setStatus("Saving...", "info", 10),
			dispatchCmd(m.ctx, m.session, "save", session.Save{Title: title}),
		)
	case m.saveModal.IsCancelled():
		m.saveModal.Consume()
	}
	return m, cmd
}

func (m Model) updateFilterModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.filterModal.Update(msg)
	if !m.filterModal.IsSubmitted() {
		return m, cmd
	}

	f := m.filterModal.GetSavedFilter()
	editing := m.filterModal.IsEditMode()
	m.filterModal.SetActive(false)
	m.filterModal.ClearEditMode()
	if f == nil {
		return m, nil
	}
	if err := m.service.SaveFilter(*f); err != nil {
		return m, m.setError(err)
	}
	verb := "saved"
	if editing {
		verb = "updated"
	}
	m.activeFilter = f.Name
	return m, tea.Batch(
		m.setStatus(fmt.Sprintf("Filter '%s' %s", f.Name, verb), "success", 3),
		loadFiltersCmd(m.service),
		applyFilterCmd(m.ctx, m.service, f.Name),
	)
}

func (m Model) handleSessionDone(msg sessionDoneMsg) (tea.Model, tea.Cmd) {
	if stderrors.Is(msg.err, session.ErrSuperseded) {
		m.log.Debug("ignoring superseded session result", "op", msg.op)
		return m, nil
	}
	if msg.err != nil {
		return m, m.setError(msg.err)
	}

	switch msg.op {
	case "save":
		snap := m.session.Snapshot()
		title := "letter"
		if snap.Letter != nil {
			title = snap.Letter.Title
		}
		return m, m.setStatus(fmt.Sprintf("Saved '%s'", title), "success", 3)
	case "load":
		m.enterEditor()
		return m, nil
	case "duplicate":
		return m, tea.Batch(m.setStatus("Letter duplicated", "success", 2), loadLettersCmd(m.ctx, m.service))
	case "delete":
		return m, tea.Batch(m.setStatus("Letter deleted", "success", 2), loadLettersCmd(m.ctx, m.service))
	}
	return m, nil
}

func (m Model) updateLetters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.letterList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.letterList, cmd = m.letterList.Update(msg)
		return m, cmd
	}

	item, hasItem := m.letterList.SelectedItem().(models.LetterItem)

	if m.deleteConfirm {
		m.deleteConfirm = false
		if msg.String() == "y" && hasItem {
			return m, dispatchCmd(m.ctx, m.session, "delete", session.DeleteLetter{LetterID: item.ID})
		}
		return m, m.setStatus("Delete cancelled", "info", 2)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Switch), key.Matches(msg, m.keys.Back):
		m.viewMode = ViewTemplates
		return m, nil
	}
	if !hasItem {
		var cmd tea.Cmd
		m.letterList, cmd = m.letterList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Enter):
		return m, dispatchCmd(m.ctx, m.session, "load", session.LoadLetter{LetterID: item.ID})
	case key.Matches(msg, m.keys.Copy):
		return m.copyText(item.Content)
	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.ctx, m.service, item.Content, item.Letter.Title, service.FormatText)
	case key.Matches(msg, m.keys.ExportPNG):
		return m, exportCmd(m.ctx, m.service, item.Content, item.Letter.Title, service.FormatPNG)
	case key.Matches(msg, m.keys.Duplicate):
		return m, dispatchCmd(m.ctx, m.session, "duplicate", session.DuplicateLetter{LetterID: item.ID})
	case key.Matches(msg, m.keys.Delete):
		m.deleteConfirm = true
		return m, m.setStatus(fmt.Sprintf("Delete '%s'? (y/n)", item.Title()), "warning", 10)
	}

	var cmd tea.Cmd
	m.letterList, cmd = m.letterList.Update(msg)
	return m, cmd
}

// View renders the current view
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	switch m.viewMode {
	case ViewTemplates:
		body = m.renderTemplatesView()
	case ViewTemplateDetail:
		body = m.renderTemplateDetailView()
	case ViewEditor:
		body = m.renderEditorView()
	case ViewLetters:
		body = m.renderLettersView()
	}

	if m.statusMsg != "" {
		body += "\n" + CreateStatus(m.statusMsg, m.statusType)
	}
	screen := AddMainPadding(body)

	switch {
	case m.saveModal.IsActive():
		return CenterModal(m.saveModal.View(), m.width, m.height)
	case m.filterModal.IsActive():
		return CenterModal(m.filterModal.View(), m.width, m.height)
	}
	return screen
}

func (m Model) renderTemplatesView() string {
	header := CreateHeader(fmt.Sprintf("Coverdraft · Templates (%d)", len(m.templates)))
	filters := CreateFilterBar(m.industry(), m.level(), m.activeFilter)

	content := m.templateList.View()
	if m.loading {
		content = StyleTextMuted.Render("Loading templates...")
	} else if len(m.templates) == 0 {
		content = StyleTextMuted.Render("No templates match. Press r to reset filters or run 'coverdraft init'.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, filters, "", content, m.help.View(m.keys))
}

func (m Model) renderTemplateDetailView() string {
	title := "Template"
	if m.selectedTemplate != nil {
		title = m.selectedTemplate.JobTitle
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		CreateHeader(title),
		m.viewport.View(),
		CreateContextualHelp([]string{"Enter/e: write letter", "↑/↓: scroll", "Esc: back"}, m.width),
	)
}

func (m Model) renderEditorView() string {
	snap := m.session.Snapshot()

	title := "New letter"
	switch {
	case snap.Letter != nil:
		title = snap.Letter.Title
	case snap.Template != nil:
		title = snap.Template.JobTitle
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		CreateHeader(title),
		CreateMetadata(snap.State.String()),
		CreateRemainingBadge(len(snap.Unfilled)),
	)

	missing := make([]string, 0, len(snap.Validation.MissingFields))
	for _, f := range snap.Validation.MissingFields {
		missing = append(missing, m.service.Engine().FormatFieldLabel(f))
	}

	formHeight := m.preview.Height + 2
	left := lipgloss.NewStyle().Width(m.form.width + 4).Render(m.form.View(formHeight))
	right := StyleContentContainer.Render(m.preview.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	parts := []string{header}
	if banner := CreateValidationBanner(missing); banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, body, CreateContextualHelp([]string{
		"Tab/↓: next field", "Ctrl+s: save", "Ctrl+y: copy", "Ctrl+x: export", "Ctrl+p: PNG", "PgUp/PgDn: scroll", "Esc: close",
	}, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderLettersView() string {
	user, ok := m.service.WhoAmI(m.ctx)
	who := "not signed in"
	if ok {
		who = "signed in as " + user
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		CreateHeader(fmt.Sprintf("My Letters (%d)", len(m.letters))),
		CreateMetadata(who),
	)

	content := m.letterList.View()
	if len(m.letters) == 0 {
		content = StyleTextMuted.Render("No saved letters yet. Open a template and press Ctrl+s to save one.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", content, CreateContextualHelp([]string{
		"Enter: open", "c: copy", "x: export", "P: PNG", "p: duplicate", "d: delete", "Tab: templates", "q: quit",
	}, m.width))
}
