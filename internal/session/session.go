// Package session holds the editing state for one cover letter: the active
// template or letter, the form values and the rendered text derived from
// them. Store calls run outside the session lock; responses that arrive
// after the user has moved on are dropped.
package session

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/dpshade/coverdraft/internal/catalog"
	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/identity"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateDrafting
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrafting:
		return "drafting"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// ErrSuperseded is returned when a store response arrives after a reset or
// a newer start/load. The response is not applied.
var ErrSuperseded = stderrors.New("session: response superseded by a newer action")

// TemplateSource fetches templates by id.
type TemplateSource interface {
	Get(ctx context.Context, id string) (*models.Template, error)
}

// LetterStore is the letter persistence a Session needs.
type LetterStore interface {
	Get(ctx context.Context, id, userID string) (*models.Letter, error)
	Create(ctx context.Context, userID, templateID, title, content string) (*models.Letter, error)
	Update(ctx context.Context, id string, patch models.LetterPatch) (*models.Letter, error)
	Delete(ctx context.Context, id string) error
}

// Session is safe for concurrent use. All mutation goes through Dispatch or
// the equivalent methods.
type Session struct {
	engine    *renderer.Engine
	templates TemplateSource
	letters   LetterStore
	identity  identity.Provider
	log       *logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	state    State
	epoch    uint64
	template *models.Template
	letter   *models.Letter
	form     models.FormData
	rendered string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithClock overrides the clock used for the default date field.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates an idle session.
func New(engine *renderer.Engine, templates TemplateSource, letters LetterStore, id identity.Provider, opts ...Option) *Session {
	s := &Session{
		engine:    engine,
		templates: templates,
		letters:   letters,
		identity:  id,
		log:       logger.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartFromTemplate opens tmpl with a fresh form. The rendered text is the
// raw template body.
func (s *Session) StartFromTemplate(tmpl *models.Template) error {
	if tmpl == nil {
		return apperrors.InvalidInputError("template is required")
	}
	t := *tmpl

	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.template = &t
	s.letter = nil
	s.form = models.DefaultFormData(s.now())
	s.rendered = t.Content
	s.state = StateDrafting
	s.log.Debug("session started from template", "template", t.ID, "epoch", s.epoch)
	return nil
}

// LoadLetter opens a saved letter and its originating template. The
// rendered text is the stored body and the form starts from defaults; field
// values are not recovered from the stored text.
func (s *Session) LoadLetter(ctx context.Context, letterID string) error {
	userID, err := s.requireUser(ctx, "open a letter")
	if err != nil {
		return err
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	letter, err := s.letters.Get(ctx, letterID, userID)
	if err != nil {
		return apperrors.StorageError("load letter", err)
	}

	var tmpl *models.Template
	if letter.TemplateID != "" {
		tmpl, err = s.templates.Get(ctx, letter.TemplateID)
		if err != nil && !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return apperrors.StorageError("load template", err)
		}
		if err != nil {
			s.log.Warn("letter template no longer exists", "letter", letter.ID, "template", letter.TemplateID)
			tmpl = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.log.Debug("dropping stale letter load", "letter", letterID)
		return ErrSuperseded
	}
	s.epoch++
	s.template = tmpl
	s.letter = letter
	s.form = models.DefaultFormData(s.now())
	s.rendered = letter.Content
	s.state = StateDrafting
	return nil
}

// SetField updates one form value and re-renders from the template body.
// Edits are accepted while a save is in flight.
func (s *Session) SetField(field catalog.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return apperrors.InvalidStateError("no template or letter is open")
	}
	if !s.form.Set(field, value) {
		return apperrors.InvalidInputError("unknown field " + string(field))
	}
	if s.template != nil {
		s.rendered = s.engine.Render(s.template.Content, s.form)
	}
	return nil
}

// Save stores the rendered text. An open letter is updated in place,
// otherwise a new letter is created and becomes the open letter. The text
// saved is the rendering at the moment Save is called.
func (s *Session) Save(ctx context.Context, title string) (*models.Letter, error) {
	userID, err := s.requireUser(ctx, "save a letter")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.mu.Unlock()
		return nil, apperrors.InvalidStateError("nothing to save")
	case StateSaving:
		s.mu.Unlock()
		return nil, apperrors.InvalidStateError("a save is already in progress")
	}
	if s.letter != nil && s.letter.UserID != userID {
		s.mu.Unlock()
		return nil, apperrors.NewAppError(apperrors.ErrCodeAccessDenied, "the open letter belongs to another user")
	}

	epoch := s.epoch
	content := s.rendered
	existing := s.letter
	templateID := ""
	if s.template != nil {
		templateID = s.template.ID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = s.defaultTitle()
	}
	s.state = StateSaving
	s.mu.Unlock()

	var saved *models.Letter
	if existing != nil {
		saved, err = s.letters.Update(ctx, existing.ID, models.LetterPatch{Title: &title, Content: &content})
	} else {
		saved, err = s.letters.Create(ctx, userID, templateID, title, content)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.log.Debug("dropping stale save response", "error", err)
		if err != nil {
			return nil, apperrors.StorageError("save letter", err)
		}
		return saved, ErrSuperseded
	}
	s.state = StateDrafting
	if err != nil {
		// the open letter and template were never touched
		s.log.Warn("save failed", "error", err)
		return nil, apperrors.StorageError("save letter", err)
	}
	s.letter = saved
	s.log.Info("letter saved", "letter", saved.ID, "created", existing == nil)
	return saved, nil
}

func (s *Session) defaultTitle() string {
	if s.letter != nil && s.letter.Title != "" {
		return s.letter.Title
	}
	if s.template != nil && s.template.JobTitle != "" {
		return s.template.JobTitle + " cover letter"
	}
	return "Untitled letter"
}

// Reset closes everything and returns to Idle. Any in-flight response is
// dropped when it arrives.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = StateIdle
	s.template = nil
	s.letter = nil
	s.form = models.FormData{}
	s.rendered = ""
}

// DuplicateLetter copies a saved letter under a "(Copy)" title. The session
// itself is unchanged.
func (s *Session) DuplicateLetter(ctx context.Context, letterID string) (*models.Letter, error) {
	userID, err := s.requireUser(ctx, "duplicate a letter")
	if err != nil {
		return nil, err
	}

	src, err := s.letters.Get(ctx, letterID, userID)
	if err != nil {
		return nil, apperrors.StorageError("duplicate letter", err)
	}
	dup, err := s.letters.Create(ctx, userID, src.TemplateID, models.CopyTitle(src.Title), src.Content)
	if err != nil {
		return nil, apperrors.StorageError("duplicate letter", err)
	}
	return dup, nil
}

// DeleteLetter removes a saved letter. Deleting the open letter keeps the
// draft open; the next save creates a new letter.
func (s *Session) DeleteLetter(ctx context.Context, letterID string) error {
	userID, err := s.requireUser(ctx, "delete a letter")
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateSaving && s.letter != nil && s.letter.ID == letterID {
		s.mu.Unlock()
		return apperrors.InvalidStateError("the letter is being saved")
	}
	epoch := s.epoch
	s.mu.Unlock()

	if _, err := s.letters.Get(ctx, letterID, userID); err != nil {
		return apperrors.StorageError("delete letter", err)
	}
	if err := s.letters.Delete(ctx, letterID); err != nil {
		return apperrors.StorageError("delete letter", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch && s.letter != nil && s.letter.ID == letterID {
		s.letter = nil
	}
	return nil
}

// requireUser checks the identity before any store call is made.
func (s *Session) requireUser(ctx context.Context, operation string) (string, error) {
	if s.identity == nil {
		return "", apperrors.Unauthorized(operation)
	}
	userID, ok := s.identity.CurrentUser(ctx)
	if !ok || userID == "" {
		return "", apperrors.Unauthorized(operation)
	}
	return userID, nil
}

// Snapshot is a read-only view of a Session for presentation.
type Snapshot struct {
	State      State
	Template   *models.Template
	Letter     *models.Letter
	Form       models.FormData
	Rendered   string
	Unfilled   []string
	Validation renderer.ValidationResult
}

// Snapshot copies the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:    s.state,
		Form:     s.form,
		Rendered: s.rendered,
	}
	if s.template != nil {
		t := *s.template
		snap.Template = &t
	}
	if s.letter != nil {
		l := *s.letter
		snap.Letter = &l
	}
	snap.Unfilled = s.engine.UnfilledTokens(s.rendered)
	snap.Validation = s.engine.Validate(s.form)
	return snap
}
