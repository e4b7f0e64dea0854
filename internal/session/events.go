package session

import (
	"context"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/models"
)

// Event is an input to Dispatch.
type Event interface {
	apply(ctx context.Context, s *Session) error
}

// StartFromTemplate opens a fresh draft from a template.
type StartFromTemplate struct {
	Template *models.Template
}

// LoadLetter opens a saved letter owned by the current user.
type LoadLetter struct {
	LetterID string
}

// SetField changes one form value and re-renders the draft.
type SetField struct {
	Field catalog.Field
	Value string
}

// Save stores the draft, creating a letter or updating the open one.
type Save struct {
	Title string
}

// Reset closes the draft and returns the session to idle.
type Reset struct{}

// DuplicateLetter copies a saved letter under a " (Copy)" title.
type DuplicateLetter struct {
	LetterID string
}

// DeleteLetter removes a saved letter.
type DeleteLetter struct {
	LetterID string
}

func (e StartFromTemplate) apply(_ context.Context, s *Session) error {
	return s.StartFromTemplate(e.Template)
}

func (e LoadLetter) apply(ctx context.Context, s *Session) error {
	return s.LoadLetter(ctx, e.LetterID)
}

func (e SetField) apply(_ context.Context, s *Session) error {
	return s.SetField(e.Field, e.Value)
}

func (e Save) apply(ctx context.Context, s *Session) error {
	_, err := s.Save(ctx, e.Title)
	return err
}

func (Reset) apply(_ context.Context, s *Session) error {
	s.Reset()
	return nil
}

func (e DuplicateLetter) apply(ctx context.Context, s *Session) error {
	_, err := s.DuplicateLetter(ctx, e.LetterID)
	return err
}

func (e DeleteLetter) apply(ctx context.Context, s *Session) error {
	return s.DeleteLetter(ctx, e.LetterID)
}

// Dispatch applies ev and returns the resulting state. On error the session
// keeps its previous values.
func (s *Session) Dispatch(ctx context.Context, ev Event) (State, error) {
	err := ev.apply(ctx, s)
	return s.State(), err
}
