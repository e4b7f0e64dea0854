package models

import "time"

// Letter is a saved cover letter owned by one user. Content is the rendered
// text at the time of the last save.
type Letter struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TemplateID string    `json:"templateId,omitempty"` // empty when not derived from a template
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LetterPatch carries the fields of a letter update. Nil fields are left
// alone.
type LetterPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// CopyTitle is the title given to a duplicate of a letter.
func CopyTitle(title string) string {
	return title + " (Copy)"
}

// LetterItem adapts a Letter to the bubbles list.Item interface.
type LetterItem struct {
	Letter
}

func (i LetterItem) FilterValue() string {
	return cleanString(i.Letter.Title)
}

func (i LetterItem) Title() string {
	if i.Letter.Title != "" {
		return cleanString(i.Letter.Title)
	}
	return "Untitled letter"
}

func (i LetterItem) Description() string {
	return truncate(cleanString(i.Letter.Content), 60) + " • Last edited: " + i.UpdatedAt.Format("2006-01-02 15:04")
}
