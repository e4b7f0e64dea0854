// Package renderer substitutes form values into cover letter templates and
// reports which bracketed tokens remain.
package renderer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/models"
)

// tokenPattern matches any bracketed substring, not only catalog tokens.
var tokenPattern = regexp.MustCompile(`\[[^\]]*\]`)

// RequiredFields are the fields Validate insists on, in report order.
var RequiredFields = []catalog.Field{
	catalog.FieldFullName,
	catalog.FieldEmailAddress,
	catalog.FieldPhoneNumber,
	catalog.FieldHiringManagerName,
	catalog.FieldCompanyName,
}

// Engine renders templates against one catalog. It is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	pattern *regexp.Regexp
}

// NewEngine compiles the catalog tokens into a single literal alternation.
// Longer tokens come first so a token that is a prefix of another can never
// win a match against it.
func NewEngine(cat *catalog.Catalog) *Engine {
	e := &Engine{catalog: cat}

	entries := cat.Entries()
	if len(entries) == 0 {
		return e
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Token) > len(entries[j].Token)
	})
	quoted := make([]string, len(entries))
	for i, entry := range entries {
		quoted[i] = regexp.QuoteMeta(entry.Token)
	}
	e.pattern = regexp.MustCompile(strings.Join(quoted, "|"))
	return e
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Render replaces every occurrence of each catalog token with its form
// value. Tokens whose value is empty stay in place. Substituted values are
// never scanned again.
func (e *Engine) Render(template string, form models.FormData) string {
	if e.pattern == nil {
		return template
	}
	return e.pattern.ReplaceAllStringFunc(template, func(token string) string {
		field, ok := e.catalog.FieldForToken(token)
		if !ok {
			return token
		}
		if v := form.Get(field); v != "" {
			return v
		}
		return token
	})
}

// ExtractTokens returns each distinct bracketed substring of text once, in
// the order first seen.
func (e *Engine) ExtractTokens(text string) []string {
	return ExtractTokens(text)
}

// UnfilledTokens reports the bracketed substrings still present in rendered
// text. Anything that looks like a token counts, including text the user
// typed with brackets in it.
func (e *Engine) UnfilledTokens(text string) []string {
	return ExtractTokens(text)
}

// ExtractTokens is the catalog-free form of Engine.ExtractTokens.
func ExtractTokens(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		tokens = append(tokens, m)
	}
	return tokens
}

// FormatFieldLabel turns a camel-case field identifier into a display label,
// e.g. "yourAddress" becomes "Your Address".
func (e *Engine) FormatFieldLabel(field catalog.Field) string {
	return FormatFieldLabel(string(field))
}

// FormatFieldLabel is the catalog-free form of Engine.FormatFieldLabel.
func FormatFieldLabel(field string) string {
	runes := []rune(field)
	var b strings.Builder
	for i, r := range runes {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidationResult lists the required fields that are still blank.
type ValidationResult struct {
	IsValid       bool            `json:"isValid"`
	MissingFields []catalog.Field `json:"missingFields"`
}

// Validate checks the required fields for non-blank values.
func (e *Engine) Validate(form models.FormData) ValidationResult {
	return Validate(form)
}

// Validate is the catalog-free form of Engine.Validate.
func Validate(form models.FormData) ValidationResult {
	missing := []catalog.Field{}
	for _, field := range RequiredFields {
		if strings.TrimSpace(form.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	return ValidationResult{
		IsValid:       len(missing) == 0,
		MissingFields: missing,
	}
}

// Highlight rewrites every bracketed token in text through decorate. The TUI
// uses it to colour the tokens that still need input.
func Highlight(text string, decorate func(token string) string) string {
	return tokenPattern.ReplaceAllStringFunc(text, decorate)
}

// Result is a rendered template together with its remaining tokens.
type Result struct {
	Content        string           `json:"content"`
	UnfilledTokens []string         `json:"unfilledTokens"`
	Validation     ValidationResult `json:"validation"`
}

// Evaluate renders template and collects the unfilled tokens and validation.
func (e *Engine) Evaluate(template string, form models.FormData) Result {
	content := e.Render(template, form)
	return Result{
		Content:        content,
		UnfilledTokens: e.UnfilledTokens(content),
		Validation:     e.Validate(form),
	}
}

// RenderJSON renders template and marshals the Result as indented JSON.
func (e *Engine) RenderJSON(template string, form models.FormData) (string, error) {
	jsonBytes, err := json.MarshalIndent(e.Evaluate(template, form), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(jsonBytes), nil
}
