// Package catalog holds the placeholder token registry and the template
// category enumerations. A Catalog is immutable once built; construct it at
// start-up and pass it to whatever needs it.
package catalog

import (
	"fmt"
	"strings"
)

// Field identifies a form field, e.g. "fullName".
type Field string

// Field identifiers used by the default catalog.
const (
	FieldFullName          Field = "fullName"
	FieldYourAddress       Field = "yourAddress"
	FieldCityStateZip      Field = "cityStateZip"
	FieldEmailAddress      Field = "emailAddress"
	FieldPhoneNumber       Field = "phoneNumber"
	FieldDate              Field = "date"
	FieldHiringManagerName Field = "hiringManagerName"
	FieldCompanyName       Field = "companyName"
	FieldCompanyAddress    Field = "companyAddress"
	FieldJobTitle          Field = "jobTitle"
	FieldYearsOfExperience Field = "yearsOfExperience"
	FieldKeySkills         Field = "keySkills"
	FieldPreviousCompany   Field = "previousCompany"
)

// Category sentinels that disable a filter.
const (
	AllIndustries = "All Industries"
	AllLevels     = "All Levels"
)

// Entry maps one bracketed token to its form field.
type Entry struct {
	Token string `json:"token" yaml:"token"`
	Field Field  `json:"field" yaml:"field"`
}

// Catalog is the immutable token registry.
type Catalog struct {
	entries    []Entry
	byToken    map[string]Field
	byField    map[Field]string
	industries []string
	levels     []string
}

// New validates entries and builds a Catalog. Tokens must be of the form
// "[label]" with no brackets inside the label, tokens and fields must both be
// unique, and no token may occur inside another.
func New(entries []Entry, industries, levels []string) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byToken: make(map[string]Field, len(entries)),
		byField: make(map[Field]string, len(entries)),
	}

	for _, e := range entries {
		if err := checkToken(e.Token); err != nil {
			return nil, err
		}
		if e.Field == "" {
			return nil, fmt.Errorf("token %s has no field", e.Token)
		}
		if _, dup := c.byToken[e.Token]; dup {
			return nil, fmt.Errorf("duplicate token %s", e.Token)
		}
		if other, dup := c.byField[e.Field]; dup {
			return nil, fmt.Errorf("field %s is mapped by both %s and %s", e.Field, other, e.Token)
		}
		c.byToken[e.Token] = e.Field
		c.byField[e.Field] = e.Token
		c.entries = append(c.entries, e)
	}

	for i, a := range c.entries {
		for j, b := range c.entries {
			if i != j && strings.Contains(a.Token, b.Token) {
				return nil, fmt.Errorf("token %s overlaps %s", b.Token, a.Token)
			}
		}
	}

	c.industries = withSentinel(AllIndustries, industries)
	c.levels = withSentinel(AllLevels, levels)
	return c, nil
}

func checkToken(token string) error {
	if len(token) < 3 || token[0] != '[' || token[len(token)-1] != ']' {
		return fmt.Errorf("token %q must be a non-empty label wrapped in square brackets", token)
	}
	if strings.ContainsAny(token[1:len(token)-1], "[]") {
		return fmt.Errorf("token %q must not contain brackets inside its label", token)
	}
	return nil
}

func withSentinel(sentinel string, values []string) []string {
	out := []string{sentinel}
	seen := map[string]bool{sentinel: true}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Entries returns the token→field entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Fields returns every field identifier in catalog order.
func (c *Catalog) Fields() []Field {
	out := make([]Field, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Field
	}
	return out
}

// FieldForToken looks up the field a token stands for.
func (c *Catalog) FieldForToken(token string) (Field, bool) {
	f, ok := c.byToken[token]
	return f, ok
}

// TokenForField looks up the token for a field.
func (c *Catalog) TokenForField(field Field) (string, bool) {
	t, ok := c.byField[field]
	return t, ok
}

// HasField reports whether field belongs to the catalog.
func (c *Catalog) HasField(field Field) bool {
	_, ok := c.byField[field]
	return ok
}

// Industries returns the industry labels, "All Industries" first.
func (c *Catalog) Industries() []string {
	return append([]string(nil), c.industries...)
}

// ExperienceLevels returns the experience level labels, "All Levels" first.
func (c *Catalog) ExperienceLevels() []string {
	return append([]string(nil), c.levels...)
}

// IsAllIndustries reports whether v disables the industry filter.
func IsAllIndustries(v string) bool {
	return v == "" || v == AllIndustries
}

// IsAllLevels reports whether v disables the experience level filter.
func IsAllLevels(v string) bool {
	return v == "" || v == AllLevels
}

// ValidIndustry reports whether v is a known industry label or the sentinel.
func (c *Catalog) ValidIndustry(v string) bool {
	return contains(c.industries, v)
}

// ValidExperienceLevel reports whether v is a known level label or the sentinel.
func (c *Catalog) ValidExperienceLevel(v string) bool {
	return contains(c.levels, v)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
