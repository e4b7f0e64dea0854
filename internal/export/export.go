// Package export turns rendered letters into paginated files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	apperrors "github.com/dpshade/coverdraft/internal/errors"
)

// Exporter writes text to a document named after filename and returns the
// path it wrote.
type Exporter interface {
	Export(ctx context.Context, text, filename string) (string, error)
}

// Options controls page geometry, in characters and lines.
type Options struct {
	Dir          string
	Width        int
	LinesPerPage int
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.LinesPerPage <= 0 {
		o.LinesPerPage = 54
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	return o
}

// Paginate word-wraps text to width and splits it into pages. Words longer
// than width are broken. There is always at least one page.
func Paginate(text string, width, linesPerPage int) [][]string {
	if width <= 0 {
		width = 80
	}
	if linesPerPage <= 0 {
		linesPerPage = 54
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			lines = append(lines, "")
			continue
		}
		wrapped := wrap.String(wordwrap.String(line, width), width)
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, strings.TrimRight(l, " "))
		}
	}

	// drop trailing blank lines so they do not spill onto an empty page
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	pages := [][]string{}
	for start := 0; start < len(lines); start += linesPerPage {
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	if len(pages) == 0 {
		pages = append(pages, []string{})
	}
	return pages
}

var unsafeName = regexp.MustCompile(`[^a-z0-9._-]+`)

// SanitizeFilename makes a lower-case file stem safe for any filesystem.
func SanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if ext := filepath.Ext(name); len(ext) > 1 && len(ext) <= 5 && !strings.ContainsAny(ext, ` /\`) {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.Trim(unsafeName.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		return "letter"
	}
	return name
}

// TextExporter writes a plain text file with pages separated by form feeds.
type TextExporter struct {
	opts Options
}

func NewTextExporter(opts Options) *TextExporter {
	return &TextExporter{opts: opts.normalized()}
}

func (e *TextExporter) Export(ctx context.Context, text, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pages := Paginate(text, e.opts.Width, e.opts.LinesPerPage)

	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\f\n")
		}
		for _, line := range page {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if err := os.MkdirAll(e.opts.Dir, 0755); err != nil {
		return "", apperrors.ExportError("failed to create export directory", err)
	}
	path := filepath.Join(e.opts.Dir, SanitizeFilename(filename)+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", apperrors.ExportError(fmt.Sprintf("failed to write %s", path), err)
	}
	return path, nil
}
