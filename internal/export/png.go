package export

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	apperrors "github.com/dpshade/coverdraft/internal/errors"
)

const (
	pageMargin = 48
	lineGap    = 4
)

// PNGExporter draws each page onto its own PNG image using a fixed-width
// bitmap face, writing <name>-page-NN.png.
type PNGExporter struct {
	opts Options
}

func NewPNGExporter(opts Options) *PNGExporter {
	return &PNGExporter{opts: opts.normalized()}
}

// Export writes every page and returns the path of the first one.
func (e *PNGExporter) Export(ctx context.Context, text, filename string) (string, error) {
	paths, err := e.ExportPages(ctx, text, filename)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// ExportPages writes every page and returns all paths in page order.
func (e *PNGExporter) ExportPages(ctx context.Context, text, filename string) ([]string, error) {
	pages := Paginate(text, e.opts.Width, e.opts.LinesPerPage)
	if err := os.MkdirAll(e.opts.Dir, 0755); err != nil {
		return nil, apperrors.ExportError("failed to create export directory", err)
	}

	face := basicfont.Face7x13
	lineHeight := float64(face.Height + lineGap)
	width := pageMargin*2 + e.opts.Width*face.Advance
	height := pageMargin*2 + int(float64(e.opts.LinesPerPage)*lineHeight)

	stem := SanitizeFilename(filename)
	paths := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dc := gg.NewContext(width, height)
		dc.SetColor(color.White)
		dc.Clear()
		dc.SetFontFace(face)
		dc.SetColor(color.Black)
		for n, line := range page {
			y := float64(pageMargin) + float64(n+1)*lineHeight
			dc.DrawString(line, pageMargin, y)
		}

		path := filepath.Join(e.opts.Dir, fmt.Sprintf("%s-page-%02d.png", stem, i+1))
		if err := dc.SavePNG(path); err != nil {
			return nil, apperrors.ExportError(fmt.Sprintf("failed to write %s", path), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
