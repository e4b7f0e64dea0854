package export

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	t.Run("wraps on words", func(t *testing.T) {
		pages := Paginate("the quick brown fox jumps over the lazy dog", 10, 100)
		require.Len(t, pages, 1)
		for _, line := range pages[0] {
			assert.LessOrEqual(t, len(line), 10, line)
		}
		assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(pages[0], " "))
	})

	t.Run("breaks long words", func(t *testing.T) {
		pages := Paginate(strings.Repeat("x", 25), 10, 100)
		assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, pages[0])
	})

	t.Run("keeps blank lines and splits pages", func(t *testing.T) {
		pages := Paginate("a\n\nb\nc\nd\n\n\n", 80, 2)
		assert.Equal(t, [][]string{{"a", ""}, {"b", "c"}, {"d"}}, pages)
	})

	t.Run("empty text has one page", func(t *testing.T) {
		assert.Equal(t, [][]string{{}}, Paginate("", 80, 10))
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "acme-cover-letter", SanitizeFilename("Acme Cover Letter"))
	assert.Equal(t, "report", SanitizeFilename("report.txt"))
	assert.Equal(t, "letter", SanitizeFilename("///"))
	assert.Equal(t, "etc-passwd", SanitizeFilename("../etc/passwd"))
}

func TestTextExporter(t *testing.T) {
	dir := t.TempDir()
	e := NewTextExporter(Options{Dir: dir, Width: 20, LinesPerPage: 2})

	path, err := e.Export(context.Background(), "one\ntwo\nthree", "My Letter")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "my-letter.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n\f\nthree\n", string(data))
}

func TestPNGExporter(t *testing.T) {
	dir := t.TempDir()
	e := NewPNGExporter(Options{Dir: dir, Width: 30, LinesPerPage: 3})

	paths, err := e.ExportPages(context.Background(), "Dear Smith,\n\nI am writing to apply.\nThanks\nJane", "acme")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "acme-page-01.png"), paths[0])
	assert.Equal(t, filepath.Join(dir, "acme-page-02.png"), paths[1])

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2*pageMargin+30*7, img.Bounds().Dx())

	first, err := e.Export(context.Background(), "short", "solo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "solo-page-01.png"), first)
}

func TestExport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextExporter(Options{Dir: t.TempDir()}).Export(ctx, "x", "y")
	assert.ErrorIs(t, err, context.Canceled)
}
