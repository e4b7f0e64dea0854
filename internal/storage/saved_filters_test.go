package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/models"
)

func TestSavedFiltersStorage(t *testing.T) {
	s := NewSavedFiltersStorage(t.TempDir())

	filters, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, filters)

	require.NoError(t, s.Save(models.SavedFilter{Name: "senior tech", Industry: "Technology", ExperienceLevel: "Senior Level"}))
	require.NoError(t, s.Save(models.SavedFilter{Name: "nursing", Industry: "Healthcare", Query: "nurse"}))

	got, err := s.Get("senior tech")
	require.NoError(t, err)
	assert.Equal(t, "Technology", got.Industry)
	created := got.CreatedAt
	assert.NotEmpty(t, created)

	require.NoError(t, s.Save(models.SavedFilter{Name: "senior tech", Industry: "Finance"}))
	got, err = s.Get("senior tech")
	require.NoError(t, err)
	assert.Equal(t, "Finance", got.Industry)
	assert.Equal(t, created, got.CreatedAt)

	filters, err = s.List()
	require.NoError(t, err)
	assert.Len(t, filters, 2)

	require.NoError(t, s.Delete("nursing"))
	err = s.Delete("nursing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

	err = s.Save(models.SavedFilter{Name: "  "})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingField))
}

func TestSavedFilterString(t *testing.T) {
	assert.Equal(t, "all templates", models.SavedFilter{Name: "x"}.String())
	assert.Equal(t, `Technology · "go"`, models.SavedFilter{Industry: "Technology", Query: "go"}.String())
}
