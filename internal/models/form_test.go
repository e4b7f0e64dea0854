package models

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/coverdraft/internal/catalog"
)

func TestDefaultFormData(t *testing.T) {
	f := DefaultFormData(time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, "March 5, 2024", f.Date)
	for field, v := range f.Values() {
		if field != catalog.FieldDate {
			assert.Empty(t, v, field)
		}
	}
}

func TestFormData_GetSet(t *testing.T) {
	var f FormData
	require.True(t, f.Set(catalog.FieldCompanyName, "Acme"))
	assert.Equal(t, "Acme", f.CompanyName)
	assert.Equal(t, "Acme", f.Get(catalog.FieldCompanyName))

	assert.False(t, f.Set("favoriteColor", "blue"))
	assert.Empty(t, f.Get("favoriteColor"))
}

func TestFormData_CoversDefaultCatalog(t *testing.T) {
	var f FormData
	for _, field := range catalog.Default().Fields() {
		assert.True(t, f.Set(field, "x"), field)
	}
	assert.Len(t, AllFields(), len(catalog.Default().Fields()))
}

func TestFormDataFromMap(t *testing.T) {
	f, unknown := FormDataFromMap(map[string]string{
		"fullName": "Jane Doe",
		"bogus":    "1",
		"other":    "2",
	})
	sort.Strings(unknown)

	assert.Equal(t, "Jane Doe", f.FullName)
	assert.Equal(t, []string{"bogus", "other"}, unknown)
}
