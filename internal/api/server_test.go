package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/export"
	"github.com/dpshade/coverdraft/internal/identity"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/service"
	"github.com/dpshade/coverdraft/internal/storage"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewTest(t)

	templates, err := storage.NewTemplateStore(dir, log)
	require.NoError(t, err)
	letters, err := storage.OpenLetterStore(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = letters.Close() })

	svc := service.NewWithDeps(service.Deps{
		Catalog:   catalog.Default(),
		Templates: templates,
		Letters:   letters,
		Identity:  identity.FromContext{},
		Export:    export.Options{Dir: filepath.Join(dir, "exports")},
		Log:       log,
	})
	_, err = svc.InitLibrary(context.Background())
	require.NoError(t, err)

	return NewAPIServer(svc, 0, "test", log).Handler()
}

func do(t *testing.T, h http.Handler, method, path, user, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestHealthAndCatalog(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"healthy"`)

	rec, env = do(t, h, http.MethodGet, "/api/v1/catalog", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cat catalogResponse
	require.NoError(t, json.Unmarshal(env.Data, &cat))
	assert.Len(t, cat.Tokens, 13)
	assert.Contains(t, cat.Industries, catalog.AllIndustries)
	assert.Contains(t, cat.RequiredFields, catalog.FieldFullName)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTemplatesEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/templates?industry=Technology", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var templates []models.Template
	require.NoError(t, json.Unmarshal(env.Data, &templates))
	assert.Len(t, templates, 2)

	rec, env = do(t, h, http.MethodGet, "/api/v1/templates?industry=Mining", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/templates/registered-nurse", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tmpl models.Template
	require.NoError(t, json.Unmarshal(env.Data, &tmpl))
	assert.Equal(t, "Registered Nurse", tmpl.JobTitle)
	assert.Contains(t, tmpl.Content, "[Full Name]")

	rec, env = do(t, h, http.MethodGet, "/api/v1/templates/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/search?q=nurse", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &templates))
	require.NotEmpty(t, templates)
	assert.Equal(t, "registered-nurse", templates[0].ID)
}

func TestRenderEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/render", "",
		`{"templateId":"financial-analyst","fields":{"fullName":"Jane Doe","companyName":"Acme"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Content        string   `json:"content"`
		UnfilledTokens []string `json:"unfilledTokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Contains(t, result.Content, "Jane Doe")
	assert.NotContains(t, result.Content, "[Company Name]")
	assert.Contains(t, result.UnfilledTokens, "[Job Title]")

	rec, _ = do(t, h, http.MethodPost, "/api/v1/render", "",
		`{"templateId":"financial-analyst","fields":{"shoeSize":"9"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLettersEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/letters", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/letters", "u1",
		`{"templateId":"registered-nurse","title":"St. Mary's","fields":{"fullName":"Jane Doe"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var letter models.Letter
	require.NoError(t, json.Unmarshal(env.Data, &letter))
	assert.Equal(t, "u1", letter.UserID)
	assert.Equal(t, "St. Mary's", letter.Title)
	assert.Contains(t, letter.Content, "Jane Doe")

	path := "/api/v1/letters/" + letter.ID

	rec, _ = do(t, h, http.MethodGet, path, "u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, h, http.MethodPut, path, "u1", `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &letter))
	assert.Equal(t, "Renamed", letter.Title)

	rec, _ = do(t, h, http.MethodPut, path, "u1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, h, http.MethodPost, path+"/duplicate", "u1", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dup models.Letter
	require.NoError(t, json.Unmarshal(env.Data, &dup))
	assert.Equal(t, "Renamed (Copy)", dup.Title)

	rec, env = do(t, h, http.MethodPost, path+"/export?format=txt", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), "renamed.txt")

	rec, env = do(t, h, http.MethodGet, "/api/v1/letters", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var letters []models.Letter
	require.NoError(t, json.Unmarshal(env.Data, &letters))
	assert.Len(t, letters, 2)

	rec, _ = do(t, h, http.MethodDelete, path, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodGet, path, "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, path+"/bogus", "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFiltersEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/filters", "",
		`{"name":"health","industry":"Healthcare"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := do(t, h, http.MethodGet, "/api/v1/filters/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var templates []models.Template
	require.NoError(t, json.Unmarshal(env.Data, &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, "registered-nurse", templates[0].ID)

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/filters/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodDelete, "/api/v1/filters/health", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	h := newTestServer(t)

	rec, _ := do(t, h, http.MethodGet, "/api/openapi.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	paths := doc["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/api/v1/letters/{id}/duplicate")
}

func TestLettersEndpoints_IgnoreLocalSignIn(t *testing.T) {
	dir := t.TempDir()
	log := logger.NewTest(t)
	ctx := context.Background()

	templates, err := storage.NewTemplateStore(dir, log)
	require.NoError(t, err)
	letters, err := storage.OpenLetterStore(ctx, ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = letters.Close() })

	accounts := identity.NewFileProvider(dir)
	svc := service.NewWithDeps(service.Deps{
		Catalog:   catalog.Default(),
		Templates: templates,
		Letters:   letters,
		Identity:  identity.Chain{identity.FromContext{}, accounts},
		Accounts:  accounts,
		Export:    export.Options{Dir: filepath.Join(dir, "exports")},
		Log:       log,
	})
	_, err = svc.InitLibrary(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SignIn("alice"))

	saved, err := svc.SaveLetter(ctx, "registered-nurse", "Nurse", models.FormData{})
	require.NoError(t, err)
	require.Equal(t, "alice", saved.UserID)

	h := NewAPIServer(svc, 0, "test", log).Handler()
	path := "/api/v1/letters/" + saved.ID

	rec, resp := do(t, h, http.MethodGet, "/api/v1/letters", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	rec, _ = do(t, h, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, path, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodGet, path, "alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
