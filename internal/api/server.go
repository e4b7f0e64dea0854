// Package api provides the RESTful HTTP API server for coverdraft.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the HTTP interface layer. It exposes the template
// library, the substitution engine and the letter store over JSON, using the
// same service layer as the CLI and TUI.
//
// KEY RESPONSIBILITIES:
// - Expose template browsing, rendering and letter management via REST endpoints
// - Implement the middleware stack (identity, CORS, logging, recovery)
// - Validate every request against a named schema before it reaches the service
// - Standardize API responses with a consistent JSON envelope
//
// INTEGRATION POINTS:
// - internal/service/service.go: all business logic
// - internal/errors/handlers.go: HTTPErrorHandler formats error responses
// - internal/validation/middleware.go: RequestValidator checks request data
// - internal/identity: X-User-ID header becomes the request identity
// - internal/api/openapi.go: OpenAPI spec at /api/openapi.json, docs at /api/docs
//
// MIDDLEWARE STACK:
// - Logging: request logging with timing information through zap
// - CORS: cross-origin resource sharing for browser clients
// - Content-Type: JSON content type on every response
// - Recovery: panic recovery with a standardized error response
// - Identity: the X-User-ID header is attached to the request context
//
// ENDPOINT STRUCTURE:
// - /api/v1/health: system health monitoring
// - /api/v1/catalog: tokens, industries and experience levels
// - /api/v1/templates, /api/v1/templates/{id}, /api/v1/search: template library
// - /api/v1/render: substitute form values into a template
// - /api/v1/letters, /api/v1/letters/{id}[/duplicate|/export]: saved letters
// - /api/v1/filters, /api/v1/filters/{name}: saved template filters
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/identity"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
	"github.com/dpshade/coverdraft/internal/service"
	"github.com/dpshade/coverdraft/internal/storage"
	"github.com/dpshade/coverdraft/internal/validation"
)

// UserHeader carries the caller's identity.
const UserHeader = "X-User-ID"

// APIServer serves the coverdraft HTTP API
type APIServer struct {
	service      *service.Service
	validator    *validation.RequestValidator
	errorHandler *errors.HTTPErrorHandler
	log          *logger.Logger
	port         int
	server       *http.Server
	version      string
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *service.Service, port int, version string, log *logger.Logger) *APIServer {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "api")
	return &APIServer{
		service:      svc,
		validator:    validation.NewRequestValidator(svc.Catalog(), log),
		errorHandler: errors.NewHTTPErrorHandler(true, log),
		log:          log,
		port:         port,
		version:      version,
	}
}

// Handler builds the routed and middleware-wrapped handler
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", s.withMiddleware(s.handleHealth))
	mux.HandleFunc("/api/v1/catalog", s.withMiddleware(s.handleCatalog))
	mux.HandleFunc("/api/v1/templates", s.withMiddleware(s.handleTemplates))
	mux.HandleFunc("/api/v1/templates/", s.withMiddleware(s.handleTemplatesWithID))
	mux.HandleFunc("/api/v1/search", s.withMiddleware(s.handleSearch))
	mux.HandleFunc("/api/v1/render", s.withMiddleware(s.handleRender))
	mux.HandleFunc("/api/v1/letters", s.withMiddleware(s.handleLetters))
	mux.HandleFunc("/api/v1/letters/", s.withMiddleware(s.handleLettersWithID))
	mux.HandleFunc("/api/v1/filters", s.withMiddleware(s.handleFilters))
	mux.HandleFunc("/api/v1/filters/", s.withMiddleware(s.handleFiltersWithName))

	mux.HandleFunc("/api/docs", s.withMiddleware(s.handleOpenAPI))
	mux.HandleFunc("/api/openapi.json", s.withMiddleware(s.handleOpenAPISpec))
	return mux
}

// Start begins serving HTTP requests and blocks until the server stops
func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info("API server starting", "url", fmt.Sprintf("http://localhost:%d", s.port))
	s.log.Info("OpenAPI documentation", "url", fmt.Sprintf("http://localhost:%d/api/docs", s.port))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// withMiddleware applies middleware to HTTP handlers
func (s *APIServer) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return s.loggingMiddleware(
		s.corsMiddleware(
			s.contentTypeMiddleware(
				s.errorMiddleware(
					s.identityMiddleware(handler),
				),
			),
		),
	)
}

// statusRecorder remembers the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func (s *APIServer) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	}
}

// corsMiddleware handles CORS headers
func (s *APIServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+UserHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// contentTypeMiddleware sets default content type
func (s *APIServer) contentTypeMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}

// errorMiddleware handles panics
func (s *APIServer) errorMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic in handler", "panic", err, "path", r.URL.Path)
				s.errorHandler.WriteHTTPError(w, errors.InternalError("Internal server error"))
			}
		}()
		next(w, r)
	}
}

// identityMiddleware scopes the request identity to the X-User-ID header.
// Requests without it are anonymous even when a user is signed in locally.
func (s *APIServer) identityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID := strings.TrimSpace(r.Header.Get(UserHeader)); userID != "" {
			r = r.WithContext(identity.WithUser(r.Context(), userID))
		} else {
			r = r.WithContext(identity.Anonymous(r.Context()))
		}
		next(w, r)
	}
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// writeResponse writes a standardized JSON response
func (s *APIServer) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}

	w.WriteHeader(statusCode)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		_ = json.NewEncoder(w).Encode(response)
		return
	}
	_, _ = w.Write(jsonData)
}

// writeError writes an error response using the error handler
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

func (s *APIServer) methodNotAllowed(w http.ResponseWriter) {
	s.writeError(w, errors.NewAppError(errors.ErrCodeInvalidCommand, "Method not allowed"))
}

// validated wraps a handler with request validation for schema
func (s *APIServer) validated(schema string, next http.HandlerFunc) http.HandlerFunc {
	return s.validator.ValidateRequest(schema)(next)
}

// decodeBody decodes a JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.ValidationError("Invalid JSON in request body")
	}
	return nil
}

// handleHealth handles GET /api/v1/health
func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	templates, err := s.service.ListTemplates(r.Context(), storage.TemplateFilter{})
	status := "healthy"
	if err != nil {
		status = "degraded"
	}
	s.writeResponse(w, map[string]interface{}{
		"status":    status,
		"version":   s.version,
		"templates": len(templates),
	}, "", http.StatusOK)
}

// catalogResponse is the public view of the token catalog
type catalogResponse struct {
	Tokens           []catalog.Entry `json:"tokens"`
	Industries       []string        `json:"industries"`
	ExperienceLevels []string        `json:"experienceLevels"`
	RequiredFields   []catalog.Field `json:"requiredFields"`
}

// handleCatalog handles GET /api/v1/catalog
func (s *APIServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	cat := s.service.Catalog()
	s.writeResponse(w, catalogResponse{
		Tokens:           cat.Entries(),
		Industries:       cat.Industries(),
		ExperienceLevels: cat.ExperienceLevels(),
		RequiredFields:   renderer.RequiredFields,
	}, "", http.StatusOK)
}

// handleTemplates handles GET /api/v1/templates
func (s *APIServer) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	s.validated(validation.SchemaListTemplates, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		templates, err := s.service.ListTemplates(r.Context(), storage.TemplateFilter{
			Industry:        q.Get("industry"),
			ExperienceLevel: q.Get("level"),
			Search:          q.Get("search"),
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, templates, fmt.Sprintf("%d templates", len(templates)), http.StatusOK)
	})(w, r)
}

// handleTemplatesWithID handles GET /api/v1/templates/{id}
func (s *APIServer) handleTemplatesWithID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	s.validated(validation.SchemaGetTemplate, func(w http.ResponseWriter, r *http.Request) {
		t, err := s.service.GetTemplate(r.Context(), validation.PathID(r.URL.Path))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, t, "", http.StatusOK)
	})(w, r)
}

// handleSearch handles GET /api/v1/search?q=
func (s *APIServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	s.validated(validation.SchemaSearchTemplate, func(w http.ResponseWriter, r *http.Request) {
		templates, err := s.service.SearchTemplates(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, templates, fmt.Sprintf("%d matches", len(templates)), http.StatusOK)
	})(w, r)
}

// renderRequest is the body of POST /api/v1/render and POST /api/v1/letters
type renderRequest struct {
	TemplateID string            `json:"templateId"`
	Title      string            `json:"title,omitempty"`
	Fields     map[string]string `json:"fields"`
}

func (req renderRequest) form() models.FormData {
	form, _ := models.FormDataFromMap(req.Fields)
	return form
}

// handleRender handles POST /api/v1/render
func (s *APIServer) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	s.validated(validation.SchemaRender, func(w http.ResponseWriter, r *http.Request) {
		var req renderRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		result, err := s.service.RenderTemplate(r.Context(), req.TemplateID, req.form())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, result, "", http.StatusOK)
	})(w, r)
}

// handleLetters handles /api/v1/letters
func (s *APIServer) handleLetters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		letters, err := s.service.ListLetters(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, letters, fmt.Sprintf("%d letters", len(letters)), http.StatusOK)
	case http.MethodPost:
		s.validated(validation.SchemaCreateLetter, s.handleCreateLetter)(w, r)
	default:
		s.methodNotAllowed(w)
	}
}

// handleCreateLetter handles POST /api/v1/letters
func (s *APIServer) handleCreateLetter(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	letter, err := s.service.SaveLetter(r.Context(), req.TemplateID, req.Title, req.form())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, letter, "Letter saved", http.StatusCreated)
}

// handleLettersWithID handles /api/v1/letters/{id} and its sub-resources
func (s *APIServer) handleLettersWithID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/letters/"), "/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	if id == "" || len(parts) > 2 {
		s.writeError(w, errors.NotFoundError("resource"))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.validated(validation.SchemaGetLetter, func(w http.ResponseWriter, r *http.Request) {
			letter, err := s.service.GetLetter(r.Context(), id)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeResponse(w, letter, "", http.StatusOK)
		})(w, r)
	case action == "" && r.Method == http.MethodPut:
		s.validated(validation.SchemaUpdateLetter, func(w http.ResponseWriter, r *http.Request) {
			var patch models.LetterPatch
			if err := decodeBody(r, &patch); err != nil {
				s.writeError(w, err)
				return
			}
			letter, err := s.service.UpdateLetter(r.Context(), id, patch)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeResponse(w, letter, "Letter updated", http.StatusOK)
		})(w, r)
	case action == "" && r.Method == http.MethodDelete:
		s.validated(validation.SchemaGetLetter, func(w http.ResponseWriter, r *http.Request) {
			if err := s.service.DeleteLetter(r.Context(), id); err != nil {
				s.writeError(w, err)
				return
			}
			s.writeResponse(w, nil, "Letter deleted", http.StatusOK)
		})(w, r)
	case action == "duplicate" && r.Method == http.MethodPost:
		s.validated(validation.SchemaGetLetter, func(w http.ResponseWriter, r *http.Request) {
			letter, err := s.service.DuplicateLetter(r.Context(), id)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeResponse(w, letter, "Letter duplicated", http.StatusCreated)
		})(w, r)
	case action == "export" && r.Method == http.MethodPost:
		s.validated(validation.SchemaGetLetter, func(w http.ResponseWriter, r *http.Request) {
			format := service.ExportFormat(r.URL.Query().Get("format"))
			path, err := s.service.ExportLetter(r.Context(), id, format)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeResponse(w, map[string]string{"path": path}, "Letter exported", http.StatusOK)
		})(w, r)
	case action == "" || action == "duplicate" || action == "export":
		s.methodNotAllowed(w)
	default:
		s.writeError(w, errors.NotFoundError("resource"))
	}
}

// handleFilters handles /api/v1/filters
func (s *APIServer) handleFilters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filters, err := s.service.ListSavedFilters()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, filters, "", http.StatusOK)
	case http.MethodPost:
		s.validated(validation.SchemaSaveFilter, func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name     string `json:"name"`
				Industry string `json:"industry"`
				Level    string `json:"level"`
				Query    string `json:"query"`
			}
			if err := decodeBody(r, &req); err != nil {
				s.writeError(w, err)
				return
			}
			filter := models.SavedFilter{
				Name:            req.Name,
				Industry:        req.Industry,
				ExperienceLevel: req.Level,
				Query:           req.Query,
			}
			if err := s.service.SaveFilter(filter); err != nil {
				s.writeError(w, err)
				return
			}
			s.writeResponse(w, filter, "Filter saved", http.StatusCreated)
		})(w, r)
	default:
		s.methodNotAllowed(w)
	}
}

// handleFiltersWithName handles GET (apply) and DELETE /api/v1/filters/{name}
func (s *APIServer) handleFiltersWithName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/filters/")
	if name == "" {
		s.writeError(w, errors.ValidationError("Filter name is required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		templates, err := s.service.ApplySavedFilter(r.Context(), name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, templates, fmt.Sprintf("%d templates", len(templates)), http.StatusOK)
	case http.MethodDelete:
		if err := s.service.DeleteSavedFilter(name); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, nil, "Filter deleted", http.StatusOK)
	default:
		s.methodNotAllowed(w)
	}
}
