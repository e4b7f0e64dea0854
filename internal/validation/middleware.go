// Package validation/middleware provides HTTP request validation middleware.
//
// SYSTEM ARCHITECTURE ROLE:
// This module bridges HTTP request parsing with the schema validator so every
// API route is checked before it reaches the service layer.
//
// KEY RESPONSIBILITIES:
// - Extract parameters from query string, path and JSON body
// - Apply validation schemas to the merged request data
// - Store the validated data in the request context for handlers
// - Restore the request body so handlers can decode typed payloads
//
// HTTP VALIDATION FLOW:
// 1. HTTP request arrives at middleware-wrapped handler
// 2. Middleware extracts data from query params, path, and body
// 3. Data is validated against specified schema
// 4. Invalid requests return 400 Bad Request with validation details
// 5. Valid requests proceed with validated data in the context
//
// EXTRACTION PATTERNS:
// - Query parameters: first value of each key
// - Path parameters: /api/v1/templates/{id} and /api/v1/letters/{id}
// - JSON body: parsed and merged over query/path parameters
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
)

// maxBodyBytes bounds request bodies read for validation.
const maxBodyBytes = 1 << 20

type validatedKey struct{}

// RequestValidator provides middleware for HTTP request validation
type RequestValidator struct {
	validator *Validator
	errors    *errors.HTTPErrorHandler
}

// NewRequestValidator creates a new request validator middleware
func NewRequestValidator(cat *catalog.Catalog, log *logger.Logger) *RequestValidator {
	return &RequestValidator{
		validator: NewValidator(cat),
		errors:    errors.NewHTTPErrorHandler(true, log),
	}
}

// ValidateRequest middleware validates HTTP requests based on schema
func (rv *RequestValidator) ValidateRequest(schemaName string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			data, err := rv.extractRequestData(r)
			if err != nil {
				rv.errors.WriteHTTPError(w, err)
				return
			}

			result := rv.validator.Validate(schemaName, data)
			if !result.Valid {
				rv.errors.WriteHTTPError(w, result.ToAppError())
				return
			}

			ctx := context.WithValue(r.Context(), validatedKey{}, result.GetValidatedData())
			next(w, r.WithContext(ctx))
		}
	}
}

// ValidatedData returns the data stored by ValidateRequest, or nil.
func ValidatedData(r *http.Request) map[string]interface{} {
	data, _ := r.Context().Value(validatedKey{}).(map[string]interface{})
	return data
}

// extractRequestData extracts data from HTTP request based on method and content type
func (rv *RequestValidator) extractRequestData(r *http.Request) (map[string]interface{}, error) {
	data := make(map[string]interface{})

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			data[key] = values[0]
		}
	}

	if id := PathID(r.URL.Path); id != "" {
		data["id"] = id
	}

	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			bodyData, err := rv.extractJSONBody(r)
			if err != nil {
				return nil, err
			}
			for key, value := range bodyData {
				data[key] = value
			}
		}
	}

	return data, nil
}

// PathID returns the {id} segment of /api/v1/templates/{id} and
// /api/v1/letters/{id}[/...] paths.
func PathID(path string) string {
	for _, prefix := range []string{"/api/v1/templates/", "/api/v1/letters/"} {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		id := strings.TrimPrefix(path, prefix)
		if idx := strings.Index(id, "/"); idx != -1 {
			id = id[:idx]
		}
		return id
	}
	return ""
}

// extractJSONBody decodes the JSON body and puts the bytes back for the handler
func (rv *RequestValidator) extractJSONBody(r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.ValidationError("Failed to read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return make(map[string]interface{}), nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.ValidationError("Invalid JSON in request body")
	}
	return data, nil
}

// SanitizeString removes control characters other than newlines and tabs
func SanitizeString(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r == '\n' || r == '\t' || r == '\r' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// GetValidator returns the underlying validator instance
func (rv *RequestValidator) GetValidator() *Validator {
	return rv.validator
}
