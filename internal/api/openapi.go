// Package api/openapi provides the OpenAPI 3.0 specification and documentation.
//
// SYSTEM ARCHITECTURE ROLE:
// This module generates and serves the OpenAPI specification for the coverdraft
// API. Industry and experience level enums are taken from the live catalog so
// the documentation never drifts from what the validator accepts.
//
// INTEGRATION POINTS:
// - internal/api/server.go: endpoints documented here must match the routes in Handler()
// - internal/validation/validator.go: request schemas mirror the validation schemas
// - internal/errors/handlers.go: ErrorResponse matches HTTPErrorHandler output
// - Swagger UI CDN: handleOpenAPI loads Swagger UI assets from unpkg.com
package api

import (
	"encoding/json"
	"net/http"

	"github.com/dpshade/coverdraft/internal/catalog"
)

// handleOpenAPI serves the OpenAPI documentation interface
func (s *APIServer) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>Coverdraft API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        html { box-sizing: border-box; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin:0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/openapi.json',
                dom_id: '#swagger-ui',
                presets: [SwaggerUIBundle.presets.apis],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *APIServer) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(getOpenAPISpec(s.service.Catalog(), s.version))
}

type obj = map[string]interface{}

func ref(name string) obj {
	return obj{"$ref": "#/components/schemas/" + name}
}

func stringProp(description string) obj {
	return obj{"type": "string", "description": description}
}

func queryParam(name, description string, schema obj) obj {
	return obj{"name": name, "in": "query", "description": description, "schema": schema}
}

func pathParam(name, description string) obj {
	return obj{"name": name, "in": "path", "required": true, "description": description, "schema": obj{"type": "string"}}
}

var userParam = obj{
	"name":        UserHeader,
	"in":          "header",
	"required":    true,
	"description": "Identity of the caller; letters are scoped to this user",
	"schema":      obj{"type": "string"},
}

func jsonBody(schema string) obj {
	return obj{
		"required": true,
		"content":  obj{"application/json": obj{"schema": ref(schema)}},
	}
}

func envelope(description, dataSchema string) obj {
	data := obj{}
	if dataSchema != "" {
		data = ref(dataSchema)
	}
	return obj{
		"description": description,
		"content": obj{"application/json": obj{"schema": obj{
			"allOf": []interface{}{
				ref("APIResponse"),
				obj{"properties": obj{"data": data}},
			},
		}}},
	}
}

func arrayEnvelope(description, itemSchema string) obj {
	return obj{
		"description": description,
		"content": obj{"application/json": obj{"schema": obj{
			"allOf": []interface{}{
				ref("APIResponse"),
				obj{"properties": obj{"data": obj{"type": "array", "items": ref(itemSchema)}}},
			},
		}}},
	}
}

func errorResponse(description string) obj {
	return obj{
		"description": description,
		"content":     obj{"application/json": obj{"schema": ref("ErrorResponse")}},
	}
}

// getOpenAPISpec returns the OpenAPI specification
func getOpenAPISpec(cat *catalog.Catalog, version string) obj {
	fieldProps := obj{}
	for _, entry := range cat.Entries() {
		fieldProps[string(entry.Field)] = stringProp("Replaces " + entry.Token)
	}

	return obj{
		"openapi": "3.0.3",
		"info": obj{
			"title":       "Coverdraft API",
			"description": "Browse cover letter templates, fill their bracketed tokens and manage saved letters.",
			"version":     version,
		},
		"servers": []interface{}{
			obj{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": obj{
			"/api/v1/health": obj{
				"get": obj{
					"summary":   "Health check",
					"responses": obj{"200": envelope("Service status", "")},
				},
			},
			"/api/v1/catalog": obj{
				"get": obj{
					"summary":   "Token catalog, industries and experience levels",
					"responses": obj{"200": envelope("Catalog", "Catalog")},
				},
			},
			"/api/v1/templates": obj{
				"get": obj{
					"summary": "List templates",
					"parameters": []interface{}{
						queryParam("industry", "Industry filter", obj{"type": "string", "enum": cat.Industries()}),
						queryParam("level", "Experience level filter", obj{"type": "string", "enum": cat.ExperienceLevels()}),
						queryParam("search", "Case-insensitive job title substring", obj{"type": "string"}),
					},
					"responses": obj{
						"200": arrayEnvelope("Templates sorted by job title", "Template"),
						"400": errorResponse("Invalid filter"),
					},
				},
			},
			"/api/v1/templates/{id}": obj{
				"get": obj{
					"summary":    "Get a template",
					"parameters": []interface{}{pathParam("id", "Template ID")},
					"responses": obj{
						"200": envelope("Template with content", "Template"),
						"404": errorResponse("Template not found"),
					},
				},
			},
			"/api/v1/search": obj{
				"get": obj{
					"summary":    "Fuzzy search templates",
					"parameters": []interface{}{queryParam("q", "Search query", obj{"type": "string"})},
					"responses":  obj{"200": arrayEnvelope("Best matches first", "Template")},
				},
			},
			"/api/v1/render": obj{
				"post": obj{
					"summary":     "Render a template with form values",
					"requestBody": jsonBody("RenderRequest"),
					"responses": obj{
						"200": envelope("Rendered text with unfilled tokens", "RenderResult"),
						"400": errorResponse("Unknown field or template id"),
						"404": errorResponse("Template not found"),
					},
				},
			},
			"/api/v1/letters": obj{
				"get": obj{
					"summary":    "List the caller's letters",
					"parameters": []interface{}{userParam},
					"responses": obj{
						"200": arrayEnvelope("Letters, newest first", "Letter"),
						"401": errorResponse("No identity"),
					},
				},
				"post": obj{
					"summary":     "Render a template and save it as a letter",
					"parameters":  []interface{}{userParam},
					"requestBody": jsonBody("RenderRequest"),
					"responses": obj{
						"201": envelope("Saved letter", "Letter"),
						"401": errorResponse("No identity"),
					},
				},
			},
			"/api/v1/letters/{id}": obj{
				"get": obj{
					"summary":    "Get a letter",
					"parameters": []interface{}{userParam, pathParam("id", "Letter ID")},
					"responses":  obj{"200": envelope("Letter", "Letter"), "404": errorResponse("Letter not found")},
				},
				"put": obj{
					"summary":     "Update a letter's title or content",
					"parameters":  []interface{}{userParam, pathParam("id", "Letter ID")},
					"requestBody": jsonBody("LetterPatch"),
					"responses":   obj{"200": envelope("Updated letter", "Letter"), "404": errorResponse("Letter not found")},
				},
				"delete": obj{
					"summary":    "Delete a letter",
					"parameters": []interface{}{userParam, pathParam("id", "Letter ID")},
					"responses":  obj{"200": envelope("Deleted", ""), "404": errorResponse("Letter not found")},
				},
			},
			"/api/v1/letters/{id}/duplicate": obj{
				"post": obj{
					"summary":    "Copy a letter under a \"(Copy)\" title",
					"parameters": []interface{}{userParam, pathParam("id", "Letter ID")},
					"responses":  obj{"201": envelope("New letter", "Letter")},
				},
			},
			"/api/v1/letters/{id}/export": obj{
				"post": obj{
					"summary": "Export a letter to the export directory",
					"parameters": []interface{}{
						userParam,
						pathParam("id", "Letter ID"),
						queryParam("format", "txt or png", obj{"type": "string", "enum": []string{"txt", "png"}}),
					},
					"responses": obj{"200": envelope("Path of the written file", "")},
				},
			},
			"/api/v1/filters": obj{
				"get":  obj{"summary": "List saved template filters", "responses": obj{"200": arrayEnvelope("Filters", "SavedFilter")}},
				"post": obj{"summary": "Save a template filter", "requestBody": jsonBody("SavedFilter"), "responses": obj{"201": envelope("Saved", "SavedFilter")}},
			},
			"/api/v1/filters/{name}": obj{
				"get":    obj{"summary": "Apply a saved filter", "parameters": []interface{}{pathParam("name", "Filter name")}, "responses": obj{"200": arrayEnvelope("Templates", "Template")}},
				"delete": obj{"summary": "Delete a saved filter", "parameters": []interface{}{pathParam("name", "Filter name")}, "responses": obj{"200": envelope("Deleted", "")}},
			},
		},
		"components": obj{
			"schemas": obj{
				"APIResponse": obj{
					"type": "object",
					"properties": obj{
						"success":   obj{"type": "boolean"},
						"data":      obj{},
						"message":   obj{"type": "string"},
						"timestamp": obj{"type": "string", "format": "date-time"},
					},
					"required": []string{"success", "timestamp"},
				},
				"Catalog": obj{
					"type": "object",
					"properties": obj{
						"tokens": obj{"type": "array", "items": obj{"type": "object", "properties": obj{
							"token": stringProp("Bracketed token, e.g. [Full Name]"),
							"field": stringProp("Form field name"),
						}}},
						"industries":       obj{"type": "array", "items": obj{"type": "string"}},
						"experienceLevels": obj{"type": "array", "items": obj{"type": "string"}},
						"requiredFields":   obj{"type": "array", "items": obj{"type": "string"}},
					},
				},
				"Template": obj{
					"type": "object",
					"properties": obj{
						"id":              stringProp("Template ID"),
						"jobTitle":        stringProp("Job title"),
						"industry":        obj{"type": "string", "enum": cat.Industries()},
						"experienceLevel": obj{"type": "string", "enum": cat.ExperienceLevels()},
						"preview":         stringProp("Short description"),
						"content":         stringProp("Body with bracketed tokens"),
						"createdAt":       obj{"type": "string", "format": "date-time"},
						"updatedAt":       obj{"type": "string", "format": "date-time"},
					},
				},
				"FormFields": obj{"type": "object", "properties": fieldProps, "additionalProperties": false},
				"RenderRequest": obj{
					"type": "object",
					"properties": obj{
						"templateId": stringProp("Template ID"),
						"title":      stringProp("Letter title (letters only)"),
						"fields":     ref("FormFields"),
					},
					"required": []string{"templateId"},
				},
				"RenderResult": obj{
					"type": "object",
					"properties": obj{
						"content":        stringProp("Rendered text"),
						"unfilledTokens": obj{"type": "array", "items": obj{"type": "string"}},
						"validation": obj{"type": "object", "properties": obj{
							"isValid":       obj{"type": "boolean"},
							"missingFields": obj{"type": "array", "items": obj{"type": "string"}},
						}},
					},
				},
				"Letter": obj{
					"type": "object",
					"properties": obj{
						"id":         stringProp("Letter ID"),
						"userId":     stringProp("Owner"),
						"templateId": stringProp("Originating template"),
						"title":      stringProp("Title"),
						"content":    stringProp("Rendered text at last save"),
						"createdAt":  obj{"type": "string", "format": "date-time"},
						"updatedAt":  obj{"type": "string", "format": "date-time"},
					},
				},
				"LetterPatch": obj{
					"type": "object",
					"properties": obj{
						"title":   stringProp("New title"),
						"content": stringProp("New content"),
					},
				},
				"SavedFilter": obj{
					"type": "object",
					"properties": obj{
						"name":     stringProp("Filter name"),
						"industry": obj{"type": "string", "enum": cat.Industries()},
						"level":    obj{"type": "string", "enum": cat.ExperienceLevels()},
						"query":    stringProp("Fuzzy query"),
					},
					"required": []string{"name"},
				},
				"ErrorResponse": obj{
					"type": "object",
					"properties": obj{
						"success": obj{"type": "boolean"},
						"error": obj{
							"type": "object",
							"properties": obj{
								"code":      stringProp("Error code"),
								"message":   stringProp("Error message"),
								"details":   stringProp("Additional error details"),
								"timestamp": obj{"type": "string", "format": "date-time"},
							},
							"required": []string{"code", "message", "timestamp"},
						},
					},
					"required": []string{"success", "error"},
				},
			},
		},
	}
}
