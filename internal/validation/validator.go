// Package validation provides centralized input validation and sanitization.
//
// SYSTEM ARCHITECTURE ROLE:
// This module validates user input before it reaches the service layer. Schemas
// are built from the token catalog, so the industry and experience level options
// and the set of form field names always agree with what the renderer accepts.
//
// KEY RESPONSIBILITIES:
// - Define validation schemas for API requests and CLI arguments
// - Perform type-safe validation and conversion of user input
// - Generate detailed validation error messages with field-specific context
// - Sanitize input data
//
// INTEGRATION POINTS:
// - internal/validation/middleware.go: RequestValidator validates HTTP requests
// - internal/api/server.go: every route names the schema it is validated against
// - internal/cli/cli.go: template filters and --set fields are checked here
// - internal/errors/errors.go: ValidationResult.ToAppError() converts failures to AppError format
//
// VALIDATION FLOW:
// 1. User input is received by interface (CLI, HTTP)
// 2. Input is converted to parameter map format
// 3. Validator validates parameters against the named schema
// 4. Invalid parameters generate detailed ValidationResult with errors
// 5. Valid parameters are type-converted and handed on
//
// SCHEMA SYSTEM:
// - Built-in schemas: list_templates, search_templates, get_template, render,
//   create_letter, update_letter, get_letter, save_filter
// - Field validators: type, length, pattern, options, custom checks
// - Schema rules: cross-field rules over the complete data set
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/errors"
)

const (
	SchemaListTemplates  = "list_templates"
	SchemaSearchTemplate = "search_templates"
	SchemaGetTemplate    = "get_template"
	SchemaRender         = "render"
	SchemaCreateLetter   = "create_letter"
	SchemaUpdateLetter   = "update_letter"
	SchemaGetLetter      = "get_letter"
	SchemaSaveFilter     = "save_filter"
)

var (
	templateIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	letterIDPattern   = regexp.MustCompile(`^[a-fA-F0-9-]{1,64}$`)
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name      string
	Required  bool
	Type      string
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Options   []string
	Custom    func(interface{}) error
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid    bool                   `json:"valid"`
	Errors   []ValidationError      `json:"errors,omitempty"`
	Warnings []ValidationWarning    `json:"warnings,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationWarning represents a field validation warning
type ValidationWarning struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Schema represents a validation schema
type Schema struct {
	Name   string
	Fields map[string]FieldValidator
	Rules  []func(map[string]interface{}) error
}

// Validator provides centralized validation functionality
type Validator struct {
	catalog *catalog.Catalog
	schemas map[string]*Schema
}

// NewValidator creates a validator whose schemas draw their options from cat
func NewValidator(cat *catalog.Catalog) *Validator {
	if cat == nil {
		cat = catalog.Default()
	}
	v := &Validator{
		catalog: cat,
		schemas: make(map[string]*Schema),
	}
	v.registerBuiltinSchemas()
	return v
}

// RegisterSchema registers a validation schema
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

// Validate validates data against a schema
func (v *Validator) Validate(schemaName string, data map[string]interface{}) *ValidationResult {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Code:    "SCHEMA_NOT_FOUND",
				Message: fmt.Sprintf("Validation schema '%s' not found", schemaName),
			}},
		}
	}

	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Data:     make(map[string]interface{}),
	}

	// sorted so error order is stable
	names := make([]string, 0, len(schema.Fields))
	for name := range schema.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, fieldName := range names {
		v.validateField(fieldName, schema.Fields[fieldName], data, result)
	}

	for key, value := range data {
		if _, known := schema.Fields[key]; !known {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   key,
				Message: fmt.Sprintf("Field '%s' is not recognised and was ignored", key),
				Value:   value,
			})
		}
	}

	for _, rule := range schema.Rules {
		if err := rule(data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "schema",
				Code:    "SCHEMA_RULE_VIOLATION",
				Message: err.Error(),
			})
		}
	}

	return result
}

// validateField validates a single field
func (v *Validator) validateField(fieldName string, validator FieldValidator, data map[string]interface{}, result *ValidationResult) {
	value, exists := data[fieldName]

	if validator.Required && (!exists || value == nil || value == "") {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "REQUIRED_FIELD_MISSING",
			Message: fmt.Sprintf("Field '%s' is required", fieldName),
		})
		return
	}

	if !exists || value == nil {
		return
	}

	convertedValue, err := v.validateAndConvertType(fieldName, validator.Type, value)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "INVALID_TYPE",
			Message: err.Error(),
			Value:   value,
		})
		return
	}

	result.Data[fieldName] = convertedValue

	if strValue, ok := convertedValue.(string); ok && validator.Type == "string" {
		v.validateString(fieldName, validator, strValue, result)
	}

	if validator.Custom != nil {
		if err := validator.Custom(convertedValue); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Code:    "CUSTOM_VALIDATION_FAILED",
				Message: fmt.Sprintf("Field '%s': %s", fieldName, err.Error()),
				Value:   convertedValue,
			})
		}
	}
}

func (v *Validator) validateString(fieldName string, validator FieldValidator, strValue string, result *ValidationResult) {
	if validator.MinLength > 0 && len(strValue) < validator.MinLength {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "MIN_LENGTH_VIOLATION",
			Message: fmt.Sprintf("Field '%s' must be at least %d characters long", fieldName, validator.MinLength),
			Value:   strValue,
		})
	}

	if validator.MaxLength > 0 && len(strValue) > validator.MaxLength {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "MAX_LENGTH_VIOLATION",
			Message: fmt.Sprintf("Field '%s' must be at most %d characters long", fieldName, validator.MaxLength),
		})
	}

	if validator.Pattern != nil && !validator.Pattern.MatchString(strValue) {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "PATTERN_MISMATCH",
			Message: fmt.Sprintf("Field '%s' does not match required pattern", fieldName),
			Value:   strValue,
		})
	}

	if len(validator.Options) > 0 && !containsString(validator.Options, strValue) {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "INVALID_OPTION",
			Message: fmt.Sprintf("Field '%s' must be one of: %s", fieldName, strings.Join(validator.Options, ", ")),
			Value:   strValue,
		})
	}
}

// validateAndConvertType validates and converts value to the specified type
func (v *Validator) validateAndConvertType(fieldName, expectedType string, value interface{}) (interface{}, error) {
	switch expectedType {
	case "string":
		if str, ok := value.(string); ok {
			return str, nil
		}
		return fmt.Sprintf("%v", value), nil

	case "int":
		switch val := value.(type) {
		case int:
			return val, nil
		case float64:
			return int(val), nil
		case string:
			if intVal, err := strconv.Atoi(val); err == nil {
				return intVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be an integer", fieldName)

	case "bool":
		switch val := value.(type) {
		case bool:
			return val, nil
		case string:
			if boolVal, err := strconv.ParseBool(val); err == nil {
				return boolVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be a boolean", fieldName)

	case "object":
		switch val := value.(type) {
		case map[string]interface{}:
			return val, nil
		case map[string]string:
			obj := make(map[string]interface{}, len(val))
			for k, s := range val {
				obj[k] = s
			}
			return obj, nil
		}
		return nil, fmt.Errorf("field '%s' must be an object", fieldName)

	default:
		return value, nil
	}
}

// formFieldsCheck accepts an object whose keys are catalog fields and whose
// values are strings.
func (v *Validator) formFieldsCheck(value interface{}) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("must be an object")
	}
	var unknown []string
	for key, val := range obj {
		if !v.catalog.HasField(catalog.Field(key)) {
			unknown = append(unknown, key)
			continue
		}
		if _, ok := val.(string); !ok {
			return fmt.Errorf("value of %s must be a string", key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown form fields: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// registerBuiltinSchemas registers the request schemas
func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name: SchemaListTemplates,
		Fields: map[string]FieldValidator{
			"industry": {
				Name:    "industry",
				Type:    "string",
				Options: v.catalog.Industries(),
			},
			"level": {
				Name:    "level",
				Type:    "string",
				Options: v.catalog.ExperienceLevels(),
			},
			"search": {
				Name:      "search",
				Type:      "string",
				MaxLength: 200,
			},
			"format": {
				Name:    "format",
				Type:    "string",
				Options: []string{"json", "table", "ids"},
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaSearchTemplate,
		Fields: map[string]FieldValidator{
			"q": {
				Name:      "q",
				Type:      "string",
				Required:  true,
				MinLength: 1,
				MaxLength: 200,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaGetTemplate,
		Fields: map[string]FieldValidator{
			"id": {
				Name:      "id",
				Type:      "string",
				Required:  true,
				MaxLength: 200,
				Pattern:   templateIDPattern,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaRender,
		Fields: map[string]FieldValidator{
			"templateId": {
				Name:      "templateId",
				Type:      "string",
				Required:  true,
				MaxLength: 200,
				Pattern:   templateIDPattern,
			},
			"fields": {
				Name:   "fields",
				Type:   "object",
				Custom: v.formFieldsCheck,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaCreateLetter,
		Fields: map[string]FieldValidator{
			"templateId": {
				Name:      "templateId",
				Type:      "string",
				Required:  true,
				MaxLength: 200,
				Pattern:   templateIDPattern,
			},
			"title": {
				Name:      "title",
				Type:      "string",
				MaxLength: 200,
			},
			"fields": {
				Name:   "fields",
				Type:   "object",
				Custom: v.formFieldsCheck,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaUpdateLetter,
		Fields: map[string]FieldValidator{
			"id": {
				Name:     "id",
				Type:     "string",
				Required: true,
				Pattern:  letterIDPattern,
			},
			"title": {
				Name:      "title",
				Type:      "string",
				MinLength: 1,
				MaxLength: 200,
			},
			"content": {
				Name:      "content",
				Type:      "string",
				MaxLength: 100000,
			},
		},
		Rules: []func(map[string]interface{}) error{
			func(data map[string]interface{}) error {
				_, hasTitle := data["title"]
				_, hasContent := data["content"]
				if !hasTitle && !hasContent {
					return fmt.Errorf("either title or content must be provided")
				}
				return nil
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaGetLetter,
		Fields: map[string]FieldValidator{
			"id": {
				Name:     "id",
				Type:     "string",
				Required: true,
				Pattern:  letterIDPattern,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaSaveFilter,
		Fields: map[string]FieldValidator{
			"name": {
				Name:      "name",
				Type:      "string",
				Required:  true,
				MaxLength: 100,
			},
			"industry": {
				Name:    "industry",
				Type:    "string",
				Options: v.catalog.Industries(),
			},
			"level": {
				Name:    "level",
				Type:    "string",
				Options: v.catalog.ExperienceLevels(),
			},
			"query": {
				Name:      "query",
				Type:      "string",
				MaxLength: 200,
			},
		},
	})
}

// ToAppError converts validation result to AppError
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}

	if len(result.Errors) == 0 {
		return errors.ValidationError("Validation failed")
	}

	appErr := errors.ValidationError(result.Errors[0].Message)

	var details []string
	for _, validationErr := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message))
	}
	appErr.WithDetails(strings.Join(details, "; "))

	appErr.WithContext("validation_errors", result.Errors)
	if len(result.Warnings) > 0 {
		appErr.WithContext("validation_warnings", result.Warnings)
	}
	return appErr
}

// GetValidatedData returns the validated and converted data
func (result *ValidationResult) GetValidatedData() map[string]interface{} {
	if !result.Valid {
		return nil
	}
	return result.Data
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
