// Package errors/handlers provides interface-specific error handling implementations.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the presentation side of the error system. The same AppError is
// turned into a terminal line, a JSON body with an HTTP status, or a styled TUI
// status message.
//
// ERROR FLOW:
// 1. Session, service or store code returns an AppError
// 2. The interface-specific handler logs it through the shared zap logger
// 3. The handler formats it for its surface
//
// INTEGRATION POINTS:
// - internal/cli/cli.go: CLIErrorHandler
// - internal/api/server.go: HTTPErrorHandler.WriteHTTPError
// - internal/ui/model.go: TUIErrorHandler.GetErrorStyle
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dpshade/coverdraft/internal/logger"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
	log     *logger.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, log *logger.Logger) *CLIErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &CLIErrorHandler{
		Verbose: verbose,
		log:     log,
	}
}

// HandleError logs the error (when verbose) and returns a display error
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	if h.Verbose {
		h.log.Debug("command failed",
			"code", appErr.Code,
			"severity", appErr.Severity,
			"error", appErr.Error(),
			"cause", appErr.Cause,
		)
	}

	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.Verbose && appErr.Details != "" {
		message = fmt.Sprintf("%s (%s)", message, appErr.Details)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("❌ CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("❌ ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("⚠️  WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("ℹ️  INFO: %s", message)
	default:
		return fmt.Sprintf("❌ %s", message)
	}
}

// HTTPErrorHandler handles errors for HTTP interface
type HTTPErrorHandler struct {
	IncludeDetails bool
	log            *logger.Logger
}

// NewHTTPErrorHandler creates a new HTTP error handler
func NewHTTPErrorHandler(includeDetails bool, log *logger.Logger) *HTTPErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTPErrorHandler{
		IncludeDetails: includeDetails,
		log:            log,
	}
}

// HandleError logs the error and returns it as an AppError
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	h.log.Warn("request failed",
		"code", appErr.Code,
		"severity", appErr.Severity,
		"error", appErr.Error(),
		"cause", appErr.Cause,
	)
	return appErr
}

// FormatError formats an error as the JSON error envelope
func (h *HTTPErrorHandler) FormatError(err error) string {
	jsonBytes, _ := json.Marshal(h.errorBody(GetAppError(err)))
	return string(jsonBytes)
}

func (h *HTTPErrorHandler) errorBody(appErr *AppError) map[string]interface{} {
	body := map[string]interface{}{
		"code":      appErr.Code,
		"message":   appErr.Message,
		"timestamp": appErr.Timestamp,
	}
	if h.IncludeDetails && appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if h.IncludeDetails && appErr.Context != nil {
		body["context"] = appErr.Context
	}
	return map[string]interface{}{
		"success": false,
		"error":   body,
	}
}

// WriteHTTPError writes an error response to HTTP
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(err)
	h.HandleError(appErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(appErr))
	_ = json.NewEncoder(w).Encode(h.errorBody(appErr))
}

// StatusCode maps error codes to HTTP status codes
func StatusCode(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField:
		return http.StatusBadRequest
	case ErrCodeInvalidState, ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeAccessDenied:
		return http.StatusForbidden
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetworkFailure, ErrCodeImportFailed:
		return http.StatusBadGateway
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	case ErrCodeInvalidCommand:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// TUIErrorHandler handles errors for TUI interface
type TUIErrorHandler struct {
	ShowDetails bool
	log         *logger.Logger
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(showDetails bool, log *logger.Logger) *TUIErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TUIErrorHandler{
		ShowDetails: showDetails,
		log:         log,
	}
}

// HandleError logs the error to the TUI log file
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	h.log.Error("tui operation failed",
		"code", appErr.Code,
		"category", appErr.Category,
		"error", appErr.Error(),
		"cause", appErr.Cause,
		"context", appErr.Context,
	)
	return appErr
}

// FormatError formats an error for TUI display
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s\nDetails: %s", message, appErr.Details)
	}
	return message
}

// GetErrorStyle returns an icon and color for the error severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, string) {
	appErr := GetAppError(err)

	switch appErr.Severity {
	case SeverityCritical:
		return "🔥", "#ff0000"
	case SeverityError:
		return "❌", "#ff6b6b"
	case SeverityWarning:
		return "⚠️", "#feca57"
	case SeverityInfo:
		return "ℹ️", "#48cae4"
	default:
		return "❌", "#ff6b6b"
	}
}
