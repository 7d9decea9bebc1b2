package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMalformedRow          ErrorType = "MALFORMED_ROW"
	ErrTypeMissingHeaderArtifact ErrorType = "MISSING_HEADER_ARTIFACT"
	ErrTypeWorkbook              ErrorType = "WORKBOOK"
	ErrTypeStorage               ErrorType = "STORAGE"
	ErrTypeValidation            ErrorType = "VALIDATION"
	ErrTypeConfig                ErrorType = "CONFIG"
	ErrTypeParsing               ErrorType = "PARSING"
	ErrTypeNotFound              ErrorType = "NOT_FOUND"
)

// Context keys shared by the pipeline
const (
	ContextReport = "report"
	ContextStage  = "stage"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if scope := e.scope(); scope != "" {
		fmt.Fprintf(&b, " (%s)", scope)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// scope renders report/stage context so a failing stage is visible in the message
func (e *AppError) scope() string {
	var parts []string
	for _, key := range []string{ContextReport, ContextStage} {
		if v, ok := e.Context[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	return strings.Join(parts, " ")
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ContextKeys returns the context keys in sorted order
func (e *AppError) ContextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewMalformedRowError reports a row too short to hold the requested column
func NewMalformedRowError(row, column, width int) *AppError {
	return NewAppError(ErrTypeMalformedRow,
		fmt.Sprintf("row %d has %d cells, column index %d requested", row, width, column), nil).
		WithContext("row", row).
		WithContext("column", column).
		WithContext("width", width)
}

// NewMissingHeaderArtifactError reports that the header label was not counted exactly once
func NewMissingHeaderArtifactError(label string, observed int) *AppError {
	msg := fmt.Sprintf("header entry %q not found", label)
	if observed > 0 {
		msg = fmt.Sprintf("header entry %q counted %d times, expected 1", label, observed)
	}
	return NewAppError(ErrTypeMissingHeaderArtifact, msg, nil).
		WithContext("header_label", label).
		WithContext("observed_count", observed)
}

// NewWorkbookError creates a workbook read/write error
func NewWorkbookError(message string, cause error) *AppError {
	return NewAppError(ErrTypeWorkbook, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// TypeOf returns the type of the first AppError in the chain, or "" if none
func TypeOf(err error) ErrorType {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// InStage tags err with the report and stage it failed in. An AppError
// anywhere in the chain is tagged in place and err is returned with its
// wrapping intact; other errors are wrapped as workbook errors so the stage
// is never lost. An empty report marks a stage shared by every report.
func InStage(err error, report, stage string) error {
	if err == nil {
		return nil
	}
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = NewWorkbookError("stage failed", err)
		err = appErr
	}
	if report != "" {
		appErr.WithContext(ContextReport, report)
	}
	appErr.WithContext(ContextStage, stage)
	return err
}
