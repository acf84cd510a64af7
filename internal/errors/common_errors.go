package errors

import (
	"log/slog"
	"sort"
	"strings"
)

// ErrorType classifies a failure raised by the upload pipeline. The HTTP
// layer maps each kind onto a problem type.
type ErrorType string

const (
	// ErrTypeParsing: the workbook was accepted but could not be read.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeValidation: the upload was rejected before parsing.
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

// AppError is a classified pipeline failure. Context holds the location
// of the failure (file, sheet) and is echoed to clients for 4xx answers.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Type))
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext records where the failure happened and returns e.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// LogValue groups the error kind, message and location for slog.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return slog.GroupValue(attrs...)
}

// NewAppError builds a classified error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// NewParsingError reports a workbook that could not be read.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAppValidationError reports an upload rejected before parsing.
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}
