package errors

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Error types for the fact extractor
type ErrorType string

const (
	// Extraction errors
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeVisitor    ErrorType = "visitor"
	ErrorTypeResolution ErrorType = "resolution"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

var (
	// ErrEmptySource is returned by syntax creators for empty or blank input.
	ErrEmptySource = errors.New("source is empty")
	// ErrUnusableTree is returned when parsing produced no usable root.
	ErrUnusableTree = errors.New("syntax tree has no usable root")
)

// ParseError is the only error kind that crosses the fact extractor boundary.
type ParseError struct {
	Type       ErrorType
	Language   string
	FilePath   string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(language string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		Language:   language,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds the source path
func (e *ParseError) WithFile(path string) *ParseError {
	e.FilePath = path
	return e
}

// WithPosition records the 1-based position of the first unrecoverable error
func (e *ParseError) WithPosition(line, column int) *ParseError {
	e.Line = line
	e.Column = column
	return e
}

// Error implements the error interface
func (e *ParseError) Error() string {
	where := e.FilePath
	if where == "" {
		where = "<source>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at %s:%d:%d: %v", e.Language, where, e.Line, e.Column, e.Underlying)
	}
	return fmt.Sprintf("%s parse error in %s: %v", e.Language, where, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// VisitorError records a failure inside one visitor for one model instance.
// It is logged, never returned from an extractor.
type VisitorError struct {
	Type       ErrorType
	Visitor    string
	Entity     string
	Recovered  any
	Underlying error
}

// NewVisitorError wraps a returned error
func NewVisitorError(visitor string, err error) *VisitorError {
	return &VisitorError{Type: ErrorTypeVisitor, Visitor: visitor, Underlying: err}
}

// NewVisitorPanic wraps a recovered panic value
func NewVisitorPanic(visitor string, recovered any) *VisitorError {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	return &VisitorError{Type: ErrorTypeVisitor, Visitor: visitor, Recovered: recovered, Underlying: err}
}

// WithEntity names the model instance being populated
func (e *VisitorError) WithEntity(name string) *VisitorError {
	e.Entity = name
	return e
}

// Error implements the error interface
func (e *VisitorError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("visitor %s failed for %s: %v", e.Visitor, e.Entity, e.Underlying)
	}
	return fmt.Sprintf("visitor %s failed: %v", e.Visitor, e.Underlying)
}

// Unwrap returns the underlying error
func (e *VisitorError) Unwrap() error {
	return e.Underlying
}

// IsPanic reports whether the failure was a recovered panic
func (e *VisitorError) IsPanic() bool {
	return e.Recovered != nil
}

// ResolutionError describes a semantic lookup that could not be satisfied.
// Resolution misses are expected; they are only used for log messages.
type ResolutionError struct {
	Type  ErrorType
	Kind  string
	Name  string
	Scope string
	Count int
}

// NewResolutionError creates a resolution miss for one symbol
func NewResolutionError(kind, name string) *ResolutionError {
	return &ResolutionError{Type: ErrorTypeResolution, Kind: kind, Name: name, Count: 1}
}

// WithScope records where the lookup happened
func (e *ResolutionError) WithScope(scope string) *ResolutionError {
	e.Scope = scope
	return e
}

// WithCount aggregates several misses into one message
func (e *ResolutionError) WithCount(n int) *ResolutionError {
	e.Count = n
	return e
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	subject := e.Kind
	if e.Name != "" {
		subject = fmt.Sprintf("%s %s", e.Kind, e.Name)
	}
	if e.Count > 1 {
		subject = fmt.Sprintf("%d %ss", e.Count, e.Kind)
	}
	if e.Scope != "" {
		return fmt.Sprintf("could not resolve %s in %s", subject, e.Scope)
	}
	return fmt.Sprintf("could not resolve %s", subject)
}

// ExtractionError wraps a per-file failure reported by the runner
type ExtractionError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewExtractionError creates a new extraction error
func NewExtractionError(op, path string, err error) *ExtractionError {
	return &ExtractionError{
		Type:       ErrorTypeExtraction,
		FilePath:   path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *ExtractionError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if errors.Is(err, os.ErrPermission) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, or nil when errs holds no error
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// IsParseError reports whether err is, or wraps, a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
