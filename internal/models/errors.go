package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports empty or malformed input text or files.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotReady reports an operation invoked before a document was indexed.
	ErrNotReady = errors.New("no document has been processed")
)

// EmbeddingError wraps a failure of the external embedding service.
type EmbeddingError struct {
	message       string
	originalError error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding service error: %s (original error: %v)", e.message, e.originalError)
}

func (e *EmbeddingError) Unwrap() error { return e.originalError }

func NewEmbeddingError(message string, originalError error) *EmbeddingError {
	return &EmbeddingError{message: message, originalError: originalError}
}

// IndexBuildError wraps a failure to construct the vector index.
type IndexBuildError struct {
	message       string
	originalError error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("index build error: %s (original error: %v)", e.message, e.originalError)
}

func (e *IndexBuildError) Unwrap() error { return e.originalError }

func NewIndexBuildError(message string, originalError error) *IndexBuildError {
	return &IndexBuildError{message: message, originalError: originalError}
}

// ReformulationError wraps a language model failure during question
// reformulation. Callers may degrade to the raw question.
type ReformulationError struct {
	originalError error
}

func (e *ReformulationError) Error() string {
	return fmt.Sprintf("reformulation error: %v", e.originalError)
}

func (e *ReformulationError) Unwrap() error { return e.originalError }

func NewReformulationError(originalError error) *ReformulationError {
	return &ReformulationError{originalError: originalError}
}

// CompositionError wraps a language model failure during answer composition.
type CompositionError struct {
	originalError error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("composition error: %v", e.originalError)
}

func (e *CompositionError) Unwrap() error { return e.originalError }

func NewCompositionError(originalError error) *CompositionError {
	return &CompositionError{originalError: originalError}
}

// ConfigError reports configuration that is unusable at startup.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}
