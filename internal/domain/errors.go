package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeNotAnalyzed     = "DOCUMENT_NOT_ANALYZED"
	ErrCodeNoUserMessage   = "NO_USER_MESSAGE"
	ErrCodeUnavailable     = "UNAVAILABLE"
	ErrCodeAnalysisFailure = "ANALYSIS_GENERATION_FAILED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidChunkConfig = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrAnalysisNotFound = NewDomainError(ErrCodeNotFound, "analysis not found")
)

// Chat gating errors
var (
	ErrDocumentNotAnalyzed = NewDomainError(ErrCodeNotAnalyzed, "document has not been analyzed yet")
	ErrNoUserMessage       = NewDomainError(ErrCodeNoUserMessage, "conversation contains no user message")
)

// Collaborator errors
var (
	ErrEmbeddingUnavailable     = NewDomainError(ErrCodeUnavailable, "embedding service is unreachable or not configured")
	ErrAnalysisGenerationFailed = NewDomainError(ErrCodeAnalysisFailure, "analysis generation failed")
)
