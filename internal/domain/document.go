package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents where a document sits in the analysis lifecycle
type DocumentStatus string

const (
	DocumentStatusUploaded  DocumentStatus = "UPLOADED"
	DocumentStatusAnalyzing DocumentStatus = "ANALYZING"
	DocumentStatusAnalyzed  DocumentStatus = "ANALYZED"
	DocumentStatusFailed    DocumentStatus = "FAILED"
)

// Document represents an uploaded document in the system
type Document struct {
	ID         string
	Filename   string
	MimeType   string
	SizeBytes  int64
	Status     DocumentStatus
	StorageKey string // optional blob-store reference for the raw text
	Content    string // inline raw text when no blob store is configured
	UploadedAt time.Time
	UpdatedAt  time.Time
}

// NewDocument creates a new Document instance in the UPLOADED state
func NewDocument(id, filename, mimeType string, sizeBytes int64, storageKey, content string, now time.Time) *Document {
	return &Document{
		ID:         id,
		Filename:   filename,
		MimeType:   mimeType,
		SizeBytes:  sizeBytes,
		Status:     DocumentStatusUploaded,
		StorageKey: storageKey,
		Content:    content,
		UploadedAt: now,
		UpdatedAt:  now,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if d.SizeBytes < 0 {
		return fmt.Errorf("document SizeBytes cannot be negative")
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	return nil
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusUploaded, DocumentStatusAnalyzing,
		DocumentStatusAnalyzed, DocumentStatusFailed:
		return true
	}
	return false
}
