// Package history defines the processing-history domain: one record per
// submitted document, tracking its lifecycle from upload to completed or
// failed recognition.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Status is the lifecycle state of a processing record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Record is one processing-history row. Result holds the JSON-serialized
// DocumentResult or StructureResult once processing completes.
type Record struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	FileType       string          `json:"file_type"`
	CreatedAt      time.Time       `json:"created_at"`
	ProcessingTime string          `json:"processing_time,omitempty"`
	Status         Status          `json:"status"`
	PageCount      int             `json:"page_count,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// ListItem is the condensed form served in history listings.
type ListItem struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
	PageCount int       `json:"page_count,omitempty"`
}

// Page is one page of history listings.
type Page struct {
	Items    []ListItem `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// ErrRecordNotFound is returned when a record id does not exist.
var ErrRecordNotFound = errors.New("history record not found")

// Store persists processing records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Create inserts a new record; the caller provides the ID.
	Create(ctx context.Context, rec Record) error
	// Complete marks a record completed with its serialized result.
	Complete(ctx context.Context, id string, processingTime string, pageCount int, result json.RawMessage) error
	// Fail marks a record failed with the error text.
	Fail(ctx context.Context, id, message string) error
	// Get returns one record by id.
	Get(ctx context.Context, id string) (Record, error)
	// List returns one page of records, newest first. page is 1-based.
	List(ctx context.Context, page, pageSize int) (Page, error)
	// Delete removes a record by id.
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every record and reports how many were deleted.
	DeleteAll(ctx context.Context) (int, error)
}
