package repository

import (
	"context"

	"voicenotes/internal/model"
)

// RecordRepository defines the interface for transcription record data access
type RecordRepository interface {
	// Insert stores a new transcription record and returns it with its id set
	Insert(ctx context.Context, rec *model.TranscriptionRecord) (*model.TranscriptionRecord, error)

	// List retrieves records newest-first with pagination
	List(ctx context.Context, limit, offset int) ([]model.TranscriptionRecord, error)

	// GetByID retrieves a record by its hex id
	GetByID(ctx context.Context, id string) (*model.TranscriptionRecord, error)

	// Delete removes a record by its hex id
	Delete(ctx context.Context, id string) error
}
