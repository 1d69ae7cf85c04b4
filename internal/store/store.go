package store

import "io"

// Store defines the interface for pattern persistence operations.
// Implementations must be thread-safe and handle concurrent access gracefully.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if record doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRecord atomically saves the record for the given job,
	// overwriting any previous one.
	SaveRecord(jobID string, record *Record) error

	// LoadRecord retrieves the record for the given job.
	// Returns ErrNotFound if no record exists for this jobID.
	LoadRecord(jobID string) (*Record, error)

	// ListRecords returns metadata for all available records.
	ListRecords() ([]RecordInfo, error)

	// DeleteRecord removes the record and all associated artifacts
	// (pattern.json, image.png, image.svg, trace.jsonl).
	DeleteRecord(jobID string) error

	// SaveArtifact atomically writes a named file next to the record.
	SaveArtifact(jobID, name string, write func(io.Writer) error) error

	// ArtifactPath returns the path of a named artifact, or ErrNotFound.
	ArtifactPath(jobID, name string) (string, error)

	// OpenTrace starts a fresh sampler trace for the job.
	OpenTrace(jobID string) (*TraceWriter, error)

	// LoadTrace reads the job's sampler trace.
	// Returns ErrNotFound if the job has no trace.
	LoadTrace(jobID string) ([]TraceEntry, error)
}

// ErrNotFound is returned when a requested record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing record error.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "record not found: " + e.JobID
	}
	return "record not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
