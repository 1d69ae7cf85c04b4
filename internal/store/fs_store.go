package store

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Artifact names written next to pattern.json.
const (
	ArtifactPNG   = "image.png"
	ArtifactSVG   = "image.svg"
	ArtifactThumb = "thumb.png"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Records are stored in a directory structure: <baseDir>/jobs/<jobID>/
//
// Thread-safety: This implementation uses atomic file operations (rename)
// and does not require locks.
type FSStore struct {
	baseDir string // Root directory for all pattern data (e.g., "./data")
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

// JobDir returns the directory path for a given job ID.
func (fs *FSStore) JobDir(jobID string) string {
	return filepath.Join(fs.baseDir, "jobs", jobID)
}

// recordPath returns the path to the pattern.json file for a job.
func (fs *FSStore) recordPath(jobID string) string {
	return filepath.Join(fs.JobDir(jobID), "pattern.json")
}

func checkName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid %s: %q", kind, name)
	}
	return nil
}

// writeAtomic writes through a temp file and renames it into place.
func writeAtomic(path string, write func(io.Writer) error) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tempPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		// Clean up temp file on failure
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// SaveRecord atomically saves a record for the given job.
func (fs *FSStore) SaveRecord(jobID string, record *Record) error {
	if err := checkName("job ID", jobID); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	jobDir := fs.JobDir(jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	finalPath := fs.recordPath(jobID)
	err = writeAtomic(finalPath, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	slog.Debug("Record saved", "job_id", jobID, "path", finalPath)
	return nil
}

// LoadRecord retrieves the record for the given job.
func (fs *FSStore) LoadRecord(jobID string) (*Record, error) {
	if err := checkName("job ID", jobID); err != nil {
		return nil, err
	}

	path := fs.recordPath(jobID)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{JobID: jobID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize record: %w", err)
	}

	slog.Debug("Record loaded", "job_id", jobID, "path", path)
	return &record, nil
}

// ListRecords returns metadata for all available records.
func (fs *FSStore) ListRecords() ([]RecordInfo, error) {
	jobsDir := filepath.Join(fs.baseDir, "jobs")

	entries, err := os.ReadDir(jobsDir)
	if os.IsNotExist(err) {
		// No records exist yet
		return []RecordInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	infos := []RecordInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		jobID := entry.Name()
		if _, err := os.Stat(fs.recordPath(jobID)); os.IsNotExist(err) {
			continue // Skip directories without pattern.json
		}

		record, err := fs.LoadRecord(jobID)
		if err != nil {
			slog.Warn("Failed to load record for listing", "job_id", jobID, "error", err)
			continue // Skip corrupted records
		}

		infos = append(infos, record.ToInfo())
	}

	slog.Debug("Listed records", "count", len(infos))
	return infos, nil
}

// DeleteRecord removes the record and all associated artifacts.
func (fs *FSStore) DeleteRecord(jobID string) error {
	if err := checkName("job ID", jobID); err != nil {
		return err
	}

	jobDir := fs.JobDir(jobID)
	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		return &NotFoundError{JobID: jobID}
	} else if err != nil {
		return fmt.Errorf("failed to stat job directory: %w", err)
	}

	if err := os.RemoveAll(jobDir); err != nil {
		return fmt.Errorf("failed to remove job directory: %w", err)
	}

	slog.Debug("Record deleted", "job_id", jobID, "path", jobDir)
	return nil
}

// SaveArtifact atomically writes a named artifact into the job directory.
func (fs *FSStore) SaveArtifact(jobID, name string, write func(io.Writer) error) error {
	if err := checkName("job ID", jobID); err != nil {
		return err
	}
	if err := checkName("artifact name", name); err != nil {
		return err
	}

	jobDir := fs.JobDir(jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	path := filepath.Join(jobDir, name)
	if err := writeAtomic(path, write); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	slog.Debug("Artifact saved", "job_id", jobID, "path", path)
	return nil
}

// ArtifactPath returns the path of an existing artifact.
func (fs *FSStore) ArtifactPath(jobID, name string) (string, error) {
	if err := checkName("job ID", jobID); err != nil {
		return "", err
	}
	if err := checkName("artifact name", name); err != nil {
		return "", err
	}

	path := filepath.Join(fs.JobDir(jobID), name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", &NotFoundError{JobID: jobID}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat artifact: %w", err)
	}
	return path, nil
}

// OpenTrace starts <baseDir>/jobs/<jobID>/trace.jsonl.
func (fs *FSStore) OpenTrace(jobID string) (*TraceWriter, error) {
	return NewTraceWriter(fs.baseDir, jobID)
}

// LoadTrace reads the trace of a job.
func (fs *FSStore) LoadTrace(jobID string) ([]TraceEntry, error) {
	return ReadTrace(fs.baseDir, jobID)
}
