package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/dotgrid/internal/dots"
)

// JobConfig holds the parameters of a pattern job (persisted copy).
// This avoids import cycles with server package.
type JobConfig struct {
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Radius      int          `json:"radius"`
	Spacing     int          `json:"spacing"`
	Pattern     dots.Pattern `json:"pattern"`
	Seed        *uint64      `json:"seed,omitempty"`
	MaxAttempts *int         `json:"maxAttempts,omitempty"` // nil = dots.DefaultMaxAttempts
	Coverage    float64      `json:"coverage,omitempty"`    // target ink coverage, 0 = use Radius
}

// Params converts the config into core parameters.
func (c JobConfig) Params() dots.Params {
	return dots.Params{
		Width:       c.Width,
		Height:      c.Height,
		Radius:      c.Radius,
		Spacing:     c.Spacing,
		Pattern:     c.Pattern,
		Seed:        c.Seed,
		MaxAttempts: c.MaxAttempts,
	}
}

// Stats summarizes a generated pattern.
type Stats struct {
	Dots      int     `json:"dots"`
	Coverage  float64 `json:"coverage"`
	ElapsedMS int64   `json:"elapsedMs"`
}

// Record is a persisted pattern: the configuration, the seed actually used
// and the accepted centers. Re-rendering Points at Config.Radius reproduces
// the image exactly.
type Record struct {
	// JobID is the unique identifier for this pattern job
	JobID string `json:"jobId"`

	Config JobConfig `json:"config"`

	// Seed is the sampler seed used, which may differ from Config.Seed when
	// none was requested.
	Seed uint64 `json:"seed"`

	// Radius is the rendered dot radius (tuned when Config.Coverage > 0)
	Radius int `json:"radius"`

	Points []dots.Point `json:"points"`

	Stats Stats `json:"stats"`

	// Timestamp records when this record was created
	Timestamp time.Time `json:"timestamp"`
}

// RecordInfo contains metadata about a record without the point data.
// Used for listing records without loading large point arrays.
type RecordInfo struct {
	JobID     string       `json:"jobId"`
	Timestamp time.Time    `json:"timestamp"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Pattern   dots.Pattern `json:"pattern"`
	Radius    int          `json:"radius"`
	Spacing   int          `json:"spacing"`
	Seed      uint64       `json:"seed"`
	Dots      int          `json:"dots"`
}

// NewRecord creates a record from a finished generation.
func NewRecord(jobID string, config JobConfig, res *dots.Result, elapsed time.Duration) *Record {
	return &Record{
		JobID:  jobID,
		Config: config,
		Seed:   res.Seed,
		Radius: res.Params.Radius,
		Points: res.Points,
		Stats: Stats{
			Dots:      len(res.Points),
			Coverage:  res.Canvas.Coverage(),
			ElapsedMS: elapsed.Milliseconds(),
		},
		Timestamp: time.Now(),
	}
}

// ToInfo converts a full Record to RecordInfo (metadata only).
func (r *Record) ToInfo() RecordInfo {
	return RecordInfo{
		JobID:     r.JobID,
		Timestamp: r.Timestamp,
		Width:     r.Config.Width,
		Height:    r.Config.Height,
		Pattern:   r.Config.Pattern,
		Radius:    r.Radius,
		Spacing:   r.Config.Spacing,
		Seed:      r.Seed,
		Dots:      len(r.Points),
	}
}

// Validate checks if the record has valid data.
// Returns an error if any required field is missing or invalid.
func (r *Record) Validate() error {
	if r.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Radius < 0 {
		return &ValidationError{Field: "Radius", Reason: "cannot be negative"}
	}

	params := r.Config.Params()
	params.Radius = r.Radius
	if err := params.Validate(); err != nil {
		return &ValidationError{Field: "Config", Reason: err.Error()}
	}

	if r.Stats.Dots != len(r.Points) {
		return &ValidationError{
			Field:  "Points",
			Reason: fmt.Sprintf("length mismatch: stats report %d dots, got %d", r.Stats.Dots, len(r.Points)),
		}
	}
	w, h := float64(r.Config.Width), float64(r.Config.Height)
	for i, p := range r.Points {
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			return &ValidationError{Field: "Points", Reason: fmt.Sprintf("point %d out of bounds", i)}
		}
	}
	return nil
}

// Render re-renders the stored centers.
func (r *Record) Render() (*dots.Result, error) {
	params := r.Config.Params()
	params.Radius = r.Radius
	renderer, err := dots.NewRenderer(params.Width, params.Height, params.Radius)
	if err != nil {
		return nil, err
	}
	return &dots.Result{
		Params: params,
		Seed:   r.Seed,
		Points: r.Points,
		Canvas: renderer.Render(r.Points),
	}, nil
}

// ValidationError represents a record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
