package dots

import (
	"strings"
)

// DefaultMaxAttempts is the number of candidates tried around an active
// point before it is retired.
const DefaultMaxAttempts = 30

// Point is a dot center in canvas coordinates.
type Point struct {
	X, Y float64
}

// Pattern selects how dot centers are placed.
type Pattern int

const (
	// Grid places dots on a regular lattice.
	Grid Pattern = iota
	// Poisson scatters dots with Poisson-disc sampling.
	Poisson
)

func (p Pattern) String() string {
	switch p {
	case Grid:
		return "grid"
	case Poisson:
		return "poisson"
	default:
		return "unknown"
	}
}

// ParsePattern maps a user-facing identifier to a Pattern.
// Accepted: grid, g, poisson, random, r (case-insensitive).
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid", "g":
		return Grid, nil
	case "poisson", "random", "r":
		return Poisson, nil
	}
	return 0, &ParamError{Kind: ErrInvalidPattern, Field: "pattern", Value: s, Reason: "must be grid or poisson"}
}

// MarshalText implements encoding.TextMarshaler.
func (p Pattern) MarshalText() ([]byte, error) {
	if p != Grid && p != Poisson {
		return nil, &ParamError{Kind: ErrInvalidPattern, Field: "pattern", Value: int(p), Reason: "unknown variant"}
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pattern) UnmarshalText(text []byte) error {
	parsed, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Params describes one dot pattern. Spacing is the grid pitch in Grid mode
// and the minimum center distance in Poisson mode.
type Params struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Radius      int     `json:"radius"`
	Spacing     int     `json:"spacing"`
	Pattern     Pattern `json:"pattern"`
	Seed        *uint64 `json:"seed,omitempty"`
	MaxAttempts *int    `json:"maxAttempts,omitempty"` // nil = DefaultMaxAttempts
}

// Attempts returns the candidates tried per active point, applying the default.
func (p Params) Attempts() int {
	if p.MaxAttempts == nil {
		return DefaultMaxAttempts
	}
	return *p.MaxAttempts
}

// Validate checks every parameter before any work is done.
func (p Params) Validate() error {
	if p.Width <= 0 {
		return &ParamError{Kind: ErrInvalidDimension, Field: "width", Value: p.Width, Reason: "must be positive"}
	}
	if p.Height <= 0 {
		return &ParamError{Kind: ErrInvalidDimension, Field: "height", Value: p.Height, Reason: "must be positive"}
	}
	if p.Spacing <= 0 {
		return &ParamError{Kind: ErrInvalidDistance, Field: "spacing", Value: p.Spacing, Reason: "must be positive"}
	}
	if p.Radius < 0 {
		return &ParamError{Kind: ErrInvalidRadius, Field: "radius", Value: p.Radius, Reason: "cannot be negative"}
	}
	if p.Pattern != Grid && p.Pattern != Poisson {
		return &ParamError{Kind: ErrInvalidPattern, Field: "pattern", Value: int(p.Pattern), Reason: "unknown variant"}
	}
	if p.Attempts() < 0 {
		return &ParamError{Kind: ErrInvalidAttempts, Field: "maxAttempts", Value: p.Attempts(), Reason: "cannot be negative"}
	}
	return nil
}

// Result is the output of Generate.
type Result struct {
	Params Params
	Seed   uint64 // seed actually used (Poisson only)
	Points []Point
	Canvas *Canvas
}
