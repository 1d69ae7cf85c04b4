package dots

import (
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// SampleProgress is a snapshot of a running DiscSampler.
type SampleProgress struct {
	Accepted   int  `json:"accepted"`
	Active     int  `json:"active"`
	Iterations int  `json:"iterations"`
	Done       bool `json:"done"`
}

// SamplerOption configures a DiscSampler.
type SamplerOption func(*DiscSampler)

// WithMaxAttempts sets the candidates tried per selected active point.
// Values <= 0 retire every point immediately.
func WithMaxAttempts(n int) SamplerOption {
	return func(s *DiscSampler) {
		s.maxAttempts = n
	}
}

// WithSeed seeds the sampler's random source.
func WithSeed(seed uint64) SamplerOption {
	return func(s *DiscSampler) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(int64(seed)))
	}
}

// WithRand injects a random source. The sampler takes ownership of it.
func WithRand(rng *rand.Rand) SamplerOption {
	return func(s *DiscSampler) {
		s.rng = rng
	}
}

// WithProgress reports progress every `every` acceptances and once when
// sampling terminates.
func WithProgress(every int, fn func(SampleProgress)) SamplerOption {
	return func(s *DiscSampler) {
		s.progressEvery = every
		s.progress = fn
	}
}

// DiscSampler produces a Poisson-disc point set with the active-list
// dart-throwing algorithm.
type DiscSampler struct {
	width       float64
	height      float64
	minDist     float64
	maxAttempts int
	seed        uint64
	rng         *rand.Rand

	progressEvery int
	progress      func(SampleProgress)

	grid   *BucketGrid
	active []int
}

// NewDiscSampler validates its parameters and prepares a sampler. Without
// WithSeed or WithRand the source is seeded from the clock; Seed reports
// the value used.
func NewDiscSampler(width, height int, minDist float64, opts ...SamplerOption) (*DiscSampler, error) {
	if width <= 0 {
		return nil, &ParamError{Kind: ErrInvalidDimension, Field: "width", Value: width, Reason: "must be positive"}
	}
	if height <= 0 {
		return nil, &ParamError{Kind: ErrInvalidDimension, Field: "height", Value: height, Reason: "must be positive"}
	}
	if !(minDist > 0) || math.IsInf(minDist, 1) {
		return nil, &ParamError{Kind: ErrInvalidDistance, Field: "minDist", Value: minDist, Reason: "must be positive and finite"}
	}

	s := &DiscSampler{
		width:       float64(width),
		height:      float64(height),
		minDist:     minDist,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		WithSeed(uint64(time.Now().UnixNano()))(s)
	}

	s.grid = NewBucketGrid(width, height, minDist)
	return s, nil
}

// Seed returns the seed of the random source, or 0 when WithRand was used.
func (s *DiscSampler) Seed() uint64 {
	return s.seed
}

// Sample runs the sampler to completion and returns the accepted points in
// acceptance order. It must be called at most once per sampler.
func (s *DiscSampler) Sample() []Point {
	s.accept(Point{
		X: below(s.rng.Float64()*s.width, s.width),
		Y: below(s.rng.Float64()*s.height, s.height),
	})

	// No second dot fits along either axis.
	if s.minDist >= math.Max(s.width, s.height) {
		s.active = s.active[:0]
	}

	iterations := 0
	for len(s.active) > 0 {
		iterations++
		slot := s.rng.Intn(len(s.active))
		origin := s.grid.points[s.active[slot]]

		if !s.spawn(origin) {
			// swap-to-end removal
			last := len(s.active) - 1
			s.active[slot] = s.active[last]
			s.active = s.active[:last]
		} else if s.progress != nil && s.progressEvery > 0 && s.grid.Len()%s.progressEvery == 0 {
			s.progress(SampleProgress{Accepted: s.grid.Len(), Active: len(s.active), Iterations: iterations})
		}
	}

	if s.progress != nil {
		s.progress(SampleProgress{Accepted: s.grid.Len(), Iterations: iterations, Done: true})
	}

	slog.Debug("Poisson sampling complete",
		"accepted", s.grid.Len(),
		"iterations", iterations,
		"min_dist", s.minDist,
	)

	return s.grid.Points()
}

// spawn tries up to maxAttempts annulus candidates around origin and
// accepts the first valid one.
func (s *DiscSampler) spawn(origin Point) bool {
	for i := 0; i < s.maxAttempts; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		radius := s.minDist + s.rng.Float64()*s.minDist
		c := Point{
			X: origin.X + radius*math.Cos(angle),
			Y: origin.Y + radius*math.Sin(angle),
		}

		if !s.inBounds(c) {
			continue
		}
		if s.grid.HasNeighborWithin(c, s.minDist) {
			continue
		}

		s.accept(c)
		return true
	}
	return false
}

func (s *DiscSampler) accept(p Point) {
	s.active = append(s.active, s.grid.Len())
	s.grid.Insert(p)
}

func (s *DiscSampler) inBounds(p Point) bool {
	return p.X >= 0 && p.X < s.width && p.Y >= 0 && p.Y < s.height
}

// below keeps v inside [0, limit) when a product rounds up to limit.
func below(v, limit float64) float64 {
	if v >= limit {
		return math.Nextafter(limit, 0)
	}
	return v
}
