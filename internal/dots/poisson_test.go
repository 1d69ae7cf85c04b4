package dots

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func samplePoints(t *testing.T, width, height int, minDist float64, opts ...SamplerOption) []Point {
	t.Helper()
	s, err := NewDiscSampler(width, height, minDist, opts...)
	if err != nil {
		t.Fatalf("NewDiscSampler: %v", err)
	}
	return s.Sample()
}

func TestDiscSamplerMinimumDistance(t *testing.T) {
	const minDist = 7.0
	points := samplePoints(t, 200, 150, minDist, WithSeed(1))

	if len(points) < 2 {
		t.Fatalf("expected many points, got %d", len(points))
	}

	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d := math.Hypot(points[i].X-points[j].X, points[i].Y-points[j].Y)
			if d < minDist {
				t.Fatalf("points %d and %d are %f apart, want >= %f", i, j, d, minDist)
			}
		}
	}
}

func TestDiscSamplerBounds(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		minDist       float64
	}{
		{"square", 64, 64, 4},
		{"wide", 300, 20, 3},
		{"tall", 15, 200, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := samplePoints(t, tt.width, tt.height, tt.minDist, WithSeed(99))
			for i, p := range points {
				if p.X < 0 || p.X >= float64(tt.width) || p.Y < 0 || p.Y >= float64(tt.height) {
					t.Errorf("point %d out of bounds: %v", i, p)
				}
			}
		})
	}
}

func TestDiscSamplerDeterministic(t *testing.T) {
	a := samplePoints(t, 120, 90, 5, WithSeed(42))
	b := samplePoints(t, 120, 90, 5, WithSeed(42))

	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different sequences (%d vs %d points)", len(a), len(b))
	}

	c := samplePoints(t, 120, 90, 5, WithSeed(43))
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical sequences")
	}
}

func TestDiscSamplerInjectedRand(t *testing.T) {
	a := samplePoints(t, 50, 50, 4, WithRand(rand.New(rand.NewSource(5))))
	b := samplePoints(t, 50, 50, 4, WithSeed(5))

	if !reflect.DeepEqual(a, b) {
		t.Error("WithRand and WithSeed with the same seed should agree")
	}
}

func TestDiscSamplerDensity(t *testing.T) {
	points := samplePoints(t, 100, 100, 5, WithSeed(3))

	// area/minDist² = 400; Bridson sampling fills well over a quarter of that.
	if len(points) < 100 {
		t.Errorf("expected a dense fill, got %d points", len(points))
	}
}

func TestDiscSamplerDegenerate(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		minDist       float64
		opts          []SamplerOption
	}{
		{"minDist equals side", 10, 10, 10, nil},
		{"minDist exceeds sides", 100, 50, 100, nil},
		{"zero attempts", 100, 100, 2, []SamplerOption{WithMaxAttempts(0)}},
		{"negative attempts", 100, 100, 2, []SamplerOption{WithMaxAttempts(-3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]SamplerOption{WithSeed(11)}, tt.opts...)
			points := samplePoints(t, tt.width, tt.height, tt.minDist, opts...)
			if len(points) != 1 {
				t.Errorf("got %d points, want 1", len(points))
			}
		})
	}
}

func TestDiscSamplerInvalidParams(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		minDist       float64
		wantKind      error
		wantField     string
	}{
		{"zero width", 0, 10, 1, ErrInvalidDimension, "width"},
		{"negative height", 10, -1, 1, ErrInvalidDimension, "height"},
		{"zero distance", 10, 10, 0, ErrInvalidDistance, "minDist"},
		{"negative distance", 10, 10, -2, ErrInvalidDistance, "minDist"},
		{"NaN distance", 10, 10, math.NaN(), ErrInvalidDistance, "minDist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDiscSampler(tt.width, tt.height, tt.minDist)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("got %v, want %v", err, tt.wantKind)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Field != tt.wantField {
				t.Errorf("expected ParamError on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestDiscSamplerProgress(t *testing.T) {
	var events []SampleProgress
	s, err := NewDiscSampler(80, 80, 4, WithSeed(8), WithProgress(10, func(p SampleProgress) {
		events = append(events, p)
	}))
	if err != nil {
		t.Fatal(err)
	}
	points := s.Sample()

	if len(events) < 2 {
		t.Fatalf("expected periodic and final progress, got %d events", len(events))
	}

	last := events[len(events)-1]
	if !last.Done || last.Accepted != len(points) || last.Active != 0 {
		t.Errorf("final progress = %+v, want done with %d accepted", last, len(points))
	}

	for _, e := range events[:len(events)-1] {
		if e.Accepted%10 != 0 || e.Done {
			t.Errorf("unexpected intermediate event %+v", e)
		}
	}
}

func TestDiscSamplerSeedReported(t *testing.T) {
	s, err := NewDiscSampler(10, 10, 2, WithSeed(1234))
	if err != nil {
		t.Fatal(err)
	}
	if s.Seed() != 1234 {
		t.Errorf("Seed = %d, want 1234", s.Seed())
	}
}
