// Package tune picks a dot radius so the rendered pattern reaches a target
// ink coverage.
package tune

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/dotgrid/internal/dots"
)

// Result holds the outcome of a radius search.
type Result struct {
	Radius   int     `json:"radius"`
	Coverage float64 `json:"coverage"`
	Cost     float64 `json:"cost"` // |coverage - target|
	Evals    int     `json:"evals"`
}

// CoverageTuner searches dot radii for a fixed set of centers.
type CoverageTuner struct {
	width   int
	height  int
	centers []dots.Point
	cache   map[int]float64
	evals   int
}

// NewCoverageTuner prepares a tuner for centers on a width x height canvas.
func NewCoverageTuner(width, height int, centers []dots.Point) *CoverageTuner {
	return &CoverageTuner{
		width:   width,
		height:  height,
		centers: centers,
		cache:   make(map[int]float64),
	}
}

// Coverage renders the centers at radius and returns the foreground share.
// Results are memoized per radius.
func (ct *CoverageTuner) Coverage(radius int) (float64, error) {
	if c, ok := ct.cache[radius]; ok {
		return c, nil
	}
	r, err := dots.NewRenderer(ct.width, ct.height, radius)
	if err != nil {
		return 0, err
	}
	ct.evals++
	c := r.Render(ct.centers).Coverage()
	ct.cache[radius] = c
	return c, nil
}

// Tune finds the integer radius in [0, maxRadius] whose coverage is closest
// to target. The optimizer explores the continuous range; the floor and
// ceiling of its answer are then compared directly.
func (ct *CoverageTuner) Tune(target float64, maxRadius int, optimizer Optimizer) (*Result, error) {
	if !(target > 0 && target < 1) {
		return nil, fmt.Errorf("coverage target must be in (0, 1), got %v", target)
	}
	if maxRadius < 0 {
		return nil, &dots.ParamError{Kind: dots.ErrInvalidRadius, Field: "maxRadius", Value: maxRadius, Reason: "cannot be negative"}
	}

	cost := func(radius int) float64 {
		c, err := ct.Coverage(radius)
		if err != nil {
			return math.Inf(1)
		}
		return math.Abs(c - target)
	}

	eval := func(x []float64) float64 {
		r := int(math.Round(x[0]))
		if r < 0 || r > maxRadius {
			return math.Inf(1)
		}
		return cost(r)
	}

	lower := []float64{0}
	upper := []float64{float64(maxRadius)}
	best, _ := optimizer.Run(eval, lower, upper, 1)

	x := 0.0
	if len(best) > 0 && !math.IsNaN(best[0]) {
		x = math.Max(0, math.Min(float64(maxRadius), best[0]))
	}

	result := &Result{Radius: -1, Cost: math.Inf(1)}
	for _, r := range []int{int(math.Floor(x)), int(math.Ceil(x))} {
		if c := cost(r); c < result.Cost {
			result.Radius = r
			result.Cost = c
		}
	}
	result.Coverage, _ = ct.Coverage(result.Radius)
	result.Evals = ct.evals

	slog.Debug("Coverage tuning complete",
		"target", target,
		"radius", result.Radius,
		"coverage", result.Coverage,
		"evals", result.Evals,
	)

	return result, nil
}

// ApplyCoverage re-renders res with the radius that best matches the target
// coverage. maxRadius <= 0 defaults to the pattern spacing.
func ApplyCoverage(res *dots.Result, target float64, maxRadius int, optimizer Optimizer) (*dots.Result, *Result, error) {
	if maxRadius <= 0 {
		maxRadius = res.Params.Spacing
	}

	p := res.Params
	tuner := NewCoverageTuner(p.Width, p.Height, res.Points)
	tuned, err := tuner.Tune(target, maxRadius, optimizer)
	if err != nil {
		return nil, nil, err
	}

	p.Radius = tuned.Radius
	renderer, err := dots.NewRenderer(p.Width, p.Height, p.Radius)
	if err != nil {
		return nil, nil, err
	}

	return &dots.Result{
		Params: p,
		Seed:   res.Seed,
		Points: res.Points,
		Canvas: renderer.Render(res.Points),
	}, tuned, nil
}
