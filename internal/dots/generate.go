package dots

import (
	"log/slog"
	"time"
)

// Options carries optional hooks for Generate.
type Options struct {
	// Progress receives sampler snapshots in Poisson mode.
	Progress      func(SampleProgress)
	ProgressEvery int
}

// Generate validates params, places the dot centers and renders them.
func Generate(params Params) (*Result, error) {
	return GenerateWithOptions(params, Options{})
}

// GenerateWithOptions is Generate with progress reporting.
func GenerateWithOptions(params Params, opts Options) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	renderer, err := NewRenderer(params.Width, params.Height, params.Radius)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{Params: params}

	switch params.Pattern {
	case Grid:
		result.Points = GridCenters(params.Width, params.Height, params.Spacing)
	case Poisson:
		seed := uint64(time.Now().UnixNano())
		if params.Seed != nil {
			seed = *params.Seed
		}
		samplerOpts := []SamplerOption{
			WithSeed(seed),
			WithMaxAttempts(params.Attempts()),
		}
		if opts.Progress != nil {
			samplerOpts = append(samplerOpts, WithProgress(opts.ProgressEvery, opts.Progress))
		}

		sampler, err := NewDiscSampler(params.Width, params.Height, float64(params.Spacing), samplerOpts...)
		if err != nil {
			return nil, err
		}
		result.Seed = seed
		result.Points = sampler.Sample()
	}

	result.Canvas = renderer.Render(result.Points)

	slog.Debug("Generated dot pattern",
		"pattern", params.Pattern.String(),
		"width", params.Width,
		"height", params.Height,
		"dots", len(result.Points),
		"elapsed", time.Since(start),
	)

	return result, nil
}
