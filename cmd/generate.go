package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/dotgrid/internal/dots"
	"github.com/cwbudde/dotgrid/internal/encode"
	"github.com/cwbudde/dotgrid/internal/tune"
	"github.com/spf13/cobra"
)

var (
	width       int
	height      int
	radius      int
	spacing     int
	patternName string
	seed        uint64
	maxAttempts int
	preset      string
	outPath     string
	formatName  string
	thumbPath   string
	thumbSize   int
	coverage    float64
	tuneIters   int
	tunePop     int
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Render a dot pattern to an image file",
	Long: `Renders filled dots on a regular grid or in a Poisson-disc (blue-noise)
distribution and writes the result as a 1-bit PNG or an SVG.

Without --out the file is named dotted_image_<w>x<h>_<radius>_<spacing>_<pattern>.<ext>
in the current directory. Presets are <size>_<aspect> with sizes hd, 2k, 4k
and aspects h (landscape), v (portrait), s (square).`,
	Example: `  dotgrid generate --preset 4k_v --radius 4 --spacing 16 --pattern poisson
  dotgrid generate --width 800 --height 600 --spacing 10 --coverage 0.25 --out dots.svg`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&width, "width", 1920, "Image width in pixels")
	generateCmd.Flags().IntVar(&height, "height", 1080, "Image height in pixels")
	generateCmd.Flags().IntVar(&radius, "radius", 3, "Dot radius in pixels")
	generateCmd.Flags().IntVar(&spacing, "spacing", 12, "Grid pitch, or minimum center distance for poisson")
	generateCmd.Flags().StringVar(&patternName, "pattern", "grid", "Dot pattern: grid or poisson (aliases g, random, r)")
	generateCmd.Flags().Uint64Var(&seed, "seed", 0, "Sampler seed (random if not set)")
	generateCmd.Flags().IntVar(&maxAttempts, "max-attempts", dots.DefaultMaxAttempts, "Candidates tried per active point")
	generateCmd.Flags().StringVar(&preset, "preset", "", "Size preset, e.g. hd_h, 2k_s, 4k_v (overrides --width/--height)")
	generateCmd.Flags().StringVar(&outPath, "out", "", "Output path (default: conventional file name)")
	generateCmd.Flags().StringVar(&formatName, "format", "", "Output format: png or svg (default: from --out extension, else png)")
	generateCmd.Flags().StringVar(&thumbPath, "thumb", "", "Also write a PNG preview to this path")
	generateCmd.Flags().IntVar(&thumbSize, "thumb-size", 256, "Longer side of the preview in pixels")
	generateCmd.Flags().Float64Var(&coverage, "coverage", 0, "Target ink coverage in (0, 1); tunes --radius")
	generateCmd.Flags().IntVar(&tuneIters, "tune-iters", 30, "Optimizer iterations for --coverage")
	generateCmd.Flags().IntVar(&tunePop, "tune-pop", 20, "Optimizer population for --coverage")

	generateCmd.MarkFlagsMutuallyExclusive("preset", "width")
	generateCmd.MarkFlagsMutuallyExclusive("preset", "height")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	pattern, err := dots.ParsePattern(patternName)
	if err != nil {
		return err
	}

	params := dots.Params{
		Width:       width,
		Height:      height,
		Radius:      radius,
		Spacing:     spacing,
		Pattern:     pattern,
		MaxAttempts: &maxAttempts,
	}
	if preset != "" {
		params.Width, params.Height, err = parsePreset(preset)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("seed") {
		s := seed
		params.Seed = &s
	}
	if coverage < 0 || coverage >= 1 {
		return fmt.Errorf("--coverage must be in [0, 1), got %v", coverage)
	}

	slog.Info("Generating pattern",
		"pattern", params.Pattern.String(),
		"width", params.Width,
		"height", params.Height,
		"radius", params.Radius,
		"spacing", params.Spacing,
	)

	start := time.Now()
	res, err := dots.GenerateWithOptions(params, dots.Options{
		Progress: func(p dots.SampleProgress) {
			slog.Debug("Sampler progress", "accepted", p.Accepted, "active", p.Active, "iterations", p.Iterations)
		},
		ProgressEvery: 1000,
	})
	if err != nil {
		return err
	}

	if coverage > 0 {
		optimizer := tune.NewMayfly(tuneIters, tunePop, int64(res.Seed))
		tuned, result, err := tune.ApplyCoverage(res, coverage, 0, optimizer)
		if err != nil {
			return fmt.Errorf("coverage tuning failed: %w", err)
		}
		slog.Info("Tuned dot radius", "radius", result.Radius, "coverage", result.Coverage, "evals", result.Evals)
		res = tuned
	}
	elapsed := time.Since(start)

	path, format, err := resolveOutput(outPath, formatName, res.Params)
	if err != nil {
		return err
	}
	if err := encode.SaveFile(path, func(w io.Writer) error { return encode.Write(w, res, format) }); err != nil {
		return err
	}

	if thumbPath != "" {
		thumb := encode.Thumbnail(res.Canvas, thumbSize)
		if err := encode.SaveFile(thumbPath, func(w io.Writer) error { return encode.WriteImagePNG(w, thumb) }); err != nil {
			return err
		}
	}

	slog.Info("Pattern complete",
		"elapsed", elapsed,
		"dots", len(res.Points),
		"seed", res.Seed,
		"coverage", res.Canvas.Coverage(),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d dots, %.1f%% coverage", path, len(res.Points), res.Canvas.Coverage()*100)
	if res.Params.Pattern == dots.Poisson {
		fmt.Fprintf(cmd.OutOrStdout(), ", seed %d", res.Seed)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ")")

	return nil
}

// resolveOutput picks the output path and format. An explicit format wins;
// otherwise the extension of out decides, defaulting to PNG.
func resolveOutput(out, format string, p dots.Params) (string, encode.Format, error) {
	var f encode.Format
	switch {
	case format != "":
		parsed, err := encode.ParseFormat(format)
		if err != nil {
			return "", "", err
		}
		f = parsed
	case out != "":
		ext := strings.TrimPrefix(filepath.Ext(out), ".")
		parsed, err := encode.ParseFormat(ext)
		if err != nil {
			f = encode.FormatPNG
		} else {
			f = parsed
		}
	default:
		f = encode.FormatPNG
	}

	if out == "" {
		out = encode.FileName(p, f)
	}
	return out, f, nil
}
