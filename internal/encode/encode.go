// Package encode turns rendered dot patterns into files: 1-bit PNG, SVG and
// scaled-down previews.
package encode

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/dotgrid/internal/dots"
)

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// FileName returns the conventional output name,
// dotted_image_{width}x{height}_{radius}_{spacing}_{pattern}.{ext}.
func FileName(p dots.Params, format Format) string {
	return fmt.Sprintf("dotted_image_%dx%d_%d_%d_%s.%s",
		p.Width, p.Height, p.Radius, p.Spacing, p.Pattern, format)
}

// WritePNG encodes the canvas as a 1-bit paletted PNG.
func WritePNG(w io.Writer, canvas *dots.Canvas) error {
	if err := png.Encode(w, canvas.Paletted()); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// WriteImagePNG encodes an arbitrary image, e.g. a thumbnail.
func WriteImagePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Write encodes res in the given format.
func Write(w io.Writer, res *dots.Result, format Format) error {
	switch format {
	case FormatPNG:
		return WritePNG(w, res.Canvas)
	case FormatSVG:
		return WriteSVG(w, res)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// SaveFile writes through a temp file in the target directory and renames
// it into place, so readers never observe a partial image.
func SaveFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename output file: %w", err)
	}
	return nil
}
