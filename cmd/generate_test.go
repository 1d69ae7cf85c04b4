package main

import (
	"testing"

	"github.com/cwbudde/dotgrid/internal/dots"
	"github.com/cwbudde/dotgrid/internal/encode"
)

func TestResolveOutput(t *testing.T) {
	p := dots.Params{Width: 1920, Height: 1080, Radius: 3, Spacing: 12, Pattern: dots.Poisson}

	tests := []struct {
		name       string
		out        string
		format     string
		wantPath   string
		wantFormat encode.Format
		wantErr    bool
	}{
		{"defaults", "", "", "dotted_image_1920x1080_3_12_poisson.png", encode.FormatPNG, false},
		{"svg by flag", "", "svg", "dotted_image_1920x1080_3_12_poisson.svg", encode.FormatSVG, false},
		{"svg by extension", "out/dots.svg", "", "out/dots.svg", encode.FormatSVG, false},
		{"unknown extension", "dots.img", "", "dots.img", encode.FormatPNG, false},
		{"flag beats extension", "dots.svg", "png", "dots.svg", encode.FormatPNG, false},
		{"bad format", "", "jpeg", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, format, err := resolveOutput(tt.out, tt.format, p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if path != tt.wantPath || format != tt.wantFormat {
				t.Errorf("resolveOutput() = %q, %q, want %q, %q", path, format, tt.wantPath, tt.wantFormat)
			}
		})
	}
}
