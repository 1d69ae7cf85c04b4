package encode

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/dotgrid/internal/dots"
)

func gridResult(t *testing.T, w, h, radius, spacing int) *dots.Result {
	t.Helper()
	res, err := dots.Generate(dots.Params{Width: w, Height: h, Radius: radius, Spacing: spacing, Pattern: dots.Grid})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return res
}

func TestFileName(t *testing.T) {
	p := dots.Params{Width: 1920, Height: 1080, Radius: 3, Spacing: 12, Pattern: dots.Poisson}

	if got, want := FileName(p, FormatPNG), "dotted_image_1920x1080_3_12_poisson.png"; got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
	if got, want := FileName(p, FormatSVG), "dotted_image_1920x1080_3_12_poisson.svg"; got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("PNG"); err != nil || f != FormatPNG {
		t.Errorf("ParseFormat(PNG) = %q, %v", f, err)
	}
	if _, err := ParseFormat("jpeg"); err == nil {
		t.Error("expected error for jpeg")
	}
}

func TestWritePNGRoundTrip(t *testing.T) {
	res := gridResult(t, 32, 16, 2, 8)

	var buf bytes.Buffer
	if err := WritePNG(&buf, res.Canvas); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			black := r == 0
			if black != res.Canvas.IsSet(x, y) {
				t.Errorf("pixel (%d,%d): decoded black=%v, canvas=%v", x, y, black, res.Canvas.IsSet(x, y))
			}
		}
	}
}

func TestWriteSVG(t *testing.T) {
	res := gridResult(t, 40, 40, 3, 10)

	var buf bytes.Buffer
	if err := Write(&buf, res, FormatSVG); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if got := strings.Count(out, "<circle"); got != 16 {
		t.Errorf("got %d circles, want 16", got)
	}
	if !strings.Contains(out, `width="40"`) {
		t.Errorf("missing canvas width in %q", out[:min(len(out), 200)])
	}
}

func TestWriteSVGZeroRadius(t *testing.T) {
	res := gridResult(t, 20, 20, 0, 10)

	var buf bytes.Buffer
	if err := WriteSVG(&buf, res); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<circle") {
		t.Error("zero radius dots should be single-pixel rects")
	}
}

var errDiskFull = errors.New("disk full")

// shortWriter accepts limit bytes, then fails.
type shortWriter struct {
	limit int
	buf   bytes.Buffer
}

func (sw *shortWriter) Write(p []byte) (int, error) {
	if sw.buf.Len()+len(p) > sw.limit {
		return 0, errDiskFull
	}
	return sw.buf.Write(p)
}

func TestWriteSVGWriteError(t *testing.T) {
	res := gridResult(t, 40, 40, 3, 10)

	sw := &shortWriter{limit: 64}
	err := WriteSVG(sw, res)
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("WriteSVG error = %v, want %v", err, errDiskFull)
	}
	if sw.buf.Len() > sw.limit {
		t.Errorf("wrote %d bytes past the failure", sw.buf.Len())
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name          string
		w, h, maxSide int
		wantW, wantH  int
	}{
		{"landscape", 200, 100, 50, 50, 25},
		{"portrait", 100, 400, 100, 25, 100},
		{"already small", 30, 20, 64, 30, 20},
		{"disabled", 30, 20, 0, 30, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := gridResult(t, tt.w, tt.h, 1, 10)
			thumb := Thumbnail(res.Canvas, tt.maxSide)
			if thumb.Bounds().Dx() != tt.wantW || thumb.Bounds().Dy() != tt.wantH {
				t.Errorf("thumbnail = %v, want %dx%d", thumb.Bounds(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.png")
	res := gridResult(t, 16, 16, 1, 4)

	err := SaveFile(path, func(w io.Writer) error { return WritePNG(w, res.Canvas) })
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.png" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}
