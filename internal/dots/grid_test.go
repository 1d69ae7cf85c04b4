package dots

import "testing"

func TestGridCentersExact(t *testing.T) {
	centers := GridCenters(64, 64, 8)

	if len(centers) != 64 {
		t.Fatalf("got %d centers, want 64", len(centers))
	}

	for k, c := range centers {
		want := Point{X: float64(4 + 8*(k%8)), Y: float64(4 + 8*(k/8))}
		if c != want {
			t.Errorf("center %d = %v, want %v", k, c, want)
		}
	}
}

func TestGridCentersPartialEdge(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		spacing       int
		wantCols      int
		wantRows      int
		wantFirst     Point
	}{
		{"odd spacing", 20, 10, 7, 3, 1, Point{X: 3, Y: 3}},
		{"spacing larger than canvas", 5, 5, 20, 0, 0, Point{}},
		{"unit spacing", 3, 2, 1, 3, 2, Point{X: 0, Y: 0}},
		{"spacing fills to edge", 30, 30, 10, 3, 3, Point{X: 5, Y: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			centers := GridCenters(tt.width, tt.height, tt.spacing)
			if len(centers) != tt.wantCols*tt.wantRows {
				t.Fatalf("got %d centers, want %d", len(centers), tt.wantCols*tt.wantRows)
			}
			if len(centers) > 0 && centers[0] != tt.wantFirst {
				t.Errorf("first center = %v, want %v", centers[0], tt.wantFirst)
			}
			if len(centers) > 1 && tt.wantCols > 1 {
				if step := centers[1].X - centers[0].X; step != float64(tt.spacing) {
					t.Errorf("column step = %v, want %d", step, tt.spacing)
				}
			}
			for _, c := range centers {
				if c.X < 0 || c.X >= float64(tt.width) || c.Y < 0 || c.Y >= float64(tt.height) {
					t.Errorf("center out of bounds: %v", c)
				}
			}
		})
	}
}

func TestGridCentersInvalid(t *testing.T) {
	if got := GridCenters(10, 10, 0); got != nil {
		t.Errorf("zero spacing should yield nil, got %d centers", len(got))
	}
}
