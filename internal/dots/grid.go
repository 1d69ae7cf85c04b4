package dots

// GridCenters returns the centers of a regular lattice with the given
// pitch, row by row. The first center sits at spacing/2 (rounded down)
// from the origin; the last row and column are whatever the stepped range covers.
func GridCenters(width, height, spacing int) []Point {
	if width <= 0 || height <= 0 || spacing <= 0 {
		return nil
	}

	step := float64(spacing)
	offset := float64(spacing / 2)
	w, h := float64(width), float64(height)

	var centers []Point
	for y := offset; y < h; y += step {
		for x := offset; x < w; x += step {
			centers = append(centers, Point{X: x, Y: y})
		}
	}
	return centers
}
