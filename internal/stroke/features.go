package stroke

import "gonum.org/v1/gonum/spatial/r2"

// ExtractFeatures flattens the unit-length direction between each pair of
// consecutive points into x, y values. A zero-length step contributes (0, 0).
// The result has 2·(len(points)-1) entries.
func ExtractFeatures(points []Point) []float64 {
	if len(points) < 2 {
		return nil
	}
	features := make([]float64, 0, 2*(len(points)-1))
	for i := 1; i < len(points); i++ {
		delta := r2.Sub(points[i], points[i-1])
		if delta.X != 0 || delta.Y != 0 {
			delta = r2.Unit(delta)
		}
		features = append(features, delta.X, delta.Y)
	}
	return features
}

// FeatureLength is the feature vector size produced for strokes resampled to
// target points.
func FeatureLength(target int) int {
	return 2 * (target - 1)
}
