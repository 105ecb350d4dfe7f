// Package stroke turns raw pointer paths into fixed-length feature vectors.
package stroke

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D stroke sample.
type Point = r2.Vec

// ErrInsufficientStrokeData is returned by Resample when a stroke has fewer
// points than the resampling target.
var ErrInsufficientStrokeData = errors.New("stroke: not enough points to recognize the gesture")

// MinTarget is the smallest point count Resample can reduce a stroke to.
const MinTarget = 3

// Resample reduces points to exactly target points by repeatedly merging the
// closest pair of neighbours. The first point and the last point are never
// merged into. The input slice is not modified.
func Resample(points []Point, target int) ([]Point, error) {
	if target < MinTarget {
		return nil, errors.Errorf("stroke: resample target %d below minimum %d", target, MinTarget)
	}
	if len(points) < target {
		return nil, errors.Wrapf(ErrInsufficientStrokeData, "%d/%d points", len(points), target)
	}

	working := append([]Point(nil), points...)
	for len(working) > target {
		marker := closestPair(working)

		// The merge keeps the left point whole and adds half of the right
		// one; downstream features depend on this exact blend.
		working[marker-1] = r2.Add(working[marker-1], r2.Scale(0.5, working[marker]))
		working = append(working[:marker], working[marker+1:]...)
	}
	return working, nil
}

// closestPair returns the position p in [2, len-2] minimizing the distance
// between working[p-1] and working[p]. The first minimum wins.
func closestPair(working []Point) int {
	marker := 2
	shortest := r2.Norm(r2.Sub(working[1], working[2]))
	for p := 3; p <= len(working)-2; p++ {
		if d := r2.Norm(r2.Sub(working[p-1], working[p])); d < shortest {
			shortest = d
			marker = p
		}
	}
	return marker
}
