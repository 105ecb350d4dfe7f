// Package dataset holds the labelled feature vectors a network trains on and
// reads recorded strokes from tar archives.
package dataset

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// FeatureCount is the width of every gesture vector.
	FeatureCount = 24
	// SmoothTargetLength is the point count strokes are resampled to so that
	// their features fill FeatureCount values.
	SmoothTargetLength = FeatureCount/2 + 1
)

// Gestures is an insertion-ordered set of named feature vectors. Class i has
// a one-hot target with 1 at position i.
type Gestures struct {
	names   []string
	vectors [][]float64
}

// NewGestures returns a set seeded with the straight swipes right, left, up
// and down.
func NewGestures() *Gestures {
	g := &Gestures{}
	for _, b := range []struct {
		name string
		x, y float64
	}{
		{"right", 1, 0},
		{"left", -1, 0},
		{"up", 0, 1},
		{"down", 0, -1},
	} {
		g.add(b.name, repeat(b.x, b.y))
	}
	return g
}

func repeat(x, y float64) []float64 {
	v := make([]float64, 0, FeatureCount)
	for i := 0; i < FeatureCount/2; i++ {
		v = append(v, x, y)
	}
	return v
}

// AddGesture appends a class. Names may not contain ';' since the persisted
// network stores them ';'-separated.
func (g *Gestures) AddGesture(name string, vector []float64) error {
	if len(vector) != FeatureCount {
		return errors.Errorf("dataset: gesture %q has %d features, want %d", name, len(vector), FeatureCount)
	}
	if strings.Contains(name, ";") {
		return errors.Errorf("dataset: gesture name %q contains ';'", name)
	}
	g.add(name, append([]float64(nil), vector...))
	return nil
}

func (g *Gestures) add(name string, vector []float64) {
	g.names = append(g.names, name)
	g.vectors = append(g.vectors, vector)
}

// RenameAll replaces every class name positionally.
func (g *Gestures) RenameAll(names []string) error {
	if len(names) != len(g.names) {
		return errors.Errorf("dataset: %d names for %d gestures", len(names), len(g.names))
	}
	copy(g.names, names)
	return nil
}

// Len is the number of classes.
func (g *Gestures) Len() int { return len(g.names) }

// InputCount is the network input width the set needs.
func (g *Gestures) InputCount() int { return FeatureCount }

// OutputCount is the network output width the set needs.
func (g *Gestures) OutputCount() int { return len(g.names) }

// Names returns a copy of the class names in insertion order.
func (g *Gestures) Names() []string {
	return append([]string(nil), g.names...)
}

// Inputs returns copies of the feature vectors.
func (g *Gestures) Inputs() [][]float64 {
	out := make([][]float64, len(g.vectors))
	for i, v := range g.vectors {
		out[i] = append([]float64(nil), v...)
	}
	return out
}

// Targets returns the one-hot targets, regenerated from the current class
// count.
func (g *Gestures) Targets() [][]float64 {
	out := make([][]float64, len(g.names))
	for i := range out {
		out[i] = make([]float64, len(g.names))
		out[i][i] = 1
	}
	return out
}
