package model

import (
	"math"
	"testing"
)

func TestUnitWeightedSumAndOutput(t *testing.T) {
	u := NewUnit([]float64{1, 2, 3}, []float64{0.5, -0.25, 0.1}, 0.2, 0.9, nil)
	wantSum := 0.2 + 0.5 - 0.5 + 0.3
	if math.Abs(u.WeightedSum()-wantSum) > 1e-12 {
		t.Fatalf("weighted sum %f want %f", u.WeightedSum(), wantSum)
	}
	if math.Abs(u.Output()-Sigmoid(wantSum)) > 1e-12 {
		t.Fatalf("output %f want %f", u.Output(), Sigmoid(wantSum))
	}
}

// Sigmoid stays strictly inside (0,1) only while the weighted sum is within
// about ±36; past that float64 rounds the output to exactly 1 (or 0 far below).
func TestUnitSigmoidOutputRange(t *testing.T) {
	for _, bias := range []float64{-20, -3, 0, 3, 20} {
		for _, w := range []float64{-2, -0.5, 0, 0.5, 2} {
			u := NewUnit([]float64{1, -1, 0.5}, []float64{w, -w, w}, bias, 0, Sigmoid)
			if out := u.Output(); out <= 0 || out >= 1 {
				t.Fatalf("bias=%f w=%f: output %f outside (0,1)", bias, w, out)
			}
		}
	}

	for _, sum := range []float64{-800, -40, 40, 800} {
		u := NewUnit([]float64{1}, []float64{sum}, 0, 0, Sigmoid)
		if out := u.Output(); out < 0 || out > 1 || math.IsNaN(out) {
			t.Fatalf("sum=%f: saturated output %f outside [0,1]", sum, out)
		}
	}
}

func TestUnitAdjustWeights(t *testing.T) {
	inputs := []float64{1, -2}
	weights := []float64{0.3, 0.4}
	u := NewUnit(inputs, weights, 1.0, 0.9, nil)

	u.AdjustWeights(0.5, 0.2)
	// fresh unit: momentum memory is zero, so only the plain delta applies
	if math.Abs(u.Bias()-1.1) > 1e-12 {
		t.Fatalf("bias %f want 1.1", u.Bias())
	}
	if math.Abs(u.Weights()[0]-0.4) > 1e-12 || math.Abs(u.Weights()[1]-0.2) > 1e-12 {
		t.Fatalf("weights %v want [0.4 0.2]", u.Weights())
	}

	u.AdjustWeights(0.5, 0.2)
	// second step adds momentum·previous delta
	if math.Abs(u.Bias()-(1.1+0.1+0.9*0.1)) > 1e-12 {
		t.Fatalf("bias after second step %f", u.Bias())
	}
	if math.Abs(u.Weights()[1]-(0.2-0.2-0.9*0.2)) > 1e-12 {
		t.Fatalf("weight[1] after second step %f", u.Weights()[1])
	}
}

func TestUnitCopiesItsInputs(t *testing.T) {
	weights := []float64{0.3, 0.4}
	u := NewUnit([]float64{1, 1}, weights, 0, 0, nil)
	u.AdjustWeights(1, 1)
	if weights[0] != 0.3 || weights[1] != 0.4 {
		t.Fatalf("caller weights mutated: %v", weights)
	}
}

func TestSigmoidDerivativeOnOutput(t *testing.T) {
	for _, x := range []float64{-2, 0, 1.5} {
		y := Sigmoid(x)
		h := 1e-6
		numeric := (Sigmoid(x+h) - Sigmoid(x-h)) / (2 * h)
		if math.Abs(SigmoidDerivative(y)-numeric) > 1e-6 {
			t.Fatalf("x=%f: derivative %f numeric %f", x, SigmoidDerivative(y), numeric)
		}
	}
}
