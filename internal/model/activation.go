package model

import "math"

// Activation maps a weighted sum to a unit output.
type Activation func(float64) float64

// Derivative returns the slope of an Activation given the unit's output
// (not its weighted sum).
type Derivative func(float64) float64

// Sigmoid is the logistic function 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidDerivative expects y = Sigmoid(x).
func SigmoidDerivative(y float64) float64 {
	return y * (1.0 - y)
}
