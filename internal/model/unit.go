package model

import "gonum.org/v1/gonum/floats"

// Unit is a single node evaluated against one input vector. It holds copies of
// the weights and bias it was built from; the Network copies them back after
// AdjustWeights. A Unit is discarded after the evaluation that created it.
type Unit struct {
	inputs  []float64
	weights []float64
	bias    float64

	// momentum memory, zero at construction
	prevWeightDeltas []float64
	prevBiasDelta    float64
	momentum         float64

	weightedSum float64
	output      float64
}

// NewUnit evaluates the node for inputs. weights must have one entry per input.
// A nil activation means Sigmoid.
func NewUnit(inputs, weights []float64, bias, momentum float64, activation Activation) *Unit {
	if activation == nil {
		activation = Sigmoid
	}
	u := &Unit{
		inputs:           append([]float64(nil), inputs...),
		weights:          append([]float64(nil), weights[:len(inputs)]...),
		bias:             bias,
		prevWeightDeltas: make([]float64, len(inputs)),
		momentum:         momentum,
	}
	u.weightedSum = u.bias + floats.Dot(u.inputs, u.weights)
	u.output = activation(u.weightedSum)
	return u
}

// Output is the activation of the weighted sum computed at construction.
func (u *Unit) Output() float64 { return u.output }

// WeightedSum is bias + inputs·weights.
func (u *Unit) WeightedSum() float64 { return u.weightedSum }

// Bias returns the unit's current bias.
func (u *Unit) Bias() float64 { return u.bias }

// Weights returns the unit's weight copy. The slice is owned by the unit.
func (u *Unit) Weights() []float64 { return u.weights }

// AdjustWeights applies one update step for errSignal. Only the unit's own
// copies change; the output is not recomputed.
func (u *Unit) AdjustWeights(learningRate, errSignal float64) {
	delta := learningRate * errSignal
	u.bias += delta + u.momentum*u.prevBiasDelta
	u.prevBiasDelta = delta

	for i, in := range u.inputs {
		delta = learningRate * errSignal * in
		u.weights[i] += delta + u.momentum*u.prevWeightDeltas[i]
		u.prevWeightDeltas[i] = delta
	}
}
