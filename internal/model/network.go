package model

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrSampleSize is returned by Infer and Classify for a sample whose length
// differs from the network's input count.
var ErrSampleSize = errors.New("model: sample size does not match input count")

// Params holds the hyperparameters of a Network.
type Params struct {
	LearningRate   float64
	Momentum       float64
	MatchTolerance float64

	// Seed feeds the weight initializer. Zero seeds from the clock.
	Seed int64

	// Nil Activation/Derivative fall back to Sigmoid/SigmoidDerivative.
	Activation Activation
	Derivative Derivative
}

// DefaultParams returns the stock hyperparameters.
func DefaultParams() Params {
	return Params{
		LearningRate:   0.1,
		Momentum:       0.9,
		MatchTolerance: 0.95,
		Activation:     Sigmoid,
		Derivative:     SigmoidDerivative,
	}
}

// Network is a perceptron with one hidden layer and one output layer. It owns
// the weight and bias values; Units only borrow copies of them.
//
// A Network is not safe for concurrent use.
type Network struct {
	inputCount  int
	hiddenCount int
	outputCount int

	weightsIH *mat.Dense // hiddenCount × inputCount
	biasIH    []float64  // hiddenCount
	weightsHO *mat.Dense // outputCount × hiddenCount
	biasHO    []float64  // outputCount

	learningRate   float64
	momentum       float64
	matchTolerance float64

	trained     bool
	outputNames []string

	activation Activation
	derivative Derivative

	stats TrainStats
}

// NewNetwork builds a network with weights drawn uniformly from [-1, 1] and all
// biases set to 1.
func NewNetwork(inputCount, hiddenCount, outputCount int, p Params) (*Network, error) {
	if inputCount <= 0 || hiddenCount <= 0 || outputCount <= 0 {
		return nil, errors.Errorf("model: layer sizes must be > 0 (input=%d hidden=%d output=%d)",
			inputCount, hiddenCount, outputCount)
	}
	if p.Activation == nil {
		p.Activation = Sigmoid
	}
	if p.Derivative == nil {
		p.Derivative = SigmoidDerivative
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	between := func(min, max float64) float64 {
		return rng.Float64()*(max-min) + min
	}

	n := &Network{
		inputCount:     inputCount,
		hiddenCount:    hiddenCount,
		outputCount:    outputCount,
		weightsIH:      mat.NewDense(hiddenCount, inputCount, nil),
		biasIH:         make([]float64, hiddenCount),
		weightsHO:      mat.NewDense(outputCount, hiddenCount, nil),
		biasHO:         make([]float64, outputCount),
		learningRate:   p.LearningRate,
		momentum:       p.Momentum,
		matchTolerance: p.MatchTolerance,
		outputNames:    make([]string, outputCount),
		activation:     p.Activation,
		derivative:     p.Derivative,
	}
	for i := 0; i < hiddenCount; i++ {
		n.biasIH[i] = 1.0
		row := n.weightsIH.RawRowView(i)
		for j := range row {
			row[j] = between(-1.0, 1.0)
		}
	}
	for i := 0; i < outputCount; i++ {
		n.biasHO[i] = 1.0
		row := n.weightsHO.RawRowView(i)
		for j := range row {
			row[j] = between(-1.0, 1.0)
		}
	}
	return n, nil
}

// Layer sizes and hyperparameters are fixed at construction (or by Load).
func (n *Network) InputCount() int         { return n.inputCount }
func (n *Network) HiddenCount() int        { return n.hiddenCount }
func (n *Network) OutputCount() int        { return n.outputCount }
func (n *Network) LearningRate() float64   { return n.learningRate }
func (n *Network) Momentum() float64       { return n.momentum }
func (n *Network) MatchTolerance() float64 { return n.matchTolerance }

// IsTrained reports whether a Train call has completed at least one epoch.
func (n *Network) IsTrained() bool { return n.trained }

// Stats describes the most recent Train call.
func (n *Network) Stats() TrainStats { return n.stats }

// OutputNames returns a copy of the class labels, index-aligned with the outputs.
func (n *Network) OutputNames() []string { return append([]string(nil), n.outputNames...) }

// SetOutputNames overwrites the class labels positionally. names must have
// exactly OutputCount entries.
func (n *Network) SetOutputNames(names []string) {
	if len(names) != n.outputCount {
		panic(fmt.Sprintf("model: SetOutputNames got %d names for %d outputs", len(names), n.outputCount))
	}
	copy(n.outputNames, names)
}

// forward materializes both layers for sample.
func (n *Network) forward(sample []float64) (hidden, output []*Unit) {
	hidden = make([]*Unit, n.hiddenCount)
	hiddenOut := make([]float64, n.hiddenCount)
	for i := range hidden {
		hidden[i] = NewUnit(sample, n.weightsIH.RawRowView(i), n.biasIH[i], n.momentum, n.activation)
		hiddenOut[i] = hidden[i].Output()
	}
	output = make([]*Unit, n.outputCount)
	for k := range output {
		output[k] = NewUnit(hiddenOut, n.weightsHO.RawRowView(k), n.biasHO[k], n.momentum, n.activation)
	}
	return hidden, output
}

// Infer runs one forward pass without touching the weights.
func (n *Network) Infer(sample []float64) ([]float64, error) {
	if len(sample) != n.inputCount {
		return nil, errors.Wrapf(ErrSampleSize, "got %d values, want %d", len(sample), n.inputCount)
	}
	_, output := n.forward(sample)
	out := make([]float64, len(output))
	for k, u := range output {
		out[k] = u.Output()
	}
	return out, nil
}

// Classify returns the index and value of the strongest output. Ties go to
// the lowest index.
func (n *Network) Classify(sample []float64) (int, float64, error) {
	out, err := n.Infer(sample)
	if err != nil {
		return 0, 0, err
	}
	best := floats.MaxIdx(out)
	return best, out[best], nil
}

// WeightsString renders both weight matrices, one row per line.
func (n *Network) WeightsString() string {
	var sb strings.Builder
	for i := 0; i < n.hiddenCount; i++ {
		fmt.Fprintf(&sb, "input_to_hidden[%d]: ", i)
		writeRow(&sb, n.weightsIH.RawRowView(i))
		sb.WriteByte('\n')
	}
	for i := 0; i < n.outputCount; i++ {
		fmt.Fprintf(&sb, "hidden_to_output[%d]: ", i)
		writeRow(&sb, n.weightsHO.RawRowView(i))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// BiasString renders both bias vectors.
func (n *Network) BiasString() string {
	var sb strings.Builder
	sb.WriteString("bias_input_to_hidden: ")
	writeRow(&sb, n.biasIH)
	sb.WriteString("\nbias_hidden_to_output: ")
	writeRow(&sb, n.biasHO)
	return sb.String()
}
