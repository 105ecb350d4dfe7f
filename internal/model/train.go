package model

// DefaultSSEThreshold is the sum of squared errors below which training stops early.
const DefaultSSEThreshold = 0.003

// TrainingResult is the outcome of a Train call.
type TrainingResult int

const (
	// FinalEpoch means every requested epoch ran without reaching the threshold.
	FinalEpoch TrainingResult = iota
	// EarlyStopSSE means an epoch ended with SSE below the threshold.
	EarlyStopSSE
	// InputSizeMismatch means the training data does not fit the network; no
	// weights were touched.
	InputSizeMismatch
)

func (r TrainingResult) String() string {
	switch r {
	case FinalEpoch:
		return "final-epoch"
	case EarlyStopSSE:
		return "early-stop-sse"
	case InputSizeMismatch:
		return "input-size-mismatch"
	default:
		return "unknown"
	}
}

// TrainStats describes the last Train call.
type TrainStats struct {
	Epochs int     // epochs actually run
	SSE    float64 // sum of squared errors of the last epoch
}

// Train runs up to epochCount epochs of per-sample backpropagation over inputs
// and targets and stops as soon as an epoch's SSE drops below sseThreshold.
// Weights carry over between calls.
//
// The hidden layer is driven by one aggregate error signal, the sum over all
// output units of err·w for every updated weight and bias, shared by every
// hidden unit.
func (n *Network) Train(inputs, targets [][]float64, epochCount int, sseThreshold float64) TrainingResult {
	if !n.fits(inputs, targets) {
		return InputSizeMismatch
	}

	n.stats = TrainStats{}
	for epoch := 0; epoch < epochCount; epoch++ {
		sse := 0.0
		for s, sample := range inputs {
			hidden, output := n.forward(sample)
			desired := targets[s]

			aggregate := 0.0
			for k, u := range output {
				out := u.Output()
				diff := desired[k] - out
				errSignal := diff * n.derivative(out)

				u.AdjustWeights(n.learningRate, errSignal)
				n.biasHO[k] = u.Bias()
				n.weightsHO.SetRow(k, u.Weights())
				for _, w := range u.Weights() {
					aggregate += errSignal * w
				}
				aggregate += errSignal * u.Bias()

				sse += diff * diff
			}

			for i, u := range hidden {
				errSignal := n.derivative(u.Output()) * aggregate
				u.AdjustWeights(n.learningRate, errSignal)
				n.biasIH[i] = u.Bias()
				n.weightsIH.SetRow(i, u.Weights())
			}
		}

		n.stats = TrainStats{Epochs: epoch + 1, SSE: sse}
		if sse < sseThreshold {
			n.trained = true
			return EarlyStopSSE
		}
	}

	if epochCount > 0 {
		n.trained = true
	}
	return FinalEpoch
}

func (n *Network) fits(inputs, targets [][]float64) bool {
	if len(inputs) == 0 || len(inputs) != len(targets) {
		return false
	}
	for s := range inputs {
		if len(inputs[s]) != n.inputCount || len(targets[s]) != n.outputCount {
			return false
		}
	}
	return true
}
