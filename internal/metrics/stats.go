// Package metrics aggregates training throughput between log lines.
package metrics

import "time"

// Window accumulates timing stats across training chunks.
type Window struct {
	epochs  int
	elapsed time.Duration
	chunks  int
	lastSSE float64
}

// Record adds one chunk of epochs to the window.
func (w *Window) Record(epochs int, elapsed time.Duration, sse float64) {
	w.epochs += epochs
	w.elapsed += elapsed
	w.chunks++
	w.lastSSE = sse
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Epochs: w.epochs, LastSSE: w.lastSSE}
	if w.elapsed > 0 {
		snap.EpochsPerSec = float64(w.epochs) / w.elapsed.Seconds()
	}
	if w.chunks > 0 {
		snap.AvgChunkMS = (w.elapsed.Seconds() * 1000) / float64(w.chunks)
	}

	w.epochs = 0
	w.elapsed = 0
	w.chunks = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Epochs       int
	EpochsPerSec float64
	AvgChunkMS   float64
	LastSSE      float64
}
