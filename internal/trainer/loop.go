// Package trainer drives a network's training in bounded, interruptible
// chunks.
package trainer

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"gesturenet/internal/metrics"
	"gesturenet/internal/model"
)

const defaultLogEvery = 1000

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	EpochCount   int
	Tries        int
	LogEvery     int
	SSEThreshold float64
}

// dumper is implemented by networks that can render their parameters.
type dumper interface {
	WeightsString() string
	BiasString() string
}

// Run trains net on batch for up to cfg.Tries attempts of cfg.EpochCount
// epochs each, stopping at the first early stop. Each attempt is split into
// chunks of cfg.LogEvery epochs; ctx is checked between chunks. Weights carry
// over between attempts.
func Run(ctx context.Context, net model.Trainer, batch model.Batch, cfg RunConfig) (model.TrainingResult, error) {
	if cfg.EpochCount < 0 {
		return model.FinalEpoch, errors.New("trainer: epoch count must be >= 0")
	}
	if cfg.Tries <= 0 {
		return model.FinalEpoch, errors.New("trainer: tries must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = defaultLogEvery
	}

	var window metrics.Window
	result := model.FinalEpoch
	started := time.Now()

	for try := 1; try <= cfg.Tries; try++ {
		epochs := 0
		var sse float64
		for remaining := cfg.EpochCount; remaining > 0; {
			if err := ctx.Err(); err != nil {
				log.Printf("try=%d epochs=%d interrupted err=%v", try, epochs, err)
				return result, err
			}

			chunk := cfg.LogEvery
			if chunk > remaining {
				chunk = remaining
			}
			start := time.Now()
			result = net.Train(batch.Inputs, batch.Targets, chunk, cfg.SSEThreshold)
			if result == model.InputSizeMismatch {
				log.Printf("try=%d result=%s samples=%d", try, result, len(batch.Inputs))
				return result, nil
			}
			stats := net.Stats()
			window.Record(stats.Epochs, time.Since(start), stats.SSE)
			epochs += stats.Epochs
			sse = stats.SSE
			remaining -= chunk

			snap := window.Snapshot()
			log.Printf("try=%d epochs=%d sse=%.6f epochs_per_sec=%.1f chunk_ms=%.2f",
				try,
				epochs,
				snap.LastSSE,
				snap.EpochsPerSec,
				snap.AvgChunkMS,
			)
			if result == model.EarlyStopSSE {
				break
			}
		}

		log.Printf("try=%d result=%s epochs=%d sse=%.6f", try, result, epochs, sse)
		if result == model.EarlyStopSSE {
			break
		}
	}

	log.Printf("training done result=%s elapsed=%s", result, time.Since(started).Round(time.Millisecond))
	if d, ok := net.(dumper); ok {
		log.Printf("weights:\n%s", d.WeightsString())
		log.Printf("biases:\n%s", d.BiasString())
	}
	return result, nil
}
