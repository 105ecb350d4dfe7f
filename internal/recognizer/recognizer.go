// Package recognizer classifies strokes against a growable set of gestures.
package recognizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"gesturenet/internal/config"
	"gesturenet/internal/dataset"
	"gesturenet/internal/model"
	"gesturenet/internal/stroke"
	"gesturenet/internal/trainer"
)

// ErrNotTrained is returned by Recognize before the network has been trained
// or loaded in a trained state.
var ErrNotTrained = errors.New("recognizer: network is not trained")

// Match is the best scoring gesture for a stroke.
type Match struct {
	Index      int
	Name       string
	Confidence float64

	// Detected reports Confidence >= the network's match tolerance. Below it
	// the match is only a possible detection.
	Detected bool
}

// Recognizer owns a gesture set and the network trained on it. It is safe for
// concurrent use.
type Recognizer struct {
	mu       sync.Mutex
	cfg      config.Config
	gestures *dataset.Gestures
	net      *model.Network
	builtins int
}

// New returns a recognizer over the built-in gestures with an untrained
// network shaped by cfg.
func New(cfg *config.Config) (*Recognizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "recognizer config")
	}
	r := &Recognizer{cfg: *cfg, gestures: dataset.NewGestures()}
	r.builtins = r.gestures.Len()
	if err := r.rebuild(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recognizer) params() model.Params {
	p := model.DefaultParams()
	p.LearningRate = r.cfg.LearningRate
	p.Momentum = r.cfg.Momentum
	p.MatchTolerance = r.cfg.MatchTolerance
	p.Seed = r.cfg.Seed
	return p
}

// rebuild replaces the network with a fresh one sized for the current set.
func (r *Recognizer) rebuild() error {
	net, err := model.NewNetwork(r.gestures.InputCount(), r.cfg.HiddenCount, r.gestures.OutputCount(), r.params())
	if err != nil {
		return errors.Wrap(err, "build network")
	}
	net.SetOutputNames(r.gestures.Names())
	r.net = net
	return nil
}

// Features resamples points and returns their feature vector.
func Features(points []stroke.Point) ([]float64, error) {
	smoothed, err := stroke.Resample(points, dataset.SmoothTargetLength)
	if err != nil {
		return nil, err
	}
	return stroke.ExtractFeatures(smoothed), nil
}

// AddGesture adds points as a new class and returns its name. An empty name
// becomes "Custom Gesture #n". The network is rebuilt untrained.
func (r *Recognizer) AddGesture(name string, points []stroke.Point) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, err := r.add(name, points)
	if err != nil {
		return "", err
	}
	return name, r.rebuild()
}

// AddSamples adds every recorded sample and rebuilds the network once.
// Nothing is added if any sample is rejected.
func (r *Recognizer) AddSamples(samples []dataset.StrokeSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float64, len(samples))
	for i, s := range samples {
		if strings.Contains(s.Name, ";") {
			return errors.Errorf("sample %s: gesture name %q contains ';'", s.Key, s.Name)
		}
		v, err := Features(s.Points)
		if err != nil {
			return errors.Wrapf(err, "sample %s", s.Key)
		}
		vectors[i] = v
	}
	for i, s := range samples {
		if err := r.gestures.AddGesture(r.nameOrDefault(s.Name), vectors[i]); err != nil {
			return errors.Wrapf(err, "sample %s", s.Key)
		}
	}
	if len(samples) == 0 {
		return nil
	}
	return r.rebuild()
}

func (r *Recognizer) add(name string, points []stroke.Point) (string, error) {
	features, err := Features(points)
	if err != nil {
		return "", err
	}
	name = r.nameOrDefault(name)
	if err := r.gestures.AddGesture(name, features); err != nil {
		return "", err
	}
	return name, nil
}

func (r *Recognizer) nameOrDefault(name string) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Custom Gesture #%d", r.gestures.Len()-r.builtins+1)
}

// Train runs the configured training schedule over the current gesture set.
func (r *Recognizer) Train(ctx context.Context) (model.TrainingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := model.Batch{Inputs: r.gestures.Inputs(), Targets: r.gestures.Targets()}
	return trainer.Run(ctx, r.net, batch, trainer.RunConfig{
		EpochCount:   r.cfg.EpochCount,
		Tries:        r.cfg.TrainingTries,
		LogEvery:     r.cfg.LogEvery,
		SSEThreshold: r.cfg.SSEThreshold,
	})
}

// Recognize classifies a raw stroke.
func (r *Recognizer) Recognize(points []stroke.Point) (Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.net.IsTrained() {
		return Match{}, ErrNotTrained
	}
	features, err := Features(points)
	if err != nil {
		return Match{}, err
	}
	idx, conf, err := r.net.Classify(features)
	if err != nil {
		return Match{}, err
	}
	return Match{
		Index:      idx,
		Name:       r.gestures.Names()[idx],
		Confidence: conf,
		Detected:   conf >= r.net.MatchTolerance(),
	}, nil
}

// Trained reports whether the current network has been trained.
func (r *Recognizer) Trained() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.net.IsTrained()
}

// Names returns the gesture names in output order.
func (r *Recognizer) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gestures.Names()
}

// Save writes the network with the current gesture names.
func (r *Recognizer) Save(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.net.SetOutputNames(r.gestures.Names())
	return r.net.Save(path)
}

// Load replaces the network with the one stored at path and adopts its
// gesture names. The stored network must have one output per gesture; on any
// failure the recognizer is unchanged.
func (r *Recognizer) Load(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	net, err := model.NewNetwork(1, 1, 1, r.params())
	if err != nil {
		return errors.Wrap(err, "build network")
	}
	if err := net.Load(path); err != nil {
		return err
	}
	if net.InputCount() != r.gestures.InputCount() || net.OutputCount() != r.gestures.OutputCount() {
		return errors.Errorf("recognizer: %s has %d inputs and %d outputs, want %d and %d",
			path, net.InputCount(), net.OutputCount(), r.gestures.InputCount(), r.gestures.OutputCount())
	}
	if err := r.gestures.RenameAll(net.OutputNames()); err != nil {
		return err
	}
	r.net = net
	return nil
}
