package recognizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"gesturenet/internal/config"
	"gesturenet/internal/dataset"
	"gesturenet/internal/stroke"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.EpochCount = 3
	cfg.SSEThreshold = 0
	cfg.TrainingTries = 1
	cfg.LogEvery = 10
	cfg.Seed = 1
	return cfg
}

func newTestRecognizer(t *testing.T) *Recognizer {
	t.Helper()
	r, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

// straight returns SmoothTargetLength points stepping by (dx, dy).
func straight(dx, dy float64) []stroke.Point {
	pts := make([]stroke.Point, dataset.SmoothTargetLength)
	for i := range pts {
		pts[i] = stroke.Point{X: dx * float64(i), Y: dy * float64(i)}
	}
	return pts
}

// writeDirectionModel stores a trained network whose hidden unit k fires for
// straight strokes in direction k of right, left, up, down and whose output k
// follows hidden unit k.
func writeDirectionModel(t *testing.T, names []string) string {
	t.Helper()
	dirs := [][2]float64{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	var sb strings.Builder
	sb.WriteString("InputCount=24\nHiddenCount=4\nOutputCount=4\n")
	sb.WriteString("LearningRate=0.5\nMomentum=0.9\nMatchTolerance=0.95\nIsTrained=true\n")
	for _, d := range dirs {
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&sb, "%g;%g;", 0.5*d[0], 0.5*d[1])
		}
		sb.WriteString("\n")
	}
	sb.WriteString("0;0;0;0;\n")
	for k := range dirs {
		for j := range dirs {
			if j == k {
				sb.WriteString("20;")
			} else {
				sb.WriteString("-10;")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("-5;-5;-5;-5;\n")
	sb.WriteString(strings.Join(names, ";") + ";\n")

	path := filepath.Join(t.TempDir(), "NeuralNet.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestRecognizeBeforeTraining(t *testing.T) {
	r := newTestRecognizer(t)
	if _, err := r.Recognize(straight(10, 0)); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestLoadedModelRecognizesDirections(t *testing.T) {
	r := newTestRecognizer(t)
	if err := r.Load(writeDirectionModel(t, []string{"R", "L", "U", "D"})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := r.Names(); got[0] != "R" || got[3] != "D" {
		t.Fatalf("names not adopted: %v", got)
	}

	cases := []struct {
		dx, dy float64
		want   string
	}{
		{10, 0, "R"},
		{-10, 0, "L"},
		{0, 4, "U"},
		{0, -4, "D"},
	}
	for _, tc := range cases {
		m, err := r.Recognize(straight(tc.dx, tc.dy))
		if err != nil {
			t.Fatalf("Recognize: %v", err)
		}
		if m.Name != tc.want || !m.Detected || m.Confidence < 0.99 {
			t.Fatalf("stroke (%g,%g): got %+v want %s", tc.dx, tc.dy, m, tc.want)
		}
	}
}

func TestRecognizeLowConfidence(t *testing.T) {
	r := newTestRecognizer(t)
	if err := r.Load(writeDirectionModel(t, []string{"R", "L", "U", "D"})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m, err := r.Recognize(straight(0, 0))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if m.Detected || m.Index != 0 {
		t.Fatalf("stationary stroke: %+v", m)
	}
}

func TestRecognizeShortStroke(t *testing.T) {
	r := newTestRecognizer(t)
	if err := r.Load(writeDirectionModel(t, []string{"R", "L", "U", "D"})); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := r.Recognize(straight(1, 1)[:5]); !errors.Is(err, stroke.ErrInsufficientStrokeData) {
		t.Fatalf("expected ErrInsufficientStrokeData, got %v", err)
	}
}

func TestAddGestureRebuildsNetwork(t *testing.T) {
	r := newTestRecognizer(t)
	if _, err := r.Train(context.Background()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !r.Trained() {
		t.Fatal("not trained after Train")
	}

	name, err := r.AddGesture("", straight(3, 3))
	if err != nil {
		t.Fatalf("AddGesture: %v", err)
	}
	if name != "Custom Gesture #1" {
		t.Fatalf("default name %q", name)
	}
	if r.Trained() {
		t.Fatal("network not rebuilt after AddGesture")
	}
	name, _ = r.AddGesture("", straight(-3, 3))
	if name != "Custom Gesture #2" || len(r.Names()) != 6 {
		t.Fatalf("second gesture %q, names %v", name, r.Names())
	}

	if _, err := r.AddGesture("tap", straight(1, 0)[:4]); !errors.Is(err, stroke.ErrInsufficientStrokeData) {
		t.Fatalf("expected ErrInsufficientStrokeData, got %v", err)
	}
	if len(r.Names()) != 6 {
		t.Fatal("rejected gesture was added")
	}
}

func TestAddSamplesIsAllOrNothing(t *testing.T) {
	r := newTestRecognizer(t)
	samples := []dataset.StrokeSample{
		{Key: "0001", Name: "check", Points: straight(2, 1)},
		{Key: "0002", Name: "bad;name", Points: straight(1, 2)},
	}
	if err := r.AddSamples(samples); err == nil {
		t.Fatal("expected error for ';' in name")
	}
	if len(r.Names()) != 4 {
		t.Fatalf("partial import: %v", r.Names())
	}

	samples[1].Name = ""
	if err := r.AddSamples(samples); err != nil {
		t.Fatalf("AddSamples: %v", err)
	}
	names := r.Names()
	if len(names) != 6 || names[4] != "check" || names[5] != "Custom Gesture #2" {
		t.Fatalf("names %v", names)
	}
}

func TestSaveLoadKeepsCustomNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NeuralNet.txt")

	src := newTestRecognizer(t)
	if _, err := src.AddGesture("circle", straight(2, -1)); err != nil {
		t.Fatalf("AddGesture: %v", err)
	}
	if _, err := src.Train(context.Background()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if err := src.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := newTestRecognizer(t)
	if _, err := dst.AddGesture("", straight(2, -1)); err != nil {
		t.Fatalf("AddGesture: %v", err)
	}
	if err := dst.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if names := dst.Names(); names[4] != "circle" {
		t.Fatalf("names %v", names)
	}
	if !dst.Trained() {
		t.Fatal("trained state lost")
	}
}

func TestLoadRejectsClassCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NeuralNet.txt")
	src := newTestRecognizer(t)
	if _, err := src.AddGesture("zig", straight(1, 3)); err != nil {
		t.Fatalf("AddGesture: %v", err)
	}
	if err := src.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := newTestRecognizer(t)
	if err := dst.Load(path); err == nil {
		t.Fatal("expected class count mismatch")
	}
	if names := dst.Names(); len(names) != 4 || names[0] != "right" {
		t.Fatalf("failed Load changed names: %v", names)
	}
	if dst.Trained() {
		t.Fatal("failed Load replaced the network")
	}
}

func TestTrainCanceled(t *testing.T) {
	r := newTestRecognizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Train(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.HiddenCount = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for zero hidden units")
	}
}
