package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"gesturenet/internal/config"
	"gesturenet/internal/dataset"
	"gesturenet/internal/model"
	"gesturenet/internal/recognizer"
	"gesturenet/internal/stroke"
)

func main() {
	cfgPath := flag.String("config", "configs/gesturenet.yaml", "Path to YAML config")
	modelPath := flag.String("model", "", "Override the saved network path")
	strokesRoot := flag.String("strokes", "", "Directory scanned for gestures-NNNN.tar stroke archives")
	epochs := flag.Int("epochs", 0, "Epochs per training try")
	tries := flag.Int("tries", 0, "Training tries before giving up on early stop")
	hidden := flag.Int("hidden", 0, "Hidden unit count")
	seed := flag.Int64("seed", 0, "Weight initialization seed")
	logEvery := flag.Int("log-every", 0, "Log every N epochs")
	classify := flag.String("classify", "", "Stroke file (one \"x y\" point per line) to recognize")
	save := flag.Bool("save", true, "Save the network after training")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.ApplyOverrides(config.Overrides{
		HiddenCount:   *hidden,
		EpochCount:    *epochs,
		TrainingTries: *tries,
		ModelPath:     *modelPath,
		StrokesRoot:   *strokesRoot,
		Seed:          *seed,
		LogEvery:      *logEvery,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	rec, err := recognizer.New(cfg)
	if err != nil {
		log.Fatalf("failed to build recognizer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.StrokesRoot != "" {
		if err := importStrokes(ctx, rec, cfg.StrokesRoot); err != nil {
			log.Fatalf("import strokes: %v", err)
		}
	}

	if err := rec.Load(cfg.ModelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("model=%s not found, training from scratch", cfg.ModelPath)
		} else {
			log.Printf("model=%s not loaded err=%v", cfg.ModelPath, err)
		}
	} else {
		log.Printf("model=%s loaded gestures=%d trained=%t", cfg.ModelPath, len(rec.Names()), rec.Trained())
	}

	if !rec.Trained() {
		if err := trainAndSave(ctx, rec, cfg.ModelPath, *save); err != nil {
			log.Fatalf("training failed: %v", err)
		}
	}

	if *classify != "" {
		if err := classifyFile(rec, *classify); err != nil {
			log.Fatalf("classify %s: %v", *classify, err)
		}
	}
}

// trainAndSave trains rec and, when save is set, writes it to path. A network
// left untrained (epoch_count 0) is not written.
func trainAndSave(ctx context.Context, rec *recognizer.Recognizer, path string, save bool) error {
	result, err := rec.Train(ctx)
	if err != nil {
		return err
	}
	if result == model.InputSizeMismatch {
		return errors.Errorf("result=%s", result)
	}
	if !save {
		return nil
	}
	if !rec.Trained() {
		log.Printf("model=%s not saved, network is untrained", path)
		return nil
	}
	if err := rec.Save(path); err != nil {
		return errors.Wrap(err, "save model")
	}
	log.Printf("model=%s saved", path)
	return nil
}

func importStrokes(ctx context.Context, rec *recognizer.Recognizer, root string) error {
	archives, err := dataset.DiscoverArchives(root)
	if err != nil {
		return err
	}
	for _, path := range archives {
		samples, err := dataset.ReadArchive(ctx, path)
		if err != nil {
			return err
		}
		if err := rec.AddSamples(samples); err != nil {
			return errors.Wrapf(err, "archive %s", path)
		}
		log.Printf("archive=%s samples=%d", path, len(samples))
	}
	log.Printf("root=%s archives=%d gestures=%d", root, len(archives), len(rec.Names()))
	return nil
}

func classifyFile(rec *recognizer.Recognizer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	points, err := stroke.ParsePoints(f)
	if err != nil {
		return err
	}
	m, err := rec.Recognize(points)
	if err != nil {
		return err
	}
	status := "detected"
	if !m.Detected {
		status = "possibly detected"
	}
	log.Printf("gesture=%q index=%d confidence=%.4f status=%q", m.Name, m.Index, m.Confidence, status)
	return nil
}
