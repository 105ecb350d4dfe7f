// Package config loads the recognizer's runtime knobs from a flat
// "key: value" file.
package config

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config captures the runtime knobs for training and recognition.
type Config struct {
	HiddenCount    int     `yaml:"hidden_count"`
	LearningRate   float64 `yaml:"learning_rate"`
	Momentum       float64 `yaml:"momentum"`
	MatchTolerance float64 `yaml:"match_tolerance"`
	EpochCount     int     `yaml:"epoch_count"`
	TrainingTries  int     `yaml:"training_tries"`
	SSEThreshold   float64 `yaml:"sse_threshold"`
	ModelPath      string  `yaml:"model_path"`
	StrokesRoot    string  `yaml:"strokes_root"`
	Seed           int64   `yaml:"seed"`
	LogEvery       int     `yaml:"log_every"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	HiddenCount   int
	EpochCount    int
	TrainingTries int
	ModelPath     string
	StrokesRoot   string
	Seed          int64
	LogEvery      int
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		HiddenCount:    6,
		LearningRate:   0.5,
		Momentum:       0.9,
		MatchTolerance: 0.95,
		EpochCount:     50000,
		TrainingTries:  2,
		SSEThreshold:   0.003,
		ModelPath:      "NeuralNet.txt",
		LogEvery:       1000,
	}
}

// Load reads a Config from path on top of Default and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg := Default()
	if err := cfg.parse(f); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.HiddenCount > 0 {
		c.HiddenCount = o.HiddenCount
	}
	if o.EpochCount > 0 {
		c.EpochCount = o.EpochCount
	}
	if o.TrainingTries > 0 {
		c.TrainingTries = o.TrainingTries
	}
	if o.ModelPath != "" {
		c.ModelPath = o.ModelPath
	}
	if o.StrokesRoot != "" {
		c.StrokesRoot = o.StrokesRoot
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.HiddenCount <= 0 {
		return errors.Errorf("hidden_count must be > 0 (got %d)", c.HiddenCount)
	}
	if c.LearningRate <= 0 || math.IsInf(c.LearningRate, 0) || math.IsNaN(c.LearningRate) {
		return errors.Errorf("learning_rate must be a positive number (got %g)", c.LearningRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1) (got %g)", c.Momentum)
	}
	if c.MatchTolerance <= 0 || c.MatchTolerance > 1 {
		return errors.Errorf("match_tolerance must be in (0, 1] (got %g)", c.MatchTolerance)
	}
	if c.EpochCount < 0 {
		return errors.Errorf("epoch_count must be >= 0 (got %d)", c.EpochCount)
	}
	if c.TrainingTries <= 0 {
		return errors.Errorf("training_tries must be > 0 (got %d)", c.TrainingTries)
	}
	if c.SSEThreshold < 0 || math.IsNaN(c.SSEThreshold) {
		return errors.Errorf("sse_threshold must be >= 0 (got %g)", c.SSEThreshold)
	}
	if c.ModelPath == "" {
		return errors.New("model_path must be set")
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 1000
	}
	return nil
}

func (c *Config) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return errors.Errorf("line %d: missing ':'", lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		var err error
		switch key {
		case "hidden_count":
			c.HiddenCount, err = strconv.Atoi(value)
		case "learning_rate":
			c.LearningRate, err = strconv.ParseFloat(value, 64)
		case "momentum":
			c.Momentum, err = strconv.ParseFloat(value, 64)
		case "match_tolerance":
			c.MatchTolerance, err = strconv.ParseFloat(value, 64)
		case "epoch_count":
			c.EpochCount, err = strconv.Atoi(value)
		case "training_tries":
			c.TrainingTries, err = strconv.Atoi(value)
		case "sse_threshold":
			c.SSEThreshold, err = strconv.ParseFloat(value, 64)
		case "model_path":
			c.ModelPath = value
		case "strokes_root":
			c.StrokesRoot = value
		case "seed":
			c.Seed, err = strconv.ParseInt(value, 10, 64)
		case "log_every":
			c.LogEvery, err = strconv.Atoi(value)
		default:
			return errors.Errorf("line %d: unknown key %s", lineNo, key)
		}
		if err != nil {
			return errors.Wrapf(err, "line %d: %s", lineNo, key)
		}
	}
	return errors.Wrap(scanner.Err(), "read config")
}
