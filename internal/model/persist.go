package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// headerLines is the number of key=value lines preceding the matrices.
	headerLines = 7

	// maxWeights bounds each weight matrix a decoded file may declare.
	maxWeights = 1 << 24
)

var headerKeys = []string{
	"INPUTCOUNT", "HIDDENCOUNT", "OUTPUTCOUNT",
	"LEARNINGRATE", "MOMENTUM", "MATCHTOLERANCE", "ISTRAINED",
}

// ErrPersistence matches every *PersistenceError via errors.Is.
var ErrPersistence = errors.New("model: persistence failure")

// PersistenceError reports a failed Save or Load.
type PersistenceError struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s network %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the underlying failure.
func (e *PersistenceError) Cause() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Save writes the network to path. The file is written next to path and
// renamed into place, so a failed Save leaves any previous file intact.
func (n *Network) Save(path string) error {
	wrap := func(err error) error { return &PersistenceError{Op: "save", Path: path, Err: err} }

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return wrap(errors.Wrap(err, "create temp file"))
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := n.Encode(f); err != nil {
		f.Close()
		return wrap(err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return wrap(errors.Wrap(err, "chmod temp file"))
	}
	if err := f.Close(); err != nil {
		return wrap(errors.Wrap(err, "close temp file"))
	}
	if err := os.Rename(tmp, path); err != nil {
		return wrap(errors.Wrap(err, "rename"))
	}
	return nil
}

// Load replaces the network's state with the contents of path. On failure the
// network is left exactly as it was.
func (n *Network) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &PersistenceError{Op: "load", Path: path, Err: errors.Wrap(err, "open")}
	}
	defer f.Close()

	if err := n.Decode(f); err != nil {
		return &PersistenceError{Op: "load", Path: path, Err: err}
	}
	return nil
}

// Encode writes the text form of the network to w.
func (n *Network) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "InputCount=%d\n", n.inputCount)
	fmt.Fprintf(bw, "HiddenCount=%d\n", n.hiddenCount)
	fmt.Fprintf(bw, "OutputCount=%d\n", n.outputCount)
	fmt.Fprintf(bw, "LearningRate=%s\n", formatFloat(n.learningRate))
	fmt.Fprintf(bw, "Momentum=%s\n", formatFloat(n.momentum))
	fmt.Fprintf(bw, "MatchTolerance=%s\n", formatFloat(n.matchTolerance))
	fmt.Fprintf(bw, "IsTrained=%t\n", n.trained)

	for i := 0; i < n.hiddenCount; i++ {
		writeRow(bw, n.weightsIH.RawRowView(i))
		bw.WriteByte('\n')
	}
	writeRow(bw, n.biasIH)
	bw.WriteByte('\n')
	for i := 0; i < n.outputCount; i++ {
		writeRow(bw, n.weightsHO.RawRowView(i))
		bw.WriteByte('\n')
	}
	writeRow(bw, n.biasHO)
	bw.WriteByte('\n')
	for _, name := range n.outputNames {
		bw.WriteString(name)
		bw.WriteByte(';')
	}
	bw.WriteByte('\n')

	return errors.Wrap(bw.Flush(), "write")
}

// decoded is the scratch state Decode fills before committing.
type decoded struct {
	inputCount, hiddenCount, outputCount int
	learningRate, momentum, tolerance    float64
	trained                              bool

	weightsIH, weightsHO *mat.Dense
	biasIH, biasHO       []float64
	names                []string

	seen map[string]bool
}

// fitsWeights reports whether a rows×cols matrix stays within maxWeights.
// Both sizes are positive.
func fitsWeights(rows, cols int) bool {
	return rows <= maxWeights && cols <= maxWeights/rows
}

// Decode reads the text form written by Encode. Header keys match
// case-insensitively. The activation functions are kept.
func (n *Network) Decode(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", errors.Wrapf(err, "read %s", what)
			}
			return "", errors.Errorf("line %d: unexpected end of file, want %s", lineNo+1, what)
		}
		lineNo++
		return strings.TrimRight(sc.Text(), "\r"), nil
	}

	d := decoded{inputCount: -1, hiddenCount: -1, outputCount: -1, seen: make(map[string]bool, headerLines)}
	for i := 0; i < headerLines; i++ {
		line, err := next("header")
		if err != nil {
			return err
		}
		if err := d.header(line); err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
	}
	for _, key := range headerKeys {
		if !d.seen[key] {
			return errors.Errorf("header: missing %s", key)
		}
	}
	if d.inputCount <= 0 || d.hiddenCount <= 0 || d.outputCount <= 0 {
		return errors.Errorf("header: layer sizes must be > 0 (input=%d hidden=%d output=%d)",
			d.inputCount, d.hiddenCount, d.outputCount)
	}
	if !fitsWeights(d.hiddenCount, d.inputCount) || !fitsWeights(d.outputCount, d.hiddenCount) {
		return errors.Errorf("header: layer sizes too large (input=%d hidden=%d output=%d)",
			d.inputCount, d.hiddenCount, d.outputCount)
	}

	readMatrix := func(rows, cols int, what string) (*mat.Dense, error) {
		m := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			line, err := next(what)
			if err != nil {
				return nil, err
			}
			if err := parseRow(line, m.RawRowView(i)); err != nil {
				return nil, errors.Wrapf(err, "line %d: %s row %d", lineNo, what, i)
			}
		}
		return m, nil
	}
	readVector := func(size int, what string) ([]float64, error) {
		line, err := next(what)
		if err != nil {
			return nil, err
		}
		v := make([]float64, size)
		if err := parseRow(line, v); err != nil {
			return nil, errors.Wrapf(err, "line %d: %s", lineNo, what)
		}
		return v, nil
	}

	var err error
	if d.weightsIH, err = readMatrix(d.hiddenCount, d.inputCount, "input_to_hidden weights"); err != nil {
		return err
	}
	if d.biasIH, err = readVector(d.hiddenCount, "input_to_hidden biases"); err != nil {
		return err
	}
	if d.weightsHO, err = readMatrix(d.outputCount, d.hiddenCount, "hidden_to_output weights"); err != nil {
		return err
	}
	if d.biasHO, err = readVector(d.outputCount, "hidden_to_output biases"); err != nil {
		return err
	}

	line, err := next("output names")
	if err != nil {
		return err
	}
	fields := strings.Split(line, ";")
	if len(fields) < d.outputCount {
		return errors.Errorf("line %d: %d output names, want %d", lineNo, len(fields), d.outputCount)
	}
	d.names = append([]string(nil), fields[:d.outputCount]...)

	n.inputCount = d.inputCount
	n.hiddenCount = d.hiddenCount
	n.outputCount = d.outputCount
	n.learningRate = d.learningRate
	n.momentum = d.momentum
	n.matchTolerance = d.tolerance
	n.trained = d.trained
	n.weightsIH = d.weightsIH
	n.biasIH = d.biasIH
	n.weightsHO = d.weightsHO
	n.biasHO = d.biasHO
	n.outputNames = d.names
	n.stats = TrainStats{}
	return nil
}

func (d *decoded) header(line string) error {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return errors.Errorf("missing '=' in header %q", line)
	}
	value = strings.TrimSpace(value)

	name := strings.ToUpper(strings.TrimSpace(key))
	if d.seen[name] {
		return errors.Errorf("duplicate header %s", key)
	}
	d.seen[name] = true

	var err error
	switch name {
	case "INPUTCOUNT":
		d.inputCount, err = strconv.Atoi(value)
	case "HIDDENCOUNT":
		d.hiddenCount, err = strconv.Atoi(value)
	case "OUTPUTCOUNT":
		d.outputCount, err = strconv.Atoi(value)
	case "LEARNINGRATE":
		d.learningRate, err = strconv.ParseFloat(value, 64)
	case "MOMENTUM":
		d.momentum, err = strconv.ParseFloat(value, 64)
	case "MATCHTOLERANCE":
		d.tolerance, err = strconv.ParseFloat(value, 64)
	case "ISTRAINED":
		d.trained, err = strconv.ParseBool(value)
	default:
		return errors.Errorf("unknown header %s", key)
	}
	return errors.Wrapf(err, "header %s", key)
}

// parseRow fills dst from a ';'-terminated row. Extra fields are ignored.
func parseRow(line string, dst []float64) error {
	fields := strings.Split(line, ";")
	if len(fields) < len(dst) {
		return errors.Errorf("%d values, want %d", len(fields), len(dst))
	}
	for i := range dst {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return errors.Wrapf(err, "value %d", i)
		}
		dst[i] = v
	}
	return nil
}

func writeRow(w io.StringWriter, row []float64) {
	for _, v := range row {
		w.WriteString(formatFloat(v))
		w.WriteString(";")
	}
}

// formatFloat always uses '.' and the shortest representation that parses
// back to the same value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
