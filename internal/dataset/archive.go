package dataset

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"gesturenet/internal/stroke"
)

// StrokeSample is one recorded stroke paired with its class name.
type StrokeSample struct {
	Key    string
	Name   string
	Points []stroke.Point
}

// ErrPendingOverflow indicates too many archive entries are waiting for their
// other half.
var ErrPendingOverflow = errors.New("dataset: pending pair buffer exceeded")

const (
	pointsExt = ".pts"
	classExt  = ".cls"

	defaultPendingCap = 256
)

// StreamArchive streams paired samples from the archive at path. An entry
// "<key>.pts" holds the points and "<key>.cls" the class name; the two may
// appear in either order. Both channels are closed when the archive is done.
func StreamArchive(ctx context.Context, path string, pendingCap int) (<-chan StrokeSample, <-chan error) {
	if pendingCap <= 0 {
		pendingCap = defaultPendingCap
	}
	out := make(chan StrokeSample)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		f, err := os.Open(path)
		if err != nil {
			errCh <- errors.Wrap(err, "open archive")
			return
		}
		defer f.Close()

		tr := tar.NewReader(bufio.NewReader(f))
		pending := make(map[string]*partial)

		for {
			if err := ctx.Err(); err != nil {
				errCh <- err
				return
			}

			hdr, err := tr.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				errCh <- errors.Wrap(err, "read tar")
				return
			}
			if hdr.FileInfo().IsDir() {
				continue
			}
			name := filepath.Base(hdr.Name)
			ext := strings.ToLower(filepath.Ext(name))
			key := strings.TrimSuffix(name, filepath.Ext(name))

			switch ext {
			case pointsExt:
				payload, err := io.ReadAll(tr)
				if err != nil {
					errCh <- errors.Wrapf(err, "read points %s", name)
					return
				}
				points, err := stroke.ParsePoints(bytes.NewReader(payload))
				if err != nil {
					errCh <- errors.Wrapf(err, "parse points %s", name)
					return
				}
				part := pendingFor(pending, key)
				part.points, part.hasPoints = points, true
			case classExt:
				payload, err := io.ReadAll(tr)
				if err != nil {
					errCh <- errors.Wrapf(err, "read class %s", name)
					return
				}
				class := strings.TrimSpace(string(payload))
				pendingFor(pending, key).name = &class
			default:
				continue
			}

			if len(pending) > pendingCap {
				errCh <- ErrPendingOverflow
				return
			}

			if part := pending[key]; part.ready() {
				sample := StrokeSample{Key: key, Name: *part.name, Points: part.points}
				delete(pending, key)

				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- sample:
				}
			}
		}

		if len(pending) > 0 {
			errCh <- errors.Errorf("%s: %d samples incomplete", filepath.Base(path), len(pending))
		}
	}()

	return out, errCh
}

// ReadArchive collects every sample of the archive at path.
func ReadArchive(ctx context.Context, path string) ([]StrokeSample, error) {
	samplesCh, errCh := StreamArchive(ctx, path, 0)
	var samples []StrokeSample
	for sample := range samplesCh {
		samples = append(samples, sample)
	}
	if err := <-errCh; err != nil {
		return nil, errors.Wrapf(err, "archive %s", path)
	}
	return samples, nil
}

type partial struct {
	points    []stroke.Point
	hasPoints bool
	name      *string
}

func pendingFor(pending map[string]*partial, key string) *partial {
	part := pending[key]
	if part == nil {
		part = &partial{}
		pending[key] = part
	}
	return part
}

func (p *partial) ready() bool {
	return p.hasPoints && p.name != nil
}
