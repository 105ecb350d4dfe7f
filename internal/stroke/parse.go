package stroke

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParsePoints reads a stroke stored as one "x y" pair per line. Blank lines
// and lines starting with '#' are skipped; commas are accepted as separators.
func ParsePoints(r io.Reader) ([]Point, error) {
	var points []Point
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) != 2 {
			return nil, errors.Errorf("line %d: want 2 coordinates, got %d", lineNo, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: x", lineNo)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: y", lineNo)
		}
		points = append(points, Point{X: x, Y: y})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read points")
	}
	return points, nil
}
