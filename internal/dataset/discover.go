package dataset

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pkg/errors"
)

var archiveRegexp = regexp.MustCompile(`^gestures-[0-9]{4,}\.tar$`)

// DiscoverArchives returns the stroke archives beneath root in lexical path
// order.
func DiscoverArchives(root string) ([]string, error) {
	archives := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if archiveRegexp.MatchString(d.Name()) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover archives")
	}
	sort.Strings(archives)
	return archives, nil
}
