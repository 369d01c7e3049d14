package batch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/contract-risk/constants"
)

// DefaultExtensions are picked up when walking a directory.
var DefaultExtensions = []string{"pdf", "jpg", "jpeg", "png", "txt"}

type CollectStats struct {
	Scanned uint32
	Matched uint32
}

// Collect expands args into file paths. Files are taken as given; directories
// are walked for files whose extension is in exts (DefaultExtensions when empty).
func Collect(args []string, exts []string, skipHidden bool) ([]string, CollectStats, error) {
	if len(args) == 0 {
		return nil, CollectStats{}, errors.New("at least one path is required")
	}

	allowed := map[string]struct{}{}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, e := range exts {
		if e = constants.NormalizeExt(e); e != "" {
			allowed[e] = struct{}{}
		}
	}

	var paths []string
	var stats CollectStats
	for _, root := range args {
		st, err := os.Stat(root)
		if err != nil {
			return nil, stats, err
		}
		if !st.IsDir() {
			stats.Scanned++
			stats.Matched++
			paths = append(paths, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if skipHidden && path != root && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			stats.Scanned++
			if _, ok := allowed[constants.NormalizeExt(filepath.Ext(path))]; !ok {
				return nil
			}
			stats.Matched++
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, stats, err
		}
	}
	return paths, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
