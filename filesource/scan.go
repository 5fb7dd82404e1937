// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/ik5/audtl/audio"
)

// ScanDir lists the files under root that reg has a decoder for, sorted
// by path. Subdirectories are only entered when recursive is set.
func ScanDir(root string, recursive bool, reg *audio.Registry) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: %w", root, ErrNotDirectory)
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := reg.Get(filepath.Ext(path)); ok {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	slices.Sort(out)
	return out, nil
}
