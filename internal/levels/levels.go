// Package levels reads the internal level number out of exported level
// files (*.mwl) so the quick builder can verify every level number it
// previously inserted still has a backing file, generalized from a prior
// implementation's checkProblematicLevelChanges and the internal level
// number lookup it calls.
//
// The mwl header format itself isn't fully documented anywhere available to
// this project; this package stores the internal level number as a
// little-endian uint16 at a fixed offset following the format magic, the
// same shape the editor's own export header uses for every other
// fixed-offset field it's known to carry.
package levels

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	magic             = "MWL"
	levelNumberOffset = 9
)

// GetInternalLevelNumber reads the internal level number out of the .mwl
// file at path.
func GetInternalLevelNumber(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(data) < levelNumberOffset+2 || string(data[:3]) != magic {
		return 0, fmt.Errorf("%s is not a recognized level file", path)
	}

	return int(binary.LittleEndian.Uint16(data[levelNumberOffset:])), nil
}

// ScanLevelNumbers enumerates every *.mwl file directly inside dir and
// returns the set of internal level numbers found in them.
func ScanLevelNumbers(dir string) (map[int]bool, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*.mwl")
	if err != nil {
		return nil, fmt.Errorf("failed to scan level files in %s: %w", dir, err)
	}

	numbers := make(map[int]bool, len(matches))
	for _, match := range matches {
		number, err := GetInternalLevelNumber(filepath.Join(dir, match))
		if err != nil {
			return nil, fmt.Errorf("failed to determine source level number of level file %q: %w", match, err)
		}
		numbers[number] = true
	}
	return numbers, nil
}
