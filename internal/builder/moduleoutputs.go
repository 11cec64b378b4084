package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// scanModuleOutputs lists the files a module's insertion left under
// moduleOutputDir, relative to moduleOutputDir, matching everything whose
// name starts with the module source file's stem — the convention code
// modules built by this engine's assemblers use for their emitted symbol
// and listing files. Returns an empty result and no error if the module
// produced nothing this run; callers record that empty list as the module's
// outputs, which the build-report invariant accepts.
func scanModuleOutputs(moduleOutputDir, moduleRelativePath string) ([]string, error) {
	stem := strings.TrimSuffix(filepath.Base(moduleRelativePath), filepath.Ext(moduleRelativePath))

	matches, err := doublestar.Glob(os.DirFS(moduleOutputDir), stem+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan outputs of module %s: %w", moduleRelativePath, err)
	}

	sort.Strings(matches)
	return matches, nil
}
