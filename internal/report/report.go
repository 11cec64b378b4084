// Package report persists and loads the BuildReport: the record of the last
// successful full build that the quick builder proves equivalence premises
// against.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mellonpizza/callisto/internal/dependency"
	"github.com/mellonpizza/callisto/internal/descriptor"
)

// FormatVersion is the compile-time build-report schema version. Any report
// read from disk whose FileFormatVersion differs invalidates the whole
// report.
const FormatVersion = 3

// FileName is the well-known build-report file name under the project's
// callisto state directory.
const FileName = "build-report.json"

// Hijack is an address range a PATCH step wrote.
type Hijack struct {
	Address int `json:"address"`
	Length  int `json:"length"`
}

// DependencyEntry pairs a step's Descriptor with the dependency sets it
// reported and, for PATCH steps only, the hijacks it produced.
type DependencyEntry struct {
	Descriptor                 descriptor.Descriptor                `json:"descriptor"`
	ConfigurationDependencies  []dependency.ConfigurationDependency  `json:"configuration_dependencies"`
	ResourceDependencies       []dependency.ResourceDependency       `json:"resource_dependencies"`
	Hijacks                    []Hijack                              `json:"hijacks,omitempty"`
}

// BuildReport is the persisted record of the last successful full build.
type BuildReport struct {
	FileFormatVersion int                       `json:"file_format_version"`
	ROMSize           *int                      `json:"rom_size"`
	BuildOrder        []descriptor.Descriptor   `json:"build_order"`
	InsertedLevels    []int                     `json:"inserted_levels"`
	ModuleOutputs     map[string][]string       `json:"module_outputs"`
	Dependencies      []DependencyEntry         `json:"dependencies"`
}

// New builds an empty report at the current format version, ready to be
// populated by a full build.
func New() *BuildReport {
	return &BuildReport{
		FileFormatVersion: FormatVersion,
		InsertedLevels:    []int{},
		ModuleOutputs:     map[string][]string{},
		Dependencies:      []DependencyEntry{},
	}
}

// Validate checks the structural invariants a persisted build report must
// satisfy.
func (r *BuildReport) Validate(moduleOutputDir string) error {
	if len(r.BuildOrder) != len(r.Dependencies) {
		return fmt.Errorf("build report invariant violated: build_order has %d entries, dependencies has %d",
			len(r.BuildOrder), len(r.Dependencies))
	}

	for i, entry := range r.Dependencies {
		isPatch := entry.Descriptor.Symbol == descriptor.Patch
		if isPatch && entry.Hijacks == nil {
			return fmt.Errorf("build report invariant violated: PATCH entry at index %d has no hijacks field", i)
		}
		if !isPatch && entry.Hijacks != nil {
			return fmt.Errorf("build report invariant violated: non-PATCH entry at index %d has a hijacks field", i)
		}

		if entry.Descriptor.Symbol == descriptor.Module {
			name := entry.Descriptor.String()
			if entry.Descriptor.Name != nil {
				name = *entry.Descriptor.Name
			} else if entry.Descriptor.Path != nil {
				name = *entry.Descriptor.Path
			}
			outputs, ok := r.ModuleOutputs[name]
			if !ok {
				return fmt.Errorf("build report invariant violated: MODULE %q has no module_outputs entry", name)
			}
			for _, out := range outputs {
				// Module outputs are recorded relative to moduleOutputDir
				// (scanModuleOutputs' convention); reject anything that
				// would escape it once joined back on.
				clean := filepath.Clean(out)
				if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
					return fmt.Errorf("build report invariant violated: module output %q for %q does not lie under %q",
						out, name, moduleOutputDir)
				}
			}
		}
	}

	return nil
}

// InsertedLevelSet returns the inserted level numbers as a set for
// membership tests.
func (r *BuildReport) InsertedLevelSet() map[int]bool {
	set := make(map[int]bool, len(r.InsertedLevels))
	for _, l := range r.InsertedLevels {
		set[l] = true
	}
	return set
}

// SetInsertedLevels stores a sorted, deduplicated copy of levels.
func (r *BuildReport) SetInsertedLevels(levels map[int]bool) {
	out := make([]int, 0, len(levels))
	for l := range levels {
		out = append(out, l)
	}
	sort.Ints(out)
	r.InsertedLevels = out
}

// Path returns the well-known build-report path under stateDir, which is
// taken relative to projectRoot unless it is already absolute.
func Path(projectRoot, stateDir string) string {
	if filepath.IsAbs(stateDir) {
		return filepath.Join(stateDir, FileName)
	}
	return filepath.Join(projectRoot, stateDir, FileName)
}

// Load reads and parses the build report at path. A missing file is
// reported via os.IsNotExist on the returned error so callers can treat it
// as "no report" rather than a hard failure.
func Load(path string) (*BuildReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r BuildReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse build report %s: %w", path, err)
	}

	return &r, nil
}

// Save writes r to path as pretty-printed JSON, creating parent directories
// as needed. This is the only point at which the on-disk report is
// overwritten.
func Save(path string, r *BuildReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create build report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal build report: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write build report: %w", err)
	}

	return os.Rename(tmp, path)
}

// Delete removes the build report at path, forcing the next invocation to
// rebuild. Deleting an already-absent report is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove build report: %w", err)
	}
	return nil
}
