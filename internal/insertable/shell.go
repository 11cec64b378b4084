package insertable

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/dependency"
	"github.com/mellonpizza/callisto/internal/descriptor"
	"github.com/mellonpizza/callisto/internal/report"
)

// Commander is the subset of *exec.Cmd this package needs, extracted for
// testability the way spc's internal/compiler.Commander is.
type Commander interface {
	Run() error
}

// execCommandFunc constructs a Commander for name/args, swappable in tests.
type execCommandFunc func(name string, args ...string) Commander

func defaultExecCommand(name string, args ...string) Commander {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// ShellInsertable drives an external editor or assembler by invoking it as a
// subprocess against the working ROM, the way spc's CommandBuilder drives
// SPlusCC.exe. ToolPathKey names the configuration key this step consults
// for its tool path, so ConfigurationDependencies can report it.
type ShellInsertable struct {
	Descriptor   descriptor.Descriptor
	ToolPathKey  string
	ToolPath     string
	SourcePath   string
	ArgsTemplate []string

	execCommand execCommandFunc
	toolPath    string
}

// NewShellInsertable builds a ShellInsertable for the given descriptor,
// tool path (already resolved by config), source resource path, and a
// literal argument list to pass the tool.
func NewShellInsertable(d descriptor.Descriptor, toolPathKey, toolPath, sourcePath string, args []string) *ShellInsertable {
	return &ShellInsertable{
		Descriptor:   d,
		ToolPathKey:  toolPathKey,
		ToolPath:     toolPath,
		SourcePath:   sourcePath,
		ArgsTemplate: args,
		execCommand:  defaultExecCommand,
	}
}

// Init verifies the tool and source resource exist.
func (s *ShellInsertable) Init(cfg *config.Config) error {
	s.toolPath = s.ToolPath

	if s.toolPath == "" {
		return &ToolNotFoundError{Tool: string(s.Descriptor.Symbol), Path: ""}
	}
	if _, err := os.Stat(s.toolPath); err != nil {
		return &ToolNotFoundError{Tool: string(s.Descriptor.Symbol), Path: s.toolPath}
	}

	if s.SourcePath != "" {
		if _, err := os.Stat(s.SourcePath); err != nil {
			return &ResourceNotFoundError{Resource: s.SourcePath}
		}
	}

	return nil
}

// Insert runs the external tool and interprets its exit code.
func (s *ShellInsertable) Insert() error {
	cmd := s.execCommand(s.toolPath, s.ArgsTemplate...)
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code := exitErr.ExitCode()
			if IsSuccess(s.Descriptor.Symbol, code) {
				return nil
			}
			return NewInsertionError(s.Descriptor.String(),
				fmt.Sprintf("%s (exit code %d): %s", s.toolPath, code, ErrorMessage(s.Descriptor.Symbol, code)), err)
		}
		return NewInsertionError(s.Descriptor.String(), "failed to run "+s.toolPath, err)
	}
	return nil
}

// InsertWithDependencyReport runs the tool and reports the single source
// file it consumed as a resource dependency. Insertables with richer
// knowledge of their own inputs (e.g. an editor that also reads shared
// palette files) are expected to override this by embedding ShellInsertable
// and reporting additional resources.
func (s *ShellInsertable) InsertWithDependencyReport() ([]dependency.ResourceDependency, error) {
	if err := s.Insert(); err != nil {
		return nil, err
	}

	if s.SourcePath == "" {
		return nil, ErrNoDependencyReportFound
	}

	dep, err := dependency.ObserveResource(s.SourcePath, dependency.Reinsert)
	if err != nil {
		return nil, NewInsertionError(s.Descriptor.String(), "failed to observe source resource", err)
	}

	return []dependency.ResourceDependency{dep}, nil
}

// ConfigurationDependencies reports the tool-path key this step consulted.
func (s *ShellInsertable) ConfigurationDependencies() []dependency.ConfigurationDependency {
	if s.ToolPathKey == "" {
		return nil
	}
	return []dependency.ConfigurationDependency{
		{ConfigKeyPath: s.ToolPathKey, Policy: dependency.Remain, RecordedValue: s.ToolPath},
	}
}

// PatchShellInsertable wraps ShellInsertable with the Asar-style hijack reporting
// PATCH steps need. The underlying assembler is expected to write a JSON
// sidecar next to the patch source listing the address ranges it wrote,
// analogous to asar's hijack tracking in the original implementation.
type PatchShellInsertable struct {
	*ShellInsertable
	HijacksPath string
}

// NewPatchShellInsertable builds a PATCH insertable.
func NewPatchShellInsertable(d descriptor.Descriptor, toolPathKey, toolPath, sourcePath, hijacksPath string, args []string) *PatchShellInsertable {
	return &PatchShellInsertable{
		ShellInsertable: NewShellInsertable(d, toolPathKey, toolPath, sourcePath, args),
		HijacksPath:     hijacksPath,
	}
}

// Hijacks reads the address ranges the last Insert call wrote.
func (p *PatchShellInsertable) Hijacks() ([]report.Hijack, error) {
	data, err := os.ReadFile(p.HijacksPath)
	if err != nil {
		return nil, NewInsertionError(p.Descriptor.String(), "failed to read hijacks report", err)
	}

	var hijacks []report.Hijack
	if err := json.Unmarshal(data, &hijacks); err != nil {
		return nil, NewInsertionError(p.Descriptor.String(), "failed to parse hijacks report", err)
	}

	return hijacks, nil
}

// FormatArgs performs simple {placeholder} substitution against args,
// keeping ShellInsertable's argument templates readable in configuration.
func FormatArgs(args []string, values map[string]string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		for key, value := range values {
			arg = strings.ReplaceAll(arg, "{"+key+"}", value)
		}
		out[i] = arg
	}
	return out
}
