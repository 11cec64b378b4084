package insertable

import (
	"fmt"
	"path/filepath"

	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/descriptor"
	"github.com/mellonpizza/callisto/internal/rom"
)

// Factory constructs the concrete Insertable for a descriptor against the
// current configuration. The quick and full builders take a Factory rather
// than hard-coding construction, so tests can substitute doubles without
// touching the decision procedure.
type Factory func(d descriptor.Descriptor, cfg *config.Config) (Insertable, error)

// toolKeyFor names the configuration key ("tools.<tool>") a symbol's
// external tool path is read from.
func toolKeyFor(symbol descriptor.Symbol) string {
	switch symbol {
	case descriptor.Patch, descriptor.Module, descriptor.Pixi:
		return "tools.asar"
	default:
		return "tools.lunar_magic"
	}
}

// DefaultFactory builds a ShellInsertable (or PatchShellInsertable, for
// PATCH) driven entirely by configuration: the tool path comes from
// "tools.<tool>", the source path from the descriptor's Path/Name, and the
// argument list is the tool's default invocation shape for that symbol.
func DefaultFactory(d descriptor.Descriptor, cfg *config.Config) (Insertable, error) {
	if !d.Symbol.Valid() {
		return nil, fmt.Errorf("unknown descriptor symbol %q", d.Symbol)
	}

	toolKey := toolKeyFor(d.Symbol)
	toolPath := cfg.GetByKey(toolKey)

	sourcePath := ""
	if d.Path != nil {
		sourcePath = *d.Path
	} else if d.Name != nil {
		sourcePath = *d.Name
	}
	if sourcePath != "" && !filepath.IsAbs(sourcePath) {
		sourcePath = filepath.Join(cfg.ProjectRoot, sourcePath)
	}

	args := FormatArgs(defaultArgs(d.Symbol), map[string]string{
		"source": sourcePath,
		"rom":    rom.TemporaryPath(cfg.TemporaryFolder, cfg.OutputROM),
	})

	if d.Symbol == descriptor.Patch {
		hijacksPath := sourcePath + ".hijacks.json"
		return NewPatchShellInsertable(d, toolKey, toolPath, sourcePath, hijacksPath, args), nil
	}

	return NewShellInsertable(d, toolKey, toolPath, sourcePath, args), nil
}

// defaultArgs is the default invocation shape for each symbol's external
// tool: Lunar Magic-style editors take "-ApplySomething rom source", Asar
// takes "source rom".
func defaultArgs(symbol descriptor.Symbol) []string {
	switch symbol {
	case descriptor.Graphics:
		return []string{"-ImportGFX", "{rom}", "{source}"}
	case descriptor.ExGraphics:
		return []string{"-ImportExGFX", "{rom}", "{source}"}
	case descriptor.SharedPalettes:
		return []string{"-ImportSharedPalette", "{rom}", "{source}"}
	case descriptor.Overworld:
		return []string{"-ImportOverworld", "{rom}", "{source}"}
	case descriptor.TitleScreen:
		return []string{"-ImportTitleScreen", "{rom}", "{source}"}
	case descriptor.Credits:
		return []string{"-ImportCredits", "{rom}", "{source}"}
	case descriptor.GlobalExAnimation:
		return []string{"-ImportGlobalExAnimation", "{rom}", "{source}"}
	case descriptor.TitleMoves:
		return []string{"-ImportTitleMoves", "{rom}", "{source}"}
	case descriptor.Levels:
		return []string{"-ImportMultLevels", "{rom}", "{source}"}
	case descriptor.BinaryMap16:
		return []string{"-ImportAllMap16", "{rom}", "{source}"}
	case descriptor.TextMap16:
		return []string{"-ImportAllMap16Text", "{rom}", "{source}"}
	case descriptor.Patch, descriptor.Module, descriptor.Pixi:
		return []string{"{source}", "{rom}"}
	case descriptor.ExternalTool:
		return []string{"{source}", "{rom}"}
	default:
		return nil
	}
}
