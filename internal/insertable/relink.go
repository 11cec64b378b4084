package insertable

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/descriptor"
)

// relinkFlags names the Lunar Magic export flag for each symbol whose
// project folder needs to stay in sync with whatever ROM a build just
// produced, the inverse of defaultArgs' -ImportGFX/-ImportExGFX.
var relinkFlags = map[descriptor.Symbol]string{
	descriptor.Graphics:   "-ExportGFX",
	descriptor.ExGraphics: "-ExportExGFX",
}

// RelinkProjectGraphics re-exports romPath's graphics back into whichever
// project folders the build order's GRAPHICS and EXGRAPHICS steps point at.
// A build only ever imports a project's graphics into the ROM it produces;
// without this step an external editor session left open against the
// project's Graphics/ExGraphics folders would drift from the ROM a build
// just finished writing. It is a no-op for build orders configuring
// neither symbol.
func RelinkProjectGraphics(cfg *config.Config, romPath string) error {
	return relinkProjectGraphics(cfg, romPath, defaultExecCommand)
}

func relinkProjectGraphics(cfg *config.Config, romPath string, execCommand execCommandFunc) error {
	for _, d := range cfg.BuildOrder {
		flag, ok := relinkFlags[d.Symbol]
		if !ok {
			continue
		}

		folder := ""
		if d.Path != nil {
			folder = *d.Path
		} else if d.Name != nil {
			folder = *d.Name
		}
		if folder == "" {
			continue
		}
		if !filepath.IsAbs(folder) {
			folder = filepath.Join(cfg.ProjectRoot, folder)
		}

		toolPath := cfg.GetByKey(toolKeyFor(d.Symbol))
		if toolPath == "" {
			continue
		}

		if err := runRelink(execCommand, toolPath, flag, romPath, folder, d); err != nil {
			return err
		}
	}
	return nil
}

func runRelink(execCommand execCommandFunc, toolPath, flag, romPath, folder string, d descriptor.Descriptor) error {
	cmd := execCommand(toolPath, flag, romPath, folder)
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code := exitErr.ExitCode()
			if IsSuccess(d.Symbol, code) {
				return nil
			}
			return NewInsertionError(d.String(),
				fmt.Sprintf("%s (exit code %d): %s", toolPath, code, ErrorMessage(d.Symbol, code)), err)
		}
		return NewInsertionError(d.String(), "failed to run "+toolPath, err)
	}
	return nil
}
