package builder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mellonpizza/callisto/internal/cleanup"
	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/descriptor"
	"github.com/mellonpizza/callisto/internal/insertable"
	"github.com/mellonpizza/callisto/internal/levels"
	"github.com/mellonpizza/callisto/internal/modcache"
	"github.com/mellonpizza/callisto/internal/report"
	"github.com/mellonpizza/callisto/internal/rom"
)

// FullBuilder executes every configured step in order against a fresh
// working ROM and writes a complete build report, satisfying the contract
// the quick builder depends on: on completion the report satisfies every
// build-report invariant; on failure any partial report is deleted.
type FullBuilder struct {
	cfg            *config.Config
	factory        insertable.Factory
	modCache       *modcache.Cache
	log            *slog.Logger
	conflictPolicy ConflictPolicy
}

// NewFullBuilder builds a FullBuilder. modCache may be nil to disable
// mirroring module outputs for later quick builds.
func NewFullBuilder(cfg *config.Config, factory insertable.Factory, modCache *modcache.Cache, log *slog.Logger, conflictPolicy ConflictPolicy) *FullBuilder {
	if log == nil {
		log = slog.Default()
	}
	return &FullBuilder{cfg: cfg, factory: factory, modCache: modCache, log: log, conflictPolicy: conflictPolicy}
}

// Build runs every step in cfg.BuildOrder against a fresh working ROM
// copied from the current output ROM (the project's base ROM, the first
// time), expanding it to the configured size first, and writes a new build
// report on success.
func (b *FullBuilder) Build() error {
	b.log.Info("full build started")

	reportPath := report.Path(b.cfg.ProjectRoot, b.cfg.StateDir)

	if _, err := os.Stat(b.cfg.OutputROM); err != nil {
		return fmt.Errorf("no base ROM found at %s to build from: %w", b.cfg.OutputROM, err)
	}

	tempROMPath := rom.TemporaryPath(b.cfg.TemporaryFolder, b.cfg.OutputROM)
	if err := rom.Copy(b.cfg.OutputROM, tempROMPath); err != nil {
		return err
	}

	if b.cfg.ROMSize != nil {
		if err := rom.ExpandToSize(tempROMPath, *b.cfg.ROMSize); err != nil {
			_ = report.Delete(reportPath)
			return err
		}
	}

	rep := report.New()
	rep.ROMSize = b.cfg.ROMSize
	rep.BuildOrder = b.cfg.BuildOrder

	insertedLevels := map[int]bool{}
	tracker := newConflictTracker(b.conflictPolicy)
	failedDependencyReport := false

	for _, d := range b.cfg.BuildOrder {
		entry, outputs, err := b.runStep(d, tempROMPath, tracker, &failedDependencyReport)
		if err != nil {
			_ = report.Delete(reportPath)
			return err
		}
		rep.Dependencies = append(rep.Dependencies, entry)

		if d.Symbol == descriptor.Levels {
			numbers, err := levels.ScanLevelNumbers(b.cfg.Levels)
			if err != nil {
				_ = report.Delete(reportPath)
				return insertable.NewInsertionError(d.String(), "failed to determine source level numbers", err)
			}
			for n := range numbers {
				insertedLevels[n] = true
			}
		}

		if d.Symbol == descriptor.Module {
			rep.ModuleOutputs[moduleName(d)] = outputs
		}
	}

	if conflicts := tracker.conflicts(); len(conflicts) > 0 {
		_ = report.Delete(reportPath)
		return &ConflictError{Conflicts: conflicts}
	}

	rep.SetInsertedLevels(insertedLevels)

	if err := rep.Validate(b.cfg.ModuleOutputDir); err != nil {
		_ = report.Delete(reportPath)
		return err
	}

	if err := report.Save(reportPath, rep); err != nil {
		return err
	}

	if err := b.cacheModules(rep); err != nil {
		return err
	}

	if err := rom.WriteMarker(tempROMPath, report.FormatVersion); err != nil {
		return err
	}
	if err := rom.Move(tempROMPath, b.cfg.OutputROM); err != nil {
		return err
	}
	if err := insertable.RelinkProjectGraphics(b.cfg, b.cfg.OutputROM); err != nil {
		return err
	}
	if err := os.RemoveAll(b.cfg.TemporaryFolder); err != nil {
		return err
	}

	b.log.Info("full build finished successfully")
	return nil
}

// runStep applies one build step to the working ROM. For a MODULE step it
// also returns the files that step left under the module output directory,
// so the caller records them in the build report without rescanning.
func (b *FullBuilder) runStep(d descriptor.Descriptor, tempROMPath string, tracker *conflictTracker, failedDependencyReport *bool) (entry report.DependencyEntry, moduleOutputs []string, err error) {
	entry = report.DependencyEntry{Descriptor: d}
	if d.Symbol == descriptor.Patch {
		entry.Hijacks = []report.Hijack{}
	}

	if d.Symbol == descriptor.Module {
		name := moduleName(d)
		// A full build does not run module cleanup; any cleanup file from a
		// previous project layout no longer applies to this run, but a
		// stale one left over must not silently zero fresh bytes, so it is
		// removed before insertion rather than consulted.
		_ = os.Remove(cleanup.FilePath(b.cfg.CleanupDir, name))
	}

	step, err := b.factory(d, b.cfg)
	if err != nil {
		return entry, nil, err
	}
	if err := step.Init(b.cfg); err != nil {
		return entry, nil, err
	}

	var before []byte
	if tracker.policy != ConflictPolicyNone || d.Symbol == descriptor.Module {
		before, err = os.ReadFile(tempROMPath)
		if err != nil {
			return entry, nil, err
		}
	}

	if !*failedDependencyReport {
		resourceDeps, err := step.InsertWithDependencyReport()
		switch {
		case errors.Is(err, insertable.ErrNoDependencyReportFound):
			*failedDependencyReport = true
		case err != nil:
			return entry, nil, err
		default:
			entry.ResourceDependencies = resourceDeps
			entry.ConfigurationDependencies = step.ConfigurationDependencies()
		}
	} else if err := step.Insert(); err != nil {
		return entry, nil, err
	}

	if d.Symbol == descriptor.Patch {
		patchStep, ok := step.(insertable.PatchInsertable)
		if !ok {
			return entry, nil, fmt.Errorf("PATCH step %s does not implement hijack reporting", d.String())
		}
		hijacks, err := patchStep.Hijacks()
		if err != nil {
			return entry, nil, err
		}
		entry.Hijacks = hijacks
	}

	if tracker.policy != ConflictPolicyNone {
		after, err := os.ReadFile(tempROMPath)
		if err != nil {
			return entry, nil, err
		}
		tracker.observe(before, after, d.String(), entry.Hijacks)
	}

	if d.Symbol == descriptor.Module {
		name := moduleName(d)
		outputs, err := scanModuleOutputs(b.cfg.ModuleOutputDir, name)
		if err != nil {
			return entry, nil, err
		}
		moduleOutputs = outputs
		if len(outputs) > 0 {
			addresses, err := moduleWriteAddresses(before, tempROMPath)
			if err != nil {
				return entry, nil, err
			}
			if err := cleanup.WriteAddresses(cleanup.FilePath(b.cfg.CleanupDir, name), addresses); err != nil {
				return entry, nil, err
			}
		}
	}

	return entry, moduleOutputs, nil
}

// moduleWriteAddresses derives the addresses a module insertion wrote by
// diffing the working ROM before and after the step ran, the same
// before/after snapshot the conflict tracker uses. Addresses are recorded
// in module-local, unheadered form so a later cleanup pass (which also
// operates on the unheadered tail) finds them at the same offsets.
func moduleWriteAddresses(before []byte, tempROMPath string) ([]int, error) {
	after, err := os.ReadFile(tempROMPath)
	if err != nil {
		return nil, err
	}

	header := rom.DetectHeader(after)
	limit := len(before)
	if len(after) < limit {
		limit = len(after)
	}

	var addresses []int
	for addr := header; addr < limit; addr++ {
		if before[addr] != after[addr] {
			addresses = append(addresses, addr-header)
		}
	}
	return addresses, nil
}

func (b *FullBuilder) cacheModules(rep *report.BuildReport) error {
	if b.modCache == nil {
		return nil
	}
	for name, outputs := range rep.ModuleOutputs {
		if len(outputs) == 0 {
			continue
		}
		if err := b.modCache.Store(name, b.cfg.ModuleOutputDir, outputs); err != nil {
			return err
		}
	}
	return nil
}
