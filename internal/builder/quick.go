package builder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mellonpizza/callisto/internal/cleanup"
	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/dependency"
	"github.com/mellonpizza/callisto/internal/descriptor"
	"github.com/mellonpizza/callisto/internal/insertable"
	"github.com/mellonpizza/callisto/internal/levels"
	"github.com/mellonpizza/callisto/internal/modcache"
	"github.com/mellonpizza/callisto/internal/report"
	"github.com/mellonpizza/callisto/internal/rom"
)

// QuickBuilder implements the decision procedure: given the prior build
// report and the current configuration, it either proves quick build is
// safe and performs the minimal set of reinsertions, or returns a
// MustRebuild result so the caller can fall back to the full builder.
type QuickBuilder struct {
	cfg      *config.Config
	factory  insertable.Factory
	modCache *modcache.Cache
	log      *slog.Logger
}

// NewQuickBuilder builds a QuickBuilder. modCache may be nil, in which case
// module reuse across quick builds is disabled (equivalent to --no-cache).
func NewQuickBuilder(cfg *config.Config, factory insertable.Factory, modCache *modcache.Cache, log *slog.Logger) *QuickBuilder {
	if log == nil {
		log = slog.Default()
	}
	return &QuickBuilder{cfg: cfg, factory: factory, modCache: modCache, log: log}
}

// Build runs the quick-build decision procedure once.
func (b *QuickBuilder) Build() (Result, error) {
	b.log.Info("quick build started")

	reportPath := report.Path(b.cfg.ProjectRoot, b.cfg.StateDir)
	rep, err := report.Load(reportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return mustRebuild("no build report found at %s, must rebuild", reportPath), nil
		}
		return Result{}, err
	}

	if _, err := os.Stat(b.cfg.OutputROM); err != nil {
		if os.IsNotExist(err) {
			return mustRebuild("no ROM found at %s, must rebuild", b.cfg.OutputROM), nil
		}
		return Result{}, err
	}

	if res := checkRebuildROMSize(rep, b.cfg); res.Kind == MustRebuild {
		return res, nil
	}
	if res := checkBuildReportFormat(rep); res.Kind == MustRebuild {
		return res, nil
	}
	if res := checkBuildOrderChange(rep, b.cfg); res.Kind == MustRebuild {
		return res, nil
	}

	if b.cfg.Levels != "" {
		res, err := checkLevelSetSafety(rep, b.cfg)
		if err != nil {
			return Result{}, err
		}
		if res.Kind == MustRebuild {
			return res, nil
		}
	}

	if res := checkRebuildConfigDependencies(rep, b.cfg); res.Kind == MustRebuild {
		return res, nil
	}

	return b.runLoop(rep, reportPath)
}

func checkRebuildROMSize(rep *report.BuildReport, cfg *config.Config) Result {
	recorded, configured := rep.ROMSize, cfg.ROMSize
	if recorded == nil && configured == nil {
		return success()
	}
	if recorded == nil || configured == nil || *recorded != *configured {
		return mustRebuild("rom_size has changed, must rebuild")
	}
	return success()
}

func checkBuildReportFormat(rep *report.BuildReport) Result {
	if rep.FileFormatVersion != report.FormatVersion {
		return mustRebuild("build report format has changed, must rebuild")
	}
	return success()
}

func checkBuildOrderChange(rep *report.BuildReport, cfg *config.Config) Result {
	if len(rep.BuildOrder) != len(cfg.BuildOrder) {
		return mustRebuild("build order has changed, must rebuild")
	}
	for i, d := range cfg.BuildOrder {
		if !rep.BuildOrder[i].Equal(d) {
			return mustRebuild("build order has changed, must rebuild")
		}
	}
	return success()
}

func checkLevelSetSafety(rep *report.BuildReport, cfg *config.Config) (Result, error) {
	old := rep.InsertedLevelSet()

	if _, err := os.Stat(cfg.Levels); err != nil {
		if os.IsNotExist(err) && len(old) > 0 {
			return Result{}, insertable.NewInsertionError(
				string(descriptor.Levels), fmt.Sprintf(
					"configured levels folder at %q does not exist, but levels were previously inserted into this ROM; "+
						"if you wish to no longer insert levels, unset the levels path in your configuration", cfg.Levels), nil)
		}
		if !os.IsNotExist(err) {
			return Result{}, err
		}
	}

	current, err := levels.ScanLevelNumbers(cfg.Levels)
	if err != nil {
		return Result{}, insertable.NewInsertionError(string(descriptor.Levels), "failed to determine source level numbers", err)
	}

	missing := 0
	for l := range old {
		if !current[l] {
			missing++
		}
	}
	if missing > 0 {
		plural := ""
		verb := "has"
		if missing > 1 {
			plural, verb = "s", "have"
		}
		return mustRebuild("%d old level file%s %s been removed, must rebuild", missing, plural, verb), nil
	}
	return success(), nil
}

func checkRebuildConfigDependencies(rep *report.BuildReport, cfg *config.Config) Result {
	for _, entry := range rep.Dependencies {
		for _, dep := range entry.ConfigurationDependencies {
			if dep.Policy != dependency.Rebuild {
				continue
			}
			if cfg.GetByKey(dep.ConfigKeyPath) != dep.RecordedValue {
				return mustRebuild("value of %s has changed, must rebuild", dep.ConfigKeyPath)
			}
		}
	}
	return success()
}

// checkRebuildResourceSweep re-checks every REBUILD-policy resource
// dependency of entries[from:]. It runs fresh at every loop iteration, not
// just once, so a change discovered late aborts before any further
// mutation.
func checkRebuildResourceSweep(entries []report.DependencyEntry, from int) (Result, error) {
	for i := from; i < len(entries); i++ {
		for _, dep := range entries[i].ResourceDependencies {
			if dep.Policy != dependency.Rebuild {
				continue
			}
			changed, err := dep.Changed()
			if err != nil {
				return Result{}, err
			}
			if changed {
				return mustRebuild("dependency %q of %s has changed, must rebuild",
					dep.Path, entries[i].Descriptor.String()), nil
			}
		}
	}
	return success(), nil
}

func (b *QuickBuilder) runLoop(rep *report.BuildReport, reportPath string) (Result, error) {
	entries := rep.Dependencies
	tempROMPath := rom.TemporaryPath(b.cfg.TemporaryFolder, b.cfg.OutputROM)

	anyWorkDone := false
	failedDependencyReport := false

	for i := range entries {
		if res, err := checkRebuildResourceSweep(entries, i); err != nil {
			return Result{}, err
		} else if res.Kind == MustRebuild {
			return res, nil
		}

		entry := &entries[i]
		mustReinsert, trigger := b.checkReinsert(entry)

		if !mustReinsert {
			if entry.Descriptor.Symbol == descriptor.Module {
				name := moduleName(entry.Descriptor)
				ok, err := b.restoreModuleOutput(name)
				if err != nil {
					return Result{}, err
				}
				if !ok {
					return mustRebuild("previously created module output for %s is missing, must rebuild", name), nil
				}
			}
			b.log.Info("already up to date", "step", entry.Descriptor.String())
			continue
		}

		b.log.Info("must be reinserted", "step", entry.Descriptor.String(), "reason", trigger)

		if !anyWorkDone {
			anyWorkDone = true
			if err := rom.Copy(b.cfg.OutputROM, tempROMPath); err != nil {
				return Result{}, err
			}
		}

		if entry.Descriptor.Symbol == descriptor.Module {
			name := moduleName(entry.Descriptor)
			if err := cleanup.CleanModule(name, tempROMPath, b.cfg.CleanupDir); err != nil {
				return mustRebuild("%v", err), nil
			}
		}

		step, err := b.factory(entry.Descriptor, b.cfg)
		if err != nil {
			return Result{}, err
		}
		if err := step.Init(b.cfg); err != nil {
			return Result{}, err
		}

		if !failedDependencyReport {
			resourceDeps, err := step.InsertWithDependencyReport()
			switch {
			case errors.Is(err, insertable.ErrNoDependencyReportFound):
				failedDependencyReport = true
			case err != nil:
				return Result{}, err
			default:
				entry.ResourceDependencies = resourceDeps
				entry.ConfigurationDependencies = step.ConfigurationDependencies()
			}
		} else if err := step.Insert(); err != nil {
			return Result{}, err
		}

		if entry.Descriptor.Symbol == descriptor.Patch {
			patchStep, ok := step.(insertable.PatchInsertable)
			if !ok {
				return Result{}, fmt.Errorf("PATCH step %s does not implement hijack reporting", entry.Descriptor.String())
			}
			newHijacks, err := patchStep.Hijacks()
			if err != nil {
				return Result{}, err
			}
			if HijacksGoneBad(entry.Hijacks, newHijacks) {
				return mustRebuild("hijacks of %s have changed, must rebuild", entry.Descriptor.String()), nil
			}
			entry.Hijacks = newHijacks
		}

		if entry.Descriptor.Symbol == descriptor.Module {
			name := moduleName(entry.Descriptor)
			outputs, err := scanModuleOutputs(b.cfg.ModuleOutputDir, name)
			if err != nil {
				return Result{}, err
			}
			rep.ModuleOutputs[name] = outputs
		}
	}

	if !anyWorkDone {
		b.log.Info("everything already up to date, no work to do")
		return noWork(), nil
	}

	if !failedDependencyReport {
		rep.Dependencies = entries
		if err := report.Save(reportPath, rep); err != nil {
			return Result{}, err
		}
	} else {
		b.log.Warn("no dependency report found for at least one reinserted step; quick build not applicable on the next run")
		if err := report.Delete(reportPath); err != nil {
			return Result{}, err
		}
	}

	if err := b.cacheModules(rep); err != nil {
		return Result{}, err
	}

	if err := rom.WriteMarker(tempROMPath, report.FormatVersion); err != nil {
		return Result{}, err
	}
	if err := rom.Move(tempROMPath, b.cfg.OutputROM); err != nil {
		return Result{}, err
	}
	if err := insertable.RelinkProjectGraphics(b.cfg, b.cfg.OutputROM); err != nil {
		return Result{}, err
	}
	if err := os.RemoveAll(b.cfg.TemporaryFolder); err != nil {
		return Result{}, err
	}

	b.log.Info("quick build finished successfully")
	return success(), nil
}

// checkReinsert evaluates entry's reinsert-policy dependencies, first
// configuration then resource.
func (b *QuickBuilder) checkReinsert(entry *report.DependencyEntry) (marked bool, trigger string) {
	for _, dep := range entry.ConfigurationDependencies {
		if dep.Policy != dependency.Reinsert {
			continue
		}
		if b.cfg.GetByKey(dep.ConfigKeyPath) != dep.RecordedValue {
			return true, fmt.Sprintf("configuration variable %s changed", dep.ConfigKeyPath)
		}
	}

	for _, dep := range entry.ResourceDependencies {
		if dep.Policy != dependency.Reinsert {
			continue
		}
		changed, err := dep.Changed()
		if err != nil {
			// A stat failure here is not one of the documented error kinds;
			// treat it as evidence the dependency needs re-observation.
			return true, fmt.Sprintf("resource %q could not be checked: %v", dep.Path, err)
		}
		if changed {
			return true, fmt.Sprintf("resource %q changed", dep.Path)
		}
	}

	return false, ""
}

func (b *QuickBuilder) restoreModuleOutput(name string) (bool, error) {
	if b.modCache == nil {
		return false, nil
	}
	return b.modCache.Restore(name, b.cfg.ModuleOutputDir)
}

func (b *QuickBuilder) cacheModules(rep *report.BuildReport) error {
	if b.modCache == nil {
		return nil
	}
	for _, entry := range rep.Dependencies {
		if entry.Descriptor.Symbol != descriptor.Module {
			continue
		}
		name := moduleName(entry.Descriptor)
		outputs := rep.ModuleOutputs[name]
		if len(outputs) == 0 {
			continue
		}
		if err := b.modCache.Store(name, b.cfg.ModuleOutputDir, outputs); err != nil {
			return err
		}
	}
	return nil
}

func moduleName(d descriptor.Descriptor) string {
	if d.Name != nil {
		return *d.Name
	}
	if d.Path != nil {
		return *d.Path
	}
	return d.String()
}
