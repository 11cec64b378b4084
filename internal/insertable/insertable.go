// Package insertable defines the contract every build step satisfies plus
// concrete, shell-invoking implementations for the external editors and
// assemblers callisto drives. Individual insertable wrappers are external
// collaborators — the engine only needs their declared inputs, outputs,
// and dependency report.
package insertable

import (
	"github.com/mellonpizza/callisto/internal/config"
	"github.com/mellonpizza/callisto/internal/dependency"
	"github.com/mellonpizza/callisto/internal/report"
)

// Insertable is the interface every build step satisfies.
type Insertable interface {
	// Init performs idempotent setup. May fail with InsertionError,
	// ToolNotFoundError, or ResourceNotFoundError.
	Init(cfg *config.Config) error

	// Insert performs the side effect. May fail with InsertionError.
	Insert() error

	// InsertWithDependencyReport performs the side effect and returns the
	// resource dependencies actually consumed. May fail with InsertionError
	// or, via errors.Is, ErrNoDependencyReportFound.
	InsertWithDependencyReport() ([]dependency.ResourceDependency, error)

	// ConfigurationDependencies lists the configuration keys whose value
	// this step consulted during the current run.
	ConfigurationDependencies() []dependency.ConfigurationDependency
}

// PatchInsertable is the extra contract a PATCH step exposes after Insert
// completes.
type PatchInsertable interface {
	Insertable
	Hijacks() ([]report.Hijack, error)
}
