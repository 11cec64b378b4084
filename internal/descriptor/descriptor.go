// Package descriptor identifies individual build steps.
//
// A Descriptor is the unit of identity the quick builder compares against
// the previous build order: any change in symbol, name, or path for a given
// position forces a full rebuild.
package descriptor

import "fmt"

// Symbol names the kind of insertable a Descriptor refers to.
type Symbol string

const (
	Graphics          Symbol = "GRAPHICS"
	ExGraphics        Symbol = "EXGRAPHICS"
	SharedPalettes    Symbol = "SHARED_PALETTES"
	Overworld         Symbol = "OVERWORLD"
	TitleScreen       Symbol = "TITLE_SCREEN"
	Credits           Symbol = "CREDITS"
	GlobalExAnimation Symbol = "GLOBAL_EXANIMATION"
	TitleMoves        Symbol = "TITLE_MOVES"
	Levels            Symbol = "LEVELS"
	BinaryMap16       Symbol = "BINARY_MAP16"
	TextMap16         Symbol = "TEXT_MAP16"
	ExternalTool      Symbol = "EXTERNAL_TOOL"
	Patch             Symbol = "PATCH"
	Module            Symbol = "MODULE"
	Pixi              Symbol = "PIXI"
)

// symbols is the set of Symbol values a Descriptor may legally carry.
var symbols = map[Symbol]bool{
	Graphics: true, ExGraphics: true, SharedPalettes: true, Overworld: true,
	TitleScreen: true, Credits: true, GlobalExAnimation: true, TitleMoves: true,
	Levels: true, BinaryMap16: true, TextMap16: true, ExternalTool: true,
	Patch: true, Module: true, Pixi: true,
}

// Valid reports whether s is one of the fifteen recognised symbols.
func (s Symbol) Valid() bool {
	return symbols[s]
}

// Descriptor identifies a single build step: its kind, and optionally the
// name or source path that distinguishes it from other steps of the same
// kind (e.g. two PATCH steps, or a MODULE by its source file).
type Descriptor struct {
	Symbol Symbol  `json:"symbol"`
	Name   *string `json:"name,omitempty"`
	Path   *string `json:"path,omitempty"`
}

// New builds a Descriptor with no optional fields set.
func New(symbol Symbol) Descriptor {
	return Descriptor{Symbol: symbol}
}

// WithName returns a copy of d with Name set.
func (d Descriptor) WithName(name string) Descriptor {
	d.Name = &name
	return d
}

// WithPath returns a copy of d with Path set.
func (d Descriptor) WithPath(path string) Descriptor {
	d.Path = &path
	return d
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Equal reports structural equality: same symbol, and the same optional
// name/path values. A nil field is distinct from a set one, even a
// set-but-empty one: two nils and two equal strings both count as equal,
// one nil and one non-nil never does.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Symbol != other.Symbol {
		return false
	}
	if (d.Name == nil) != (other.Name == nil) {
		return false
	}
	if d.Name != nil && *d.Name != *other.Name {
		return false
	}
	if (d.Path == nil) != (other.Path == nil) {
		return false
	}
	if d.Path != nil && *d.Path != *other.Path {
		return false
	}
	return true
}

// String renders a human-readable identity for log messages, e.g.
// "PATCH(asm/fix.asm)" or "GRAPHICS".
func (d Descriptor) String() string {
	suffix := optString(d.Name)
	if suffix == "" {
		suffix = optString(d.Path)
	}
	if suffix == "" {
		return string(d.Symbol)
	}
	return fmt.Sprintf("%s(%s)", d.Symbol, suffix)
}
