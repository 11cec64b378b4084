package insertable

import "github.com/mellonpizza/callisto/internal/descriptor"

// toolCodes maps a symbol's external tool exit codes to human-readable
// descriptions, generalizing spc's internal/codes single ErrorCodes table
// (one Crestron compiler) to one table per external tool this engine
// drives.
var toolCodes = map[descriptor.Symbol]map[int]string{
	// Lunar Magic-driven symbols share Lunar Magic's exit code convention.
	descriptor.Graphics:       lunarMagicCodes,
	descriptor.ExGraphics:     lunarMagicCodes,
	descriptor.SharedPalettes: lunarMagicCodes,
	descriptor.Overworld:      lunarMagicCodes,
	descriptor.TitleScreen:    lunarMagicCodes,
	descriptor.Credits:        lunarMagicCodes,
	descriptor.GlobalExAnimation: lunarMagicCodes,
	descriptor.TitleMoves:     lunarMagicCodes,
	descriptor.Levels:         lunarMagicCodes,
	descriptor.BinaryMap16:    lunarMagicCodes,
	descriptor.TextMap16:      lunarMagicCodes,

	// Asar-driven symbols.
	descriptor.Patch:  asarCodes,
	descriptor.Module: asarCodes,
	descriptor.Pixi:   asarCodes,
}

var lunarMagicCodes = map[int]string{
	0: "Success",
	1: "Lunar Magic reported a general failure",
	2: "Invalid command line arguments",
}

var asarCodes = map[int]string{
	0: "Success",
	1: "Assembly failed",
	2: "Fatal error while assembling",
}

// IsSuccess reports whether code indicates success for the given symbol's
// external tool.
func IsSuccess(symbol descriptor.Symbol, code int) bool {
	return code == 0
}

// ErrorMessage returns the human-readable message for a given symbol/exit
// code pair, or a generic message if the code is unrecognized.
func ErrorMessage(symbol descriptor.Symbol, code int) string {
	if table, ok := toolCodes[symbol]; ok {
		if msg, ok := table[code]; ok {
			return msg
		}
	}
	return "Unknown error"
}
