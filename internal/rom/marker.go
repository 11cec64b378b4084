package rom

import (
	"encoding/binary"
	"fmt"
	"os"
)

// markerOffset is an offset into the unheadered ROM's expansion region that
// callisto reserves to stamp its own build marker, distinct from any game
// data. markerMagic identifies the marker so a foreign ROM at this offset
// isn't misread.
const (
	markerOffset = 0x7FC0
	markerMagic  = uint32(0x43414c4c) // "CALL"
)

// WriteMarker stamps a build marker (magic + format version) into the ROM
// at path, past any copier header, so a later inspection can confirm this
// ROM was produced by this engine at a known report format.
func WriteMarker(path string, formatVersion int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	header := DetectHeader(data)
	end := header + markerOffset + 8
	if len(data) < end {
		return fmt.Errorf("ROM %s is too small to hold a build marker", path)
	}

	binary.LittleEndian.PutUint32(data[header+markerOffset:], markerMagic)
	binary.LittleEndian.PutUint32(data[header+markerOffset+4:], uint32(formatVersion))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write marker to %s: %w", path, err)
	}
	return nil
}

// ReadMarker reads back the format version stamped by WriteMarker, or ok=false
// if the marker is absent or the ROM is too small.
func ReadMarker(path string) (formatVersion int, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	header := DetectHeader(data)
	end := header + markerOffset + 8
	if len(data) < end {
		return 0, false, nil
	}

	magic := binary.LittleEndian.Uint32(data[header+markerOffset:])
	if magic != markerMagic {
		return 0, false, nil
	}

	version := binary.LittleEndian.Uint32(data[header+markerOffset+4:])
	return int(version), true, nil
}
