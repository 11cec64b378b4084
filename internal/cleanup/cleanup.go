// Package cleanup implements module cleanup: before a stale MODULE step is
// reinserted, every address it wrote on the prior build must be zeroed out
// first, or leftover bytes from the old build survive alongside the new
// one. Grounded on original_source/callisto/builders/quick_builder.cpp's
// cleanModule, which records written addresses in a sidecar ".addr" file
// and feeds them to the embedded patch assembler as "autoclean" directives.
package cleanup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mellonpizza/callisto/internal/asar"
	"github.com/mellonpizza/callisto/internal/rom"
)

// FilePath returns the sidecar cleanup-address-list path for the module
// whose source lives at moduleRelativePath (project-root relative, as
// recorded in a Descriptor's Name field), under cleanupDir.
func FilePath(cleanupDir, moduleRelativePath string) string {
	ext := filepath.Ext(moduleRelativePath)
	stem := strings.TrimSuffix(moduleRelativePath, ext)
	return filepath.Join(cleanupDir, stem+".addr")
}

// WriteAddresses records the set of addresses a module's insertion wrote,
// one decimal address per line, so a later reinsertion can clean them
// before rewriting. Called at the end of a successful MODULE insertion.
func WriteAddresses(path string, addresses []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	var b strings.Builder
	for _, addr := range addresses {
		fmt.Fprintf(&b, "%d\n", addr)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadAddresses reads back the addresses WriteAddresses recorded.
func ReadAddresses(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var addresses []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		addr, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q in %s: %w", line, path, err)
		}
		addresses = append(addresses, addr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return addresses, nil
}

// CleanModule zeroes out every address moduleRelativePath's prior
// insertion wrote, in the working ROM at romPath, before the module is
// reinserted. Returns an error wrapping a missing cleanup file or an
// assembler failure; both are treated as fatal to the quick build by the
// caller (the original reasons this as "must rebuild", since no step
// would otherwise re-clean the slot).
func CleanModule(moduleRelativePath, romPath, cleanupDir string) error {
	addrPath := FilePath(cleanupDir, moduleRelativePath)
	if _, err := os.Stat(addrPath); err != nil {
		return fmt.Errorf("cannot clean module %s as its cleanup file is missing: %w", moduleRelativePath, err)
	}

	addresses, err := ReadAddresses(addrPath)
	if err != nil {
		return fmt.Errorf("failed to clean module %s: %w", moduleRelativePath, err)
	}

	source := directivesSource(addresses)

	tmpSource, err := os.CreateTemp("", "callisto-cleanup-*.asm")
	if err != nil {
		return fmt.Errorf("failed to create temporary cleanup source: %w", err)
	}
	defer os.Remove(tmpSource.Name())
	if _, err := tmpSource.WriteString(source); err != nil {
		tmpSource.Close()
		return fmt.Errorf("failed to write temporary cleanup source: %w", err)
	}
	if err := tmpSource.Close(); err != nil {
		return err
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", romPath, err)
	}

	header := rom.DetectHeader(data)
	unheadered := data[header:]
	currentSize := len(unheadered)

	assembler := asar.New()
	if !assembler.Init() {
		return fmt.Errorf("asar library not found, did you forget to copy it alongside callisto")
	}

	ok, errs := assembler.Patch(asar.PatchParams{
		SourcePath:  tmpSource.Name(),
		ROM:         unheadered,
		MaxSize:     asar.MaxROMSize,
		CurrentSize: &currentSize,
	})
	if !ok {
		return fmt.Errorf("failed to clean module %s: %v", moduleRelativePath, errs)
	}

	if err := os.WriteFile(romPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cleaned ROM to %s: %w", romPath, err)
	}
	return nil
}

func directivesSource(addresses []int) string {
	var b strings.Builder
	for _, addr := range addresses {
		fmt.Fprintf(&b, "autoclean $%06X\n", addr)
	}
	return b.String()
}
