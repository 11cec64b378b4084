// Package diffutil renders unified diffs between two build reports, used by
// "callisto report diff" to show a human what changed between two recorded
// builds without requiring them to read raw JSON. Grounded on the unified
// diff wrapper around go-difflib found in the retrieved pack's class
// collector (internal/diff), the only ecosystem pattern for this concern.
package diffutil

import (
	"encoding/json"
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/mellonpizza/callisto/internal/descriptor"
	"github.com/mellonpizza/callisto/internal/report"
)

// Options controls unified diff generation.
type Options struct {
	// Context is the number of context lines surrounding each hunk. If 0,
	// defaults to 3.
	Context int
}

// Unified produces a unified diff between the pretty-printed JSON
// representations of two build reports. fromName and toName label the
// "---"/"+++" headers.
func Unified(fromName string, from *report.BuildReport, toName string, to *report.BuildReport, opt Options) (string, error) {
	a, err := json.MarshalIndent(from, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", fromName, err)
	}
	b, err := json.MarshalIndent(to, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", toName, err)
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to generate diff: %w", err)
	}
	if s == "" {
		return "", nil
	}
	return s, nil
}

// Summary describes, at a higher level than a line diff, which steps and
// module outputs differ between two build reports. A line diff shows every
// byte that moved; this shows which descriptors actually changed.
type Summary struct {
	BuildOrderChanged     bool
	ROMSizeChanged        bool
	InsertedLevelsAdded   []int
	InsertedLevelsRemoved []int
	ModulesChanged        []string
}

// Summarize compares two build reports at the level of what the quick build
// decision procedure itself cares about, rather than raw JSON text.
func Summarize(from, to *report.BuildReport) Summary {
	var s Summary

	s.BuildOrderChanged = !descriptorsEqual(from.BuildOrder, to.BuildOrder)
	s.ROMSizeChanged = !intPtrEqual(from.ROMSize, to.ROMSize)

	fromLevels := intSet(from.InsertedLevels)
	toLevels := intSet(to.InsertedLevels)
	for l := range toLevels {
		if !fromLevels[l] {
			s.InsertedLevelsAdded = append(s.InsertedLevelsAdded, l)
		}
	}
	for l := range fromLevels {
		if !toLevels[l] {
			s.InsertedLevelsRemoved = append(s.InsertedLevelsRemoved, l)
		}
	}

	seen := map[string]bool{}
	for name, fromOutputs := range from.ModuleOutputs {
		toOutputs, ok := to.ModuleOutputs[name]
		if !ok || !stringSlicesEqual(fromOutputs, toOutputs) {
			s.ModulesChanged = append(s.ModulesChanged, name)
		}
		seen[name] = true
	}
	for name := range to.ModuleOutputs {
		if !seen[name] {
			s.ModulesChanged = append(s.ModulesChanged, name)
		}
	}

	return s
}

// splitLinesKeepNL splits s into lines, keeping trailing newlines so the
// generated hunks read like a normal unified patch.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

func descriptorsEqual(a, b []descriptor.Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intSet(vals []int) map[int]bool {
	out := make(map[int]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
