package diffutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellonpizza/callisto/internal/descriptor"
	"github.com/mellonpizza/callisto/internal/report"
)

func sampleReport() *report.BuildReport {
	r := report.New()
	size := 0x400000
	r.ROMSize = &size
	r.BuildOrder = []descriptor.Descriptor{descriptor.New(descriptor.Graphics)}
	r.InsertedLevels = []int{1, 2, 3}
	r.ModuleOutputs["modules/foo.asm"] = []string{"foo.sym"}
	r.Dependencies = []report.DependencyEntry{
		{Descriptor: descriptor.New(descriptor.Graphics)},
	}
	return r
}

func TestUnified_ProducesHunkForChangedField(t *testing.T) {
	from := sampleReport()
	to := sampleReport()
	to.InsertedLevels = []int{1, 2, 3, 4}

	body, err := Unified("old.json", from, "new.json", to, Options{})
	require.NoError(t, err)
	assert.Contains(t, body, "--- old.json")
	assert.Contains(t, body, "+++ new.json")
	assert.Contains(t, body, "@@")
	assert.True(t, strings.Contains(body, "4"))
}

func TestUnified_IdenticalReportsProduceNoDiff(t *testing.T) {
	from := sampleReport()
	to := sampleReport()

	body, err := Unified("old.json", from, "new.json", to, Options{})
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestSummarize_DetectsAddedAndRemovedLevels(t *testing.T) {
	from := sampleReport()
	to := sampleReport()
	to.InsertedLevels = []int{2, 3, 4}

	s := Summarize(from, to)
	assert.Equal(t, []int{4}, s.InsertedLevelsAdded)
	assert.Equal(t, []int{1}, s.InsertedLevelsRemoved)
	assert.False(t, s.BuildOrderChanged)
	assert.False(t, s.ROMSizeChanged)
}

func TestSummarize_DetectsBuildOrderChange(t *testing.T) {
	from := sampleReport()
	to := sampleReport()
	to.BuildOrder = []descriptor.Descriptor{
		descriptor.New(descriptor.Graphics),
		descriptor.New(descriptor.Patch).WithPath("asm/fix.asm"),
	}

	s := Summarize(from, to)
	assert.True(t, s.BuildOrderChanged)
}

func TestSummarize_DetectsChangedAndAddedModuleOutputs(t *testing.T) {
	from := sampleReport()
	to := sampleReport()
	to.ModuleOutputs["modules/foo.asm"] = []string{"foo.sym", "foo.bin"}
	to.ModuleOutputs["modules/bar.asm"] = []string{"bar.sym"}

	s := Summarize(from, to)
	assert.ElementsMatch(t, []string{"modules/foo.asm", "modules/bar.asm"}, s.ModulesChanged)
}

func TestSummarize_DetectsROMSizeChange(t *testing.T) {
	from := sampleReport()
	to := sampleReport()
	newSize := 0x600000
	to.ROMSize = &newSize

	s := Summarize(from, to)
	assert.True(t, s.ROMSizeChanged)
}
