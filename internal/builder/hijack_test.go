package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mellonpizza/callisto/internal/report"
)

func TestHijacksGoneBad_IdenticalRanges(t *testing.T) {
	old := []report.Hijack{{Address: 0x0F8000, Length: 16}}
	assert.False(t, HijacksGoneBad(old, old))
}

func TestHijacksGoneBad_Growth(t *testing.T) {
	old := []report.Hijack{{Address: 0x0F8000, Length: 16}}
	new := []report.Hijack{{Address: 0x0F8000, Length: 32}}
	assert.False(t, HijacksGoneBad(old, new))
}

func TestHijacksGoneBad_Shrinkage(t *testing.T) {
	old := []report.Hijack{{Address: 0x0F8000, Length: 16}}
	new := []report.Hijack{{Address: 0x0F8000, Length: 8}}
	assert.True(t, HijacksGoneBad(old, new))
}

func TestHijacksGoneBad_DisjointRanges(t *testing.T) {
	old := []report.Hijack{{Address: 0x0F8000, Length: 4}}
	new := []report.Hijack{{Address: 0x0F9000, Length: 4}}
	assert.True(t, HijacksGoneBad(old, new))
}

func TestHijacksGoneBad_MultipleRangesOneShrinks(t *testing.T) {
	old := []report.Hijack{
		{Address: 0x0F8000, Length: 16},
		{Address: 0x0F9000, Length: 16},
	}
	new := []report.Hijack{
		{Address: 0x0F8000, Length: 16},
		{Address: 0x0F9000, Length: 8},
	}
	assert.True(t, HijacksGoneBad(old, new))
}

func TestHijacksGoneBad_EmptyOld(t *testing.T) {
	assert.False(t, HijacksGoneBad(nil, []report.Hijack{{Address: 0, Length: 1}}))
}

func TestHijacksGoneBad_EmptyNewWithNonemptyOld(t *testing.T) {
	assert.True(t, HijacksGoneBad([]report.Hijack{{Address: 0, Length: 1}}, nil))
}
