package descriptor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    Descriptor
		b    Descriptor
		want bool
	}{
		{
			name: "same symbol no fields",
			a:    New(Graphics),
			b:    New(Graphics),
			want: true,
		},
		{
			name: "different symbol",
			a:    New(Graphics),
			b:    New(Overworld),
			want: false,
		},
		{
			name: "same name",
			a:    New(Patch).WithName("a.asm"),
			b:    New(Patch).WithName("a.asm"),
			want: true,
		},
		{
			name: "different name",
			a:    New(Patch).WithName("a.asm"),
			b:    New(Patch).WithName("b.asm"),
			want: false,
		},
		{
			name: "one has name, other doesn't",
			a:    New(Patch).WithName("a.asm"),
			b:    New(Patch),
			want: false,
		},
		{
			name: "same path",
			a:    New(Module).WithPath("src/m.o"),
			b:    New(Module).WithPath("src/m.o"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Graphics.Valid())
	assert.True(t, Pixi.Valid())
	assert.False(t, Symbol("NOT_A_SYMBOL").Valid())
}

func TestJSONRoundTrip(t *testing.T) {
	original := New(Patch).WithName("asm/fix.asm")

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Descriptor
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, original.Equal(decoded))
}

func TestJSONRoundTrip_NoOptionalFields(t *testing.T) {
	original := New(Graphics)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "name")
	assert.NotContains(t, string(data), "path")

	var decoded Descriptor
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equal(decoded))
}

func TestString(t *testing.T) {
	assert.Equal(t, "GRAPHICS", New(Graphics).String())
	assert.Equal(t, "PATCH(a.asm)", New(Patch).WithName("a.asm").String())
	assert.Equal(t, "MODULE(src/m.asm)", New(Module).WithPath("src/m.asm").String())
}
