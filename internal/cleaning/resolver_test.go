package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeResolver_Extract(t *testing.T) {
	resolver := NewCodeResolver("MOBIS")

	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{
			name:  "code with surrounding text",
			input: "ANTWERP CENTRAL - MOBIS467",
			want:  "MOBIS467",
			found: true,
		},
		{
			name:  "code alone",
			input: "MOBIS1",
			want:  "MOBIS1",
			found: true,
		},
		{
			name:  "first of two codes wins",
			input: "MOBIS12 / MOBIS34",
			want:  "MOBIS12",
			found: true,
		},
		{
			name:  "lowercase prefix does not match",
			input: "antwerp central - mobis467",
			found: false,
		},
		{
			name:  "prefix without digits",
			input: "MOBIS STORE",
			found: false,
		},
		{
			name:  "no code at all",
			input: "CARREFOUR EXPRESS",
			found: false,
		},
		{
			name:  "empty input",
			input: "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolver.Extract(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodeResolver_Deterministic(t *testing.T) {
	resolver := NewCodeResolver("COD")

	first, ok1 := resolver.Extract("DOWNTOWN STORE - COD123")
	second, ok2 := resolver.Extract("DOWNTOWN STORE - COD123")

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, "COD123", first)
}

func TestNewCodeResolver_DefaultPrefix(t *testing.T) {
	resolver := NewCodeResolver("")

	code, ok := resolver.Extract("SHOP - MOBIS99")
	assert.True(t, ok)
	assert.Equal(t, "MOBIS99", code)
}
