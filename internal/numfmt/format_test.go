package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		v         float64
		decimals  int
		dec, thou string
		want      string
	}{
		{"european grouping", 1234, 0, ",", ".", "1.234"},
		{"english grouping", 1234567, 0, ".", ",", "1,234,567"},
		{"below a thousand", 999, 0, ",", ".", "999"},
		{"fraction", 1234.5, 2, ",", ".", "1.234,50"},
		{"same separator both sides", 1234.5, 1, ".", ".", "1.234.5"},
		{"space thousands", 1000000, 0, ",", " ", "1 000 000"},
		{"no grouping", 12345, 0, ",", "", "12345"},
		{"rounds", 1234.6, 0, ",", ".", "1.235"},
		{"negative", -1234, 0, ",", ".", "-1.234"},
		{"negative zero", -0.0001, 0, ",", ".", "0"},
		{"multi-char separators", 1234.5, 1, "<d>", "<t>", "1<t>234<d>5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.v, tt.decimals, tt.dec, tt.thou))
		})
	}
}

func TestLocalizeDoesNotClobber(t *testing.T) {
	// a naive "replace , with ." then ". with ," pass would turn everything into commas
	assert.Equal(t, "1.234,5", Localize("1,234.5", ",", "."))
}
