package exporter

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tabclean/pkg/contracts/domain"
)

func TestFormatField(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.Value
		expected string
	}{
		{"integer", domain.Number(123), "123"},
		{"decimal", domain.Number(-789.123), "-789.123"},
		{"nan", domain.Number(math.NaN()), ""},
		{"missing", domain.Missing(), ""},
		{"text", domain.Text("007"), "007"},
		{"null-like text kept", domain.Text("#NULL!"), "#NULL!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatField(tt.input))
		})
	}
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, 1.5, cellValue(domain.Number(1.5)))
	assert.Equal(t, "x", cellValue(domain.Text("x")))
	assert.Nil(t, cellValue(domain.Missing()))
	assert.Nil(t, cellValue(domain.Number(math.NaN())))
	assert.Nil(t, cellValue(domain.Number(math.Inf(1))))
}

func TestSheetName(t *testing.T) {
	long := strings.Repeat("a", 40)

	tests := []struct {
		name  string
		key   string
		limit int
		want  string
	}{
		{"short", "Region 1", 31, "Region 1"},
		{"truncated", long, 31, long[:31]},
		{"custom limit", "abcdef", 3, "abc"},
		{"limit above maximum", long, 100, long[:31]},
		{"invalid characters", "a/b:c[1]", 31, "a_b_c_1_"},
		{"quotes trimmed", "'quoted'", 31, "quoted"},
		{"empty", "", 31, "Sheet"},
		{"multibyte", strings.Repeat("é", 35), 31, strings.Repeat("é", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetName(tt.key, tt.limit))
		})
	}
}
