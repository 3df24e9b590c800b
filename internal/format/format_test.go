package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatGB(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"zero", 0, "0.00"},
		{"whole", 96, "96.00"},
		{"fraction", 0.9765625, "0.98"},
		{"round_half", 1.005, "1.00"},
		{"negative", -1.5, "-1.50"},
		{"large", 1536.25, "1536.25"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatGB(tc.input))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"zero", 0, "0"},
		{"small", 42, "42"},
		{"three_digits", 999, "999"},
		{"four_digits", 1000, "1,000"},
		{"six_digits", 123456, "123,456"},
		{"seven_digits", 1234567, "1,234,567"},
		{"negative", -12345, "-12,345"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatNumber(tc.input))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, whole int
		want        string
	}{
		{"zero_whole", 0, 0, "---"},
		{"zero_part", 0, 8, "0.0%"},
		{"half", 4, 8, "50.0%"},
		{"third", 1, 3, "33.3%"},
		{"over", 10, 8, "125.0%"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatPercent(tc.part, tc.whole))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{0, "0s"},
		{10 * time.Second, "10s"},
		{1500 * time.Millisecond, "2s"},
		{60 * time.Second, "1m"},
		{90 * time.Second, "1m30s"},
		{5 * time.Minute, "5m"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatDuration(tc.input), "input=%v", tc.input)
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
	assert.Equal(t, "", PadRight("", 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "", Truncate("abc", -1))
}
