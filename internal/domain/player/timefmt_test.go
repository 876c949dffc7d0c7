package player

import (
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59.9, "00:59"},
		{60, "01:00"},
		{125.7, "02:05"},
		{3599, "59:59"},
		{3725, "62:05"},
		{-3, "00:00"},
		{math.NaN(), "00:00"},
		{math.Inf(1), "00:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.expected {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}
