package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		-time.Second:      "0:00",
		0:                 "0:00",
		65 * time.Second:  "1:05",
		600 * time.Second: "10:00",
	}
	for d, want := range tests {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestFormatWindow(t *testing.T) {
	tests := map[float64]string{
		250:  "250ms",
		1000: "1s",
		1500: "1.5s",
		4000: "4s",
		8000: "8s",
	}
	for ms, want := range tests {
		if got := FormatWindow(ms); got != want {
			t.Fatalf("FormatWindow(%v) = %q, want %q", ms, got, want)
		}
	}
}
