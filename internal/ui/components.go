package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/olivier-w/sweep/internal/sweep"
	"github.com/olivier-w/sweep/internal/util"
)

// renderStatus summarizes the chart: window, mode, fill and ring health.
func renderStatus(st sweep.Stats, rangeMs float64, kind sweep.PrimitiveKind) string {
	parts := []string{
		"window " + util.FormatWindow(rangeMs),
		kind.String(),
		fmt.Sprintf("%d/%d pts", st.PointCount, st.Capacity),
	}
	if st.Wrapped {
		parts = append(parts, "wrapped")
	}
	if st.Overruns > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", st.Overruns))
	}
	return strings.Join(parts, "  ·  ")
}

func newRingBar() progress.Model {
	return progress.New(
		progress.WithScaledGradient("#3FBF6A", "#FFB454"),
		progress.WithoutPercentage(),
		progress.WithWidth(12),
	)
}

// renderRing shows how full the sample ring is between frames.
func renderRing(bar progress.Model, buffered, capacity int) string {
	var ratio float64
	if capacity > 0 {
		ratio = float64(buffered) / float64(capacity)
	}
	return "ring " + bar.ViewAs(min(max(ratio, 0), 1))
}
