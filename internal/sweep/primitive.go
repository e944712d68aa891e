package sweep

import (
	"fmt"
	"strings"
)

// PrimitiveKind selects how the vertex buffer is drawn.
type PrimitiveKind int

const (
	LineStrip PrimitiveKind = iota
	Points
	Lines
)

// ParsePrimitive accepts "line-strip", "points" and "lines".
func ParsePrimitive(s string) (PrimitiveKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line-strip", "linestrip", "strip":
		return LineStrip, nil
	case "points", "point":
		return Points, nil
	case "lines", "segments":
		return Lines, nil
	default:
		return LineStrip, fmt.Errorf("unknown primitive %q (want points, line-strip or lines)", s)
	}
}

// Next cycles to the next primitive kind.
func (k PrimitiveKind) Next() PrimitiveKind {
	switch k {
	case LineStrip:
		return Points
	case Points:
		return Lines
	default:
		return LineStrip
	}
}

func (k PrimitiveKind) String() string {
	switch k {
	case Points:
		return "points"
	case Lines:
		return "lines"
	default:
		return "line-strip"
	}
}
