package sweep

import (
	"math"
	"testing"
)

func testMapper() *Mapper {
	return &Mapper{
		Geometry:    Geometry{Left: 10, Baseline: 110, Width: 200, Height: 100, Depth: 0.5},
		MinY:        0,
		MaxY:        10,
		TimeRangeMs: 1000,
	}
}

func TestMapProjectsValueAndTime(t *testing.T) {
	m := testMapper()

	p, ok := m.Map(5, 250)
	if !ok {
		t.Fatal("expected in-range value to map")
	}
	if p.X != 60 {
		t.Fatalf("expected x 60, got %v", p.X)
	}
	if p.Y != 60 {
		t.Fatalf("expected y 60, got %v", p.Y)
	}
	if p.Z != 0.5 {
		t.Fatalf("expected z 0.5, got %v", p.Z)
	}

	lo, _ := m.Map(0, 0)
	hi, _ := m.Map(10, 0)
	if lo.Y != 110 || hi.Y != 10 {
		t.Fatalf("expected range ends at 110 and 10, got %v and %v", lo.Y, hi.Y)
	}
}

func TestMapSweepsBackToLeftEdge(t *testing.T) {
	m := testMapper()
	before, _ := m.Map(1, 999)
	after, _ := m.Map(1, 1000)
	if !(before.X > after.X) {
		t.Fatalf("expected x to wrap, got %v then %v", before.X, after.X)
	}
	if after.X != 10 {
		t.Fatalf("expected wrap to land on left edge 10, got %v", after.X)
	}
	again, _ := m.Map(1, 3250)
	if again.X != 60 {
		t.Fatalf("expected x 60 three sweeps later, got %v", again.X)
	}
}

func TestMapDropsOutOfRangeValues(t *testing.T) {
	m := testMapper()
	nan := float32(math.NaN())
	for _, v := range []float32{-0.01, 10.01, nan, float32(math.Inf(1))} {
		if _, ok := m.Map(v, 0); ok {
			t.Fatalf("expected %v to be dropped", v)
		}
	}
}

func TestWindowStart(t *testing.T) {
	m := testMapper()
	if got := m.WindowStart(2200); got != 1200 {
		t.Fatalf("expected 1200, got %v", got)
	}
	if got := m.WindowStart(300); got != -700 {
		t.Fatalf("expected -700, got %v", got)
	}
}

func TestParsePrimitive(t *testing.T) {
	cases := map[string]PrimitiveKind{
		"":           LineStrip,
		"line-strip": LineStrip,
		"Points":     Points,
		"lines":      Lines,
	}
	for in, want := range cases {
		got, err := ParsePrimitive(in)
		if err != nil || got != want {
			t.Fatalf("ParsePrimitive(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePrimitive("triangles"); err == nil {
		t.Fatal("expected error for unknown primitive")
	}
	if LineStrip.Next().Next().Next() != LineStrip {
		t.Fatal("expected Next to cycle through three kinds")
	}
}
