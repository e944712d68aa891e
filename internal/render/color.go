package render

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// ansiState writes a color sequence only when the color changes.
type ansiState struct {
	profile termenv.Profile
	seqs    map[string]string
	current string
}

func newANSIState(profile termenv.Profile) *ansiState {
	return &ansiState{profile: profile, seqs: make(map[string]string)}
}

func (s *ansiState) set(sb *strings.Builder, c colorful.Color) {
	if s.profile == termenv.Ascii {
		return
	}
	hex := c.Clamped().Hex()
	if hex == s.current {
		return
	}
	seq, ok := s.seqs[hex]
	if !ok {
		if code := s.profile.Color(hex).Sequence(false); code != "" {
			seq = termenv.CSI + code + "m"
		}
		s.seqs[hex] = seq
	}
	sb.WriteString(seq)
	s.current = hex
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.profile == termenv.Ascii || s.current == "" {
		return
	}
	sb.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	s.current = ""
}

// traceColor fades the trace with its distance behind the sweep head;
// age is 0 at the head and 1 one full sweep behind it.
func traceColor(age float64) colorful.Color {
	age = clamp01(age)
	return colorful.Hsv(140-20*age, 0.75, 1-0.65*age)
}

var (
	headColor   = colorful.Color{R: 1, G: 0.98, B: 0.82}
	cursorColor = colorful.Hsv(210, 0.2, 0.35)
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
