package render

import "github.com/charmbracelet/harmonica"

// leadLine eases the head marker toward the newest plotted y so it glides
// between frames instead of jumping.
type leadLine struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	primed bool
}

func newLeadLine(fps int) leadLine {
	if fps < 1 {
		fps = 30
	}
	return leadLine{spring: harmonica.NewSpring(harmonica.FPS(fps), 12.0, 0.8)}
}

func (l *leadLine) step(target float64) float64 {
	if !l.primed {
		l.pos, l.vel, l.primed = target, 0, true
		return l.pos
	}
	l.pos, l.vel = l.spring.Update(l.pos, l.vel, target)
	return l.pos
}

func (l *leadLine) reset() {
	l.pos, l.vel, l.primed = 0, 0, false
}
