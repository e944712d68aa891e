package signal

import (
	"context"
	"fmt"
	"math"

	"github.com/olivier-w/sweep/internal/clock"
)

// Waveform selects a synthetic generator.
type Waveform int

const (
	ECG Waveform = iota
	Sine
)

// ParseWaveform accepts "ecg" or "sine".
func ParseWaveform(s string) (Waveform, error) {
	switch s {
	case "ecg":
		return ECG, nil
	case "sine":
		return Sine, nil
	default:
		return 0, fmt.Errorf("unknown waveform %q (want ecg or sine)", s)
	}
}

func (w Waveform) String() string {
	if w == Sine {
		return "sine"
	}
	return "ecg"
}

// SynthConfig parameterizes a Synth.
type SynthConfig struct {
	Waveform    Waveform
	RateHz      float64
	HeartRate   float64 // beats per minute, ecg only
	FrequencyHz float64 // sine only
	Amplitude   float64
}

// Synth generates a waveform at a fixed sample rate. Sample i carries
// timestamp i * 1000 / RateHz, independent of scheduling jitter.
type Synth struct {
	cfg   SynthConfig
	clock clock.Clock
}

// NewSynth validates cfg.
func NewSynth(cfg SynthConfig, clk clock.Clock) (*Synth, error) {
	if cfg.RateHz <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %v", cfg.RateHz)
	}
	switch cfg.Waveform {
	case ECG:
		if cfg.HeartRate <= 0 {
			return nil, fmt.Errorf("heart rate must be positive, got %v", cfg.HeartRate)
		}
	case Sine:
		if cfg.FrequencyHz <= 0 {
			return nil, fmt.Errorf("frequency must be positive, got %v", cfg.FrequencyHz)
		}
	default:
		return nil, fmt.Errorf("unknown waveform %d", cfg.Waveform)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Synth{cfg: cfg, clock: clk}, nil
}

func (s *Synth) Name() string {
	if s.cfg.Waveform == Sine {
		return fmt.Sprintf("sine %.2f Hz", s.cfg.FrequencyHz)
	}
	return fmt.Sprintf("ecg %.0f bpm", s.cfg.HeartRate)
}

// Run emits every sample whose time has come on each batch tick.
func (s *Synth) Run(ctx context.Context, emit EmitFunc) error {
	start := s.clock.Now()
	ticker := s.clock.NewTicker(batchInterval)
	defer ticker.Stop()

	var next int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		elapsed := s.clock.Now().Sub(start).Seconds()
		due := int64(elapsed * s.cfg.RateHz)
		for ; next < due; next++ {
			emit(s.Sample(next), sampleTimestamp(next, s.cfg.RateHz))
		}
	}
}

// Sample returns the value of sample i.
func (s *Synth) Sample(i int64) float32 {
	t := float64(i) / s.cfg.RateHz
	var v float64
	switch s.cfg.Waveform {
	case Sine:
		v = math.Sin(2 * math.Pi * s.cfg.FrequencyHz * t)
	default:
		_, phase := math.Modf(t * s.cfg.HeartRate / 60)
		v = ecg(phase)
	}
	return float32(v * s.cfg.Amplitude)
}

// wave is one gaussian component of a heartbeat, positioned by its
// phase within the beat.
type wave struct {
	center, height, width float64
}

var pqrst = []wave{
	{0.20, 0.15, 0.025},  // P
	{0.37, -0.12, 0.010}, // Q
	{0.40, 1.20, 0.012},  // R
	{0.43, -0.25, 0.010}, // S
	{0.70, 0.35, 0.040},  // T
}

func ecg(phase float64) float64 {
	var v float64
	for _, w := range pqrst {
		d := (phase - w.center) / w.width
		v += w.height * math.Exp(-d*d/2)
	}
	return v
}
