package signal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/olivier-w/sweep/internal/clock"
	"github.com/olivier-w/sweep/internal/player"
)

type sample struct {
	value float32
	ts    uint64
}

func collect(ch chan<- sample) EmitFunc {
	return func(v float32, ts uint64) { ch <- sample{v, ts} }
}

func receive(t *testing.T, ch <-chan sample, n int) []sample {
	t.Helper()
	out := make([]sample, 0, n)
	timeout := time.After(5 * time.Second)
	for len(out) < n {
		select {
		case s := <-ch:
			out = append(out, s)
		case <-timeout:
			t.Fatalf("received %d of %d samples before timeout", len(out), n)
		}
	}
	return out
}

func TestParseWaveform(t *testing.T) {
	if w, err := ParseWaveform("sine"); err != nil || w != Sine {
		t.Fatalf("ParseWaveform(sine) = %v, %v", w, err)
	}
	if w, err := ParseWaveform("ecg"); err != nil || w != ECG {
		t.Fatalf("ParseWaveform(ecg) = %v, %v", w, err)
	}
	if _, err := ParseWaveform("square"); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
}

func TestNewSynthValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  SynthConfig
	}{
		{"zero rate", SynthConfig{Waveform: Sine, FrequencyHz: 1}},
		{"zero heart rate", SynthConfig{Waveform: ECG, RateHz: 250}},
		{"zero frequency", SynthConfig{Waveform: Sine, RateHz: 250}},
		{"unknown waveform", SynthConfig{Waveform: Waveform(9), RateHz: 250}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSynth(tt.cfg, nil); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSineSamples(t *testing.T) {
	s, err := NewSynth(SynthConfig{Waveform: Sine, RateHz: 100, FrequencyHz: 1, Amplitude: 2}, nil)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	if got := s.Sample(25); math.Abs(float64(got)-2) > 1e-5 {
		t.Fatalf("quarter period sample = %v, want 2", got)
	}
	if got := s.Sample(50); math.Abs(float64(got)) > 1e-5 {
		t.Fatalf("half period sample = %v, want 0", got)
	}
}

func TestECGPeaksAtRWave(t *testing.T) {
	s, err := NewSynth(SynthConfig{Waveform: ECG, RateHz: 1000, HeartRate: 60, Amplitude: 1}, nil)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	var peakAt int64
	var peak float32
	for i := range int64(1000) {
		if v := s.Sample(i); v > peak {
			peak, peakAt = v, i
		}
	}
	if peakAt != 400 {
		t.Fatalf("expected R peak at sample 400, got %d", peakAt)
	}
	if peak < 1.1 || peak > 1.3 {
		t.Fatalf("unexpected R amplitude %v", peak)
	}
	if a, b := s.Sample(123), s.Sample(1123); a != b {
		t.Fatalf("beats should repeat: %v vs %v", a, b)
	}
}

func TestSynthRunPacedByClock(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	s, err := NewSynth(SynthConfig{Waveform: Sine, RateHz: 250, FrequencyHz: 1, Amplitude: 1}, clk)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan sample, 1024)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, collect(ch)) }()

	clk.WaitForTimers(1)
	clk.Advance(100 * time.Millisecond)
	got := receive(t, ch, 25)
	for i, smp := range got {
		if want := uint64(i * 4); smp.ts != want {
			t.Fatalf("sample %d timestamp = %d, want %d", i, smp.ts, want)
		}
	}

	clk.Advance(20 * time.Millisecond)
	more := receive(t, ch, 5)
	if more[0].ts != 100 || more[4].ts != 116 {
		t.Fatalf("unexpected follow-up timestamps %d..%d", more[0].ts, more[4].ts)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra sample %+v", extra)
	default:
	}
}

func TestReducerKeepsSignedPeak(t *testing.T) {
	var got []sample
	r := newReducer(1000, 250, func(v float32, ts uint64) {
		got = append(got, sample{v, ts})
	})

	r.push([]float32{0.1, -0.9, 0.5})
	r.push([]float32{0.2, 0.3, 0.7, 0.1, 0.0, 0.4})

	want := []sample{{-0.9, 0}, {0.7, 4}}
	if len(got) != len(want) {
		t.Fatalf("expected %d outputs, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReducerBlockAtLeastOne(t *testing.T) {
	r := newReducer(100, 500, func(float32, uint64) {})
	if r.block != 1 {
		t.Fatalf("expected block 1 when output rate exceeds input, got %d", r.block)
	}
}

type stubDecoder struct {
	samples []float32
	rate    int
	closed  bool
}

func (d *stubDecoder) ReadSamples(dst []float32) (int, error) {
	if len(d.samples) == 0 {
		return 0, io.EOF
	}
	n := copy(dst, d.samples)
	d.samples = d.samples[n:]
	return n, nil
}

func (d *stubDecoder) SampleRate() int { return d.rate }
func (d *stubDecoder) Close() error    { d.closed = true; return nil }

func TestFileRunDrainsRecording(t *testing.T) {
	samples := make([]float32, 40)
	for i := range samples {
		samples[i] = float32(i) / 100
	}
	dec := &stubDecoder{samples: samples, rate: 400}
	clk := clock.Fake(time.Unix(0, 0))
	f := newFile(dec, player.Metadata{Title: "beat"}, FileConfig{RateHz: 100}, clk)

	if f.Name() != "beat" {
		t.Fatalf("unexpected name %q", f.Name())
	}

	ch := make(chan sample, 64)
	done := make(chan error, 1)
	go func() { done <- f.Run(context.Background(), collect(ch)) }()

	clk.WaitForTimers(1)
	clk.Advance(50 * time.Millisecond)
	first := receive(t, ch, 5)
	if first[0].value != 0.03 || first[0].ts != 0 {
		t.Fatalf("unexpected first output %+v", first[0])
	}
	if first[4].ts != 40 {
		t.Fatalf("expected fifth output at 40ms, got %d", first[4].ts)
	}

	clk.Advance(time.Second)
	rest := receive(t, ch, 5)
	if rest[4].ts != 90 {
		t.Fatalf("expected last output at 90ms, got %d", rest[4].ts)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !dec.closed {
		t.Fatal("expected decoder closed after run")
	}
}

type recordingTarget struct {
	n int
}

func (r *recordingTarget) AddDatapoint(float32, uint64) { r.n++ }

type fixedProducer struct {
	err error
}

func (p fixedProducer) Name() string { return "fixed" }

func (p fixedProducer) Run(_ context.Context, emit EmitFunc) error {
	emit(1, 0)
	emit(2, 10)
	return p.err
}

func TestPumpLogsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
		wantLog string
	}{
		{"finished", nil, false, "source finished"},
		{"cancelled", context.Canceled, false, "source stopped"},
		{"failed", errors.New("bad frame"), true, "source failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			target := &recordingTarget{}

			err := Pump(context.Background(), fixedProducer{err: tt.err}, target, logger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Pump error = %v, wantErr %v", err, tt.wantErr)
			}
			if target.n != 2 {
				t.Fatalf("expected 2 datapoints, got %d", target.n)
			}
			out := buf.String()
			if !strings.Contains(out, tt.wantLog) || !strings.Contains(out, `"source":"fixed"`) {
				t.Fatalf("unexpected log output: %s", out)
			}
		})
	}
}

type stalledDecoder struct {
	calls int
}

func (d *stalledDecoder) ReadSamples([]float32) (int, error) {
	d.calls++
	return 0, nil
}

func (d *stalledDecoder) SampleRate() int { return 400 }
func (d *stalledDecoder) Close() error    { return nil }

func TestFileRunYieldsWhenDecoderStalls(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	f := newFile(&stalledDecoder{}, player.Metadata{Title: "stall"}, FileConfig{RateHz: 100}, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx, func(float32, uint64) {}) }()

	clk.WaitForTimers(1)
	clk.Advance(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel while the decoder was stalled")
	}
}
