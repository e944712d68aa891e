package signal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/olivier-w/sweep/internal/clock"
	"github.com/olivier-w/sweep/internal/player"
)

// FileConfig parameterizes a File source.
type FileConfig struct {
	RateHz float64 // output samples per second
	Play   bool    // play the recording through the audio device
}

// File feeds a decoded recording into the chart. Blocks of input
// samples are reduced to their signed peak so transients survive
// downsampling.
type File struct {
	dec   player.Decoder
	meta  player.Metadata
	cfg   FileConfig
	clock clock.Clock
}

// OpenFile opens and probes path. The returned File owns the decoder
// until Run returns.
func OpenFile(path string, cfg FileConfig, clk clock.Clock) (*File, error) {
	if cfg.RateHz <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %v", cfg.RateHz)
	}
	dec, err := player.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return newFile(dec, player.ReadMetadata(path), cfg, clk), nil
}

func newFile(dec player.Decoder, meta player.Metadata, cfg FileConfig, clk clock.Clock) *File {
	if clk == nil {
		clk = clock.Real()
	}
	return &File{dec: dec, meta: meta, cfg: cfg, clock: clk}
}

func (f *File) Name() string { return f.meta.Label() }

// Run consumes the whole recording. With Play set, the audio device
// paces consumption; otherwise the clock does.
func (f *File) Run(ctx context.Context, emit EmitFunc) error {
	r := newReducer(f.dec.SampleRate(), f.cfg.RateHz, emit)
	if f.cfg.Play {
		return f.play(ctx, r)
	}
	defer f.dec.Close()
	return f.pace(ctx, r)
}

func (f *File) play(ctx context.Context, r *reducer) error {
	p, err := player.New(f.dec, func(_ int64, samples []float32) {
		r.push(samples)
	})
	if err != nil {
		f.dec.Close()
		return fmt.Errorf("starting playback: %w", err)
	}
	defer p.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.Done():
		return nil
	}
}

func (f *File) pace(ctx context.Context, r *reducer) error {
	rate := float64(f.dec.SampleRate())
	start := f.clock.Now()
	ticker := f.clock.NewTicker(batchInterval)
	defer ticker.Stop()

	buf := make([]float32, 4096)
	var consumed int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		due := int64(f.clock.Now().Sub(start).Seconds() * rate)
		for consumed < due {
			want := min(int64(len(buf)), due-consumed)
			n, err := f.dec.ReadSamples(buf[:want])
			r.push(buf[:n])
			consumed += int64(n)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("decoding: %w", err)
			}
			if n == 0 {
				// Nothing decoded yet; retry on the next tick.
				break
			}
		}
	}
}

// reducer folds input samples into output samples of one block each.
// The output timestamp is the position of the block's first sample.
type reducer struct {
	inRate float64
	block  int
	emit   EmitFunc

	pos   int64 // input samples seen
	start int64
	n     int
	peak  float32
}

func newReducer(inRate int, outRate float64, emit EmitFunc) *reducer {
	block := int(math.Round(float64(inRate) / outRate))
	if block < 1 {
		block = 1
	}
	return &reducer{inRate: float64(inRate), block: block, emit: emit}
}

func (r *reducer) push(samples []float32) {
	for _, s := range samples {
		if r.n == 0 {
			r.start = r.pos
			r.peak = s
		} else if abs32(s) > abs32(r.peak) {
			r.peak = s
		}
		r.n++
		r.pos++
		if r.n == r.block {
			r.emit(r.peak, sampleTimestamp(r.start, r.inRate))
			r.n = 0
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
