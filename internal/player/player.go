package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrSampleRate is returned when a source does not match the rate the
// shared audio context was opened with.
var ErrSampleRate = errors.New("sample rate differs from audio device")

const (
	bytesPerSample = 4 // float32 mono
	readChunk      = 2048
)

// TapFunc receives every block of samples just before it is handed to
// the audio device. pos is the index of the first sample in the block.
type TapFunc func(pos int64, samples []float32)

// tapReader encodes decoder output as float32 LE for oto and reports
// each block to the tap.
type tapReader struct {
	mu      sync.Mutex
	dec     Decoder
	tap     TapFunc
	samples []float32
	pending []byte
	pos     int64
	eof     bool
}

func newTapReader(dec Decoder, tap TapFunc) *tapReader {
	return &tapReader{
		dec:     dec,
		tap:     tap,
		samples: make([]float32, readChunk),
	}
}

func (r *tapReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.pending) == 0 {
		if r.eof {
			return 0, io.EOF
		}
		n, err := r.dec.ReadSamples(r.samples)
		if n > 0 {
			block := r.samples[:n]
			if r.tap != nil {
				r.tap(r.pos, block)
			}
			r.pos += int64(n)
			r.pending = r.pending[:0]
			for _, s := range block {
				r.pending = binary.LittleEndian.AppendUint32(r.pending, math.Float32bits(s))
			}
		}
		if err != nil {
			r.eof = true
			if !errors.Is(err, io.EOF) {
				return 0, err
			}
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// Pos returns the number of samples handed to the device so far.
func (r *tapReader) Pos() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

func (r *tapReader) finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eof && len(r.pending) == 0
}

// Player plays a mono Decoder through the system audio device.
type Player struct {
	dec        Decoder
	reader     *tapReader
	otoPlayer  *oto.Player
	sampleRate int
	volume     float64
	paused     bool
	done       chan struct{}
	stopMon    chan struct{}
	cleanup    func()
	closeOnce  sync.Once
	mu         sync.Mutex
}

var (
	globalOtoCtx  *oto.Context
	globalOtoRate int
	otoOnce       sync.Once
	otoInitErr    error
)

func initOto(rate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			globalOtoRate = rate
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if rate != globalOtoRate {
		return nil, fmt.Errorf("%w: %d Hz, device opened at %d Hz", ErrSampleRate, rate, globalOtoRate)
	}
	return globalOtoCtx, nil
}

// New starts playback of dec. The player takes ownership of dec and
// closes it in Close.
func New(dec Decoder, tap TapFunc) (*Player, error) {
	ctx, err := initOto(dec.SampleRate())
	if err != nil {
		return nil, err
	}

	p := &Player{
		dec:        dec,
		reader:     newTapReader(dec, tap),
		sampleRate: dec.SampleRate(),
		volume:     0.8,
		done:       make(chan struct{}),
		stopMon:    make(chan struct{}),
	}
	p.otoPlayer = ctx.NewPlayer(p.reader)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()
	p.cleanup = func() {
		p.otoPlayer.Pause()
		p.dec.Close()
	}

	go p.monitor()
	return p, nil
}

func (p *Player) monitor() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopMon:
			return
		case <-ticker.C:
		}
		if p.reader.finished() && !p.otoPlayer.IsPlaying() {
			close(p.done)
			return
		}
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
	} else {
		p.otoPlayer.Pause()
	}
	p.paused = !p.paused
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns how much audio has been handed to the device.
func (p *Player) Position() time.Duration {
	return samplesToDuration(p.reader.Pos(), p.sampleRate)
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = math.Max(0, math.Min(1, v))
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Close stops playback and releases the decoder.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		close(p.stopMon)
		if p.cleanup != nil {
			p.cleanup()
		}
	})
}

func samplesToDuration(n int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(rate)
}
