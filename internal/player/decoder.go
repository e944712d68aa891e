// Package player decodes audio files into mono sample streams and plays
// them back, so recordings can drive a sweep chart.
package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// Decoder yields mono samples in [-1, 1]. Multi-channel sources are
// averaged across channels.
type Decoder interface {
	// ReadSamples fills dst and returns the number of samples written.
	// It returns io.EOF once the stream is exhausted.
	ReadSamples(dst []float32) (int, error)
	SampleRate() int
	Close() error
}

// Open detects the format by file extension.
func Open(path string) (Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var dec Decoder
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		dec, err = newMP3Decoder(f)
	case ".wav":
		dec, err = newWAVDecoder(f)
	case ".flac":
		dec, err = newFLACDecoder(f)
	case ".ogg":
		dec, err = newOGGDecoder(f)
	default:
		err = fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return dec, nil
}

// --- MP3 decoder ---

// go-mp3 always produces 16-bit little-endian stereo.
type mp3Decoder struct {
	file *os.File
	dec  *mp3.Decoder
	raw  []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{file: f, dec: dec}, nil
}

func (d *mp3Decoder) ReadSamples(dst []float32) (int, error) {
	const frameSize = 4
	want := len(dst) * frameSize
	if cap(d.raw) < want {
		d.raw = make([]byte, want)
	}
	raw := d.raw[:want]

	n, err := io.ReadFull(d.dec, raw)
	frames := n / frameSize
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		dst[i] = (float32(l) + float32(r)) / 65536
	}
	return frames, eofOrNil(frames, err)
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) Close() error    { return d.file.Close() }

// --- WAV decoder ---

type wavDecoder struct {
	file       *os.File
	sampleRate int
	channels   int
	bitDepth   int
	remaining  int64 // PCM bytes left
	raw        []byte
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	// FwdToPCM leaves f positioned at the first PCM byte.
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}
	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, errors.New("WAV file has no channels")
	}

	return &wavDecoder{
		file:       f,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		remaining:  dec.PCMLen(),
	}, nil
}

func (d *wavDecoder) ReadSamples(dst []float32) (int, error) {
	frameSize := d.channels * d.bitDepth / 8
	want := int64(len(dst) * frameSize)
	if want > d.remaining {
		want = d.remaining - d.remaining%int64(frameSize)
	}
	if want <= 0 {
		return 0, io.EOF
	}
	if int64(cap(d.raw)) < want {
		d.raw = make([]byte, want)
	}
	raw := d.raw[:want]

	n, err := io.ReadFull(d.file, raw)
	d.remaining -= int64(n)
	frames := n / frameSize
	for i := range frames {
		var sum float32
		for ch := range d.channels {
			sum += pcmSample(raw[i*frameSize+ch*d.bitDepth/8:], d.bitDepth)
		}
		dst[i] = sum / float32(d.channels)
	}
	return frames, eofOrNil(frames, err)
}

// pcmSample decodes one little-endian PCM sample to [-1, 1]. 8-bit WAV
// is unsigned.
func pcmSample(b []byte, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return (float32(b[0]) - 128) / 128
	case 16:
		return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return float32(s) / 8388608
	default:
		return float32(int32(binary.LittleEndian.Uint32(b))) / 2147483648
	}
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }
func (d *wavDecoder) Close() error    { return d.file.Close() }

// --- FLAC decoder ---

type flacDecoder struct {
	file    *os.File
	stream  *flac.Stream
	scale   float32
	pending []float32
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	bps := int(stream.Info.BitsPerSample)
	if bps < 1 || bps > 32 {
		return nil, fmt.Errorf("unsupported FLAC bit depth %d", bps)
	}
	return &flacDecoder{
		file:   f,
		stream: stream,
		scale:  float32(uint64(1) << (bps - 1)),
	}, nil
}

func (d *flacDecoder) ReadSamples(dst []float32) (int, error) {
	for len(d.pending) == 0 {
		frame, err := d.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		channels := len(frame.Subframes)
		if channels == 0 {
			continue
		}
		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			var sum float32
			for _, sub := range frame.Subframes {
				sum += float32(sub.Samples[i]) / d.scale
			}
			d.pending = append(d.pending, sum/float32(channels))
		}
	}

	n := copy(dst, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *flacDecoder) SampleRate() int { return int(d.stream.Info.SampleRate) }

func (d *flacDecoder) Close() error {
	d.stream.Close()
	return d.file.Close()
}

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	file   *os.File
	reader *oggvorbis.Reader
	buf    []float32
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{file: f, reader: reader}, nil
}

func (d *oggDecoder) ReadSamples(dst []float32) (int, error) {
	channels := d.reader.Channels()
	want := len(dst) * channels
	if cap(d.buf) < want {
		d.buf = make([]float32, want)
	}
	buf := d.buf[:want]

	n, err := d.reader.Read(buf)
	frames := n / channels
	for i := range frames {
		var sum float32
		for ch := range channels {
			sum += buf[i*channels+ch]
		}
		dst[i] = clampUnit(sum / float32(channels))
	}
	if frames == 0 && err == nil {
		err = io.EOF
	}
	return frames, err
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) Close() error    { return d.file.Close() }

func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// eofOrNil maps short reads from io.ReadFull onto the Decoder contract.
func eofOrNil(n int, err error) error {
	switch {
	case err == io.ErrUnexpectedEOF && n > 0:
		return nil
	case err == io.ErrUnexpectedEOF:
		return io.EOF
	default:
		return err
	}
}
