package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olivier-w/sweep/internal/clock"
	"github.com/olivier-w/sweep/internal/config"
	"github.com/olivier-w/sweep/internal/media"
	"github.com/olivier-w/sweep/internal/render"
	"github.com/olivier-w/sweep/internal/signal"
	"github.com/olivier-w/sweep/internal/sweep"
	"github.com/olivier-w/sweep/internal/ui"
)

// openSession builds the producer, canvas and chart described by cfg.
// File sources are opened and probed here, so this can block.
func openSession(cfg *config.Config, clk clock.Clock, logger *slog.Logger) (ui.Model, error) {
	producer, err := newProducer(cfg.Source, clk)
	if err != nil {
		return ui.Model{}, err
	}

	kind, err := sweep.ParsePrimitive(cfg.Chart.Primitive)
	if err != nil {
		return ui.Model{}, err
	}

	canvas := render.NewCanvas(cfg.Chart.Capacity, cfg.Chart.FPS)
	chart, err := sweep.New(canvas, sweep.Options{
		RingCapacity: cfg.Chart.RingCapacity,
		TimeRangeMs:  cfg.Chart.TimeRangeMs,
		MinY:         float32(cfg.Chart.MinY),
		MaxY:         float32(cfg.Chart.MaxY),
		Geometry:     render.Geometry(74, 18),
		Primitive:    kind,
		Presenter:    canvas,
		Clock:        clk,
	})
	if err != nil {
		return ui.Model{}, fmt.Errorf("creating chart: %w", err)
	}

	logger.Info("session opened", "source", producer.Name(), "primitive", kind.String())
	return ui.New(ui.Options{
		Chart:    chart,
		Canvas:   canvas,
		Producer: producer,
		Logger:   logger,
		FPS:      cfg.Chart.FPS,
	}), nil
}

func newProducer(src config.SourceConfig, clk clock.Clock) (signal.Producer, error) {
	if src.Kind == "file" {
		file, err := signal.OpenFile(src.Path, signal.FileConfig{RateHz: src.RateHz, Play: src.Play}, clk)
		if err != nil {
			return nil, err
		}
		return file, nil
	}

	waveform, err := signal.ParseWaveform(src.Kind)
	if err != nil {
		return nil, err
	}
	return signal.NewSynth(signal.SynthConfig{
		Waveform:    waveform,
		RateHz:      src.RateHz,
		HeartRate:   src.HeartRate,
		FrequencyHz: src.FrequencyHz,
		Amplitude:   src.Amplitude,
	}, clk)
}

// checkRecording rejects directories and formats no decoder handles.
func checkRecording(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if ext := filepath.Ext(path); !media.IsSupportedExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}
	return nil
}
