// sweep draws live signals as a sweep chart in the terminal: new samples
// overwrite the oldest ones at a cursor that wraps across the screen,
// the way a patient monitor traces a heartbeat.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/sweep/internal/clock"
	"github.com/olivier-w/sweep/internal/config"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet, opts := newFlagSet()
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if opts.help {
		printHelp(flagSet)
		return nil
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	configPath := config.Path(opts.configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	opts.apply(flagSet, cfg)
	if file := flagSet.Arg(0); file != "" {
		cfg.Source.Kind = "file"
		cfg.Source.Path = file
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := newLogger(opts.logOutput)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("configuration loaded",
		"path", configPath,
		"source", cfg.Source.Kind,
		"time_range_ms", cfg.Chart.TimeRangeMs,
		"capacity", cfg.Chart.Capacity)

	var model tea.Model
	if browse := flagSet.NArg() == 0 && !flagSet.Changed("source") && configPath == ""; browse {
		model = newStartupModel(cfg, clock.Real(), logger)
	} else {
		if cfg.Source.Kind == "file" {
			if err := checkRecording(cfg.Source.Path); err != nil {
				return err
			}
		}
		m, err := openSession(cfg, clock.Real(), logger)
		if err != nil {
			return err
		}
		model = m
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

type cliOptions struct {
	configPath   string
	source       string
	mode         string
	logOutput    string
	timeRange    float64
	capacity     int
	ringCapacity int
	minY         float64
	maxY         float64
	fps          int
	rate         float64
	play         bool
	help         bool
}

func newFlagSet() (*pflag.FlagSet, *cliOptions) {
	opts := &cliOptions{}
	fs := pflag.NewFlagSet("sweep", pflag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (default: $"+config.EnvVar+")")
	fs.StringVar(&opts.source, "source", "", "signal source: ecg, sine or file")
	fs.Float64Var(&opts.timeRange, "time-range", 0, "sweep window in milliseconds")
	fs.IntVar(&opts.capacity, "capacity", 0, "device buffer size in vertices")
	fs.IntVar(&opts.ringCapacity, "ring-capacity", 0, "sample ring size (power of two)")
	fs.Float64Var(&opts.minY, "min-y", 0, "bottom of the value range")
	fs.Float64Var(&opts.maxY, "max-y", 0, "top of the value range")
	fs.StringVar(&opts.mode, "mode", "", "primitive: points, line-strip or lines")
	fs.IntVar(&opts.fps, "fps", 0, "render rate")
	fs.Float64Var(&opts.rate, "rate", 0, "source sample rate in Hz")
	fs.BoolVar(&opts.play, "play", false, "play file sources through the audio device")
	fs.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file")
	fs.BoolVarP(&opts.help, "help", "h", false, "show help")
	return fs, opts
}

// apply copies explicitly set flags over cfg.
func (o *cliOptions) apply(fs *pflag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source.Kind = o.source
		case "time-range":
			cfg.Chart.TimeRangeMs = o.timeRange
		case "capacity":
			cfg.Chart.Capacity = o.capacity
		case "ring-capacity":
			cfg.Chart.RingCapacity = o.ringCapacity
		case "min-y":
			cfg.Chart.MinY = o.minY
		case "max-y":
			cfg.Chart.MaxY = o.maxY
		case "mode":
			cfg.Chart.Primitive = o.mode
		case "fps":
			cfg.Chart.FPS = o.fps
		case "rate":
			cfg.Source.RateHz = o.rate
		case "play":
			cfg.Source.Play = o.play
		}
	})
}

// newLogger writes JSON to path, or discards when path is empty. The
// terminal belongs to the TUI.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log output: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { f.Close() }, nil
}

func printHelp(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `sweep draws a live signal as a sweep chart.

With no arguments, a browser lists the synthetic sources and the
recordings in the current directory.

Usage:
  %s [flags] [recording]

Keys:
  space freeze  c clear  m mode  +/- range  v lead line  q quit

Flags:
`, filepath.Base(os.Args[0]))
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}
