// Package signal produces timestamped samples for a sweep chart:
// synthetic waveforms paced by a clock, and decoded audio files.
package signal

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// batchInterval is how often paced producers wake to emit the samples
// that have come due.
const batchInterval = 20 * time.Millisecond

// EmitFunc receives one sample. Timestamps are milliseconds since the
// producer started.
type EmitFunc func(value float32, timestampMs uint64)

// Producer generates samples until its context is cancelled or its
// input is exhausted.
type Producer interface {
	Name() string
	Run(ctx context.Context, emit EmitFunc) error
}

// Target accepts samples; *sweep.Chart satisfies it.
type Target interface {
	AddDatapoint(value float32, timestampMs uint64)
}

// Pump runs p into target and logs how it ended. Cancellation is a
// normal stop and returns nil.
func Pump(ctx context.Context, p Producer, target Target, logger *slog.Logger) error {
	logger = logger.With("source", p.Name())
	logger.Info("source started")

	err := p.Run(ctx, target.AddDatapoint)
	switch {
	case err == nil:
		logger.Info("source finished")
	case errors.Is(err, context.Canceled):
		logger.Info("source stopped")
		return nil
	default:
		logger.Error("source failed", "error", err)
	}
	return err
}

// sampleTimestamp converts a sample index at rate hz into milliseconds.
func sampleTimestamp(index int64, rate float64) uint64 {
	return uint64(float64(index) * 1000 / rate)
}
