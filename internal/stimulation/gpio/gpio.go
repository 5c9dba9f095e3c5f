// Package gpio is a reference StimulationSink: it pulses a single GPIO
// line at a trigger's projected wall-clock timestamp using the Linux
// gpio-cdev uAPI. Stimulation hardware is explicitly out of scope for
// the core pipeline; this package demonstrates the shape of the
// collaborator a real host (an audio DAC, a current source) would
// implement in its place.
package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Sink drives one output line low/high to mark a stimulation pulse.
type Sink struct {
	chip     *gpiocdev.Chip
	line     *gpiocdev.Line
	pulseDur time.Duration
}

// Open requests offset on chipName as an output line, initially low.
func Open(chipName string, offset int, pulseDuration time.Duration) (*Sink, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("gpio: open chip %q: %w", chipName, err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("gpio: request line %d: %w", offset, err)
	}

	return &Sink{chip: chip, line: line, pulseDur: pulseDuration}, nil
}

// FireAt sleeps until timestamp (seconds since the Unix epoch, as
// returned by SignalProcessor.RunChunk) and then pulses the line high
// for the configured duration. A timestamp already in the past fires
// immediately.
func (s *Sink) FireAt(timestamp float64) error {
	target := time.Unix(0, int64(timestamp*1e9))
	if delay := time.Until(target); delay > 0 {
		time.Sleep(delay)
	}

	if err := s.line.SetValue(1); err != nil {
		return fmt.Errorf("gpio: set high: %w", err)
	}
	time.Sleep(s.pulseDur)
	return s.line.SetValue(0)
}

// Close releases the line and chip handle.
func (s *Sink) Close() error {
	if err := s.line.Close(); err != nil {
		return err
	}
	return s.chip.Close()
}
