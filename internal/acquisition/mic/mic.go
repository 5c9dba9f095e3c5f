// Package mic is a reference AcquisitionSource: it pulls frames from the
// default input device via PortAudio and feeds them into a
// dnbcore.SignalProcessor as float64 chunks. Acquisition hardware is
// explicitly out of scope for the core pipeline; this package exists
// only to demonstrate the shape of the collaborator a real host (an
// amplifier SDK, a DAQ card) would implement in its place.
package mic

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	dnbcore "github.com/bushlab-ucl/dnbcore/src"
)

// Source streams microphone input through a processor until Close is
// called or the stream reports an error.
type Source struct {
	stream    *portaudio.Stream
	buf       []float32
	processor *dnbcore.SignalProcessor
}

// Open initializes PortAudio and opens the default input device at fs
// with the given frames-per-buffer chunk size.
func Open(processor *dnbcore.SignalProcessor, fs float64, framesPerBuffer int) (*Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("mic: portaudio init: %w", err)
	}

	buf := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, fs, len(buf), &buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("mic: open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("mic: start stream: %w", err)
	}

	return &Source{stream: stream, buf: buf, processor: processor}, nil
}

// ReadChunk blocks for one buffer of audio and runs it through the
// processor, returning any trigger timestamp observed.
func (s *Source) ReadChunk() (timestamp float64, fired bool, err error) {
	if err := s.stream.Read(); err != nil {
		return 0, false, fmt.Errorf("mic: read: %w", err)
	}

	samples := make([]float64, len(s.buf))
	for i, v := range s.buf {
		samples[i] = float64(v)
	}

	ts, ok := s.processor.RunChunk(samples)
	return ts, ok, nil
}

// Close stops the stream and releases PortAudio.
func (s *Source) Close() error {
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
