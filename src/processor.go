package dnbcore

import (
	"time"

	"github.com/charmbracelet/log"
)

// SignalProcessor owns the filter/detector/trigger registries for a
// single channel and routes each sample through them in dependency
// order: filters first, then detectors, then triggers. It is not safe
// for concurrent use; callers wanting parallel channels must construct
// one processor per channel.
type SignalProcessor struct {
	fs float64

	filters   []filterComponent
	detectors []detectorComponent
	triggers  []triggerComponent

	results     *resultsMap
	globalIndex int64

	clock clockFunc
	log   *log.Logger
}

// NewSignalProcessor builds filters, then detectors (validating each
// detector's filter_id), then triggers (validating detector id
// references), in that order. It returns the first ConfigError
// encountered; no processor handle is produced on failure.
func NewSignalProcessor(cfg *Config) (*SignalProcessor, error) {
	if cfg.Processor.FS <= 0 {
		return nil, configErr("processor.fs", "fs must be positive, got %g", cfg.Processor.FS)
	}

	sp := &SignalProcessor{
		fs:      cfg.Processor.FS,
		results: newResultsMap(),
		clock:   realClock,
		log:     newLogSink(cfg.Processor.Verbose, cfg.Processor.EnableDebugLogging),
	}

	filterByID := make(map[string]*BandpassFilter)
	for _, fc := range cfg.Filters.BandpassFilters {
		if fc.ID == "" {
			return nil, configErr("filters.bandpass.id", "bandpass filter is missing an id")
		}
		if _, dup := filterByID[fc.ID]; dup {
			return nil, configErr("filters.bandpass.id", "duplicate filter id %q", fc.ID)
		}
		f, err := newBandpassFilter(fc.ID, fc.FLow, fc.FHigh, sp.fs)
		if err != nil {
			return nil, err
		}
		filterByID[fc.ID] = f
		sp.filters = append(sp.filters, f)
	}

	detectorIDs := make(map[string]bool)

	for _, dc := range cfg.Detectors.ThresholdDetectors {
		if dc.ID == "" {
			return nil, configErr("detectors.threshold.id", "threshold detector is missing an id")
		}
		if detectorIDs[dc.ID] {
			return nil, configErr("detectors.threshold.id", "duplicate detector id %q", dc.ID)
		}
		if _, ok := filterByID[dc.FilterID]; !ok {
			return nil, configErr("detectors.threshold.filter_id", "threshold detector %q references unknown filter_id %q", dc.ID, dc.FilterID)
		}
		d, err := newThresholdDetector(dc.ID, dc.FilterID, dc.Threshold, dc.BufferSize, dc.Sensitivity)
		if err != nil {
			return nil, err
		}
		detectorIDs[dc.ID] = true
		sp.detectors = append(sp.detectors, d)
	}

	for _, dc := range cfg.Detectors.WavePeakDetectors {
		if dc.ID == "" {
			return nil, configErr("detectors.wave_peak.id", "wave peak detector is missing an id")
		}
		if detectorIDs[dc.ID] {
			return nil, configErr("detectors.wave_peak.id", "duplicate detector id %q", dc.ID)
		}
		if _, ok := filterByID[dc.FilterID]; !ok {
			return nil, configErr("detectors.wave_peak.filter_id", "wave peak detector %q references unknown filter_id %q", dc.ID, dc.FilterID)
		}
		polarity, err := parseWavePolarity(dc.WavePolarity)
		if err != nil {
			return nil, err
		}
		d := newWavePeakDetector(dc.ID, dc.FilterID, polarity, dc.ZScoreThreshold, dc.SinusoidnessThreshold,
			dc.CheckSinusoidness, dc.MinWaveLengthMs, dc.MaxWaveLengthMs, sp.fs)
		detectorIDs[dc.ID] = true
		sp.detectors = append(sp.detectors, d)
	}

	triggerIDs := make(map[string]bool)
	for _, tc := range cfg.Triggers.PulseTriggers {
		if tc.ID == "" {
			return nil, configErr("triggers.pulse.id", "pulse trigger is missing an id")
		}
		if triggerIDs[tc.ID] {
			return nil, configErr("triggers.pulse.id", "duplicate trigger id %q", tc.ID)
		}
		if !detectorIDs[tc.ActivationDetectorID] {
			return nil, configErr("triggers.pulse.activation_detector_id", "pulse trigger %q references unknown activation_detector_id %q", tc.ID, tc.ActivationDetectorID)
		}
		if tc.InhibitionDetectorID != "" && !detectorIDs[tc.InhibitionDetectorID] {
			return nil, configErr("triggers.pulse.inhibition_detector_id", "pulse trigger %q references unknown inhibition_detector_id %q", tc.ID, tc.InhibitionDetectorID)
		}
		trig := newPulseTrigger(tc.ID, tc.ActivationDetectorID, tc.InhibitionDetectorID, tc.PulseCooldownMs, tc.InhibitionCooldownMs, sp.fs)
		triggerIDs[tc.ID] = true
		sp.triggers = append(sp.triggers, trig)
	}

	return sp, nil
}

// NewSignalProcessorFromFile loads and parses the YAML config at path
// and builds a processor from it, matching the C-ABI
// create_signal_processor_from_config contract.
func NewSignalProcessorFromFile(path string) (*SignalProcessor, error) {
	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	return NewSignalProcessor(cfg)
}

// SetClock overrides the wall-clock source used by triggers. Intended
// for tests; production callers never need it.
func (sp *SignalProcessor) SetClock(c func() time.Time) {
	sp.clock = c
}

// RunChunk processes each sample of data in order, advancing the global
// index and every internal component's state regardless of whether a
// trigger has already fired earlier in the chunk. It returns the
// wall-clock timestamp of the first trigger to fire in this chunk, or
// ok=false if none fired (including for an empty chunk, which also
// leaves the global index untouched).
func (sp *SignalProcessor) RunChunk(data []float64) (timestamp float64, ok bool) {
	for _, sample := range data {
		sp.results.set(keyRawSample, sample)

		for _, f := range sp.filters {
			f.processSample(sp.results)
		}
		for _, d := range sp.detectors {
			d.processSample(sp.results, sp.globalIndex)
		}
		for _, trig := range sp.triggers {
			fired, ts := trig.evaluate(sp.results, sp.globalIndex, sp.clock)
			if fired && !ok {
				timestamp, ok = ts, true
			}
		}

		sp.globalIndex++
	}
	return timestamp, ok
}

// ResetIndex zeroes the global sample index. It does not touch filter
// memory, detector running statistics, in-wave accumulation state, or
// trigger cooldowns: those persist across a reset exactly as they do
// across a chunk boundary. This is the documented (if surprising)
// behavior of the source system; see DESIGN.md for the reasoning.
func (sp *SignalProcessor) ResetIndex() {
	sp.globalIndex = 0
}

// LogMessage appends a diagnostic record to the processor's log sink. It
// has no effect on processing state; it exists so hosts in other
// languages can interleave their own traces with the pipeline's.
func (sp *SignalProcessor) LogMessage(text string) {
	sp.log.Info(text)
}

// GlobalIndex reports the current sample index, mainly for tests and
// introspection; it is not part of the documented hot-path contract.
func (sp *SignalProcessor) GlobalIndex() int64 {
	return sp.globalIndex
}
