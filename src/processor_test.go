package dnbcore

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalConfig(fs float64) *Config {
	return &Config{
		Processor: ProcessorConfig{FS: fs},
	}
}

func TestNewSignalProcessorRejectsUnresolvedFilterID(t *testing.T) {
	cfg := minimalConfig(512)
	cfg.Detectors.ThresholdDetectors = []ThresholdDetectorConfig{
		{ID: "d1", FilterID: "missing", Threshold: 2, BufferSize: 8, Sensitivity: 0.5},
	}
	_, err := NewSignalProcessor(cfg)
	require.Error(t, err)
}

func TestNewSignalProcessorRejectsUnresolvedTriggerDetectorID(t *testing.T) {
	cfg := minimalConfig(512)
	cfg.Filters.BandpassFilters = []BandpassFilterConfig{{ID: "f1", FLow: 1, FHigh: 4}}
	cfg.Detectors.ThresholdDetectors = []ThresholdDetectorConfig{
		{ID: "d1", FilterID: "f1", Threshold: 2, BufferSize: 8, Sensitivity: 0.5},
	}
	cfg.Triggers.PulseTriggers = []PulseTriggerConfig{
		{ID: "t1", ActivationDetectorID: "nope", PulseCooldownMs: 0, InhibitionCooldownMs: 0},
	}
	_, err := NewSignalProcessor(cfg)
	require.Error(t, err)
}

func TestNewSignalProcessorRejectsDuplicateIDs(t *testing.T) {
	cfg := minimalConfig(512)
	cfg.Filters.BandpassFilters = []BandpassFilterConfig{
		{ID: "f1", FLow: 1, FHigh: 4},
		{ID: "f1", FLow: 5, FHigh: 10},
	}
	_, err := NewSignalProcessor(cfg)
	require.Error(t, err)
}

// Scenario 1: flat zero input, no filter ever fires, no trigger.
func TestScenarioFlatZeroNeverTriggers(t *testing.T) {
	fs := 512.0
	minMs, maxMs := 500.0, 2000.0
	cfg := &Config{
		Processor: ProcessorConfig{FS: fs},
		Filters:   FiltersConfig{BandpassFilters: []BandpassFilterConfig{{ID: "slow", FLow: 0.5, FHigh: 4}}},
		Detectors: DetectorsConfig{WavePeakDetectors: []WavePeakDetectorConfig{
			{ID: "sw", FilterID: "slow", ZScoreThreshold: 1.0, WavePolarity: "downwave", MinWaveLengthMs: &minMs, MaxWaveLengthMs: &maxMs},
		}},
		Triggers: TriggersConfig{PulseTriggers: []PulseTriggerConfig{
			{ID: "pulse", ActivationDetectorID: "sw", PulseCooldownMs: 0},
		}},
	}

	sp, err := NewSignalProcessor(cfg)
	require.NoError(t, err)

	samples := make([]float64, 10000)
	_, fired := sp.RunChunk(samples)
	assert.False(t, fired)
	assert.Equal(t, int64(10000), sp.GlobalIndex())
}

// Scenario 4: two consecutive slow waves close together, second is
// suppressed by the pulse cooldown.
func TestScenarioPulseCooldownSuppressesSecondWave(t *testing.T) {
	fs := 512.0
	cfg := &Config{
		Processor: ProcessorConfig{FS: fs},
		Filters:   FiltersConfig{BandpassFilters: []BandpassFilterConfig{{ID: "slow", FLow: 0.5, FHigh: 4}}},
		Detectors: DetectorsConfig{WavePeakDetectors: []WavePeakDetectorConfig{
			{ID: "sw", FilterID: "slow", ZScoreThreshold: 0.1, WavePolarity: "downwave"},
		}},
		Triggers: TriggersConfig{PulseTriggers: []PulseTriggerConfig{
			{ID: "pulse", ActivationDetectorID: "sw", PulseCooldownMs: 2000},
		}},
	}
	sp, err := NewSignalProcessor(cfg)
	require.NoError(t, err)

	base := time.Unix(1_700_000_000, 0)
	clockOffset := time.Duration(0)
	sp.SetClock(func() time.Time { return base.Add(clockOffset) })

	waveLen := 256
	samples := buildInjectedWave(4000, fs, 100, waveLen, 50)
	// second wave 500ms later (256 samples @512Hz)
	second := buildInjectedWave(4000, fs, 100+waveLen+256, waveLen, 50)
	for i := range samples {
		if second[i] != 0 {
			samples[i] = second[i]
		}
	}

	fireCount := 0
	clockOffset = 0
	for i, s := range samples {
		clockOffset = time.Duration(i) * time.Second / time.Duration(fs)
		_, fired := sp.RunChunk([]float64{s})
		if fired {
			fireCount++
		}
	}
	assert.Equal(t, 1, fireCount, "pulse cooldown should suppress the second wave's trigger")
}

// Chunking invariance (scenario 6): one big chunk vs many small chunks
// must produce the same peak detection index.
func TestChunkingInvarianceForWholeProcessor(t *testing.T) {
	fs := 512.0
	minMs, maxMs := 500.0, 2000.0
	newProc := func() *SignalProcessor {
		cfg := &Config{
			Processor: ProcessorConfig{FS: fs},
			Filters:   FiltersConfig{BandpassFilters: []BandpassFilterConfig{{ID: "slow", FLow: 0.5, FHigh: 4}}},
			Detectors: DetectorsConfig{WavePeakDetectors: []WavePeakDetectorConfig{
				{ID: "sw", FilterID: "slow", ZScoreThreshold: 1.0, SinusoidnessThreshold: 0.7,
					CheckSinusoidness: true, WavePolarity: "downwave", MinWaveLengthMs: &minMs, MaxWaveLengthMs: &maxMs},
			}},
		}
		sp, err := NewSignalProcessor(cfg)
		require.NoError(t, err)
		return sp
	}

	samples := buildInjectedWave(10000, fs, 3000, 512, 100)

	whole := newProc()
	whole.RunChunk(samples)
	wholePeak, wholeOK := whole.results.get(detectorKey("sw", "peak_index"))

	chunked := newProc()
	for i := 0; i < len(samples); i += 100 {
		end := i + 100
		if end > len(samples) {
			end = len(samples)
		}
		chunked.RunChunk(samples[i:end])
	}
	chunkedPeak, chunkedOK := chunked.results.get(detectorKey("sw", "peak_index"))

	assert.Equal(t, wholeOK, chunkedOK)
	assert.Equal(t, wholePeak, chunkedPeak)
}

func TestResetIndexDoesNotClearFilterOrDetectorState(t *testing.T) {
	fs := 512.0
	cfg := &Config{
		Processor: ProcessorConfig{FS: fs},
		Filters:   FiltersConfig{BandpassFilters: []BandpassFilterConfig{{ID: "slow", FLow: 0.5, FHigh: 4}}},
		Detectors: DetectorsConfig{ThresholdDetectors: []ThresholdDetectorConfig{
			{ID: "d1", FilterID: "slow", Threshold: 1.0, BufferSize: 8, Sensitivity: 0.5},
		}},
	}
	sp, err := NewSignalProcessor(cfg)
	require.NoError(t, err)

	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = math.Sin(float64(i) * 0.1)
	}
	sp.RunChunk(samples)

	det := sp.detectors[0].(*ThresholdDetector)
	countBeforeReset := det.stats.count

	sp.ResetIndex()
	assert.Equal(t, int64(0), sp.GlobalIndex())
	assert.Equal(t, countBeforeReset, det.stats.count, "reset_index must not clear detector running statistics")
}

func TestRunChunkEmptyChunkReturnsNoTrigger(t *testing.T) {
	sp, err := NewSignalProcessor(minimalConfig(512))
	require.NoError(t, err)
	_, fired := sp.RunChunk(nil)
	assert.False(t, fired)
	assert.Equal(t, int64(0), sp.GlobalIndex())
}

func TestRunChunkHandlesNaNWithoutPanicking(t *testing.T) {
	fs := 512.0
	cfg := &Config{
		Processor: ProcessorConfig{FS: fs},
		Filters:   FiltersConfig{BandpassFilters: []BandpassFilterConfig{{ID: "slow", FLow: 0.5, FHigh: 4}}},
		Detectors: DetectorsConfig{ThresholdDetectors: []ThresholdDetectorConfig{
			{ID: "d1", FilterID: "slow", Threshold: 1.0, BufferSize: 8, Sensitivity: 0.5},
		}},
	}
	sp, err := NewSignalProcessor(cfg)
	require.NoError(t, err)

	samples := []float64{1, 2, math.NaN(), math.Inf(1), 3}
	assert.NotPanics(t, func() {
		sp.RunChunk(samples)
	})
}
